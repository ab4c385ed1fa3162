package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	itemKeyPrefix = "ecoquiz:item:"
	itemGenPrefix = "ecoquiz:itemgen:"
	itemEpochKey  = "ecoquiz:itemepoch"
)

// ItemCache is a read-through cache in front of an app.ItemStore.
// Single items are cached as JSON under ecoquiz:item:{id}; every write goes to the
// backing store first and then drops the cached copy.
type ItemCache struct {
	client *redis.Client
	next   app.ItemStore
	ttl    time.Duration
	sf     singleflight.Group
}

func NewItemCache(client *redis.Client, next app.ItemStore, ttl time.Duration) *ItemCache {
	return &ItemCache{client: client, next: next, ttl: ttl}
}

// cachedItem keeps the version, which the JSON form of domain.Item omits.
type cachedItem struct {
	Item    domain.Item `json:"item"`
	Version int64       `json:"version"`
}

func (c *ItemCache) Get(ctx context.Context, id int64) (domain.Item, error) {
	if item, ok := c.lookup(ctx, id); ok {
		return item, nil
	}

	key := c.key(id)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if item, ok := c.lookup(ctx, id); ok {
			return item, nil
		}
		stamp, err := c.stamp(ctx, c.client, id)
		if err != nil {
			return c.next.Get(ctx, id)
		}
		item, err := c.next.Get(ctx, id)
		if err != nil {
			return domain.Item{}, err
		}
		c.fill(ctx, id, stamp, item)
		return item, nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return result.(domain.Item).Clone(), nil
}

// fillStamp records the global epoch and the item generation seen before loading.
type fillStamp struct {
	epoch, gen int64
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *ItemCache) stamp(ctx context.Context, g getter, id int64) (fillStamp, error) {
	epoch, err := counterValue(ctx, g, itemEpochKey)
	if err != nil {
		return fillStamp{}, err
	}
	gen, err := counterValue(ctx, g, c.genKey(id))
	if err != nil {
		return fillStamp{}, err
	}
	return fillStamp{epoch: epoch, gen: gen}, nil
}

func counterValue(ctx context.Context, g getter, key string) (int64, error) {
	v, err := g.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// fill caches item only if neither a write to it nor a DeleteAll happened since the
// stamp was taken, so a slow loader cannot put back a copy older than the last invalidation.
func (c *ItemCache) fill(ctx context.Context, id int64, seen fillStamp, item domain.Item) {
	raw, err := json.Marshal(cachedItem{Item: item, Version: item.Version})
	if err != nil {
		return
	}
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.stamp(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur != seen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), raw, c.ttlWithJitter())
			return nil
		})
		return err
	}, itemEpochKey, c.genKey(id))
}

func (c *ItemCache) List(ctx context.Context) ([]domain.Item, error) {
	return c.next.List(ctx)
}

func (c *ItemCache) Insert(ctx context.Context, item domain.Item) error {
	defer c.invalidate(ctx, item.ID)
	return c.next.Insert(ctx, item)
}

func (c *ItemCache) Update(ctx context.Context, id int64, patch domain.ItemPatch) (bool, error) {
	defer c.invalidate(ctx, id)
	return c.next.Update(ctx, id, patch)
}

func (c *ItemCache) Delete(ctx context.Context, id int64) error {
	defer c.invalidate(ctx, id)
	return c.next.Delete(ctx, id)
}

// DeleteAll bumps the epoch before dropping cached items, which voids every fill
// that started earlier.
func (c *ItemCache) DeleteAll(ctx context.Context) (int64, error) {
	n, err := c.next.DeleteAll(ctx)
	if incrErr := c.client.Incr(ctx, itemEpochKey).Err(); incrErr != nil && err == nil {
		err = fmt.Errorf("bump item cache epoch: %w", incrErr)
	}
	iter := c.client.Scan(ctx, 0, itemKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
	if scanErr := iter.Err(); scanErr != nil && err == nil {
		err = fmt.Errorf("scan cached items: %w", scanErr)
	}
	return n, err
}

func (c *ItemCache) AppendAnswer(ctx context.Context, itemID int64, answer domain.Answer) error {
	defer c.invalidate(ctx, itemID)
	return c.next.AppendAnswer(ctx, itemID, answer)
}

// ReplaceAnswers also drops the cached copy on a version conflict, so the retry
// reads the current version from the backing store.
func (c *ItemCache) ReplaceAnswers(ctx context.Context, itemID, version int64, answers []domain.Answer) error {
	defer c.invalidate(ctx, itemID)
	return c.next.ReplaceAnswers(ctx, itemID, version, answers)
}

func (c *ItemCache) lookup(ctx context.Context, id int64) (domain.Item, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return domain.Item{}, false
	}
	var cached cachedItem
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.Item{}, false
	}
	cached.Item.Version = cached.Version
	if cached.Item.Answers == nil {
		cached.Item.Answers = []domain.Answer{}
	}
	return cached.Item, true
}

// invalidate is best effort; the TTL bounds staleness if the delete is lost.
func (c *ItemCache) invalidate(ctx context.Context, id int64) {
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(id))
		pipe.Del(ctx, c.key(id))
		return nil
	})
}

func (c *ItemCache) key(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *ItemCache) genKey(id int64) string {
	return itemGenPrefix + strconv.FormatInt(id, 10)
}

// ttlWithJitter adds up to 10% to the TTL to spread expirations.
func (c *ItemCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
