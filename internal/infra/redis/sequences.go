package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sequences allocates ids with INCR, which is atomic across every process sharing
// the Redis instance. Counters live under ecoquiz:seq:{name}.
type Sequences struct {
	client *redis.Client
}

func NewSequences(client *redis.Client) *Sequences {
	return &Sequences{client: client}
}

func (s *Sequences) Next(ctx context.Context, name string) (int64, error) {
	v, err := s.client.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr sequence %s: %w", name, err)
	}
	return v, nil
}

func (s *Sequences) Reset(ctx context.Context, name string, value int64) error {
	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("reset sequence %s: %w", name, err)
	}
	return nil
}

func (s *Sequences) key(name string) string {
	return "ecoquiz:seq:" + name
}
