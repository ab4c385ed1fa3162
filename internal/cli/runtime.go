package cli

import (
	"context"
	"fmt"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/auth"
	"ecoquiz-service/internal/config"
	"ecoquiz-service/internal/infra/memory"
	"ecoquiz-service/internal/infra/postgres"
	rediscache "ecoquiz-service/internal/infra/redis"
	"ecoquiz-service/internal/logger"
	transport "ecoquiz-service/internal/transport/http"
	"github.com/redis/go-redis/v9"
)

// runtime holds the wired services and the handles that must be released on exit.
type runtime struct {
	services transport.Services
	closers  []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime picks the stores named by cfg and wires the services on top.
// Postgres backs everything durable; Redis, when configured, caches items in
// front of Postgres or allocates ids for the in-memory backend.
func buildRuntime(ctx context.Context, cfg config.Config, log *logger.Logger) (*runtime, error) {
	rt := &runtime{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}

	var (
		items      app.ItemStore
		metrics    app.MetricStore
		users      app.UserStore
		challenges app.ChallengeStore
		seq        app.SequenceAllocator
		health     []func(context.Context) error
	)

	switch {
	case cfg.UsesPostgres():
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, db.Close)
		health = append(health, db.Ping)

		applied, err := postgres.Migrate(ctx, db.Bun)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if len(applied) > 0 {
			log.Info("migrations applied", "migrations", applied)
		}

		items = postgres.NewItemStore(db.Bun)
		metrics = postgres.NewMetricStore(db.Pool)
		users = postgres.NewUserStore(db.Bun)
		challenges = postgres.NewChallengeStore(db.Bun)
		seq = postgres.NewSequences(db.Pool)
		if redisClient != nil {
			ttl := config.TTLDuration(cfg.Items.CacheTTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
			items = rediscache.NewItemCache(redisClient, items, ttl)
		}
	case cfg.Store.Backend == "memory":
		items = memory.NewItemStore()
		metrics = memory.NewMetricStore()
		users = memory.NewUserStore()
		challenges = memory.NewChallengeStore()
		seq = memory.NewSequences()
		if redisClient != nil {
			seq = rediscache.NewSequences(redisClient)
		}
	default:
		rt.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if redisClient != nil {
		health = append(health, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	if cfg.Auth.Secret == config.DevSecret {
		log.Warn("using the built-in development token secret; set auth.secret or ECOQUIZ_JWT_SECRET")
	}
	tokens := auth.NewTokens(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 30*time.Minute))

	metricService := app.NewMetricService(metrics, seq, log)
	rt.services = transport.Services{
		Items:      app.NewItemService(items, seq, log),
		Answers:    app.NewAnswerService(items, seq, metricService, log),
		Metrics:    metricService,
		Auth:       app.NewAuthService(users, tokens, log),
		Challenges: app.NewChallengeService(challenges),
		Sequences:  seq,
		Health: func(ctx context.Context) error {
			for _, check := range health {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return rt, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
