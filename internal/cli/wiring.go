package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
	transport "quiz-engine/internal/transport/http"
)

// backends holds the optional external stores named in the config.
type backends struct {
	redis  *redis.Client
	pool   *pgxpool.Pool
	checks map[string]transport.Checker
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{checks: map[string]transport.Checker{}}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		b.redis = client
		b.checks["redis"] = transport.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		b.pool = pool
		b.checks["postgres"] = transport.CheckFunc(postgres.NewQuestionSetLoader(pool).Ping)
		logger.Info("connected to postgres")
	}
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// questionSetLoader prefers Postgres, then the questions directory and the embedded default.
func (b *backends) questionSetLoader(cfg config.Config) memory.QuestionSetLoader {
	dir := memory.NewDirLoader(cfg.Quiz.QuestionsDir)
	if b.pool == nil {
		return dir
	}
	return memory.ChainLoader{postgres.NewQuestionSetLoader(b.pool), dir}
}

func (b *backends) questionSets(cfg config.Config) app.QuestionSetRepository {
	loader := b.questionSetLoader(cfg)
	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		return infraredis.NewQuestionSetRepository(b.redis, loader, ttl)
	}
	return memory.NewQuestionSetRepository(loader, ttl)
}

func (b *backends) sessionStore(cfg config.Config) app.SessionRepository {
	if b.redis != nil {
		return infraredis.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}

func serviceOptions(cfg config.Config, logger *slog.Logger) []app.Option {
	opts := []app.Option{app.WithLogger(logger)}
	if cfg.Quiz.StrictChoices {
		opts = append(opts, app.WithStrictChoices())
	}
	return opts
}
