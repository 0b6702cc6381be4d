// Package app собирает общие ресурсы процессов консоли (сервер и hmsctl).
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/infra"
	"github.com/xela07ax/hospital-console/internal/repository/postgres"
	"go.uber.org/zap"
)

// Resources — подключения, которые живут все время работы процесса.
type Resources struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client // nil, если драйвер changefeed не redis
	Repo      *postgres.Repo
	Feed      changefeed.Feed
	Publisher changefeed.Publisher
}

// Open подключается к Postgres и, для драйвера redis, к Redis.
func Open(ctx context.Context, cfg *infra.Config, logger *zap.Logger) (*Resources, error) {
	pool, err := postgres.OpenPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	res := &Resources{Pool: pool, Repo: postgres.NewRepo(pool)}

	if cfg.ChangeFeed.Driver == changefeed.DriverRedis || cfg.ChangeFeed.Driver == "" {
		res.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := res.Redis.Ping(ctx).Err(); err != nil {
			res.Close()
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
	}

	res.Feed, res.Publisher, err = changefeed.New(cfg.ChangeFeed, res.Redis, pool, logger)
	if err != nil {
		res.Close()
		return nil, err
	}

	logger.Info("resources ready",
		zap.String("changefeed", cfg.ChangeFeed.Driver),
		zap.Int32("db_max_conns", cfg.Database.MaxConns))
	return res, nil
}

func (r *Resources) Close() error {
	var errs []error
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
	return errors.Join(errs...)
}
