package changefeed

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/zap"
)

const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// New выбирает транспорт по changefeed.driver.
func New(cfg infra.ChangeFeedConfig, rdb *redis.Client, pool *pgxpool.Pool, logger *zap.Logger) (Feed, Publisher, error) {
	switch cfg.Driver {
	case DriverRedis, "":
		if rdb == nil {
			return nil, nil, fmt.Errorf("changefeed: redis driver requires a redis client")
		}
		return NewRedisFeed(rdb, cfg, logger), NewRedisPublisher(rdb, cfg.ChannelPrefix), nil
	case DriverPostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("changefeed: postgres driver requires a pool")
		}
		return NewPostgresFeed(pool, cfg, logger), NopPublisher{}, nil
	case DriverMemory:
		b := NewMemoryBroker()
		return b, b, nil
	default:
		return nil, nil, fmt.Errorf("changefeed: unknown driver %q", cfg.Driver)
	}
}
