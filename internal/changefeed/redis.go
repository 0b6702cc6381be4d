package changefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/zap"
)

// RedisFeed — подписки через Redis Pub/Sub, по каналу на таблицу.
type RedisFeed struct {
	rdb            *redis.Client
	prefix         string
	tries          uint
	reconnectDelay time.Duration
	logger         *zap.Logger
}

func NewRedisFeed(rdb *redis.Client, cfg infra.ChangeFeedConfig, logger *zap.Logger) *RedisFeed {
	tries := cfg.SubscribeTries
	if tries == 0 {
		tries = 1
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &RedisFeed{
		rdb:            rdb,
		prefix:         cfg.ChannelPrefix,
		tries:          tries,
		reconnectDelay: delay,
		logger:         logger.Named("changefeed-redis"),
	}
}

// Subscribe возвращает управление только после подтверждения подписки сервером.
func (f *RedisFeed) Subscribe(ctx context.Context, table domain.Table, h Handler) (Handle, error) {
	channel := infra.RedisChangesChannel(f.prefix, string(table))

	pubsub, err := f.open(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	// Подписка живет до Close, а не до отмены ctx вызывающего
	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rh := &redisHandle{
		table:  table,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.listen(lctx, rh, channel, pubsub, h)

	return rh, nil
}

func (f *RedisFeed) open(ctx context.Context, channel string) (*redis.PubSub, error) {
	var pubsub *redis.PubSub

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(f.tries),
		retry.Delay(f.reconnectDelay),
		retry.DelayType(retry.BackOffDelay),
	)
	err := r.Do(func() error {
		ps := f.rdb.Subscribe(ctx, channel)
		// Проверка успешности подписки
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			f.logger.Warn("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			return err
		}
		pubsub = ps
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pubsub, nil
}

// listen — "живучий" цикл чтения канала. Если канал закрылся не по Close,
// переподписываемся и шлем RESYNC: за время разрыва события могли потеряться.
func (f *RedisFeed) listen(ctx context.Context, rh *redisHandle, channel string, pubsub *redis.PubSub, h Handler) {
	defer close(rh.done)

	for {
		// Здесь приходят и *redis.Message, и *redis.Subscription
		// при внутреннем переподключении клиента.
		ch := pubsub.ChannelWithSubscriptions()

	loop:
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				switch m := msg.(type) {
				case *redis.Subscription:
					if m.Kind == "subscribe" {
						f.logger.Info("resubscribed", zap.String("chan", channel))
						h(resyncEvent(rh.table))
					}
				case *redis.Message:
					ev, err := DecodeEvent(rh.table, []byte(m.Payload))
					if err != nil {
						f.logger.Error("invalid change event", zap.String("chan", channel), zap.Error(err))
						continue
					}
					h(ev)
				}
			}
		}

		_ = pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.reconnectDelay):
			}
			ps, err := f.open(ctx, channel)
			if err == nil {
				pubsub = ps
				break
			}
		}
		h(resyncEvent(rh.table))
	}
}

type redisHandle struct {
	table  domain.Table
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (h *redisHandle) Table() domain.Table { return h.table }

// Close останавливает цикл чтения и ждет закрытия соединения подписки.
func (h *redisHandle) Close() error {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
	return nil
}

// RedisPublisher публикует события в те же каналы, что слушает RedisFeed.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	channel := infra.RedisChangesChannel(p.prefix, string(ev.Table))
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
