package changefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/zap"
)

// listener — соединение, на котором выполнен LISTEN. *pgx.Conn подходит как есть.
type listener interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// PostgresFeed — подписки через LISTEN/NOTIFY. События формирует триггер
// hms_notify_change(), поэтому публиковать из приложения ничего не нужно.
//
// На процесс одно соединение: оно слушает каналы всех таблиц сразу и раздает
// события открытым подпискам. Соединение открывается при первой подписке и
// возвращается серверу после закрытия последней.
type PostgresFeed struct {
	connect        func(ctx context.Context) (listener, error)
	channels       map[string]domain.Table
	reconnectDelay time.Duration
	logger         *zap.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[domain.Table]map[uint64]*pgHandle
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPostgresFeed(pool *pgxpool.Pool, cfg infra.ChangeFeedConfig, logger *zap.Logger) *PostgresFeed {
	f := newPostgresFeed(cfg, logger)
	f.connect = func(ctx context.Context) (listener, error) {
		return f.listenConn(ctx, pool, cfg.SubscribeTries)
	}
	return f
}

func newPostgresFeed(cfg infra.ChangeFeedConfig, logger *zap.Logger) *PostgresFeed {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	channels := make(map[string]domain.Table, len(domain.AllTables))
	for _, t := range domain.AllTables {
		channels[infra.PostgresChangesChannel(string(t))] = t
	}
	return &PostgresFeed{
		channels:       channels,
		reconnectDelay: delay,
		logger:         logger.Named("changefeed-pg"),
		subs:           make(map[domain.Table]map[uint64]*pgHandle),
	}
}

func (f *PostgresFeed) Subscribe(ctx context.Context, table domain.Table, h Handler) (Handle, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("changefeed: table %q has no change trigger", table)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done == nil {
		conn, err := f.connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", table, err)
		}
		lctx, cancel := context.WithCancel(context.Background())
		f.cancel, f.done = cancel, make(chan struct{})
		go f.listen(lctx, conn, f.done)
	}

	f.nextID++
	ph := &pgHandle{feed: f, table: table, id: f.nextID, fn: h}
	if f.subs[table] == nil {
		f.subs[table] = make(map[uint64]*pgHandle)
	}
	f.subs[table][ph.id] = ph
	return ph, nil
}

// Subscriptions — число открытых подписок по всем таблицам.
func (f *PostgresFeed) Subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.subs {
		n += len(m)
	}
	return n
}

func (f *PostgresFeed) unsubscribe(ph *pgHandle) {
	f.mu.Lock()
	delete(f.subs[ph.table], ph.id)
	if len(f.subs[ph.table]) == 0 {
		delete(f.subs, ph.table)
	}
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	if len(f.subs) == 0 && f.done != nil {
		cancel, done = f.cancel, f.done
		f.cancel, f.done = nil, nil
	}
	f.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (f *PostgresFeed) handles(table domain.Table) []*pgHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*pgHandle, 0, len(f.subs[table]))
	for _, ph := range f.subs[table] {
		out = append(out, ph)
	}
	return out
}

// listenConn забирает соединение из пула в монопольное владение:
// LISTEN привязан к сессии, возвращать такое соединение в пул нельзя.
func (f *PostgresFeed) listenConn(ctx context.Context, pool *pgxpool.Pool, tries uint) (listener, error) {
	if tries == 0 {
		tries = 1
	}
	var conn *pgx.Conn

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(tries),
		retry.Delay(f.reconnectDelay),
		retry.DelayType(retry.BackOffDelay),
	)
	err := r.Do(func() error {
		pc, err := pool.Acquire(ctx)
		if err != nil {
			return err
		}
		c := pc.Hijack()
		for channel := range f.channels {
			if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
				_ = c.Close(context.Background())
				f.logger.Warn("failed to listen", zap.String("chan", channel), zap.Error(err))
				return err
			}
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (f *PostgresFeed) listen(ctx context.Context, conn listener, done chan struct{}) {
	defer close(done)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err == nil {
			f.dispatch(n.Channel, n.Payload)
			continue
		}

		if ctx.Err() != nil {
			return
		}

		f.logger.Warn("notification stream lost, reconnecting", zap.Error(err))
		_ = conn.Close(context.Background())

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.reconnectDelay):
			}
			c, err := f.connect(ctx)
			if err == nil {
				conn = c
				break
			}
		}

		// За время разрыва события могли потеряться
		for _, table := range domain.AllTables {
			for _, ph := range f.handles(table) {
				ph.deliver(resyncEvent(table))
			}
		}
	}
}

func (f *PostgresFeed) dispatch(channel, payload string) {
	table, ok := f.channels[channel]
	if !ok {
		return
	}
	ev, err := DecodeEvent(table, []byte(payload))
	if err != nil {
		f.logger.Error("invalid change event", zap.String("chan", channel), zap.Error(err))
		return
	}
	for _, ph := range f.handles(table) {
		ph.deliver(ev)
	}
}

type pgHandle struct {
	feed  *PostgresFeed
	table domain.Table
	id    uint64
	fn    Handler

	mu     sync.Mutex
	closed bool
}

func (h *pgHandle) Table() domain.Table { return h.table }

// deliver держит mu на время колбэка: после Close событий больше нет.
func (h *pgHandle) deliver(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.fn(ev)
}

func (h *pgHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.feed.unsubscribe(h)
	return nil
}
