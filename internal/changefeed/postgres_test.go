package changefeed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// fakeListener отдает уведомления из канала; закрытый канал означает обрыв.
type fakeListener struct {
	notes  chan *pgconn.Notification
	once   sync.Once
	closed chan struct{}
}

func newFakeListener() *fakeListener {
	return &fakeListener{notes: make(chan *pgconn.Notification, 8), closed: make(chan struct{})}
}

func (l *fakeListener) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case n, ok := <-l.notes:
		if !ok {
			return nil, errors.New("unexpected EOF")
		}
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeListener) Close(context.Context) error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *fakeListener) notify(table domain.Table, payload string) {
	l.notes <- &pgconn.Notification{Channel: infra.PostgresChangesChannel(string(table)), Payload: payload}
}

// sharedFeed выдает новый fakeListener на каждое подключение.
func sharedFeed(t *testing.T) (*PostgresFeed, *atomic.Int32, chan *fakeListener) {
	t.Helper()
	var connects atomic.Int32
	conns := make(chan *fakeListener, 4)

	f := newPostgresFeed(infra.ChangeFeedConfig{ReconnectDelay: time.Millisecond}, zap.NewNop())
	f.connect = func(context.Context) (listener, error) {
		connects.Add(1)
		l := newFakeListener()
		conns <- l
		return l, nil
	}
	return f, &connects, conns
}

type events struct {
	mu  sync.Mutex
	got []Event
}

func (e *events) handle(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
}

func (e *events) kinds() []Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Kind, 0, len(e.got))
	for _, ev := range e.got {
		out = append(out, ev.Kind)
	}
	return out
}

func TestPostgresFeedSharesOneConnection(t *testing.T) {
	defer goleak.VerifyNone(t)
	f, connects, conns := sharedFeed(t)
	ctx := context.Background()

	// Две "сессии" дашборда по четыре таблицы
	var a, b events
	var handles []Handle
	for _, rec := range []*events{&a, &b} {
		for _, table := range domain.DashboardTables {
			h, err := f.Subscribe(ctx, table, rec.handle)
			require.NoError(t, err)
			handles = append(handles, h)
		}
	}
	assert.EqualValues(t, 1, connects.Load())
	assert.Equal(t, 8, f.Subscriptions())

	conn := <-conns
	conn.notify(domain.TableBilling, `{"kind":"UPDATE","row_id":"b1"}`)
	conn.notify(domain.TableInventory, `{"kind":"INSERT"}`) // никто не подписан

	require.Eventually(t, func() bool { return len(a.kinds()) == 1 && len(b.kinds()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, domain.TableBilling, a.got[0].Table)
	assert.Equal(t, "b1", b.got[0].RowID)

	for _, h := range handles[:4] {
		require.NoError(t, h.Close())
	}
	select {
	case <-conn.closed:
		t.Fatal("connection closed while subscriptions are still open")
	default:
	}

	for _, h := range handles[4:] {
		require.NoError(t, h.Close())
	}
	<-conn.closed
	assert.Zero(t, f.Subscriptions())
	require.NoError(t, handles[0].Close(), "повторный Close: no-op")
}

func TestPostgresFeedNoEventsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	f, _, conns := sharedFeed(t)

	var a, b events
	ha, err := f.Subscribe(context.Background(), domain.TablePatients, a.handle)
	require.NoError(t, err)
	hb, err := f.Subscribe(context.Background(), domain.TablePatients, b.handle)
	require.NoError(t, err)
	conn := <-conns

	require.NoError(t, ha.Close())
	conn.notify(domain.TablePatients, `{"kind":"DELETE"}`)
	require.Eventually(t, func() bool { return len(b.kinds()) == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, a.kinds())

	require.NoError(t, hb.Close())
}

func TestPostgresFeedResyncAfterReconnect(t *testing.T) {
	defer goleak.VerifyNone(t)
	f, connects, conns := sharedFeed(t)

	var a events
	h, err := f.Subscribe(context.Background(), domain.TableDoctors, a.handle)
	require.NoError(t, err)

	first := <-conns
	close(first.notes)
	<-first.closed

	second := <-conns
	require.Eventually(t, func() bool { return len(a.kinds()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []Kind{KindResync}, a.kinds())
	assert.EqualValues(t, 2, connects.Load())

	second.notify(domain.TableDoctors, `{"kind":"INSERT"}`)
	require.Eventually(t, func() bool { return len(a.kinds()) == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.Close())
	<-second.closed
}

func TestPostgresFeedRejectsUnknownTable(t *testing.T) {
	f, connects, _ := sharedFeed(t)
	_, err := f.Subscribe(context.Background(), domain.Table("users"), func(Event) {})
	assert.Error(t, err)
	assert.Zero(t, connects.Load())
}

func TestPostgresFeedConnectFailure(t *testing.T) {
	f := newPostgresFeed(infra.ChangeFeedConfig{}, zap.NewNop())
	f.connect = func(context.Context) (listener, error) { return nil, errors.New("too many clients already") }

	_, err := f.Subscribe(context.Background(), domain.TablePatients, func(Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many clients")
	assert.Zero(t, f.Subscriptions())
}
