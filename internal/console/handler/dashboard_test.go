package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/dashboard"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// countingComputer возвращает число пациентов, равное номеру вызова.
type countingComputer struct{ calls atomic.Int64 }

func (c *countingComputer) Compute(context.Context) (domain.StatsSnapshot, error) {
	n := c.calls.Add(1)
	return domain.StatsSnapshot{PatientCount: n, MonthRevenue: decimal.Zero}, nil
}

type fakeDashboard struct {
	computer *countingComputer
	broker   *changefeed.MemoryBroker
	refresh  atomic.Int32
}

func (f *fakeDashboard) State() dashboard.State {
	return dashboard.State{Stats: domain.StatsSnapshot{PatientCount: 42, MonthRevenue: decimal.NewFromInt(23500)}}
}

func (f *fakeDashboard) Refresh() dashboard.State {
	f.refresh.Add(1)
	st := f.State()
	st.Loading = true
	return st
}

func (f *fakeDashboard) NewSession(opts ...dashboard.Option) *dashboard.Sync {
	return dashboard.New(f.computer, f.broker, opts...)
}

func TestDashboardStatsAndRefresh(t *testing.T) {
	svc := &fakeDashboard{}
	h := NewDashboardHandler(svc, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stats":{"patient_count":42,"appointment_count_today":0,"doctor_count":0,"month_revenue":"23500"},"loading":false,"updated_at":"0001-01-01T00:00:00Z"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loading":true`)
	assert.EqualValues(t, 1, svc.refresh.Load())
}

// readUntil читает сообщения, пока cond не вернет true.
func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, cond func(liveMessage) bool) liveMessage {
	t.Helper()
	for {
		var msg liveMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg))
		if cond(msg) {
			return msg
		}
	}
}

func loadedWith(n int64) func(liveMessage) bool {
	return func(m liveMessage) bool {
		return m.Type == msgState && m.State != nil && !m.State.Loading && m.State.Stats.PatientCount == n
	}
}

func TestDashboardLive(t *testing.T) {
	svc := &fakeDashboard{computer: &countingComputer{}, broker: changefeed.NewMemoryBroker()}
	h := NewDashboardHandler(svc, nil, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.Live))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer c.CloseNow()

	// Первичная загрузка
	readUntil(t, ctx, c, loadedWith(1))
	assert.Eventually(t, func() bool { return svc.broker.Open() == len(domain.DashboardTables) }, 2*time.Second, 5*time.Millisecond)

	// Событие из changefeed -> пересчет
	require.NoError(t, svc.broker.Publish(ctx, changefeed.Event{Table: domain.TableBilling, Kind: changefeed.KindUpdate}))
	readUntil(t, ctx, c, loadedWith(2))

	// Ручное обновление от клиента, плюс уведомление
	require.NoError(t, wsjson.Write(ctx, c, clientMessage{Type: msgRefresh}))
	// Порядок state и notification между собой не гарантирован
	var sawNote, sawState bool
	readUntil(t, ctx, c, func(m liveMessage) bool {
		if m.Type == msgNotification && m.Notification.Title == "Refreshing data" {
			assert.Equal(t, dashboard.LevelInfo, m.Notification.Level)
			sawNote = true
		}
		if loadedWith(3)(m) {
			sawState = true
		}
		return sawNote && sawState
	})

	// Закрытие соединения снимает подписки
	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return svc.broker.Open() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestLiveMessageShape(t *testing.T) {
	st := dashboard.State{Loading: true, Stats: domain.StatsSnapshot{MonthRevenue: decimal.Zero}}
	raw, err := json.Marshal(liveMessage{Type: msgState, State: &st})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"state"`)
	assert.NotContains(t, string(raw), "notification")
}
