package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/zap"
)

func TestDecodeEvent(t *testing.T) {
	t.Run("trigger payload", func(t *testing.T) {
		payload := `{"table":"patients","kind":"INSERT","row_id":"7c1d","at":"2026-03-01T10:00:00.123456+00:00"}`
		ev, err := DecodeEvent(domain.TablePatients, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, domain.TablePatients, ev.Table)
		assert.Equal(t, KindInsert, ev.Kind)
		assert.Equal(t, "7c1d", ev.RowID)
		assert.Equal(t, 2026, ev.At.Year())
	})

	t.Run("channel table wins", func(t *testing.T) {
		ev, err := DecodeEvent(domain.TableBilling, []byte(`{"table":"doctors","kind":"DELETE"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.TableBilling, ev.Table)
		assert.False(t, ev.At.IsZero())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := DecodeEvent(domain.TablePatients, []byte(`{"kind":"TRUNCATE"}`))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := DecodeEvent(domain.TablePatients, []byte(`agent:true`))
		assert.Error(t, err)
	})
}

func TestMemoryBrokerDelivery(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	var got []Event
	h, err := b.Subscribe(ctx, domain.TablePatients, func(ev Event) { got = append(got, ev) })
	require.NoError(t, err)
	assert.Equal(t, domain.TablePatients, h.Table())
	assert.Equal(t, 1, b.Open())

	require.NoError(t, b.Publish(ctx, Event{Table: domain.TablePatients, Kind: KindInsert, RowID: "1"}))
	require.NoError(t, b.Publish(ctx, Event{Table: domain.TableDoctors, Kind: KindInsert, RowID: "2"}))

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].RowID)
	assert.False(t, got[0].At.IsZero())

	require.NoError(t, h.Close())
	require.NoError(t, h.Close(), "повторный Close: no-op")
	assert.Equal(t, 0, b.Open())

	require.NoError(t, b.Publish(ctx, Event{Table: domain.TablePatients, Kind: KindUpdate}))
	assert.Len(t, got, 1, "после Close события не приходят")
}

func TestMemoryBrokerCancelledContext(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Subscribe(ctx, domain.TablePatients, func(Event) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.Open())
}

func TestNewDriverSelection(t *testing.T) {
	logger := zap.NewNop()

	feed, pub, err := New(infra.ChangeFeedConfig{Driver: DriverMemory}, nil, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBroker{}, feed)
	assert.Same(t, feed, pub)

	_, _, err = New(infra.ChangeFeedConfig{Driver: DriverRedis}, nil, nil, logger)
	assert.Error(t, err)

	_, _, err = New(infra.ChangeFeedConfig{Driver: DriverPostgres}, nil, nil, logger)
	assert.Error(t, err)

	_, _, err = New(infra.ChangeFeedConfig{Driver: "kafka"}, nil, nil, logger)
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{Table: domain.TableBilling, Kind: KindInsert, At: time.Now()}))
}
