package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hospital-console/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAggregatorMonthRevenue(t *testing.T) {
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.bills = []fakeBill{
		{amount: decimal.NewFromInt(15000), status: domain.BillingPaid, createdAt: now.Add(-48 * time.Hour)},
		{amount: decimal.NewFromInt(8500), status: domain.BillingPaid, createdAt: now.Add(-time.Hour)},
		{amount: decimal.NewFromInt(25000), status: domain.BillingPending, createdAt: now.Add(-time.Hour)},
		// Прошлый месяц не учитывается
		{amount: decimal.NewFromInt(99000), status: domain.BillingPaid, createdAt: time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)},
	}

	agg := NewAggregator(store, time.UTC)
	agg.now = fixedClock(now)

	snap, err := agg.Compute(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.MonthRevenue.Equal(decimal.NewFromInt(23500)), snap.MonthRevenue.String())
}

func TestAggregatorCounts(t *testing.T) {
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.patients = 12
	store.doctors = 4
	store.appointments["2026-03-14"] = 3
	store.appointments["2026-03-13"] = 9

	agg := NewAggregator(store, time.UTC)
	agg.now = fixedClock(now)

	snap, err := agg.Compute(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 12, snap.PatientCount)
	assert.EqualValues(t, 4, snap.DoctorCount)
	assert.EqualValues(t, 3, snap.AppointmentCountToday)
}

func TestAggregatorTodayFollowsTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC 14-го это уже 15-е в Калькутте
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.appointments["2026-03-15"] = 2

	agg := NewAggregator(store, kolkata)
	agg.now = fixedClock(now)

	snap, err := agg.Compute(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.AppointmentCountToday)
}

func TestAggregatorEmptyTables(t *testing.T) {
	agg := NewAggregator(newFakeStore(), nil)

	snap, err := agg.Compute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.PatientCount)
	assert.Zero(t, snap.AppointmentCountToday)
	assert.Zero(t, snap.DoctorCount)
	assert.True(t, snap.MonthRevenue.IsZero())

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"patient_count":0,"appointment_count_today":0,"doctor_count":0,"month_revenue":"0"}`, string(raw))
}

func TestAggregatorAllOrNothing(t *testing.T) {
	for _, table := range []string{"patients", "appointments", "doctors", "billing"} {
		t.Run(table, func(t *testing.T) {
			store := newFakeStore()
			store.patients = 5
			store.setErr(table, errUnreachable)

			snap, err := NewAggregator(store, time.UTC).Compute(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, errUnreachable)
			assert.Contains(t, err.Error(), table)
			assert.True(t, snap.Equal(domain.StatsSnapshot{}), "частичный снапшот не возвращается")
		})
	}
}

func TestSumRevenue(t *testing.T) {
	assert.True(t, SumRevenue(nil).IsZero())
	sum := SumRevenue([]decimal.Decimal{decimal.RequireFromString("0.10"), decimal.RequireFromString("0.20")})
	assert.Equal(t, "0.3", sum.String())
}

func TestMonthStart(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	got := MonthStart(time.Date(2026, 3, 31, 23, 59, 59, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), got)
}
