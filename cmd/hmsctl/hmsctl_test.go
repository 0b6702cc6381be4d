package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/hospital-console/internal/dashboard"
	"github.com/xela07ax/hospital-console/internal/domain"
)

func TestFormatState(t *testing.T) {
	st := dashboard.State{Stats: domain.StatsSnapshot{
		PatientCount: 120, AppointmentCountToday: 9, DoctorCount: 14, MonthRevenue: decimal.NewFromInt(23500),
	}}
	assert.Equal(t, "patients=120 appointments_today=9 doctors=14 month_revenue=23500.00 [ok]", formatState(st))

	st.Loading = true
	assert.Contains(t, formatState(st), "[loading]")

	st.Loading, st.Err = false, dashboard.ErrLoadFailed
	assert.Contains(t, formatState(st), "[error: Failed to load dashboard data]")
}

func TestStateWriterNote(t *testing.T) {
	var buf bytes.Buffer
	w := &stateWriter{w: &buf}
	w.note(dashboard.Notification{Level: dashboard.LevelError, Title: "Error", Description: "Failed to fetch dashboard data"})
	assert.Equal(t, "[error] Error: Failed to fetch dashboard data\n", buf.String())
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"migrate", "up"}, {"migrate", "down"}, {"create-admin"}, {"watch"}} {
		cmd, _, err := root.Find(path)
		assert.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
