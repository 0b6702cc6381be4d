package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatsSnapshot — агрегированный срез данных для дашборда.
// Создается целиком при каждом обновлении и никогда не изменяется частично.
type StatsSnapshot struct {
	PatientCount          int64           `json:"patient_count"`
	AppointmentCountToday int64           `json:"appointment_count_today"`
	DoctorCount           int64           `json:"doctor_count"`
	MonthRevenue          decimal.Decimal `json:"month_revenue"`
}

// Equal сравнивает снапшоты по значению (decimal нельзя сравнивать через ==).
func (s StatsSnapshot) Equal(o StatsSnapshot) bool {
	return s.PatientCount == o.PatientCount &&
		s.AppointmentCountToday == o.AppointmentCountToday &&
		s.DoctorCount == o.DoctorCount &&
		s.MonthRevenue.Equal(o.MonthRevenue)
}

// MonthlyBillingSummary используется в отчетах
type MonthlyBillingSummary struct {
	Month       time.Time       `json:"month"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	PendingSum  decimal.Decimal `json:"pending_total"`
	InvoiceRows int             `json:"invoice_rows"`
}
