package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingStatus string

const (
	BillingPaid      BillingStatus = "Paid"
	BillingPending   BillingStatus = "Pending"
	BillingCancelled BillingStatus = "Cancelled"
)

type Bill struct {
	ID        string          `json:"id"`
	PatientID string          `json:"patient_id" validate:"required,uuid"`
	Services  string          `json:"services" validate:"required,max=1000"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Status    BillingStatus   `json:"status" validate:"omitempty,oneof=Paid Pending Cancelled"`
	CreatedAt time.Time       `json:"created_at"`
}
