// Package reports строит месячный отчет по счетам в формате xlsx и архивирует его.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Summary"
	SheetBilling = "Billing"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BillingSource — счета за полуинтервал [from, to).
type BillingSource interface {
	ListBillsBetween(ctx context.Context, from, to time.Time) ([]*domain.Bill, error)
}

type Builder struct {
	bills BillingSource
	loc   *time.Location
}

func NewBuilder(bills BillingSource, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{bills: bills, loc: loc}
}

// ParseMonth разбирает "YYYY-MM". Пустая строка означает текущий месяц.
func (b *Builder) ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		n := now.In(b.loc)
		return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, b.loc), nil
	}
	t, err := time.ParseInLocation("2006-01", s, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must be YYYY-MM", domain.ErrInvalidInput)
	}
	return t, nil
}

// Summarize считает итоги месяца. Отмененные счета в суммы не входят.
func Summarize(month time.Time, bills []*domain.Bill) domain.MonthlyBillingSummary {
	s := domain.MonthlyBillingSummary{Month: month, PaidTotal: decimal.Zero, PendingSum: decimal.Zero}
	for _, bill := range bills {
		s.InvoiceRows++
		switch bill.Status {
		case domain.BillingPaid:
			s.PaidTotal = s.PaidTotal.Add(bill.Amount)
		case domain.BillingPending:
			s.PendingSum = s.PendingSum.Add(bill.Amount)
		}
	}
	return s
}

// Build строит книгу за месяц. snap: текущий снапшот дашборда для листа Summary.
func (b *Builder) Build(ctx context.Context, month time.Time, snap domain.StatsSnapshot) (*bytes.Buffer, domain.MonthlyBillingSummary, error) {
	from := month
	to := month.AddDate(0, 1, 0)

	bills, err := b.bills.ListBillsBetween(ctx, from, to)
	if err != nil {
		return nil, domain.MonthlyBillingSummary{}, fmt.Errorf("load bills: %w", err)
	}
	summary := Summarize(month, bills)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, summary, err
	}
	if err := writeSummary(f, summary, snap); err != nil {
		return nil, summary, err
	}
	if _, err := f.NewSheet(SheetBilling); err != nil {
		return nil, summary, err
	}
	if err := writeBills(f, bills, b.loc); err != nil {
		return nil, summary, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, summary, fmt.Errorf("write workbook: %w", err)
	}
	return buf, summary, nil
}

func writeSummary(f *excelize.File, s domain.MonthlyBillingSummary, snap domain.StatsSnapshot) error {
	rows := [][]interface{}{
		{"Monthly report", s.Month.Format("January 2006")},
		{},
		{"Paid total", s.PaidTotal.InexactFloat64()},
		{"Pending total", s.PendingSum.InexactFloat64()},
		{"Invoices", s.InvoiceRows},
		{},
		{"Patients", snap.PatientCount},
		{"Doctors", snap.DoctorCount},
		{"Appointments today", snap.AppointmentCountToday},
		{"Revenue this month", snap.MonthRevenue.InexactFloat64()},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err == nil {
		_ = f.SetCellStyle(SheetSummary, "A1", "A1", bold)
	}
	return f.SetColWidth(SheetSummary, "A", "A", 24)
}

func writeBills(f *excelize.File, bills []*domain.Bill, loc *time.Location) error {
	header := []interface{}{"ID", "Patient ID", "Services", "Amount", "Date", "Status", "Created At"}
	if err := f.SetSheetRow(SheetBilling, "A1", &header); err != nil {
		return err
	}
	for i, bill := range bills {
		row := []interface{}{
			bill.ID,
			bill.PatientID,
			bill.Services,
			bill.Amount.InexactFloat64(),
			bill.Date,
			string(bill.Status),
			bill.CreatedAt.In(loc).Format(time.DateTime),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetBilling, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetBilling, "A", "G", 20)
}

// ArchiveKey строит ключ объекта в хранилище отчетов.
func ArchiveKey(month time.Time) string {
	return fmt.Sprintf("reports/monthly/%s.xlsx", month.Format("2006-01"))
}
