package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CountPatients считает всех пациентов.
func (r *Repo) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count patients: %w", err)
	}
	return n, nil
}

// CountAppointmentsOn — записи на календарную дату day (берется только дата).
func (r *Repo) CountAppointmentsOn(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE date = $1::text::date`,
		day.Format(time.DateOnly),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count appointments: %w", err)
	}
	return n, nil
}

func (r *Repo) CountDoctors(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count doctors: %w", err)
	}
	return n, nil
}

// PaidBillingSince возвращает суммы оплаченных счетов, созданных не раньше since.
// Суммирование делает вызывающий: это выборка строк, а не агрегат.
func (r *Repo) PaidBillingSince(ctx context.Context, since time.Time) ([]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT amount::text FROM billing WHERE status = 'Paid' AND created_at >= $1`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: paid billing: %w", err)
	}
	defer rows.Close()

	amounts := make([]decimal.Decimal, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan amount: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse amount %q: %w", raw, err)
		}
		amounts = append(amounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: paid billing rows: %w", err)
	}
	return amounts, nil
}
