package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const billColumns = `id::text, patient_id::text, services, amount::text, date::text, status, created_at`

func scanBill(row pgx.Row) (*domain.Bill, error) {
	b := &domain.Bill{}
	var amount, status string
	err := row.Scan(&b.ID, &b.PatientID, &b.Services, &amount, &b.Date, &status, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	b.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse amount %q: %w", amount, err)
	}
	b.Status = domain.BillingStatus(status)
	return b, nil
}

func (r *Repo) CreateBill(ctx context.Context, b *domain.Bill) error {
	if b.Status == "" {
		b.Status = domain.BillingPending
	}
	query := `
		INSERT INTO billing (patient_id, services, amount, date, status)
		VALUES ($1::uuid, $2, $3::text::numeric, $4::text::date, $5)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query,
		b.PatientID, b.Services, b.Amount.StringFixed(2), b.Date, string(b.Status),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create bill: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	return scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM billing WHERE id = $1::uuid`, id))
}

func (r *Repo) ListBills(ctx context.Context) ([]*domain.Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+` FROM billing ORDER BY created_at DESC`)
}

// ListBillsBetween — счета, созданные в полуинтервале [from, to). Для отчетов.
func (r *Repo) ListBillsBetween(ctx context.Context, from, to time.Time) ([]*domain.Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billColumns+` FROM billing WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`,
		from, to,
	)
}

func (r *Repo) queryBills(ctx context.Context, query string, args ...any) ([]*domain.Bill, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bills: %w", mapErr(err))
	}
	defer rows.Close()

	var list []*domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *Repo) UpdateBillStatus(ctx context.Context, id string, status domain.BillingStatus) error {
	return expectOne(r.pool.Exec(ctx, `UPDATE billing SET status = $2 WHERE id = $1::uuid`, id, string(status)))
}

func (r *Repo) DeleteBill(ctx context.Context, id string) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM billing WHERE id = $1::uuid`, id))
}
