package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const departmentColumns = `id::text, name, head, doctors, patients, staff, created_at`

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	d := &domain.Department{}
	if err := row.Scan(&d.ID, &d.Name, &d.Head, &d.Doctors, &d.Patients, &d.Staff, &d.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

func (r *Repo) CreateDepartment(ctx context.Context, d *domain.Department) error {
	query := `
		INSERT INTO departments (name, head, doctors, patients, staff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query, d.Name, d.Head, d.Doctors, d.Patients, d.Staff).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create department: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1::uuid`, id))
}

func (r *Repo) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list departments: %w", err)
	}
	defer rows.Close()

	var list []*domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
