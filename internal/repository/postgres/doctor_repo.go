package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const doctorColumns = `id::text, name, email, phone, specialization, experience, department_id::text, status, created_at`

func scanDoctor(row pgx.Row) (*domain.Doctor, error) {
	d := &domain.Doctor{}
	var status string
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.Experience, &d.DepartmentID, &status, &d.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	d.Status = domain.DoctorStatus(status)
	return d, nil
}

func (r *Repo) CreateDoctor(ctx context.Context, d *domain.Doctor) error {
	if d.Status == "" {
		d.Status = domain.DoctorActive
	}
	query := `
		INSERT INTO doctors (name, email, phone, specialization, experience, department_id, status)
		VALUES ($1, $2, $3, $4, $5, $6::uuid, $7)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query,
		d.Name, d.Email, d.Phone, d.Specialization, d.Experience, d.DepartmentID, string(d.Status),
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create doctor: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1::uuid`, id))
}

// ListDoctors возвращает всех врачей или только врачей отделения.
func (r *Repo) ListDoctors(ctx context.Context, departmentID string) ([]*domain.Doctor, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if departmentID == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name`)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE department_id = $1::uuid ORDER BY name`, departmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: list doctors: %w", mapErr(err))
	}
	defer rows.Close()

	var list []*domain.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *Repo) UpdateDoctor(ctx context.Context, d *domain.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $2, email = $3, phone = $4, specialization = $5, experience = $6, department_id = $7::uuid, status = $8
		WHERE id = $1::uuid`

	return expectOne(r.pool.Exec(ctx, query,
		d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Experience, d.DepartmentID, string(d.Status),
	))
}

func (r *Repo) DeleteDoctor(ctx context.Context, id string) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1::uuid`, id))
}
