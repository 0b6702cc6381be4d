package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const patientColumns = `id::text, first_name, last_name, email, phone, address, date_of_birth::text, created_at`

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	p := &domain.Patient{}
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address, &p.DateOfBirth, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *Repo) CreatePatient(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients (first_name, last_name, email, phone, address, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6::text::date)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Address, p.DateOfBirth,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create patient: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1::uuid`, id))
}

// GetPatientByEmail используется при публичной записи: пациент ищется по email.
func (r *Repo) GetPatientByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE lower(email) = lower($1)`, email))
}

func (r *Repo) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list patients: %w", err)
	}
	defer rows.Close()

	var list []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *Repo) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, date_of_birth = $7::text::date
		WHERE id = $1::uuid`

	return expectOne(r.pool.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Address, p.DateOfBirth,
	))
}

func (r *Repo) DeletePatient(ctx context.Context, id string) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1::uuid`, id))
}
