package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const appointmentColumns = `id::text, ref_number, patient_id::text, doctor_id::text, department_id::text, date::text, time, status, notes, created_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	var status string
	err := row.Scan(&a.ID, &a.RefNumber, &a.PatientID, &a.DoctorID, &a.DepartmentID, &a.Date, &a.Time, &status, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	a.Status = domain.AppointmentStatus(status)
	return a, nil
}

func (r *Repo) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	if a.Status == "" {
		a.Status = domain.AppointmentScheduled
	}
	query := `
		INSERT INTO appointments (ref_number, patient_id, doctor_id, department_id, date, time, status, notes)
		VALUES ($1, $2::uuid, $3::uuid, $4::uuid, $5::text::date, $6, $7, $8)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query,
		a.RefNumber, a.PatientID, a.DoctorID, a.DepartmentID, a.Date, a.Time, string(a.Status), a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create appointment: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1::uuid`, id))
}

func (r *Repo) ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		args = append(args, f.Date)
		where = append(where, fmt.Sprintf("date = $%d::text::date", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list appointments: %w", mapErr(err))
	}
	defer rows.Close()

	var list []*domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *Repo) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	return expectOne(r.pool.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1::uuid`, id, string(status)))
}

func (r *Repo) DeleteAppointment(ctx context.Context, id string) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1::uuid`, id))
}
