package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

// NewRefNumber генерирует номер записи вида SS-NNNNNN.
func NewRefNumber() string {
	return fmt.Sprintf("SS-%06d", 100000+rand.IntN(900000))
}

// AppointmentCreator — вставка записи, общая для админки и публичной формы.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
}

// insertAppointment выдает номер и вставляет запись. При коллизии номера
// (уникальный индекс ref_number) пробуем еще раз с новым.
func insertAppointment(ctx context.Context, repo AppointmentCreator, a *domain.Appointment) error {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(0),
		retry.RetryIf(func(err error) bool { return errors.Is(err, domain.ErrConflict) }),
		retry.LastErrorOnly(true),
	)
	return r.Do(func() error {
		a.RefNumber = NewRefNumber()
		return repo.CreateAppointment(ctx, a)
	})
}

func (s *RecordService) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	if err := s.validate.Struct(a); err != nil {
		return err
	}
	if err := insertAppointment(ctx, s.repo, a); err != nil {
		s.logger.Error("failed to create appointment", zap.Error(err))
		return err
	}
	s.signal(ctx, domain.TableAppointments, changefeed.KindInsert, a.ID)
	return nil
}

func (s *RecordService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *RecordService) ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	if f.Date != "" {
		if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
			return nil, validation.Fields("date", "must be a date in YYYY-MM-DD format")
		}
	}
	return s.repo.ListAppointments(ctx, f)
}

func (s *RecordService) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	switch status {
	case domain.AppointmentScheduled, domain.AppointmentCompleted, domain.AppointmentCancelled:
	default:
		return fmt.Errorf("%w: unknown appointment status %q", domain.ErrInvalidInput, status)
	}
	if err := s.repo.UpdateAppointmentStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update appointment %s: %w", id, err)
	}
	s.signal(ctx, domain.TableAppointments, changefeed.KindUpdate, id)
	s.logger.Info("appointment status changed", zap.String("appointment_id", id), zap.String("status", string(status)))
	return nil
}

func (s *RecordService) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment %s: %w", id, err)
	}
	s.signal(ctx, domain.TableAppointments, changefeed.KindDelete, id)
	return nil
}
