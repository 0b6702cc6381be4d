package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/notify"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

// BookingStore — то, что нужно публичной записи на прием.
type BookingStore interface {
	GetPatientByEmail(ctx context.Context, email string) (*domain.Patient, error)
	CreatePatient(ctx context.Context, p *domain.Patient) error
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	AppointmentCreator
}

// EmailQueue — неблокирующая постановка письма в очередь (notify.Outbox).
type EmailQueue interface {
	Enqueue(e *notify.Email) bool
}

type BookingConfig struct {
	Clinic       string
	AdminAddress string
	Location     *time.Location // Граница "сегодня" для проверки даты
}

type BookingService struct {
	repo     BookingStore
	validate *validation.Validator
	emails   EmailQueue
	cfg      BookingConfig
	signaler
	logger *zap.Logger
	now    func() time.Time
}

func NewBookingService(repo BookingStore, v *validation.Validator, emails EmailQueue, pub changefeed.Publisher, cfg BookingConfig, logger *zap.Logger) *BookingService {
	logger = logger.Named("booking-service")
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		repo:     repo,
		validate: v,
		emails:   emails,
		cfg:      cfg,
		signaler: signaler{pub: pub, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Book записывает пациента на прием. Письма уходят через очередь;
// ошибка отправки никогда не отменяет запись.
func (s *BookingService) Book(ctx context.Context, req *domain.BookingRequest) (*domain.BookingConfirmation, error) {
	req.FullName = s.validate.Sanitize(req.FullName)
	req.Message = s.validate.Sanitize(req.Message)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(time.DateOnly, req.Date, s.cfg.Location)
	if err != nil {
		return nil, validation.Fields("date", "must be a date in YYYY-MM-DD format")
	}
	n := s.now().In(s.cfg.Location)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.cfg.Location)
	if day.Before(today) {
		return nil, validation.Fields("date", "must not be in the past")
	}

	doctor, err := s.repo.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, s.lookupErr("doctor_id", err)
	}
	dept, err := s.repo.GetDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, s.lookupErr("department_id", err)
	}
	if doctor.DepartmentID != nil && *doctor.DepartmentID != dept.ID {
		return nil, validation.Fields("doctor_id", "does not work in the selected department")
	}

	patient, err := s.findOrCreatePatient(ctx, req)
	if err != nil {
		return nil, err
	}

	a := &domain.Appointment{
		PatientID:    patient.ID,
		DoctorID:     doctor.ID,
		DepartmentID: dept.ID,
		Date:         req.Date,
		Time:         req.Time,
		Status:       domain.AppointmentScheduled,
	}
	if req.Message != "" {
		a.Notes = &req.Message
	}
	if err := insertAppointment(ctx, s.repo, a); err != nil {
		s.logger.Error("failed to book appointment", zap.String("patient_id", patient.ID), zap.Error(err))
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	s.signal(ctx, domain.TableAppointments, changefeed.KindInsert, a.ID)

	conf := &domain.BookingConfirmation{
		AppointmentID:  a.ID,
		RefNumber:      a.RefNumber,
		PatientName:    patient.FullName(),
		Date:           a.Date,
		Time:           a.Time,
		DoctorName:     doctor.Name,
		DepartmentName: dept.Name,
	}

	s.logger.Info("appointment booked",
		zap.String("ref_number", conf.RefNumber),
		zap.String("doctor_id", doctor.ID),
		zap.String("date", conf.Date))

	s.sendConfirmation(conf, day, req)
	return conf, nil
}

func (s *BookingService) findOrCreatePatient(ctx context.Context, req *domain.BookingRequest) (*domain.Patient, error) {
	p, err := s.repo.GetPatientByEmail(ctx, req.Email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	first, last := splitName(req.FullName)
	phone := req.Phone
	p = &domain.Patient{FirstName: first, LastName: last, Email: req.Email, Phone: &phone}
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("create patient: %w", err)
		}
		// Параллельная запись с тем же email успела создать пациента
		return s.repo.GetPatientByEmail(ctx, req.Email)
	}
	s.signal(ctx, domain.TablePatients, changefeed.KindInsert, p.ID)
	return p, nil
}

func (s *BookingService) sendConfirmation(conf *domain.BookingConfirmation, day time.Time, req *domain.BookingRequest) {
	data := notify.AppointmentEmailData{
		BookingConfirmation: *conf,
		Clinic:              s.cfg.Clinic,
		PatientEmail:        req.Email,
		PatientPhone:        req.Phone,
	}
	data.Date = day.Format("Monday, January 2, 2006")

	emails, err := notify.BuildBookingEmails(data, s.cfg.AdminAddress)
	if err != nil {
		s.logger.Error("failed to render booking emails", zap.String("ref_number", conf.RefNumber), zap.Error(err))
		return
	}
	for _, e := range emails {
		if !s.emails.Enqueue(e) {
			s.logger.Warn("booking email not queued",
				zap.String("ref_number", conf.RefNumber),
				zap.String("subject", e.Subject))
		}
	}
}

func (s *BookingService) lookupErr(field string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return validation.Fields(field, "does not exist")
	}
	return err
}

// splitName: "Asha Devi Rao" -> "Asha", "Devi Rao". Фамилия обязательна в схеме,
// поэтому для одного слова дублируем его.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
