package service

import (
	"context"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

type PatientStore interface {
	CreatePatient(ctx context.Context, p *domain.Patient) error
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*domain.Patient, error)
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	DeletePatient(ctx context.Context, id string) error
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *domain.Doctor) error
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	ListDoctors(ctx context.Context, departmentID string) ([]*domain.Doctor, error)
	UpdateDoctor(ctx context.Context, d *domain.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error
}

type DepartmentStore interface {
	CreateDepartment(ctx context.Context, d *domain.Department) error
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
}

type AppointmentStore interface {
	AppointmentCreator
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	DeleteAppointment(ctx context.Context, id string) error
}

type BillingStore interface {
	CreateBill(ctx context.Context, b *domain.Bill) error
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	ListBills(ctx context.Context) ([]*domain.Bill, error)
	UpdateBillStatus(ctx context.Context, id string, status domain.BillingStatus) error
	DeleteBill(ctx context.Context, id string) error
}

type InventoryStore interface {
	CreateInventoryItem(ctx context.Context, it *domain.InventoryItem) error
	ListInventory(ctx context.Context) ([]*domain.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

// RecordStore — все таблицы, которыми управляет админка.
type RecordStore interface {
	PatientStore
	DoctorStore
	DepartmentStore
	AppointmentStore
	BillingStore
	InventoryStore
}

// RecordService — CRUD админки. Каждая успешная мутация публикует событие
// в changefeed, на него подписаны дашборды.
type RecordService struct {
	repo     RecordStore
	validate *validation.Validator
	signaler
	logger *zap.Logger
}

func NewRecordService(repo RecordStore, v *validation.Validator, pub changefeed.Publisher, logger *zap.Logger) *RecordService {
	logger = logger.Named("record-service")
	return &RecordService{
		repo:     repo,
		validate: v,
		signaler: signaler{pub: pub, logger: logger},
		logger:   logger,
	}
}
