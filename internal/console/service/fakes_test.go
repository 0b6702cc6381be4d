package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/notify"
)

// memRepo — хранилище в памяти для сервисов. Ошибки повторяют mapErr репозитория.
type memRepo struct {
	mu           sync.Mutex
	seq          int
	patients     map[string]*domain.Patient
	doctors      map[string]*domain.Doctor
	departments  map[string]*domain.Department
	appointments map[string]*domain.Appointment
	bills        map[string]*domain.Bill
	inventory    map[string]*domain.InventoryItem
	contacts     []*domain.ContactMessage
	users        map[string]*domain.AdminUser

	refCollisions int // сколько раз CreateAppointment вернет ErrConflict
	failWith      error
}

func newMemRepo() *memRepo {
	return &memRepo{
		patients:     map[string]*domain.Patient{},
		doctors:      map[string]*domain.Doctor{},
		departments:  map[string]*domain.Department{},
		appointments: map[string]*domain.Appointment{},
		bills:        map[string]*domain.Bill{},
		inventory:    map[string]*domain.InventoryItem{},
		users:        map[string]*domain.AdminUser{},
	}
}

// newID выдает uuid-подобные id, чтобы проходить validate:"uuid".
func (m *memRepo) newID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
}

func (m *memRepo) CreatePatient(_ context.Context, p *domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, e := range m.patients {
		if strings.EqualFold(e.Email, p.Email) {
			return domain.ErrConflict
		}
	}
	p.ID, p.CreatedAt = m.newID(), time.Now()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *memRepo) GetPatient(_ context.Context, id string) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) GetPatientByEmail(_ context.Context, email string) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) ListPatients(context.Context) ([]*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) UpdatePatient(_ context.Context, p *domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *memRepo) DeletePatient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *memRepo) CreateDoctor(_ context.Context, d *domain.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.newID()
	if d.Status == "" {
		d.Status = domain.DoctorActive
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *memRepo) GetDoctor(_ context.Context, id string) (*domain.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) ListDoctors(_ context.Context, departmentID string) ([]*domain.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Doctor, 0)
	for _, d := range m.doctors {
		if departmentID == "" || (d.DepartmentID != nil && *d.DepartmentID == departmentID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateDoctor(_ context.Context, d *domain.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[d.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *memRepo) DeleteDoctor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *memRepo) CreateDepartment(_ context.Context, d *domain.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.newID()
	cp := *d
	m.departments[d.ID] = &cp
	return nil
}

func (m *memRepo) GetDepartment(_ context.Context, id string) (*domain.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.departments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) ListDepartments(context.Context) ([]*domain.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Department, 0, len(m.departments))
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *memRepo) CreateAppointment(_ context.Context, a *domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refCollisions > 0 {
		m.refCollisions--
		return fmt.Errorf("postgres: create appointment: %w", domain.ErrConflict)
	}
	a.ID, a.CreatedAt = m.newID(), time.Now()
	if a.Status == "" {
		a.Status = domain.AppointmentScheduled
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *memRepo) GetAppointment(_ context.Context, id string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) ListAppointments(_ context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	for _, a := range m.appointments {
		if (f.Date == "" || a.Date == f.Date) && (f.Status == "" || a.Status == f.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateAppointmentStatus(_ context.Context, id string, status domain.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *memRepo) DeleteAppointment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *memRepo) CreateBill(_ context.Context, b *domain.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID, b.CreatedAt = m.newID(), time.Now()
	if b.Status == "" {
		b.Status = domain.BillingPending
	}
	cp := *b
	m.bills[b.ID] = &cp
	return nil
}

func (m *memRepo) GetBill(_ context.Context, id string) (*domain.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) ListBills(context.Context) ([]*domain.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		out = append(out, b)
	}
	return out, nil
}

func (m *memRepo) UpdateBillStatus(_ context.Context, id string, status domain.BillingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *memRepo) DeleteBill(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.bills, id)
	return nil
}

func (m *memRepo) CreateInventoryItem(_ context.Context, it *domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it.ID = m.newID()
	it.Status = domain.StatusForQuantity(it.Quantity)
	cp := *it
	m.inventory[it.ID] = &cp
	return nil
}

func (m *memRepo) ListInventory(context.Context) ([]*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.InventoryItem, 0, len(m.inventory))
	for _, it := range m.inventory {
		out = append(out, it)
	}
	return out, nil
}

func (m *memRepo) SetInventoryQuantity(_ context.Context, id string, q int) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.inventory[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	it.Quantity, it.Status = q, domain.StatusForQuantity(q)
	cp := *it
	return &cp, nil
}

func (m *memRepo) DeleteInventoryItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.inventory, id)
	return nil
}

func (m *memRepo) CreateContactMessage(_ context.Context, msg *domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.newID()
	m.contacts = append(m.contacts, msg)
	return nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) UpsertUser(_ context.Context, u *domain.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = m.newID()
	}
	m.users[u.Email] = u
	return nil
}

// recordingPublisher запоминает события, может отказывать.
type recordingPublisher struct {
	mu     sync.Mutex
	events []changefeed.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev changefeed.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, string(ev.Table)+":"+string(ev.Kind))
	}
	return out
}

// queue — EmailQueue, который можно "переполнить".
type queue struct {
	mu     sync.Mutex
	emails []*notify.Email
	full   bool
}

func (q *queue) Enqueue(e *notify.Email) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.emails = append(q.emails, e)
	return true
}

var errBrokerDown = errors.New("redis: connection refused")
