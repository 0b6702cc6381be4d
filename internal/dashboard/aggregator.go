package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xela07ax/hospital-console/internal/domain"
	"golang.org/x/sync/errgroup"
)

// StatsSource — чтения из хранилища, из которых складывается снапшот.
type StatsSource interface {
	CountPatients(ctx context.Context) (int64, error)
	CountAppointmentsOn(ctx context.Context, day time.Time) (int64, error)
	CountDoctors(ctx context.Context) (int64, error)
	PaidBillingSince(ctx context.Context, since time.Time) ([]decimal.Decimal, error)
}

// Computer строит снапшот целиком или возвращает ошибку.
type Computer interface {
	Compute(ctx context.Context) (domain.StatsSnapshot, error)
}

// Aggregator выполняет четыре независимых запроса параллельно.
// Любая ошибка отменяет остальные: частичный снапшот не возвращается никогда.
type Aggregator struct {
	src StatsSource
	loc *time.Location
	now func() time.Time
}

func NewAggregator(src StatsSource, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{src: src, loc: loc, now: time.Now}
}

func (a *Aggregator) Compute(ctx context.Context) (domain.StatsSnapshot, error) {
	// "Сегодня" и "начало месяца" читаются в момент вызова
	now := a.now().In(a.loc)
	monthStart := MonthStart(now)

	var (
		patients, appointments, doctors int64
		amounts                         []decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		patients, err = a.src.CountPatients(gctx)
		return wrap("patients", err)
	})
	g.Go(func() (err error) {
		appointments, err = a.src.CountAppointmentsOn(gctx, now)
		return wrap("appointments", err)
	})
	g.Go(func() (err error) {
		doctors, err = a.src.CountDoctors(gctx)
		return wrap("doctors", err)
	})
	g.Go(func() (err error) {
		amounts, err = a.src.PaidBillingSince(gctx, monthStart)
		return wrap("billing", err)
	})

	if err := g.Wait(); err != nil {
		return domain.StatsSnapshot{}, err
	}

	return domain.StatsSnapshot{
		PatientCount:          patients,
		AppointmentCountToday: appointments,
		DoctorCount:           doctors,
		MonthRevenue:          SumRevenue(amounts),
	}, nil
}

func wrap(table string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("query %s: %w", table, err)
}

// SumRevenue складывает суммы. Пустой список дает ноль.
func SumRevenue(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}

// MonthStart возвращает полночь первого числа месяца в часовом поясе t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
