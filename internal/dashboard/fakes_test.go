package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
)

type fakeBill struct {
	amount    decimal.Decimal
	status    domain.BillingStatus
	createdAt time.Time
}

// fakeStore — таблицы в памяти, запросы повторяют семантику SQL репозитория.
type fakeStore struct {
	mu           sync.Mutex
	patients     int64
	doctors      int64
	appointments map[string]int64 // дата -> число записей
	bills        []fakeBill
	err          error
	failOn       string
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: make(map[string]int64)}
}

func (f *fakeStore) fail(table string) error {
	if f.err != nil && (f.failOn == "" || f.failOn == table) {
		return f.err
	}
	return nil
}

func (f *fakeStore) CountPatients(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("patients"); err != nil {
		return 0, err
	}
	return f.patients, nil
}

func (f *fakeStore) CountAppointmentsOn(_ context.Context, day time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("appointments"); err != nil {
		return 0, err
	}
	return f.appointments[day.Format(time.DateOnly)], nil
}

func (f *fakeStore) CountDoctors(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("doctors"); err != nil {
		return 0, err
	}
	return f.doctors, nil
}

func (f *fakeStore) PaidBillingSince(_ context.Context, since time.Time) ([]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("billing"); err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, 0)
	for _, b := range f.bills {
		if b.status == domain.BillingPaid && !b.createdAt.Before(since) {
			out = append(out, b.amount)
		}
	}
	return out, nil
}

func (f *fakeStore) setErr(table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn, f.err = table, err
}

func (f *fakeStore) addPatient() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients++
}

var errUnreachable = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

type computeResult struct {
	snap domain.StatsSnapshot
	err  error
}

// gatedComputer блокирует каждый вызов Compute до явного release.
type gatedComputer struct {
	mu      sync.Mutex
	calls   []chan computeResult
	started chan int
}

func newGatedComputer() *gatedComputer {
	return &gatedComputer{started: make(chan int, 32)}
}

func (g *gatedComputer) Compute(ctx context.Context) (domain.StatsSnapshot, error) {
	ch := make(chan computeResult, 1)
	g.mu.Lock()
	g.calls = append(g.calls, ch)
	idx := len(g.calls) - 1
	g.mu.Unlock()

	g.started <- idx

	select {
	case r := <-ch:
		return r.snap, r.err
	case <-ctx.Done():
		return domain.StatsSnapshot{}, ctx.Err()
	}
}

func (g *gatedComputer) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *gatedComputer) release(idx int, r computeResult) {
	g.mu.Lock()
	ch := g.calls[idx]
	g.mu.Unlock()
	ch <- r
}

// failingFeed отказывает в подписке на перечисленные таблицы.
type failingFeed struct {
	inner  changefeed.Feed
	failOn map[domain.Table]bool
}

func (f *failingFeed) Subscribe(ctx context.Context, table domain.Table, h changefeed.Handler) (changefeed.Handle, error) {
	if f.failOn[table] {
		return nil, errors.New("subscription timed out")
	}
	return f.inner.Subscribe(ctx, table, h)
}

// recorder собирает колбэки Sync.
type recorder struct {
	mu     sync.Mutex
	states []State
	notes  []Notification
}

func (r *recorder) onChange(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) snapshot() ([]State, []Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...), append([]Notification(nil), r.notes...)
}

func (r *recorder) titles() []string {
	_, notes := r.snapshot()
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
