// Package dashboard держит снапшот статистики консоли в актуальном состоянии:
// первичная загрузка, подписки на изменения таблиц и ручное обновление.
//
// Один Sync соответствует одному потребителю (сессия WebSocket, CLI watch,
// общий снапшот сервера). Жизненный цикл: New -> Mount -> ... -> Unmount.
// Повторно смонтировать размонтированный Sync нельзя.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

// ErrLoadFailed — единственная ошибка, которую видит потребитель. Детали только в логе.
const ErrLoadFailed = "Failed to load dashboard data"

const (
	triggerMount  = "mount"
	triggerManual = "manual"
	triggerEvent  = "event"

	defaultRefreshTimeout = 10 * time.Second
)

var ErrUnmounted = errors.New("dashboard: sync is unmounted")

// State — то, что видит потребитель.
type State struct {
	Stats     domain.StatsSnapshot `json:"stats"`
	Loading   bool                 `json:"loading"`
	Err       string               `json:"error,omitempty"`
	UpdatedAt time.Time            `json:"updated_at,omitempty"`
}

type Option func(*Sync)

// WithTables задает список отслеживаемых таблиц (по умолчанию domain.DashboardTables).
func WithTables(tables ...domain.Table) Option {
	return func(s *Sync) { s.tables = tables }
}

func WithNotifier(n Notifier) Option {
	return func(s *Sync) { s.notifier = n }
}

// WithOnChange регистрирует колбэк на каждое изменение State.
// Вызовы сериализованы. Колбэк не должен синхронно вызывать методы Sync.
func WithOnChange(fn func(State)) Option {
	return func(s *Sync) { s.onChange = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Sync) { s.logger = l.Named("dashboard-sync") }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Sync) { s.metrics = m }
}

// WithRefreshTimeout ограничивает один пересчет. Unmount пересчеты не отменяет.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Sync) {
		if d > 0 {
			s.timeout = d
		}
	}
}

type Sync struct {
	computer Computer
	feed     changefeed.Feed
	tables   []domain.Table
	notifier Notifier
	onChange func(State)
	logger   *zap.Logger
	metrics  *Metrics
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	inFlight int
	idle     chan struct{} // закрыт, когда inFlight == 0
	issued   uint64        // последнее выданное поколение
	applied  uint64        // самое новое примененное поколение
	handles  []changefeed.Handle
	mounted  bool
	closed   bool

	// emitMu сериализует onChange и Notifier и служит барьером в Unmount
	emitMu sync.Mutex
}

func New(computer Computer, feed changefeed.Feed, opts ...Option) *Sync {
	idle := make(chan struct{})
	close(idle)

	s := &Sync{
		computer: computer,
		feed:     feed,
		tables:   domain.DashboardTables,
		logger:   zap.NewNop(),
		timeout:  defaultRefreshTimeout,
		idle:     idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Mount запускает первичную загрузку и открывает по подписке на таблицу.
// Ошибка открытия подписки логируется и показывается уведомлением,
// но не мешает загрузке: данные можно обновлять вручную.
func (s *Sync) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrUnmounted
	}
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()

	s.refresh(triggerMount)

	if s.feed == nil {
		return nil
	}

	failed := 0
	for _, table := range s.tables {
		h, err := s.feed.Subscribe(ctx, table, s.onEvent)
		if err != nil {
			failed++
			s.logger.Error("failed to open subscription", zap.String("table", string(table)), zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.closed {
			// Unmount успел пройти, пока открывали подписку
			s.mu.Unlock()
			_ = h.Close()
			return ErrUnmounted
		}
		s.handles = append(s.handles, h)
		s.mu.Unlock()
		s.metrics.OpenSubscriptions.Inc()
	}

	switch {
	case failed > 0:
		s.notify(noteSubscribeFailed)
	case len(s.tables) > 0:
		s.notify(noteSubscribed)
	}
	return nil
}

// Unmount закрывает все подписки. Пересчеты в полете не отменяются: они
// завершаются в пределах refresh_timeout, а их результат отбрасывается.
// После возврата колбэки onChange и Notifier больше не вызываются.
func (s *Sync) Unmount(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			s.logger.Warn("failed to close subscription", zap.String("table", string(h.Table())), zap.Error(err))
			errs = append(errs, err)
		}
		s.metrics.OpenSubscriptions.Dec()
	}

	// Барьер: дожидаемся колбэка, который мог начаться до closed = true
	s.emitMu.Lock()
	s.emitMu.Unlock()

	if err := s.Wait(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RefreshData запускает полный пересчет. Безопасно вызывать параллельно
// с другими пересчетами.
func (s *Sync) RefreshData() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.refresh(triggerManual)
	s.notify(noteRefreshing)
}

// State возвращает копию текущего состояния.
func (s *Sync) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscriptions возвращает число открытых подписок.
func (s *Sync) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Wait блокируется, пока не завершатся все пересчеты в полете.
func (s *Sync) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sync) onEvent(ev changefeed.Event) {
	s.metrics.ChangeEvents.WithLabelValues(string(ev.Table), string(ev.Kind)).Inc()
	s.logger.Debug("change event received",
		zap.String("table", string(ev.Table)),
		zap.String("kind", string(ev.Kind)),
		zap.String("row_id", ev.RowID))

	// Любое событие означает полный пересчет, без слияния и debounce
	s.refresh(triggerEvent)
}

func (s *Sync) refresh(trigger string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.issued++
	gen := s.issued
	s.inFlight++
	if s.inFlight == 1 {
		s.idle = make(chan struct{})
	}
	s.state.Loading = true
	s.mu.Unlock()

	s.emit()
	go s.run(gen, trigger)
}

func (s *Sync) run(gen uint64, trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	start := time.Now()
	snap, err := s.computer.Compute(ctx)
	cancel()
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.inFlight--
	closed := s.closed
	stale := gen < s.applied
	if !closed && !stale {
		s.applied = gen
		if err != nil {
			s.state.Err = ErrLoadFailed
		} else {
			s.state.Stats = snap
			s.state.Err = ""
			s.state.UpdatedAt = time.Now()
		}
	}
	s.state.Loading = s.inFlight > 0
	// idle закрывается после последнего колбэка, чтобы Wait видел итоговое состояние
	var idle chan struct{}
	if s.inFlight == 0 {
		idle = s.idle
	}
	s.mu.Unlock()
	if idle != nil {
		defer close(idle)
	}

	result := "ok"
	if err != nil {
		result = "error"
		s.logger.Error("error fetching dashboard data", zap.String("trigger", trigger), zap.Error(err))
	}
	s.metrics.Refreshes.WithLabelValues(trigger, result).Inc()

	switch {
	case closed:
		return
	case stale:
		s.metrics.StaleDiscards.Inc()
		s.logger.Debug("stale refresh discarded", zap.Uint64("generation", gen))
	case err != nil:
		s.notify(noteFetchFailed)
	}
	s.emit()
}

func (s *Sync) emit() {
	if s.onChange == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	st := s.state
	s.mu.Unlock()
	if closed {
		return
	}
	s.onChange(st)
}

func (s *Sync) notify(n Notification) {
	if s.notifier == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.notifier.Notify(n)
}
