package service

import (
	"context"
	"time"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/dashboard"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

// DashboardService держит общий для сервера Sync (REST, отчеты) и
// создает отдельный Sync на каждого live-потребителя.
type DashboardService struct {
	computer dashboard.Computer
	feed     changefeed.Feed
	metrics  *dashboard.Metrics
	timeout  time.Duration
	base     *zap.Logger
	logger   *zap.Logger

	shared *dashboard.Sync
}

func NewDashboardService(computer dashboard.Computer, feed changefeed.Feed, metrics *dashboard.Metrics, timeout time.Duration, logger *zap.Logger) *DashboardService {
	s := &DashboardService{
		computer: computer,
		feed:     feed,
		metrics:  metrics,
		timeout:  timeout,
		base:     logger,
		logger:   logger.Named("dashboard-service"),
	}
	s.shared = s.NewSession(dashboard.WithNotifier(dashboard.NewLogNotifier(logger)))
	return s
}

// Start монтирует общий Sync.
func (s *DashboardService) Start(ctx context.Context) error {
	return s.shared.Mount(ctx)
}

// Stop размонтирует общий Sync и ждет пересчеты в полете.
func (s *DashboardService) Stop(ctx context.Context) error {
	return s.shared.Unmount(ctx)
}

func (s *DashboardService) State() dashboard.State {
	return s.shared.State()
}

// Refresh запускает пересчет и сразу возвращает состояние (loading = true).
func (s *DashboardService) Refresh() dashboard.State {
	s.shared.RefreshData()
	return s.shared.State()
}

func (s *DashboardService) Snapshot() domain.StatsSnapshot {
	return s.shared.State().Stats
}

// NewSession собирает несмонтированный Sync с общими зависимостями.
func (s *DashboardService) NewSession(opts ...dashboard.Option) *dashboard.Sync {
	base := []dashboard.Option{
		dashboard.WithLogger(s.base),
		dashboard.WithMetrics(s.metrics),
		dashboard.WithRefreshTimeout(s.timeout),
	}
	return dashboard.New(s.computer, s.feed, append(base, opts...)...)
}
