package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Сколько пересчетов и с каким исходом (trigger: mount, manual, event)
	Refreshes *prometheus.CounterVec

	// Latency полного пересчета
	RefreshDuration prometheus.Histogram

	// Завершения, отброшенные как устаревшие (пришел более новый результат)
	StaleDiscards prometheus.Counter

	// Открытые подписки по всем потребителям
	OpenSubscriptions prometheus.Gauge

	// Полученные события изменений
	ChangeEvents *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Refreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hms_dashboard_refresh_total",
			Help: "Total number of dashboard recomputes.",
		}, []string{"trigger", "result"}),

		RefreshDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "hms_dashboard_refresh_duration_seconds",
			Help:    "Histogram of dashboard recompute latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		StaleDiscards: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "hms_dashboard_stale_discards_total",
			Help: "Recompute results discarded because a newer one was already applied.",
		}),

		OpenSubscriptions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hms_dashboard_open_subscriptions",
			Help: "Current number of open change feed subscriptions.",
		}),

		ChangeEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hms_changefeed_events_total",
			Help: "Change events received by dashboard subscriptions.",
		}, []string{"table", "kind"}),
	}
}
