package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/reports"
	"go.uber.org/zap"
)

var ErrArchiveDisabled = errors.New("report archive is not configured")

// SnapshotSource — текущий снапшот дашборда для листа Summary.
type SnapshotSource interface {
	Snapshot() domain.StatsSnapshot
}

type ReportService struct {
	builder *reports.Builder
	stats   SnapshotSource
	store   reports.ObjectStore // nil: архив выключен
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportService(builder *reports.Builder, stats SnapshotSource, store reports.ObjectStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		builder: builder,
		stats:   stats,
		store:   store,
		logger:  logger.Named("report-service"),
		now:     time.Now,
	}
}

// Monthly строит отчет за месяц "YYYY-MM" (пусто: текущий).
func (s *ReportService) Monthly(ctx context.Context, month string) (*bytes.Buffer, time.Time, error) {
	m, err := s.builder.ParseMonth(month, s.now())
	if err != nil {
		return nil, time.Time{}, err
	}
	buf, summary, err := s.builder.Build(ctx, m, s.stats.Snapshot())
	if err != nil {
		s.logger.Error("failed to build monthly report", zap.String("month", m.Format("2006-01")), zap.Error(err))
		return nil, m, err
	}
	s.logger.Info("monthly report built",
		zap.String("month", m.Format("2006-01")),
		zap.Int("invoices", summary.InvoiceRows),
		zap.String("paid_total", summary.PaidTotal.StringFixed(2)))
	return buf, m, nil
}

// Archive строит отчет и кладет его в хранилище, возвращает ключ объекта.
func (s *ReportService) Archive(ctx context.Context, month string) (string, error) {
	if s.store == nil {
		return "", ErrArchiveDisabled
	}
	buf, m, err := s.Monthly(ctx, month)
	if err != nil {
		return "", err
	}
	key := reports.ArchiveKey(m)
	if err := s.store.Put(ctx, key, buf.Bytes(), reports.ContentTypeXLSX); err != nil {
		s.logger.Error("failed to archive report", zap.String("key", key), zap.Error(err))
		return "", err
	}
	s.logger.Info("monthly report archived", zap.String("key", key))
	return key, nil
}
