package service

import (
	"context"
	"time"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

// signaler рассылает событие об изменении после успешной записи в БД.
type signaler struct {
	pub    changefeed.Publisher
	logger *zap.Logger
}

// signal вызывается только после коммита. Ошибка доставки не откатывает
// изменение: подписчики догонят состояние при следующем событии или RESYNC.
func (s signaler) signal(ctx context.Context, table domain.Table, kind changefeed.Kind, rowID string) {
	if s.pub == nil {
		return
	}
	ev := changefeed.Event{Table: table, Kind: kind, RowID: rowID, At: time.Now().UTC()}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.logger.Warn("change signal delivery failed",
			zap.String("table", string(table)),
			zap.String("kind", string(kind)),
			zap.String("row_id", rowID),
			zap.Error(err))
	}
}
