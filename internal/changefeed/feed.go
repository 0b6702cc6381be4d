// Package changefeed доставляет уведомления об изменениях строк в таблицах
// хранилища. Потребитель не различает виды событий: любое событие означает
// "данные устарели".
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xela07ax/hospital-console/internal/domain"
)

// Kind — вид изменения строки.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
	// KindResync генерируется самим драйвером после переподключения:
	// за время разрыва могли пропасть события.
	KindResync Kind = "RESYNC"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInsert, KindUpdate, KindDelete, KindResync:
		return true
	}
	return false
}

// Event — полезная нагрузка одного уведомления.
type Event struct {
	Table domain.Table `json:"table"`
	Kind  Kind         `json:"kind"`
	RowID string       `json:"row_id,omitempty"`
	At    time.Time    `json:"at"`
}

// Handler вызывается на каждое событие. Не должен блокироваться надолго.
type Handler func(Event)

// Handle — открытая подписка на одну таблицу. Close обязателен.
type Handle interface {
	Table() domain.Table
	Close() error
}

// Feed открывает подписки.
type Feed interface {
	Subscribe(ctx context.Context, table domain.Table, h Handler) (Handle, error)
}

// Publisher рассылает событие после успешной мутации.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

var ErrClosed = errors.New("changefeed: closed")

// DecodeEvent разбирает JSON из канала. Таблица канала приоритетнее поля payload.
func DecodeEvent(table domain.Table, payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("changefeed: decode event: %w", err)
	}
	if !ev.Kind.Valid() {
		return Event{}, fmt.Errorf("changefeed: unknown event kind %q", ev.Kind)
	}
	if table != "" {
		ev.Table = table
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return ev, nil
}

func encodeEvent(ev Event) ([]byte, error) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return json.Marshal(ev)
}

func resyncEvent(table domain.Table) Event {
	return Event{Table: table, Kind: KindResync, At: time.Now()}
}

// NopPublisher используется, когда события публикуют триггеры БД.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
