package changefeed

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/hospital-console/internal/domain"
)

// MemoryBroker — брокер внутри процесса. Реализует и Feed, и Publisher.
// Доставка синхронная, в порядке публикации.
type MemoryBroker struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[domain.Table]map[uint64]Handler
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[domain.Table]map[uint64]Handler)}
}

func (b *MemoryBroker) Subscribe(ctx context.Context, table domain.Table, h Handler) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[table] == nil {
		b.subs[table] = make(map[uint64]Handler)
	}
	b.subs[table][id] = h
	return &memoryHandle{broker: b, table: table, id: id}, nil
}

func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[ev.Table]))
	for _, h := range b.subs[ev.Table] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

// Open возвращает число открытых подписок по всем таблицам.
func (b *MemoryBroker) Open() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.subs {
		n += len(m)
	}
	return n
}

func (b *MemoryBroker) remove(table domain.Table, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[table], id)
	if len(b.subs[table]) == 0 {
		delete(b.subs, table)
	}
}

type memoryHandle struct {
	broker *MemoryBroker
	table  domain.Table
	id     uint64
	once   sync.Once
}

func (h *memoryHandle) Table() domain.Table { return h.table }

func (h *memoryHandle) Close() error {
	h.once.Do(func() { h.broker.remove(h.table, h.id) })
	return nil
}
