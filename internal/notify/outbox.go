package notify

/*
Outbox — неблокирующая очередь исходящих писем.

- Enqueue никогда не ждет провайдера: письмо кладется в буферизированный канал,
  при переполнении сбрасывается с записью в лог (load shedding).
- Один воркер отправляет письма по очереди через Mailer.
- Stop закрывает вход и ждет, пока воркер отправит всё, что уже в очереди.
*/

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Outbox struct {
	ch     chan *Email
	mailer Mailer
	logger *zap.Logger
	wg     sync.WaitGroup

	// closeMu защищает ch от отправки после close
	closeMu sync.RWMutex
	closed  bool

	sendTimeout time.Duration
}

func NewOutbox(mailer Mailer, size int, logger *zap.Logger) *Outbox {
	if size <= 0 {
		size = 1000
	}
	return &Outbox{
		ch:          make(chan *Email, size),
		mailer:      mailer,
		logger:      logger.Named("outbox"),
		sendTimeout: 30 * time.Second,
	}
}

func (o *Outbox) Start() {
	o.wg.Add(1)
	go o.worker()
}

// Enqueue возвращает false, если письмо не принято (очередь полна или остановлена).
func (o *Outbox) Enqueue(e *Email) bool {
	o.closeMu.RLock()
	defer o.closeMu.RUnlock()

	if o.closed {
		o.logger.Warn("email dropped: outbox is stopping", zap.String("subject", e.Subject))
		return false
	}

	select {
	case o.ch <- e:
		return true
	default:
		o.logger.Error("outbox_buffer_overflow",
			zap.Strings("to", e.To),
			zap.String("subject", e.Subject))
		return false
	}
}

// Stop «запирает» вход и ждет, пока воркер отправит остаток очереди.
func (o *Outbox) Stop() {
	o.closeMu.Lock()
	if o.closed {
		o.closeMu.Unlock()
		return
	}
	o.closed = true
	close(o.ch)
	o.closeMu.Unlock()

	o.logger.Info("stopping outbox: draining queue...")
	o.wg.Wait()
	o.logger.Info("outbox stopped gracefully")
}

// Pending возвращает число писем в очереди.
func (o *Outbox) Pending() int {
	return len(o.ch)
}

func (o *Outbox) worker() {
	defer o.wg.Done()

	// Завершение только через закрытие канала: сначала вычитываем остаток
	for e := range o.ch {
		// Background: контекст запроса, поставившего письмо, давно завершен
		ctx, cancel := context.WithTimeout(context.Background(), o.sendTimeout)
		id, err := o.mailer.Send(ctx, e)
		cancel()

		if err != nil {
			o.logger.Error("email delivery failed",
				zap.Strings("to", e.To),
				zap.String("subject", e.Subject),
				zap.Error(err))
			continue
		}
		o.logger.Info("email sent", zap.String("id", id), zap.Strings("to", e.To))
	}
	o.logger.Info("outbox worker finished")
}
