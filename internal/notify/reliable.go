package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ReliableMailer добавляет к Mailer лимит частоты, предохранитель и повторы.
type ReliableMailer struct {
	next    Mailer
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	tries   uint
	delay   time.Duration
}

func NewReliableMailer(next Mailer, perSecond float64) *ReliableMailer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "email-provider",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// Ошибки валидации письма не говорят о здоровье провайдера
			return err == nil || IsPermanent(err)
		},
	})

	if perSecond <= 0 {
		perSecond = 2 // лимит Resend на бесплатном тарифе
	}

	return &ReliableMailer{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		tries:   3,
		delay:   200 * time.Millisecond,
	}
}

func (m *ReliableMailer) Send(ctx context.Context, e *Email) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	res, err := m.cb.Execute(func() (interface{}, error) {
		var id string
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(m.tries),
			retry.Delay(m.delay),
			retry.DelayType(retry.BackOffDelay),
			retry.RetryIf(func(err error) bool { return !IsPermanent(err) }),
			retry.LastErrorOnly(true),
		)
		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			var sendErr error
			id, sendErr = m.next.Send(tCtx, e)
			return sendErr
		})
		return id, retryErr
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// State — состояние предохранителя, для логов и health.
func (m *ReliableMailer) State() string {
	return m.cb.State().String()
}
