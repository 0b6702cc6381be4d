// Package notify отправляет письма пациентам и администратору.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email — одно исходящее письмо.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

func (e *Email) validate() error {
	if len(e.To) == 0 {
		return errors.New("email has no recipients")
	}
	if e.HTML == "" && e.Text == "" {
		return errors.New("email must have either HTML or Text body")
	}
	return nil
}

// Mailer отправляет письмо и возвращает id сообщения у провайдера.
type Mailer interface {
	Send(ctx context.Context, e *Email) (string, error)
}

// ResendMailer — отправка через Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, fromName, fromAddr string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is not configured")
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   FormatFrom(fromName, fromAddr),
	}, nil
}

func (m *ResendMailer) Send(ctx context.Context, e *Email) (string, error) {
	if err := e.validate(); err != nil {
		return "", Permanent(err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      e.To,
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
	}
	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("failed to send email via resend: %w", err)
	}
	return sent.Id, nil
}

// LogMailer пишет письма в лог вместо отправки (email.test_mode).
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer-test-mode")}
}

func (m *LogMailer) Send(_ context.Context, e *Email) (string, error) {
	if err := e.validate(); err != nil {
		return "", Permanent(err)
	}
	m.logger.Info("email logged, not sent",
		zap.Strings("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("text", truncate(e.Text, 500)))
	return "logged", nil
}

func FormatFrom(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}

// permanentError — ошибка, повтор которой бессмысленен.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

func Permanent(err error) error { return &permanentError{err: err} }

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
