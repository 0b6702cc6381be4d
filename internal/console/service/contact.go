package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

type ContactStore interface {
	CreateContactMessage(ctx context.Context, m *domain.ContactMessage) error
}

type ContactService struct {
	repo     ContactStore
	validate *validation.Validator
	logger   *zap.Logger
}

func NewContactService(repo ContactStore, v *validation.Validator, logger *zap.Logger) *ContactService {
	return &ContactService{repo: repo, validate: v, logger: logger.Named("contact-service")}
}

// Submit вырезает разметку до проверки длины полей.
func (s *ContactService) Submit(ctx context.Context, m *domain.ContactMessage) error {
	m.Name = s.validate.Sanitize(m.Name)
	m.Subject = s.validate.Sanitize(m.Subject)
	m.Message = s.validate.Sanitize(m.Message)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))

	if err := s.validate.Struct(m); err != nil {
		return err
	}
	if err := s.repo.CreateContactMessage(ctx, m); err != nil {
		s.logger.Error("failed to store contact message", zap.Error(err))
		return fmt.Errorf("store contact message: %w", err)
	}
	s.logger.Info("contact message received", zap.String("id", m.ID))
	return nil
}
