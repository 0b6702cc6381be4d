package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

func (s *RecordService) CreatePatient(ctx context.Context, p *domain.Patient) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := s.validate.Struct(p); err != nil {
		return err
	}
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		s.logger.Error("failed to create patient", zap.Error(err))
		return err
	}
	s.signal(ctx, domain.TablePatients, changefeed.KindInsert, p.ID)
	return nil
}

func (s *RecordService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *RecordService) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *RecordService) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := s.validate.Struct(p); err != nil {
		return err
	}
	if err := s.repo.UpdatePatient(ctx, p); err != nil {
		return fmt.Errorf("update patient %s: %w", p.ID, err)
	}
	s.signal(ctx, domain.TablePatients, changefeed.KindUpdate, p.ID)
	return nil
}

func (s *RecordService) DeletePatient(ctx context.Context, id string) error {
	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return fmt.Errorf("delete patient %s: %w", id, err)
	}
	s.signal(ctx, domain.TablePatients, changefeed.KindDelete, id)
	s.logger.Info("patient deleted", zap.String("patient_id", id))
	return nil
}
