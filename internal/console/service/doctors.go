package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

func (s *RecordService) CreateDoctor(ctx context.Context, d *domain.Doctor) error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if err := s.validate.Struct(d); err != nil {
		return err
	}
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		s.logger.Error("failed to create doctor", zap.Error(err))
		return err
	}
	s.signal(ctx, domain.TableDoctors, changefeed.KindInsert, d.ID)
	return nil
}

func (s *RecordService) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	return s.repo.GetDoctor(ctx, id)
}

// ListDoctors возвращает врачей отделения, пустой departmentID дает всех.
func (s *RecordService) ListDoctors(ctx context.Context, departmentID string) ([]*domain.Doctor, error) {
	return s.repo.ListDoctors(ctx, departmentID)
}

func (s *RecordService) UpdateDoctor(ctx context.Context, d *domain.Doctor) error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if err := s.validate.Struct(d); err != nil {
		return err
	}
	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		return fmt.Errorf("update doctor %s: %w", d.ID, err)
	}
	s.signal(ctx, domain.TableDoctors, changefeed.KindUpdate, d.ID)
	return nil
}

func (s *RecordService) DeleteDoctor(ctx context.Context, id string) error {
	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		return fmt.Errorf("delete doctor %s: %w", id, err)
	}
	s.signal(ctx, domain.TableDoctors, changefeed.KindDelete, id)
	return nil
}

func (s *RecordService) CreateDepartment(ctx context.Context, d *domain.Department) error {
	if err := s.validate.Struct(d); err != nil {
		return err
	}
	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	s.signal(ctx, domain.TableDepartments, changefeed.KindInsert, d.ID)
	return nil
}

func (s *RecordService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return s.repo.ListDepartments(ctx)
}
