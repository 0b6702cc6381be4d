package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

func (s *RecordService) CreateBill(ctx context.Context, b *domain.Bill) error {
	if err := s.validate.Struct(b); err != nil {
		return err
	}
	if b.Amount.IsNegative() {
		return validation.Fields("amount", "must not be negative")
	}
	if err := s.repo.CreateBill(ctx, b); err != nil {
		s.logger.Error("failed to create bill", zap.Error(err))
		return err
	}
	s.signal(ctx, domain.TableBilling, changefeed.KindInsert, b.ID)
	return nil
}

func (s *RecordService) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *RecordService) ListBills(ctx context.Context) ([]*domain.Bill, error) {
	return s.repo.ListBills(ctx)
}

// UpdateBillStatus — перевод счета в Paid сразу меняет выручку месяца на дашборде.
func (s *RecordService) UpdateBillStatus(ctx context.Context, id string, status domain.BillingStatus) error {
	switch status {
	case domain.BillingPaid, domain.BillingPending, domain.BillingCancelled:
	default:
		return fmt.Errorf("%w: unknown billing status %q", domain.ErrInvalidInput, status)
	}
	if err := s.repo.UpdateBillStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update bill %s: %w", id, err)
	}
	s.signal(ctx, domain.TableBilling, changefeed.KindUpdate, id)
	return nil
}

func (s *RecordService) DeleteBill(ctx context.Context, id string) error {
	if err := s.repo.DeleteBill(ctx, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.signal(ctx, domain.TableBilling, changefeed.KindDelete, id)
	return nil
}
