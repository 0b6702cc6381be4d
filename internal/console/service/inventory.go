package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/hospital-console/internal/changefeed"
	"github.com/xela07ax/hospital-console/internal/domain"
	"github.com/xela07ax/hospital-console/internal/validation"
	"go.uber.org/zap"
)

func (s *RecordService) CreateInventoryItem(ctx context.Context, it *domain.InventoryItem) error {
	if err := s.validate.Struct(it); err != nil {
		return err
	}
	if err := s.repo.CreateInventoryItem(ctx, it); err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}
	s.signal(ctx, domain.TableInventory, changefeed.KindInsert, it.ID)
	return nil
}

func (s *RecordService) ListInventory(ctx context.Context) ([]*domain.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

// SetInventoryQuantity меняет остаток, статус пересчитывается в репозитории.
func (s *RecordService) SetInventoryQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error) {
	if quantity < 0 {
		return nil, validation.Fields("quantity", "must be greater than or equal to 0")
	}
	it, err := s.repo.SetInventoryQuantity(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("set quantity %s: %w", id, err)
	}
	s.signal(ctx, domain.TableInventory, changefeed.KindUpdate, id)
	if it.Status != domain.InventoryInStock {
		s.logger.Warn("inventory running low",
			zap.String("item", it.Item),
			zap.Int("quantity", it.Quantity),
			zap.String("status", string(it.Status)))
	}
	return it, nil
}

func (s *RecordService) DeleteInventoryItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteInventoryItem(ctx, id); err != nil {
		return fmt.Errorf("delete inventory item %s: %w", id, err)
	}
	s.signal(ctx, domain.TableInventory, changefeed.KindDelete, id)
	return nil
}
