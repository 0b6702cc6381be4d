package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

const inventoryColumns = `id::text, item, category, quantity, unit, status, created_at`

func scanInventory(row pgx.Row) (*domain.InventoryItem, error) {
	it := &domain.InventoryItem{}
	var status string
	if err := row.Scan(&it.ID, &it.Item, &it.Category, &it.Quantity, &it.Unit, &status, &it.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	it.Status = domain.InventoryStatus(status)
	return it, nil
}

// CreateInventoryItem сохраняет позицию; статус всегда выводится из остатка.
func (r *Repo) CreateInventoryItem(ctx context.Context, it *domain.InventoryItem) error {
	it.Status = domain.StatusForQuantity(it.Quantity)
	query := `
		INSERT INTO inventory (item, category, quantity, unit, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query, it.Item, it.Category, it.Quantity, it.Unit, string(it.Status)).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create inventory item: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) ListInventory(ctx context.Context) ([]*domain.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY category, item`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list inventory: %w", err)
	}
	defer rows.Close()

	var list []*domain.InventoryItem
	for rows.Next() {
		it, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// SetInventoryQuantity обновляет остаток и пересчитывает статус.
func (r *Repo) SetInventoryQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error) {
	query := `
		UPDATE inventory SET quantity = $2, status = $3
		WHERE id = $1::uuid
		RETURNING ` + inventoryColumns

	return scanInventory(r.pool.QueryRow(ctx, query, id, quantity, string(domain.StatusForQuantity(quantity))))
}

func (r *Repo) DeleteInventoryItem(ctx context.Context, id string) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM inventory WHERE id = $1::uuid`, id))
}
