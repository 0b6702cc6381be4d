package postgres

import (
	"context"
	"fmt"

	"github.com/xela07ax/hospital-console/internal/domain"
)

func (r *Repo) CreateContactMessage(ctx context.Context, m *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at`

	if err := r.pool.QueryRow(ctx, query, m.Name, m.Email, m.Subject, m.Message).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("postgres: create contact message: %w", mapErr(err))
	}
	return nil
}
