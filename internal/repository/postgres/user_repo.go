package postgres

import (
	"context"
	"fmt"

	"github.com/xela07ax/hospital-console/internal/domain"
)

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `
		SELECT id::text, email, password_hash, role, created_at
		FROM admin_users WHERE lower(email) = lower($1)`

	u := &domain.AdminUser{}
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// UpsertUser создает администратора или меняет пароль существующему (hmsctl create-admin).
func (r *Repo) UpsertUser(ctx context.Context, u *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
		RETURNING id::text, created_at`

	if err := r.pool.QueryRow(ctx, query, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt); err != nil {
		return fmt.Errorf("postgres: upsert user: %w", mapErr(err))
	}
	return nil
}
