package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли пользователей консоли.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // RoleAdmin или RoleStaff
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Никогда не отправляем на фронт
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
