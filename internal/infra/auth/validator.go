package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
)

// Issuer — значение iss в токенах, которые выдает /auth/token.
const Issuer = "hospital-console"

// clockSkew — допуск на расхождение часов между репликами консоли.
const clockSkew = 30 * time.Second

// ConsoleVerifier принимает только токены консоли: RS256, iss = Issuer,
// обязательный exp, непустой user_id и роль admin или staff.
type ConsoleVerifier struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

func NewConsoleVerifier(pubKey *rsa.PublicKey) *ConsoleVerifier {
	return &ConsoleVerifier{
		publicKey: pubKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// VerifyToken принимает и голый токен, и значение заголовка "Bearer <token>".
func (v *ConsoleVerifier) VerifyToken(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

	claims := &domain.CustomClaims{}
	token, err := v.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	switch {
	case claims.UserID == "":
		return nil, errors.New("invalid token: user_id is empty")
	case !domain.ValidRole(claims.Role):
		return nil, fmt.Errorf("invalid token: unknown role %q", claims.Role)
	}
	return claims, nil
}

// ParseRSAPublicKey читает PEM ключа проверки (auth.public_key_path или AUTH_PUBLIC_KEY_DATA).
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return key, nil
}

// ParseRSAPrivateKey читает PEM ключа подписи. Нужен только процессу, который выдает токены.
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("private key data is empty")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}
