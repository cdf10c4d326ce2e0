package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"storefront/internal/domain"
)

var errNoSigningKey = errors.New("token signing key not configured")

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// tokenManager signs and verifies HS256 session tokens.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenManager(secret []byte, ttl time.Duration) *tokenManager {
	return &tokenManager{secret: secret, ttl: ttl, now: time.Now}
}

func (m *tokenManager) Issue(u domain.User) (string, error) {
	if len(m.secret) == 0 {
		return "", errNoSigningKey
	}
	now := m.now()
	claims := tokenClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *tokenManager) Validate(raw string) (*tokenClaims, error) {
	if len(m.secret) == 0 {
		return nil, errNoSigningKey
	}
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
