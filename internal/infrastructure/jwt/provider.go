package jwtinfra

import (
	"errors"
	"time"

	"github.com/dashcrm-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Session tokens live exactly 8 hours; there is no refresh path, only a new
// login.
const tokenLifetime = 8 * time.Hour

// Claims holds the JWT payload fields.
type Claims struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	HelenaUserID string `json:"helenaUserId"`
	TenantID     string `json:"tenantId"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with a shared secret.
type Provider struct {
	secret []byte
}

func NewProvider(secret string) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}
	return &Provider{secret: []byte(secret)}, nil
}

func (p *Provider) Sign(userID, name, phone, helenaUserID, tenantID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Name:         name,
		Phone:        phone,
		HelenaUserID: helenaUserID,
		TenantID:     tenantID,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature and expiry. Every failure collapses to
// domain.ErrInvalidToken: callers learn that re-authentication is needed, not
// why.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
