package jwtinfra

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashcrm-api/internal/domain"
)

func TestNewProvider_EmptySecret(t *testing.T) {
	_, err := NewProvider("")
	assert.Error(t, err)
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	p, err := NewProvider("test-secret")
	require.NoError(t, err)

	token, err := p.Sign("acc1", "Alice", "5531999999999", "h-user", "t1", domain.RoleClient)
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "5531999999999", claims.Phone)
	assert.Equal(t, "h-user", claims.HelenaUserID)
	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, domain.RoleClient, claims.Role)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_WrongSecret(t *testing.T) {
	p1, _ := NewProvider("secret-one")
	p2, _ := NewProvider("secret-two")

	token, err := p1.Sign("acc1", "Alice", "", "", "", domain.RoleClient)
	require.NoError(t, err)

	_, err = p2.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	p, _ := NewProvider("test-secret")

	claims := Claims{
		UserID: "acc1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-9 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = p.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	p, _ := NewProvider("test-secret")
	_, err := p.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_RejectsNonHMAC(t *testing.T) {
	p, _ := NewProvider("test-secret")

	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "acc1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
