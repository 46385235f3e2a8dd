package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashcrm-api/internal/domain"
	jwtinfra "github.com/dashcrm-api/internal/infrastructure/jwt"
)

func newProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider("test-secret")
	require.NoError(t, err)
	return p
}

func protected(p *jwtinfra.Provider) (http.Handler, *[]string) {
	var seen []string
	h := Auth(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if ok {
			seen = append(seen, claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestAuth_MissingHeader(t *testing.T) {
	h, _ := protected(newProvider(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestAuth_MalformedHeader(t *testing.T) {
	h, _ := protected(newProvider(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	h, _ := protected(newProvider(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newProvider(t)
	h, seen := protected(p)

	token, err := p.Sign("acc1", "Alice", "5531999999999", "h-user", "t1", domain.RoleClient)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"acc1"}, *seen)
}
