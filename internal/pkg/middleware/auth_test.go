package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goidentity/internal/domain"
	"goidentity/internal/pkg/middleware"
	"goidentity/internal/pkg/token"
)

// TestAuthMiddleware_ValidToken verifica que um Bearer token válido libera a
// requisição e anexa as claims ao contexto.
func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokenSvc := token.NewService("chave-de-teste", "GoIdentity-API", time.Hour)
	authMw := middleware.NewAuthMiddleware(tokenSvc)

	tokenString, err := tokenSvc.GenerateToken("id-1", "user")
	require.NoError(t, err)

	var gotClaims middleware.UserClaims
	var hadClaims bool
	handler := authMw(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, hadClaims = middleware.GetUserClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, hadClaims)
	assert.Equal(t, "id-1", gotClaims.UserID)
	assert.Equal(t, domain.RoleUser, gotClaims.Role)
}

// TestAuthMiddleware_MissingHeader verifica 401 sem o header Authorization.
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokenSvc := token.NewService("chave-de-teste", "GoIdentity-API", time.Hour)
	authMw := middleware.NewAuthMiddleware(tokenSvc)

	called := false
	handler := authMw(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

// TestAuthMiddleware_InvalidToken verifica 401 para token adulterado ou de outra chave.
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokenSvc := token.NewService("chave-de-teste", "GoIdentity-API", time.Hour)
	otherSvc := token.NewService("outra-chave", "GoIdentity-API", time.Hour)
	authMw := middleware.NewAuthMiddleware(tokenSvc)

	tokenString, err := otherSvc.GenerateToken("id-1", "user")
	require.NoError(t, err)

	called := false
	handler := authMw(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
