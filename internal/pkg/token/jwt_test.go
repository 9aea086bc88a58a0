package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goidentity/internal/pkg/token"
)

const (
	testKey    = "uma-chave-secreta-de-teste"
	testIssuer = "GoIdentity-API"
)

// TestGenerateAndValidateToken verifica o round-trip: um token emitido para o
// usuário U, validado com a mesma chave e issuer, devolve o identificador de U.
func TestGenerateAndValidateToken(t *testing.T) {
	svc := token.NewService(testKey, testIssuer, time.Hour)

	tokenString, err := svc.GenerateToken("user-123", "user")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
}

// TestValidateToken_WrongKey verifica que um token assinado com outra chave é rejeitado.
func TestValidateToken_WrongKey(t *testing.T) {
	issuerSvc := token.NewService(testKey, testIssuer, time.Hour)
	otherSvc := token.NewService("outra-chave", testIssuer, time.Hour)

	tokenString, err := issuerSvc.GenerateToken("user-123", "user")
	require.NoError(t, err)

	_, err = otherSvc.ValidateToken(tokenString)
	assert.Error(t, err)
}

// TestValidateToken_WrongIssuer verifica que um token de outro issuer é rejeitado,
// mesmo com a mesma chave de assinatura.
func TestValidateToken_WrongIssuer(t *testing.T) {
	issuerSvc := token.NewService(testKey, "Outro-Emissor", time.Hour)
	validatorSvc := token.NewService(testKey, testIssuer, time.Hour)

	tokenString, err := issuerSvc.GenerateToken("user-123", "user")
	require.NoError(t, err)

	_, err = validatorSvc.ValidateToken(tokenString)
	assert.Error(t, err)
}

// TestValidateToken_Expired verifica que um token vencido é rejeitado.
func TestValidateToken_Expired(t *testing.T) {
	svc := token.NewService(testKey, testIssuer, -time.Minute)

	tokenString, err := svc.GenerateToken("user-123", "user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

// TestValidateToken_Garbage verifica que uma string arbitrária é rejeitada.
func TestValidateToken_Garbage(t *testing.T) {
	svc := token.NewService(testKey, testIssuer, time.Hour)

	_, err := svc.ValidateToken("nao-e-um-jwt")
	assert.Error(t, err)
}

// TestGenerateToken_NoAudience verifica que o token não carrega claim de
// audience — os clientes não são validados individualmente.
func TestGenerateToken_NoAudience(t *testing.T) {
	svc := token.NewService(testKey, testIssuer, time.Hour)

	tokenString, err := svc.GenerateToken("user-123", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Empty(t, claims.Audience)
}
