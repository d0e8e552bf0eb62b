package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/config"
	"github.com/grupo-sgp/erp-api/internal/domain"
)

func newTokenService(t *testing.T, secret string) *auth.TokenService {
	svc, err := auth.NewTokenService(&config.JWTConfig{
		Secret:      secret,
		Issuer:      "erp-api-test",
		ExpiryHours: 8,
	})
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTokenService(t, "test-secret-key-for-signing")

	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     "ventas@gruposgp.mx",
		Role:      domain.RoleSales,
	}

	token, err := svc.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleSales, userCtx.Role)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := newTokenService(t, "secret-one")
	verifier := newTokenService(t, "secret-two")

	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     "director@gruposgp.mx",
		Role:      domain.RoleDirector,
	}

	token, err := issuer.IssueToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := newTokenService(t, "test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}

func TestTokenService_RequiresSecret(t *testing.T) {
	_, err := auth.NewTokenService(&config.JWTConfig{})
	assert.Error(t, err)
}

func TestTokenService_DefaultExpiry(t *testing.T) {
	svc, err := auth.NewTokenService(&config.JWTConfig{Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, svc.Expiry())
}

func TestUserRole_Privileges(t *testing.T) {
	assert.True(t, domain.RoleDirector.IsPrivileged())
	assert.True(t, domain.RoleAdmin.IsPrivileged())
	assert.False(t, domain.RoleSales.IsPrivileged())
	assert.False(t, domain.RoleWarehouse.IsPrivileged())
}
