package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/config"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createAuthService(t *testing.T, db *gorm.DB) (*service.AuthService, *auth.TokenService, *service.UserService) {
	logger := zap.NewNop()
	users := repository.NewUserRepository(db)
	tokens, err := auth.NewTokenService(&config.JWTConfig{
		Secret:      "auth-service-test-secret",
		Issuer:      "erp-api-test",
		ExpiryHours: 1,
	})
	require.NoError(t, err)
	return service.NewAuthService(users, tokens, logger), tokens, service.NewUserService(users, logger)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	authSvc, tokens, userSvc := createAuthService(t, db)
	ctx := context.Background()

	created, err := userSvc.Create(ctx, domain.UserCreateRequest{
		Email:    "Ventas@GrupoSGP.mx",
		FullName: "Vendedora Uno",
		Role:     "SALES",
		Password: "contraseña-segura",
	})
	require.NoError(t, err)

	t.Run("valid credentials yield a usable token", func(t *testing.T) {
		resp, err := authSvc.Login(ctx, domain.LoginRequest{
			Email:    "ventas@gruposgp.mx",
			Password: "contraseña-segura",
		})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, created.ID, resp.UserID)
		assert.Equal(t, domain.RoleSales, resp.Role)

		userCtx, err := tokens.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID, userCtx.UserID)
	})

	t.Run("email lookup is case and whitespace insensitive", func(t *testing.T) {
		_, err := authSvc.Login(ctx, domain.LoginRequest{
			Email:    "  VENTAS@gruposgp.MX ",
			Password: "contraseña-segura",
		})
		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		_, errPassword := authSvc.Login(ctx, domain.LoginRequest{
			Email:    "ventas@gruposgp.mx",
			Password: "incorrecta",
		})
		_, errEmail := authSvc.Login(ctx, domain.LoginRequest{
			Email:    "nadie@gruposgp.mx",
			Password: "cualquiera",
		})
		assert.ErrorIs(t, errPassword, service.ErrInvalidCredentials)
		assert.ErrorIs(t, errEmail, service.ErrInvalidCredentials)
	})

	t.Run("inactive accounts cannot log in", func(t *testing.T) {
		inactive := false
		_, err := userSvc.Update(ctx, created.ID, domain.UserUpdateRequest{IsActive: &inactive})
		require.NoError(t, err)

		_, err = authSvc.Login(ctx, domain.LoginRequest{
			Email:    "ventas@gruposgp.mx",
			Password: "contraseña-segura",
		})
		assert.ErrorIs(t, err, service.ErrUserInactive)
	})
}
