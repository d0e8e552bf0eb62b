package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createUserService(db *gorm.DB) *service.UserService {
	return service.NewUserService(repository.NewUserRepository(db), zap.NewNop())
}

func TestUserService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)
	ctx := context.Background()

	t.Run("email is normalized and password hashed", func(t *testing.T) {
		user, err := svc.Create(ctx, domain.UserCreateRequest{
			Email:          " Diseno@GrupoSGP.mx ",
			FullName:       "Diseñador",
			Role:           "DESIGN",
			CommissionRate: 0,
			Password:       "ocho-caracteres",
		})
		require.NoError(t, err)
		assert.Equal(t, "diseno@gruposgp.mx", user.Email)
		assert.NotEqual(t, "ocho-caracteres", user.HashedPassword)
		assert.True(t, user.IsActive)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.UserCreateRequest{
			Email:    "DISENO@gruposgp.mx",
			FullName: "Otro",
			Role:     "SALES",
			Password: "ocho-caracteres",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})
}

func TestUserService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, domain.RoleSales)

	t.Run("commission rate updates", func(t *testing.T) {
		rate := 0.05
		updated, err := svc.Update(ctx, user.ID, domain.UserUpdateRequest{CommissionRate: &rate})
		require.NoError(t, err)
		assert.InDelta(t, 0.05, updated.CommissionRate, 0.0001)
	})

	t.Run("changing to an email already taken fails", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db, domain.RoleDesign)

		email := other.Email
		_, err := svc.Update(ctx, user.ID, domain.UserUpdateRequest{Email: &email})
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "Nadie"
		_, err := svc.Update(ctx, uuid.New(), domain.UserUpdateRequest{FullName: &name})
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserService_BootstrapProtection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapUser(ctx, "admin@gruposgp.mx", "clave-inicial"))

	var bootstrap domain.User
	require.NoError(t, db.First(&bootstrap, "email = ?", "admin@gruposgp.mx").Error)
	require.True(t, bootstrap.IsBootstrap)
	assert.Equal(t, domain.RoleDirector, bootstrap.Role)

	t.Run("seeding is idempotent", func(t *testing.T) {
		require.NoError(t, svc.EnsureBootstrapUser(ctx, "admin@gruposgp.mx", "otra-clave"))

		var count int64
		require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "admin@gruposgp.mx").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("empty credentials skip seeding", func(t *testing.T) {
		require.NoError(t, svc.EnsureBootstrapUser(ctx, "", ""))
	})

	t.Run("the bootstrap account cannot be deleted", func(t *testing.T) {
		err := svc.Delete(ctx, bootstrap.ID)
		assert.ErrorIs(t, err, service.ErrBootstrapUserProtected)
	})

	t.Run("the bootstrap account cannot be deactivated", func(t *testing.T) {
		inactive := false
		_, err := svc.Update(ctx, bootstrap.ID, domain.UserUpdateRequest{IsActive: &inactive})
		assert.ErrorIs(t, err, service.ErrBootstrapUserProtected)
	})

	t.Run("ordinary accounts deactivate normally", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db, domain.RoleProduction)
		require.NoError(t, svc.Delete(ctx, user.ID))

		var reloaded domain.User
		require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
		assert.False(t, reloaded.IsActive)
	})
}
