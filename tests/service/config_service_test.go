package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/internal/storage"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createConfigService(t *testing.T, db *gorm.DB) *service.ConfigService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewConfigService(repository.NewGlobalConfigRepository(db), files, zap.NewNop())
}

func TestConfigService_GetAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createConfigService(t, db)
	ctx := context.Background()

	t.Run("first read creates the row with defaults", func(t *testing.T) {
		cfg, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 0.30, cfg.TargetProfitMargin, 0.0001)
		assert.InDelta(t, 0.05, cfg.CostTolerancePercent, 0.0001)
		assert.Equal(t, 15, cfg.QuoteValidityDays)
		assert.InDelta(t, 1.0, cfg.DefaultEdgebandingFactor, 0.0001)

		again, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg.ID, again.ID)
	})

	t.Run("partial update leaves untouched fields alone", func(t *testing.T) {
		cfg, err := svc.Update(ctx, domain.GlobalConfigUpdateRequest{
			TargetProfitMargin: floatPtr(0.35),
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.35, cfg.TargetProfitMargin, 0.0001)
		assert.Equal(t, 15, cfg.QuoteValidityDays)
	})

	t.Run("settings update never wipes an uploaded logo", func(t *testing.T) {
		cfg, err := svc.UploadLogo(ctx, "logo.png", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		require.NotEmpty(t, cfg.LogoPath)
		logoPath := cfg.LogoPath

		empty := ""
		cfg, err = svc.Update(ctx, domain.GlobalConfigUpdateRequest{
			AnnualSalesTarget: floatPtr(5_000_000),
			LogoPath:          &empty,
		})
		require.NoError(t, err)
		assert.Equal(t, logoPath, cfg.LogoPath)

		cfg, err = svc.Update(ctx, domain.GlobalConfigUpdateRequest{QuoteValidityDays: intPtr(30)})
		require.NoError(t, err)
		assert.Equal(t, logoPath, cfg.LogoPath)
		assert.Equal(t, 30, cfg.QuoteValidityDays)
	})
}

func TestConfigService_UploadLogo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createConfigService(t, db)
	ctx := context.Background()

	t.Run("replacing the logo drops the previous file", func(t *testing.T) {
		first, err := svc.UploadLogo(ctx, "old.jpg", strings.NewReader("old"))
		require.NoError(t, err)

		second, err := svc.UploadLogo(ctx, "new.svg", strings.NewReader("new"))
		require.NoError(t, err)
		assert.NotEqual(t, first.LogoPath, second.LogoPath)
		assert.True(t, strings.HasSuffix(second.LogoPath, ".svg"))
	})

	t.Run("rejects formats we cannot render", func(t *testing.T) {
		_, err := svc.UploadLogo(ctx, "logo.exe", strings.NewReader("nope"))
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}
