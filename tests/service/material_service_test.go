package service_test

import (
	"bytes"
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
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createMaterialService(db *gorm.DB) *service.MaterialService {
	return service.NewMaterialService(
		repository.NewMaterialRepository(db),
		repository.NewProviderRepository(db),
		zap.NewNop(),
	)
}

func TestMaterialService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createMaterialService(db)
	ctx := context.Background()

	t.Run("sku is normalized to upper case", func(t *testing.T) {
		material, err := svc.Create(ctx, domain.MaterialCreateRequest{
			SKU:          "  mel-18-bl ",
			Name:         "Melamina 18mm blanca",
			Category:     "Tableros",
			PurchaseUnit: "hoja",
			UsageUnit:    "m2",
			CurrentCost:  420.456,
		})
		require.NoError(t, err)
		assert.Equal(t, "MEL-18-BL", material.SKU)
		// Costs always round up to the cent.
		assert.InDelta(t, 420.46, material.CurrentCost, 0.001)
		assert.Equal(t, domain.RouteMaterial, material.ProductionRoute)
		assert.InDelta(t, 1.0, material.ConversionFactor, 0.001)
	})

	t.Run("re-sending an existing sku merges into the row", func(t *testing.T) {
		merged, err := svc.Create(ctx, domain.MaterialCreateRequest{
			SKU:         "mel-18-BL",
			Name:        "Melamina 18mm blanco nieve",
			CurrentCost: 399.99,
		})
		require.NoError(t, err)
		assert.Equal(t, "Melamina 18mm blanco nieve", merged.Name)
		assert.InDelta(t, 399.99, merged.CurrentCost, 0.001)

		var count int64
		require.NoError(t, db.Model(&domain.Material{}).Where("sku = ?", "MEL-18-BL").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestMaterialService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createMaterialService(db)
	ctx := context.Background()

	material := testutil.CreateTestMaterial(t, db, 100, 5, 1)
	require.NoError(t, svc.Delete(ctx, material.ID))

	// The row survives for recipes and history; it just goes inactive.
	reloaded, err := svc.GetByID(ctx, material.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestMaterialService_ImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and updates in one pass", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		existing := testutil.CreateTestMaterial(t, db, 100, 42, 1)

		csvData := strings.Join([]string{
			"sku,nombre,categoria,costo,factor,stock,proveedor",
			existing.SKU + ",Renombrado,Herrajes,275.50,2,999,Maderas SA",
			"NUEVO-01,Bisagra recta,Herrajes,18.90,1,50,Maderas SA",
		}, "\n")

		result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Updated)
		assert.Empty(t, result.Errors)

		updated, err := svc.GetByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renombrado", updated.Name)
		assert.InDelta(t, 275.50, updated.CurrentCost, 0.001)
		// Stock stays owned by inventory; the spreadsheet column is ignored
		// for existing rows.
		assert.InDelta(t, 42, updated.PhysicalStock, 0.001)

		var created domain.Material
		require.NoError(t, db.First(&created, "sku = ?", "NUEVO-01").Error)
		assert.InDelta(t, 50, created.PhysicalStock, 0.001)
		require.NotNil(t, created.ProviderID)

		// Both rows named the same provider; only one row was created for it.
		var providers int64
		require.NoError(t, db.Model(&domain.Provider{}).
			Where("business_name = ?", "Maderas SA").Count(&providers).Error)
		assert.EqualValues(t, 1, providers)
	})

	t.Run("sku matching ignores case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		existing := testutil.CreateTestMaterial(t, db, 100, 7, 1)

		csvData := "sku,nombre,costo\n" + strings.ToLower(existing.SKU) + ",Mismo material,120.00"
		result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Updated)

		var count int64
		require.NoError(t, db.Model(&domain.Material{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("semicolon delimiter and currency formatting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		csvData := "clave;descripcion;precio\nSEMI-01;Canto PVC;$1,250.00"
		result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)

		var material domain.Material
		require.NoError(t, db.First(&material, "sku = ?", "SEMI-01").Error)
		assert.InDelta(t, 1250, material.CurrentCost, 0.001)
	})

	t.Run("utf-8 BOM is stripped from the header", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku,nombre,costo\nBOM-01,Tornillo,0.80")...)
		result, err := svc.ImportCSV(ctx, bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
	})

	t.Run("latin-1 bytes survive the decode", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		// "Cajón" with a Latin-1 ó (0xF3).
		data := []byte("sku,nombre,costo\nLAT-01,Caj\xf3n,12.00")
		result, err := svc.ImportCSV(ctx, bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, 1, result.Created)

		var material domain.Material
		require.NoError(t, db.First(&material, "sku = ?", "LAT-01").Error)
		assert.Equal(t, "Cajón", material.Name)
	})

	t.Run("bad rows are reported and good rows still land", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		csvData := strings.Join([]string{
			"sku,nombre,costo",
			"OK-01,Material bueno,10.00",
			",Sin clave,5.00",
			"MAL-01,Costo roto,abc",
			"SINNOMBRE-01,,3.00",
		}, "\n")

		result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		require.Len(t, result.Errors, 3)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Equal(t, 4, result.Errors[1].Row)
		assert.Equal(t, 5, result.Errors[2].Row)
	})

	t.Run("a file without a sku column is refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createMaterialService(db)

		_, err := svc.ImportCSV(ctx, strings.NewReader("nombre,costo\nAlgo,1.00"))
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}
