package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
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

func createDesignService(t *testing.T, db *gorm.DB) *service.DesignService {
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewDesignService(
		repository.NewProductRepository(db),
		repository.NewMaterialRepository(db),
		files,
		zap.NewNop(),
	)
}

func TestDesignService_Versions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDesignService(t, db)
	ctx := context.Background()

	master, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Closet lineal", Category: "Closets"})
	require.NoError(t, err)

	tablero := testutil.CreateTestMaterial(t, db, 420.50, 10, 1)
	canto := testutil.CreateTestMaterial(t, db, 3.3333, 100, 1)

	t.Run("recipe is priced at current material costs", func(t *testing.T) {
		version, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v1",
			Components: []domain.ComponentInput{
				{MaterialID: tablero.ID, Quantity: 2},
				{MaterialID: canto.ID, Quantity: 3},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.VersionDraft, version.Status)
		require.Len(t, version.Components, 2)
		// 2 × 420.50 plus 3 × 3.3333 ceiled to 10.00.
		assert.InDelta(t, 851.00, version.EstimatedCost, 0.001)
	})

	t.Run("zero-quantity lines are dropped", func(t *testing.T) {
		version, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v2",
			Components: []domain.ComponentInput{
				{MaterialID: tablero.ID, Quantity: 1},
				{MaterialID: canto.ID, Quantity: 0},
			},
		})
		require.NoError(t, err)
		require.Len(t, version.Components, 1)
		assert.InDelta(t, 420.50, version.EstimatedCost, 0.001)
	})

	t.Run("unknown material fails the version", func(t *testing.T) {
		_, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v3",
			Components: []domain.ComponentInput{
				{MaterialID: uuid.New(), Quantity: 1},
			},
		})
		assert.ErrorIs(t, err, service.ErrMaterialNotFound)
	})

	t.Run("updating the recipe reprices it", func(t *testing.T) {
		version, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v4",
			Components: []domain.ComponentInput{
				{MaterialID: tablero.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)

		updated, err := svc.UpdateVersion(ctx, version.ID, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v4",
			Components: []domain.ComponentInput{
				{MaterialID: tablero.ID, Quantity: 4},
			},
		})
		require.NoError(t, err)
		assert.InDelta(t, 1682.00, updated.EstimatedCost, 0.001)
		// The old quantity-1 line must be gone, not sitting next to the
		// replacement.
		require.Len(t, updated.Components, 1)
		assert.InDelta(t, 4, updated.Components[0].Quantity, 0.001)
	})

	t.Run("status moves through the lifecycle", func(t *testing.T) {
		version, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    master.ID,
			VersionName: "v5",
		})
		require.NoError(t, err)

		ready, err := svc.SetVersionStatus(ctx, version.ID, domain.VersionStatusRequest{Status: "READY"})
		require.NoError(t, err)
		assert.Equal(t, domain.VersionReady, ready.Status)

		obsolete, err := svc.SetVersionStatus(ctx, version.ID, domain.VersionStatusRequest{Status: "OBSOLETE"})
		require.NoError(t, err)
		assert.Equal(t, domain.VersionObsolete, obsolete.Status)
	})

	t.Run("unknown master", func(t *testing.T) {
		_, err := svc.CreateVersion(ctx, domain.ProductVersionRequest{
			MasterID:    uuid.New(),
			VersionName: "huérfana",
		})
		assert.ErrorIs(t, err, service.ErrMasterNotFound)
	})
}

func TestDesignService_ListMasters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDesignService(t, db)
	ctx := context.Background()

	withReady, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Con receta lista"})
	require.NoError(t, err)
	_, err = svc.CreateVersion(ctx, domain.ProductVersionRequest{
		MasterID: withReady.ID, VersionName: "v1", Status: "READY",
	})
	require.NoError(t, err)

	draftOnly, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Solo borradores"})
	require.NoError(t, err)
	_, err = svc.CreateVersion(ctx, domain.ProductVersionRequest{
		MasterID: draftOnly.ID, VersionName: "v1",
	})
	require.NoError(t, err)

	designer := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDesign))
	seller := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))

	t.Run("design sees the full catalog", func(t *testing.T) {
		masters, err := svc.ListMasters(ctx, designer, repository.ProductMasterFilters{})
		require.NoError(t, err)
		assert.Len(t, masters, 2)
	})

	t.Run("sales only sees families with a ready version", func(t *testing.T) {
		masters, err := svc.ListMasters(ctx, seller, repository.ProductMasterFilters{})
		require.NoError(t, err)
		require.Len(t, masters, 1)
		assert.Equal(t, withReady.ID, masters[0].ID)
	})
}

func TestDesignService_Blueprints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDesignService(t, db)
	ctx := context.Background()

	master, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Mueble con plano"})
	require.NoError(t, err)

	t.Run("upload and read back", func(t *testing.T) {
		updated, err := svc.UploadBlueprint(ctx, master.ID, "plano.pdf", strings.NewReader("contenido-pdf"))
		require.NoError(t, err)
		assert.NotEmpty(t, updated.BlueprintPath)

		rc, name, err := svc.OpenBlueprint(ctx, master.ID)
		require.NoError(t, err)
		defer rc.Close()
		assert.True(t, strings.HasSuffix(name, ".pdf"))
	})

	t.Run("replacing removes the previous file", func(t *testing.T) {
		before, err := svc.GetMaster(ctx, master.ID)
		require.NoError(t, err)

		updated, err := svc.UploadBlueprint(ctx, master.ID, "plano-v2.pdf", strings.NewReader("otro"))
		require.NoError(t, err)
		assert.NotEqual(t, before.BlueprintPath, updated.BlueprintPath)
	})

	t.Run("missing blueprint", func(t *testing.T) {
		bare, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Sin plano"})
		require.NoError(t, err)

		_, _, err = svc.OpenBlueprint(ctx, bare.ID)
		assert.ErrorIs(t, err, service.ErrMasterNotFound)
	})
}

func TestDesignService_RenameCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDesignService(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Mueble", Category: "Cocinas"})
		require.NoError(t, err)
	}
	_, err := svc.CreateMaster(ctx, domain.ProductMasterRequest{Name: "Otro", Category: "Baños"})
	require.NoError(t, err)

	touched, err := svc.RenameCategory(ctx, domain.CategoryRenameRequest{OldName: "Cocinas", NewName: "Cocinas integrales"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, touched)

	masters, err := svc.ListMasters(ctx, salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDesign)), repository.ProductMasterFilters{Category: "Cocinas integrales"})
	require.NoError(t, err)
	assert.Len(t, masters, 3)
}
