package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/internal/storage"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createSalesOrderService(t *testing.T, db *gorm.DB) *service.SalesOrderService {
	logger := zap.NewNop()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return service.NewSalesOrderService(
		repository.NewSalesOrderRepository(db),
		repository.NewClientRepository(db),
		repository.NewTaxRateRepository(db),
		repository.NewProductRepository(db),
		repository.NewGlobalConfigRepository(db),
		files,
		logger,
	)
}

func salesUserContext(user *domain.User) auth.UserContext {
	return auth.UserContext{
		UserID:         user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		Role:           user.Role,
		CommissionRate: user.CommissionRate,
	}
}

func TestSalesOrderService_Create_Pricing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)

	seller := testutil.CreateTestUser(t, db, domain.RoleSales)
	user := salesUserContext(seller)

	t.Run("commission on top of items, tax on commissioned subtotal", func(t *testing.T) {
		req := domain.SalesOrderCreateRequest{
			ProjectName:              "Mostrador recepción",
			ClientID:                 client.ID,
			TaxRateID:                taxRate.ID,
			ValidUntil:               time.Now().UTC().AddDate(0, 0, 15),
			AppliedCommissionPercent: floatPtr(3.5),
			Items: []domain.OrderItemInput{
				{ProductName: "Mostrador", Quantity: 1, UnitPrice: 350},
			},
		}

		order, err := svc.Create(ctx, user, req)
		require.NoError(t, err)

		assert.Equal(t, domain.OrderDraft, order.Status)
		assert.InDelta(t, 12.25, order.CommissionAmount, 0.001)
		assert.InDelta(t, 362.25, order.Subtotal, 0.001)
		assert.InDelta(t, 57.96, order.TaxAmount, 0.001)
		assert.InDelta(t, 420.21, order.TotalPrice, 0.001)
		// 3.5 was given as percent; it must be stored as a fraction.
		assert.InDelta(t, 0.035, order.AppliedCommissionPercent, 0.0001)
	})

	t.Run("defaults come from global config and the seller profile", func(t *testing.T) {
		req := domain.SalesOrderCreateRequest{
			ProjectName: "Sin overrides",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 30),
		}

		order, err := svc.Create(ctx, user, req)
		require.NoError(t, err)

		assert.InDelta(t, 0.30, order.AppliedMarginPercent, 0.0001)
		assert.InDelta(t, 0.05, order.AppliedTolerancePercent, 0.0001)
		assert.InDelta(t, seller.CommissionRate, order.AppliedCommissionPercent, 0.0001)
		assert.Equal(t, "MXN", order.Currency)
	})

	t.Run("unknown client is rejected", func(t *testing.T) {
		req := domain.SalesOrderCreateRequest{
			ProjectName: "Cliente fantasma",
			ClientID:    uuid.New(),
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		}

		_, err := svc.Create(ctx, user, req)
		assert.ErrorIs(t, err, service.ErrClientNotFound)
	})

	t.Run("unknown tax rate is rejected", func(t *testing.T) {
		req := domain.SalesOrderCreateRequest{
			ProjectName: "IVA fantasma",
			ClientID:    client.ID,
			TaxRateID:   uuid.New(),
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		}

		_, err := svc.Create(ctx, user, req)
		assert.ErrorIs(t, err, service.ErrTaxRateNotFound)
	})
}

func TestSalesOrderService_Create_FreezesCosts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)
	user := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))

	melamina := testutil.CreateTestMaterial(t, db, 420.50, 100, 1)
	canto := testutil.CreateTestMaterial(t, db, 3.3333, 500, 1)

	master := &domain.ProductMaster{Name: "Escritorio L", Category: "Oficina", IsActive: true}
	require.NoError(t, db.Create(master).Error)
	version := &domain.ProductVersion{MasterID: master.ID, VersionName: "v1", Status: domain.VersionReady, IsActive: true}
	require.NoError(t, db.Create(version).Error)
	require.NoError(t, db.Create(&domain.VersionComponent{VersionID: version.ID, MaterialID: melamina.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&domain.VersionComponent{VersionID: version.ID, MaterialID: canto.ID, Quantity: 3}).Error)

	req := domain.SalesOrderCreateRequest{
		ProjectName: "Oficinas planta alta",
		ClientID:    client.ID,
		TaxRateID:   taxRate.ID,
		ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		Items: []domain.OrderItemInput{
			{ProductName: "Escritorio L", OriginVersionID: &version.ID, Quantity: 1, UnitPrice: 2500},
		},
	}

	order, err := svc.Create(ctx, user, req)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	item := order.Items[0]
	require.Len(t, item.CostSnapshot, 2)
	// 2 × 420.50 = 841.00, plus 3 × 3.3333 = 10.00 ceiled to the cent.
	assert.InDelta(t, 851.00, item.FrozenUnitCost, 0.001)

	// Later cost changes must not touch the snapshot.
	require.NoError(t, db.Model(&domain.Material{}).Where("id = ?", melamina.ID).Update("current_cost", 999).Error)

	reloaded, err := svc.GetByID(ctx, user, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 851.00, reloaded.Items[0].FrozenUnitCost, 0.001)

	t.Run("unknown version is rejected", func(t *testing.T) {
		ghost := uuid.New()
		req := domain.SalesOrderCreateRequest{
			ProjectName: "Receta fantasma",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
			Items: []domain.OrderItemInput{
				{ProductName: "Mueble", OriginVersionID: &ghost, Quantity: 1, UnitPrice: 100},
			},
		}
		_, err := svc.Create(ctx, user, req)
		assert.ErrorIs(t, err, service.ErrVersionNotFound)
	})
}

func TestSalesOrderService_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)

	seller := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	newOrder := func(t *testing.T) *domain.SalesOrder {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName: "Transiciones",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
			Items: []domain.OrderItemInput{
				{ProductName: "Repisa", Quantity: 2, UnitPrice: 500},
			},
		})
		require.NoError(t, err)
		return order
	}

	t.Run("a draft cannot be sold directly", func(t *testing.T) {
		order := newOrder(t)

		_, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSold)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)

		updated, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSent, updated.Status)
	})

	t.Run("approval is reserved for directors and admins", func(t *testing.T) {
		order := newOrder(t)
		_, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderAccepted)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		updated, err := svc.SetStatus(ctx, director, order.ID, domain.OrderAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderAccepted, updated.Status)
	})

	t.Run("rejection is also privileged", func(t *testing.T) {
		order := newOrder(t)
		_, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderRejected)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("selling opens the receivable for the full total", func(t *testing.T) {
		order := newOrder(t)
		_, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, director, order.ID, domain.OrderAccepted)
		require.NoError(t, err)

		sold, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSold)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSold, sold.Status)
		assert.InDelta(t, sold.TotalPrice, sold.OutstandingBalance, 0.001)
		assert.Equal(t, domain.PaymentPending, sold.PaymentStatus)
	})

	t.Run("changes can be requested from any state", func(t *testing.T) {
		order := newOrder(t)
		_, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, director, order.ID, domain.OrderAccepted)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSold)
		require.NoError(t, err)

		// Even a sold order can be reopened by the client.
		updated, err := svc.SetStatus(ctx, seller, order.ID, domain.OrderChangeRequested)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderChangeRequested, updated.Status)

		// Except as a no-op from itself.
		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderChangeRequested)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		order := newOrder(t)
		_, err := svc.SetStatus(ctx, seller, order.ID, domain.SalesOrderStatus("SHIPPED"))
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestSalesOrderService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)

	seller := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	newSentOrder := func(t *testing.T) *domain.SalesOrder {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName: "Cocina integral",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
			Items: []domain.OrderItemInput{
				{ProductName: "Alacena", Quantity: 1, UnitPrice: 1000},
			},
		})
		require.NoError(t, err)
		order, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)
		return order
	}

	t.Run("salesperson editing a sent quote demotes it", func(t *testing.T) {
		order := newSentOrder(t)

		notes := "cliente pidió otro acabado"
		updated, err := svc.Update(ctx, seller, order.ID, domain.SalesOrderUpdateRequest{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderChangeRequested, updated.Status)
	})

	t.Run("director edit keeps the sent status", func(t *testing.T) {
		order := newSentOrder(t)

		notes := "ajuste interno"
		updated, err := svc.Update(ctx, director, order.ID, domain.SalesOrderUpdateRequest{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSent, updated.Status)
	})

	t.Run("replacing items reprices the order", func(t *testing.T) {
		order := newSentOrder(t)

		items := []domain.OrderItemInput{
			{ProductName: "Alacena doble", Quantity: 2, UnitPrice: 1500},
		}
		updated, err := svc.Update(ctx, director, order.ID, domain.SalesOrderUpdateRequest{Items: &items})
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		assert.InDelta(t, 3000, updated.Items[0].SubtotalPrice, 0.001)
		assert.Greater(t, updated.TotalPrice, 3000.0)
	})

	t.Run("sold orders are locked", func(t *testing.T) {
		order := newSentOrder(t)
		_, err := svc.SetStatus(ctx, director, order.ID, domain.OrderAccepted)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSold)
		require.NoError(t, err)

		notes := "demasiado tarde"
		_, err = svc.Update(ctx, seller, order.ID, domain.SalesOrderUpdateRequest{Notes: &notes})
		assert.ErrorIs(t, err, service.ErrOrderNotEditable)
	})
}

func TestSalesOrderService_OwnershipScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)

	owner := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))
	other := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	order, err := svc.Create(ctx, owner, domain.SalesOrderCreateRequest{
		ProjectName: "Proyecto privado",
		ClientID:    client.ID,
		TaxRateID:   taxRate.ID,
		ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
	})
	require.NoError(t, err)

	t.Run("another salesperson cannot read it", func(t *testing.T) {
		_, err := svc.GetByID(ctx, other, order.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("directors see everything", func(t *testing.T) {
		got, err := svc.GetByID(ctx, director, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("listing is scoped to the salesperson", func(t *testing.T) {
		orders, total, err := svc.List(ctx, other, 1, 20, repository.SalesOrderFilters{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)

		orders, total, err = svc.List(ctx, owner, 1, 20, repository.SalesOrderFilters{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, orders, 1)
	})
}

func TestSalesOrderService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)
	seller := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))

	t.Run("drafts can be deleted", func(t *testing.T) {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName: "Borrador",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, seller, order.ID))
		_, err = svc.GetByID(ctx, seller, order.ID)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})

	t.Run("sent quotes cannot be deleted", func(t *testing.T) {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName: "Ya enviado",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		})
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(ctx, seller, order.ID), service.ErrOrderNotDeletable)
	})
}

func TestSalesOrderService_AddPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createSalesOrderService(t, db)
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	taxRate := testutil.CreateTestTaxRate(t, db, 0.16)
	testutil.CreateTestConfig(t, db)

	seller := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleSales))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	newSoldOrder := func(t *testing.T) *domain.SalesOrder {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName:              "Venta cerrada",
			ClientID:                 client.ID,
			TaxRateID:                taxRate.ID,
			ValidUntil:               time.Now().UTC().AddDate(0, 0, 15),
			AppliedCommissionPercent: floatPtr(0),
			Items: []domain.OrderItemInput{
				{ProductName: "Recepción", Quantity: 1, UnitPrice: 1000},
			},
		})
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSent)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, director, order.ID, domain.OrderAccepted)
		require.NoError(t, err)
		order, err = svc.SetStatus(ctx, seller, order.ID, domain.OrderSold)
		require.NoError(t, err)
		return order
	}

	t.Run("partial payment keeps the order partial", func(t *testing.T) {
		order := newSoldOrder(t)
		// total: 1000 + 16% tax = 1160

		updated, err := svc.AddPayment(ctx, seller, order.ID, domain.CustomerPaymentRequest{
			Amount: 500, Method: "TRANSFERENCIA",
		})
		require.NoError(t, err)
		assert.InDelta(t, 660, updated.OutstandingBalance, 0.001)
		assert.Equal(t, domain.PaymentPartial, updated.PaymentStatus)
	})

	t.Run("balance within a cent settles the receivable", func(t *testing.T) {
		order := newSoldOrder(t)

		_, err := svc.AddPayment(ctx, seller, order.ID, domain.CustomerPaymentRequest{Amount: 1159.995})
		require.NoError(t, err)

		updated, err := svc.GetByID(ctx, seller, order.ID)
		require.NoError(t, err)
		assert.Zero(t, updated.OutstandingBalance)
		assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

		payments, err := svc.ListPayments(ctx, seller, order.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	t.Run("overpayment clamps the balance at zero", func(t *testing.T) {
		order := newSoldOrder(t)

		updated, err := svc.AddPayment(ctx, seller, order.ID, domain.CustomerPaymentRequest{Amount: 2000})
		require.NoError(t, err)
		assert.Zero(t, updated.OutstandingBalance)
		assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	})

	t.Run("payments are rejected before the sale", func(t *testing.T) {
		order, err := svc.Create(ctx, seller, domain.SalesOrderCreateRequest{
			ProjectName: "Aún cotizando",
			ClientID:    client.ID,
			TaxRateID:   taxRate.ID,
			ValidUntil:  time.Now().UTC().AddDate(0, 0, 15),
		})
		require.NoError(t, err)

		_, err = svc.AddPayment(ctx, seller, order.ID, domain.CustomerPaymentRequest{Amount: 100})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
