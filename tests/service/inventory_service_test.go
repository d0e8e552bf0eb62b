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

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createInventoryService(db *gorm.DB) *service.InventoryService {
	return service.NewInventoryService(
		repository.NewInventoryRepository(db),
		repository.NewProviderRepository(db),
		repository.NewPurchaseInvoiceRepository(db),
		zap.NewNop(),
	)
}

func TestInventoryService_PostReception(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createInventoryService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)
	// 1 sheet converts to 2.98 m².
	material := testutil.CreateTestMaterial(t, db, 100, 10, 2.98)

	t.Run("stock and cost move in usage units", func(t *testing.T) {
		req := domain.ReceptionCreateRequest{
			Folio:       "FAC-001",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 3, 2),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 10, TotalCost: 4200},
			},
		}

		reception, err := svc.PostReception(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.ReceptionActive, reception.Status)
		assert.InDelta(t, 4200, reception.TotalAmount, 0.001)
		require.Len(t, reception.Transactions, 1)
		assert.Equal(t, domain.TransactionEntry, reception.Transactions[0].TransactionType)
		assert.InDelta(t, 29.8, reception.Transactions[0].Quantity, 0.001)

		var updated domain.Material
		require.NoError(t, db.First(&updated, "id = ?", material.ID).Error)
		assert.InDelta(t, 39.8, updated.PhysicalStock, 0.001)
		// 4200 / 29.8 = 140.9395..., costs round up.
		assert.InDelta(t, 140.94, updated.CurrentCost, 0.001)
	})

	t.Run("a payable without a due date falls due on the invoice date", func(t *testing.T) {
		invoiceRepo := repository.NewPurchaseInvoiceRepository(db)

		var invoice domain.PurchaseInvoice
		require.NoError(t, db.First(&invoice, "folio = ?", "FAC-001").Error)
		assert.Equal(t, domain.InvoicePending, invoice.Status)
		assert.InDelta(t, 4200, invoice.OutstandingBalance, 0.001)
		assert.WithinDuration(t, testutil.Date(2026, 3, 2), invoice.DueDate, time.Second)
		require.NotNil(t, invoice.ReceptionID)

		byReception, err := invoiceRepo.GetByReceptionID(ctx, *invoice.ReceptionID)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, byReception.ID)
	})

	t.Run("duplicate folio is rejected", func(t *testing.T) {
		req := domain.ReceptionCreateRequest{
			Folio:       "FAC-001",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 3, 5),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 1, TotalCost: 100},
			},
		}
		_, err := svc.PostReception(ctx, req)
		assert.ErrorIs(t, err, service.ErrDuplicateFolio)
	})

	t.Run("an explicit due date is stored as sent", func(t *testing.T) {
		due := testutil.Date(2026, 3, 20)
		req := domain.ReceptionCreateRequest{
			Folio:       "FAC-002",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 3, 2),
			DueDate:     &due,
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 1, TotalCost: 420},
			},
		}
		reception, err := svc.PostReception(ctx, req)
		require.NoError(t, err)
		assert.WithinDuration(t, due, reception.DueDate, time.Second)
	})

	t.Run("unknown material rolls everything back", func(t *testing.T) {
		req := domain.ReceptionCreateRequest{
			Folio:       "FAC-003",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 3, 2),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 5, TotalCost: 500},
				{MaterialID: uuid.New(), Quantity: 1, TotalCost: 100},
			},
		}
		_, err := svc.PostReception(ctx, req)
		assert.ErrorIs(t, err, service.ErrMaterialNotFound)

		var count int64
		require.NoError(t, db.Model(&domain.InventoryReception{}).Where("folio = ?", "FAC-003").Count(&count).Error)
		assert.Zero(t, count)

		var after domain.Material
		require.NoError(t, db.First(&after, "id = ?", material.ID).Error)
		assert.InDelta(t, 42.78, after.PhysicalStock, 0.001)
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		req := domain.ReceptionCreateRequest{
			Folio:       "FAC-004",
			ProviderID:  uuid.New(),
			InvoiceDate: testutil.Date(2026, 3, 2),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 1, TotalCost: 100},
			},
		}
		_, err := svc.PostReception(ctx, req)
		assert.ErrorIs(t, err, service.ErrProviderNotFound)
	})
}

func TestInventoryService_CancelReception(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createInventoryService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 15)
	material := testutil.CreateTestMaterial(t, db, 50, 0, 1)

	post := func(t *testing.T, folio string, qty, totalCost float64) *domain.InventoryReception {
		reception, err := svc.PostReception(ctx, domain.ReceptionCreateRequest{
			Folio:       folio,
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 5, 4),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: qty, TotalCost: totalCost},
			},
		})
		require.NoError(t, err)
		return reception
	}

	t.Run("cancelling reverses stock and restores the prior cost", func(t *testing.T) {
		post(t, "REV-001", 10, 800)           // cost 80.00
		second := post(t, "REV-002", 10, 900) // cost 90.00

		var before domain.Material
		require.NoError(t, db.First(&before, "id = ?", material.ID).Error)
		require.InDelta(t, 90, before.CurrentCost, 0.001)

		cancelled, err := svc.CancelReception(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReceptionCancelled, cancelled.Status)
		assert.Contains(t, cancelled.Folio, "REV-002-CANCELADO-")

		var after domain.Material
		require.NoError(t, db.First(&after, "id = ?", material.ID).Error)
		assert.InDelta(t, 10, after.PhysicalStock, 0.001)
		assert.InDelta(t, 80, after.CurrentCost, 0.001)

		var invoice domain.PurchaseInvoice
		require.NoError(t, db.First(&invoice, "reception_id = ?", second.ID).Error)
		assert.Equal(t, domain.InvoiceCancelled, invoice.Status)
		assert.Zero(t, invoice.OutstandingBalance)
		assert.Contains(t, invoice.Folio, "-CANCELADO-")

		// The original folio is free for a corrected re-capture.
		_, err = svc.PostReception(ctx, domain.ReceptionCreateRequest{
			Folio:       "REV-002",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 5, 5),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: material.ID, Quantity: 10, TotalCost: 850},
			},
		})
		require.NoError(t, err)
	})

	t.Run("cost falls to zero when no entry survives", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createInventoryService(db)
		provider := testutil.CreateTestProvider(t, db, 15)
		lone := testutil.CreateTestMaterial(t, db, 0, 0, 1)

		reception, err := svc.PostReception(ctx, domain.ReceptionCreateRequest{
			Folio:       "SOLO-001",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 5, 4),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: lone.ID, Quantity: 5, TotalCost: 250},
			},
		})
		require.NoError(t, err)

		_, err = svc.CancelReception(ctx, reception.ID)
		require.NoError(t, err)

		var after domain.Material
		require.NoError(t, db.First(&after, "id = ?", lone.ID).Error)
		assert.Zero(t, after.PhysicalStock)
		assert.Zero(t, after.CurrentCost)
	})

	t.Run("stock never goes negative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := createInventoryService(db)
		provider := testutil.CreateTestProvider(t, db, 15)
		drained := testutil.CreateTestMaterial(t, db, 0, 0, 1)

		reception, err := svc.PostReception(ctx, domain.ReceptionCreateRequest{
			Folio:       "NEG-001",
			ProviderID:  provider.ID,
			InvoiceDate: testutil.Date(2026, 5, 4),
			Lines: []domain.ReceptionLineInput{
				{MaterialID: drained.ID, Quantity: 10, TotalCost: 500},
			},
		})
		require.NoError(t, err)

		// Consumption happened between posting and cancelling.
		require.NoError(t, db.Model(&domain.Material{}).Where("id = ?", drained.ID).Update("physical_stock", 4).Error)

		_, err = svc.CancelReception(ctx, reception.ID)
		require.NoError(t, err)

		var after domain.Material
		require.NoError(t, db.First(&after, "id = ?", drained.ID).Error)
		assert.Zero(t, after.PhysicalStock)
	})

	t.Run("a paid invoice blocks the reversal", func(t *testing.T) {
		reception := post(t, "PAG-001", 2, 100)

		require.NoError(t, db.Model(&domain.PurchaseInvoice{}).
			Where("reception_id = ?", reception.ID).
			Update("status", domain.InvoicePaid).Error)

		_, err := svc.CancelReception(ctx, reception.ID)
		assert.ErrorIs(t, err, service.ErrInvoicePaid)
	})

	t.Run("double cancellation is rejected", func(t *testing.T) {
		reception := post(t, "DOB-001", 1, 50)

		_, err := svc.CancelReception(ctx, reception.ID)
		require.NoError(t, err)
		_, err = svc.CancelReception(ctx, reception.ID)
		assert.ErrorIs(t, err, service.ErrReceptionCancelled)
	})

	t.Run("unknown reception", func(t *testing.T) {
		_, err := svc.CancelReception(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrReceptionNotFound)
	})
}
