package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// InventoryService posts goods receptions and reverses them. A reception
// moves stock, reprices materials and opens the mirrored payable invoice in
// a single database transaction, so a mid-flight failure leaves nothing
// half-applied.
type InventoryService struct {
	inventory *repository.InventoryRepository
	providers *repository.ProviderRepository
	invoices  *repository.PurchaseInvoiceRepository
	logger    *zap.Logger
}

func NewInventoryService(
	inventory *repository.InventoryRepository,
	providers *repository.ProviderRepository,
	invoices *repository.PurchaseInvoiceRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		inventory: inventory,
		providers: providers,
		invoices:  invoices,
		logger:    logger,
	}
}

// PostReception registers a goods receipt against a provider invoice folio.
func (s *InventoryService) PostReception(ctx context.Context, req domain.ReceptionCreateRequest) (*domain.InventoryReception, error) {
	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	folio := strings.TrimSpace(req.Folio)
	if _, err := s.inventory.GetReceptionByFolio(ctx, folio); err == nil {
		return nil, ErrDuplicateFolio
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// An invoice without an explicit due date is due on its own date.
	dueDate := req.InvoiceDate
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	reception := &domain.InventoryReception{
		Folio:       folio,
		ProviderID:  provider.ID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     dueDate,
		Status:      domain.ReceptionActive,
		Notes:       req.Notes,
	}

	err = s.inventory.Transaction(ctx, func(tx *gorm.DB) error {
		totalAmount := 0.0

		if err := tx.Create(reception).Error; err != nil {
			return err
		}

		for _, line := range req.Lines {
			var material domain.Material
			if err := tx.Where("id = ?", line.MaterialID).First(&material).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrMaterialNotFound, line.MaterialID)
				}
				return err
			}

			// Quantities arrive in purchase units; stock and cost are kept
			// in usage units.
			usageQty := money.Mul(line.Quantity, material.ConversionFactor)
			unitCost := money.UnitCost(line.TotalCost, usageQty)

			txn := domain.InventoryTransaction{
				ReceptionID:     reception.ID,
				MaterialID:      material.ID,
				TransactionType: domain.TransactionEntry,
				Quantity:        usageQty,
				UnitCost:        unitCost,
				TotalCost:       money.RoundCents(line.TotalCost),
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}

			material.PhysicalStock += usageQty
			material.CurrentCost = unitCost
			if err := tx.Save(&material).Error; err != nil {
				return err
			}

			totalAmount += line.TotalCost
		}

		reception.TotalAmount = money.RoundCents(totalAmount)
		if err := tx.Save(reception).Error; err != nil {
			return err
		}

		// Mirror the reception as an open payable.
		invoice := domain.PurchaseInvoice{
			Folio:              folio,
			InvoiceUUID:        strings.TrimSpace(req.InvoiceUUID),
			ProviderID:         provider.ID,
			ReceptionID:        &reception.ID,
			TotalAmount:        reception.TotalAmount,
			OutstandingBalance: reception.TotalAmount,
			InvoiceDate:        req.InvoiceDate,
			DueDate:            dueDate,
			Status:             domain.InvoicePending,
		}
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reception posted",
		zap.String("receptionId", reception.ID.String()),
		zap.String("folio", folio),
		zap.Float64("total", reception.TotalAmount))
	return s.GetReception(ctx, reception.ID)
}

func (s *InventoryService) GetReception(ctx context.Context, id uuid.UUID) (*domain.InventoryReception, error) {
	reception, err := s.inventory.GetReceptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceptionNotFound
		}
		return nil, err
	}
	return reception, nil
}

func (s *InventoryService) ListReceptions(ctx context.Context, page, pageSize int, providerID *uuid.UUID) ([]domain.InventoryReception, int64, error) {
	return s.inventory.ListReceptions(ctx, page, pageSize, providerID)
}

// CancelReception reverses a posted reception: stock is pulled back out
// (never below zero), material costs fall back to the latest surviving
// entry, and the mirrored invoice is cancelled. A reception whose invoice
// was already paid can no longer be reversed.
func (s *InventoryService) CancelReception(ctx context.Context, id uuid.UUID) (*domain.InventoryReception, error) {
	reception, err := s.GetReception(ctx, id)
	if err != nil {
		return nil, err
	}
	if reception.Status == domain.ReceptionCancelled {
		return nil, ErrReceptionCancelled
	}

	invoice, err := s.invoices.GetByReceptionID(ctx, reception.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if invoice != nil && invoice.Status == domain.InvoicePaid {
		return nil, ErrInvoicePaid
	}

	err = s.inventory.Transaction(ctx, func(tx *gorm.DB) error {
		for _, txn := range reception.Transactions {
			var material domain.Material
			if err := tx.Where("id = ?", txn.MaterialID).First(&material).Error; err != nil {
				return err
			}

			material.PhysicalStock -= txn.Quantity
			if material.PhysicalStock < 0 {
				material.PhysicalStock = 0
			}

			// The running cost rolls back to the latest entry that is not
			// part of this reception, or to zero when none survives.
			var latest domain.InventoryTransaction
			err := tx.
				Where("material_id = ? AND reception_id <> ? AND transaction_type = ?",
					txn.MaterialID, reception.ID, domain.TransactionEntry).
				Order("created_at DESC").
				First(&latest).Error
			switch {
			case err == nil:
				material.CurrentCost = latest.UnitCost
			case errors.Is(err, gorm.ErrRecordNotFound):
				material.CurrentCost = 0
			default:
				return err
			}

			if err := tx.Save(&material).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&domain.InventoryTransaction{}, "reception_id = ?", reception.ID).Error; err != nil {
			return err
		}

		// Renaming the folio frees it for a corrected re-capture while the
		// cancelled row stays on record.
		suffix := fmt.Sprintf("-CANCELADO-%s", reception.ID.String()[:8])
		reception.Folio = reception.Folio + suffix
		reception.Status = domain.ReceptionCancelled
		if err := tx.Save(reception).Error; err != nil {
			return err
		}

		if invoice != nil {
			invoice.Folio = invoice.Folio + suffix
			invoice.Status = domain.InvoiceCancelled
			invoice.OutstandingBalance = 0
			if err := tx.Save(invoice).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reception cancelled",
		zap.String("receptionId", reception.ID.String()),
		zap.String("folio", reception.Folio))
	return s.GetReception(ctx, reception.ID)
}
