package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// SalesOrderFilters represents filter options for listing sales orders
type SalesOrderFilters struct {
	Status   *domain.SalesOrderStatus
	ClientID *uuid.UUID
	UserID   *uuid.UUID
}

type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

func (r *SalesOrderRepository) Create(ctx context.Context, order *domain.SalesOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *SalesOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SalesOrder, error) {
	var order domain.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *SalesOrderRepository) Update(ctx context.Context, order *domain.SalesOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *SalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.SalesOrderItem{}, "sales_order_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.SalesOrder{}, "id = ?", id).Error
	})
}

func (r *SalesOrderRepository) List(ctx context.Context, page, pageSize int, filters SalesOrderFilters) ([]domain.SalesOrder, int64, error) {
	var orders []domain.SalesOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SalesOrder{}).
		Preload("Client").
		Preload("Items")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error

	return orders, total, err
}

// ReplaceItems swaps the full item list of an order in one transaction.
// Item edits always send the complete list and totals are recomputed after.
func (r *SalesOrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.SalesOrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.SalesOrderItem{}, "sales_order_id = ?", orderID).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].SalesOrderID = orderID
		}
		return tx.Create(&items).Error
	})
}

// SoldTotalsForYear sums totals of SOLD/COMPLETED orders created in a year.
func (r *SalesOrderRepository) SoldTotalsForYear(ctx context.Context, year int) (float64, int64, error) {
	type row struct {
		Total float64
		Count int64
	}
	var res row
	err := r.db.WithContext(ctx).Model(&domain.SalesOrder{}).
		Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS count").
		Where("status IN ?", []domain.SalesOrderStatus{domain.OrderSold, domain.OrderInProduction, domain.OrderCompleted}).
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Scan(&res).Error
	return res.Total, res.Count, err
}

// CountByStatus returns order counts grouped by status.
func (r *SalesOrderRepository) CountByStatus(ctx context.Context) (map[domain.SalesOrderStatus]int64, error) {
	type row struct {
		Status domain.SalesOrderStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.SalesOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.SalesOrderStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// ReceivablesTotal sums outstanding balances across sold orders.
func (r *SalesOrderRepository) ReceivablesTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.SalesOrder{}).
		Select("COALESCE(SUM(outstanding_balance), 0)").
		Where("payment_status <> ?", domain.PaymentPaid).
		Where("status IN ?", []domain.SalesOrderStatus{domain.OrderSold, domain.OrderInProduction, domain.OrderCompleted}).
		Scan(&total).Error
	return total, err
}

func (r *SalesOrderRepository) CreatePayment(ctx context.Context, payment *domain.CustomerPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *SalesOrderRepository) ListPayments(ctx context.Context, orderID uuid.UUID) ([]domain.CustomerPayment, error) {
	var payments []domain.CustomerPayment
	err := r.db.WithContext(ctx).
		Where("sales_order_id = ?", orderID).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}
