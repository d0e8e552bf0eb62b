package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type BankRepository struct {
	db *gorm.DB
}

func NewBankRepository(db *gorm.DB) *BankRepository {
	return &BankRepository{db: db}
}

func (r *BankRepository) CreateAccount(ctx context.Context, account *domain.BankAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *BankRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *BankRepository) UpdateAccount(ctx context.Context, account *domain.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *BankRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.BankAccount, error) {
	var accounts []domain.BankAccount
	query := r.db.WithContext(ctx).Model(&domain.BankAccount{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *BankRepository) CreateTransaction(ctx context.Context, txn *domain.BankTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListTransactions returns the ledger of an account, newest first.
func (r *BankRepository) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.BankTransaction, int64, error) {
	var txns []domain.BankTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.BankTransaction{}).
		Where("account_id = ?", accountID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("transaction_date DESC, created_at DESC").
		Find(&txns).Error

	return txns, total, err
}

// Transaction runs fn inside a database transaction.
func (r *BankRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
