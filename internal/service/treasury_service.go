package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// TreasuryService manages bank accounts and their ledger
type TreasuryService struct {
	banks  *repository.BankRepository
	logger *zap.Logger
}

func NewTreasuryService(banks *repository.BankRepository, logger *zap.Logger) *TreasuryService {
	return &TreasuryService{banks: banks, logger: logger}
}

func (s *TreasuryService) CreateAccount(ctx context.Context, req domain.BankAccountRequest) (*domain.BankAccount, error) {
	account := &domain.BankAccount{
		Name:           strings.TrimSpace(req.Name),
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		CLABE:          req.CLABE,
		InitialBalance: money.RoundCents(req.InitialBalance),
		CurrentBalance: money.RoundCents(req.InitialBalance),
		IsActive:       true,
	}
	if err := s.banks.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *TreasuryService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	account, err := s.banks.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *TreasuryService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.BankAccount, error) {
	return s.banks.ListAccounts(ctx, includeInactive)
}

func (s *TreasuryService) UpdateAccount(ctx context.Context, id uuid.UUID, req domain.BankAccountRequest) (*domain.BankAccount, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	// Balances are ledger-driven; only descriptive fields are editable here.
	account.Name = strings.TrimSpace(req.Name)
	account.BankName = req.BankName
	account.AccountNumber = req.AccountNumber
	account.CLABE = req.CLABE
	if err := s.banks.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *TreasuryService) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	account.IsActive = false
	return s.banks.UpdateAccount(ctx, account)
}

// RecordTransaction registers a manual movement and adjusts the balance.
// Outgoing movements that the balance cannot cover are refused.
func (s *TreasuryService) RecordTransaction(ctx context.Context, req domain.BankTransactionRequest) (*domain.BankTransaction, error) {
	txType := domain.BankTransactionType(req.Type)
	if txType != domain.BankTxIn && txType != domain.BankTxOut {
		return nil, ErrInvalidInput
	}

	date := time.Now().UTC()
	if req.TransactionDate != nil {
		date = *req.TransactionDate
	}

	var movement *domain.BankTransaction
	err := s.banks.Transaction(ctx, func(tx *gorm.DB) error {
		var account domain.BankAccount
		if err := tx.Where("id = ?", req.AccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		if txType == domain.BankTxOut {
			if account.CurrentBalance+money.Epsilon < req.Amount {
				return ErrInsufficientFunds
			}
			account.CurrentBalance = money.RoundCents(account.CurrentBalance - req.Amount)
		} else {
			account.CurrentBalance = money.RoundCents(account.CurrentBalance + req.Amount)
		}

		movement = &domain.BankTransaction{
			AccountID:       account.ID,
			TransactionType: txType,
			Amount:          money.RoundCents(req.Amount),
			Concept:         strings.TrimSpace(req.Concept),
			TransactionDate: date,
		}
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Transfer moves money between two accounts as a pair of TRANSFER legs that
// reference each other.
func (s *TreasuryService) Transfer(ctx context.Context, req domain.TransferRequest) ([]domain.BankTransaction, error) {
	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}

	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		concept = "Traspaso entre cuentas"
	}

	var legs []domain.BankTransaction
	err := s.banks.Transaction(ctx, func(tx *gorm.DB) error {
		var from, to domain.BankAccount
		if err := tx.Where("id = ?", req.FromAccountID).First(&from).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if err := tx.Where("id = ?", req.ToAccountID).First(&to).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if from.CurrentBalance+money.Epsilon < req.Amount {
			return ErrInsufficientFunds
		}

		now := time.Now().UTC()
		out := domain.BankTransaction{
			AccountID:         from.ID,
			TransactionType:   domain.BankTxTransfer,
			Amount:            -money.RoundCents(req.Amount),
			Concept:           concept,
			TransactionDate:   now,
			RelatedEntityType: "bank_account",
			RelatedEntityID:   &to.ID,
		}
		in := domain.BankTransaction{
			AccountID:         to.ID,
			TransactionType:   domain.BankTxTransfer,
			Amount:            money.RoundCents(req.Amount),
			Concept:           concept,
			TransactionDate:   now,
			RelatedEntityType: "bank_account",
			RelatedEntityID:   &from.ID,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		if err := tx.Create(&in).Error; err != nil {
			return err
		}

		from.CurrentBalance = money.RoundCents(from.CurrentBalance - req.Amount)
		to.CurrentBalance = money.RoundCents(to.CurrentBalance + req.Amount)
		if err := tx.Save(&from).Error; err != nil {
			return err
		}
		if err := tx.Save(&to).Error; err != nil {
			return err
		}

		legs = []domain.BankTransaction{out, in}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("from", req.FromAccountID.String()),
		zap.String("to", req.ToAccountID.String()),
		zap.Float64("amount", req.Amount))
	return legs, nil
}

func (s *TreasuryService) History(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.BankTransaction, int64, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, 0, err
	}
	return s.banks.ListTransactions(ctx, accountID, page, pageSize)
}
