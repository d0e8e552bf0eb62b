package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type TreasuryHandler struct {
	treasuryService *service.TreasuryService
	logger          *zap.Logger
}

func NewTreasuryHandler(treasuryService *service.TreasuryService, logger *zap.Logger) *TreasuryHandler {
	return &TreasuryHandler{treasuryService: treasuryService, logger: logger}
}

// ListAccounts godoc
// @Summary List bank accounts
// @Tags Treasury
// @Produce json
// @Param includeInactive query bool false "Include deactivated accounts"
// @Success 200 {array} domain.BankAccountDTO
// @Security BearerAuth
// @Router /treasury/accounts [get]
func (h *TreasuryHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	accounts, err := h.treasuryService.ListAccounts(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToBankAccountDTOs(accounts))
}

// GetAccount godoc
// @Summary Get a bank account
// @Tags Treasury
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} domain.BankAccountDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/accounts/{id} [get]
func (h *TreasuryHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	account, err := h.treasuryService.GetAccount(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToBankAccountDTO(account))
}

// CreateAccount godoc
// @Summary Register a bank account
// @Tags Treasury
// @Accept json
// @Produce json
// @Param request body domain.BankAccountRequest true "Account data"
// @Success 201 {object} domain.BankAccountDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/accounts [post]
func (h *TreasuryHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.BankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	account, err := h.treasuryService.CreateAccount(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToBankAccountDTO(account))
}

// UpdateAccount godoc
// @Summary Update descriptive fields of a bank account
// @Description Balances are ledger-driven and cannot be edited directly
// @Tags Treasury
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body domain.BankAccountRequest true "Account data"
// @Success 200 {object} domain.BankAccountDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/accounts/{id} [put]
func (h *TreasuryHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	var req domain.BankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	account, err := h.treasuryService.UpdateAccount(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToBankAccountDTO(account))
}

// DeactivateAccount godoc
// @Summary Deactivate a bank account
// @Tags Treasury
// @Param id path string true "Account ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/accounts/{id} [delete]
func (h *TreasuryHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	if err := h.treasuryService.DeactivateAccount(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// RecordTransaction godoc
// @Summary Record a manual deposit or withdrawal
// @Tags Treasury
// @Accept json
// @Produce json
// @Param request body domain.BankTransactionRequest true "Movement data"
// @Success 201 {object} domain.BankTransactionDTO
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/transactions [post]
func (h *TreasuryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.BankTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	txn, err := h.treasuryService.RecordTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToBankTransactionDTO(txn))
}

// Transfer godoc
// @Summary Move funds between two accounts
// @Description Records a linked pair of transfer movements, one per account
// @Tags Treasury
// @Accept json
// @Produce json
// @Param request body domain.TransferRequest true "Transfer data"
// @Success 201 {array} domain.BankTransactionDTO
// @Failure 409 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/transfers [post]
func (h *TreasuryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	legs, err := h.treasuryService.Transfer(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToBankTransactionDTOs(legs))
}

// History godoc
// @Summary List movements of an account, newest first
// @Tags Treasury
// @Produce json
// @Param id path string true "Account ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PagedResponse{data=[]domain.BankTransactionDTO}
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /treasury/accounts/{id}/transactions [get]
func (h *TreasuryHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	page, pageSize := parsePagination(r)
	txns, total, err := h.treasuryService.History(r.Context(), id, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToBankTransactionDTOs(txns),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
