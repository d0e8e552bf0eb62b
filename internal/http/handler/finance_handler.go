package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type FinanceHandler struct {
	financeService *service.FinanceService
	logger         *zap.Logger
}

func NewFinanceHandler(financeService *service.FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{financeService: financeService, logger: logger}
}

// ListInvoices godoc
// @Summary List purchase invoices
// @Tags Finance
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status"
// @Param providerId query string false "Filter by provider"
// @Success 200 {object} domain.PagedResponse{data=[]domain.PurchaseInvoiceDTO}
// @Security BearerAuth
// @Router /finance/invoices [get]
func (h *FinanceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := repository.PurchaseInvoiceFilters{}
	if status := r.URL.Query().Get("status"); status != "" {
		st := domain.InvoiceStatus(status)
		filters.Status = &st
	}
	if pid := r.URL.Query().Get("providerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
			return
		}
		filters.ProviderID = &id
	}

	invoices, total, err := h.financeService.ListInvoices(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToPurchaseInvoiceDTOs(invoices),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetInvoice godoc
// @Summary Get a purchase invoice
// @Tags Finance
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.PurchaseInvoiceDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/invoices/{id} [get]
func (h *FinanceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}
	invoice, err := h.financeService.GetInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToPurchaseInvoiceDTO(invoice))
}

// ListInvoicePayments godoc
// @Summary List payments requested against an invoice
// @Tags Finance
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {array} domain.SupplierPaymentDTO
// @Security BearerAuth
// @Router /finance/invoices/{id}/payments [get]
func (h *FinanceHandler) ListInvoicePayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}
	payments, err := h.financeService.ListPaymentsByInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTOs(payments))
}

// ListPayments godoc
// @Summary List supplier payment requests
// @Tags Finance
// @Produce json
// @Param status query string false "Filter by status (PENDING, APPROVED, PAID, REJECTED)"
// @Success 200 {array} domain.SupplierPaymentDTO
// @Security BearerAuth
// @Router /finance/payments [get]
func (h *FinanceHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	status := domain.SupplierPaymentStatus(r.URL.Query().Get("status"))
	payments, err := h.financeService.ListPayments(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list payments", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTOs(payments))
}

// GetPayment godoc
// @Summary Get a supplier payment request
// @Tags Finance
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id} [get]
func (h *FinanceHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	payment, err := h.financeService.GetPayment(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// RequestPayment godoc
// @Summary Request a payment against an invoice
// @Description Rejected when the requested amount plus already committed payments would exceed the invoice balance
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body domain.SupplierPaymentRequest true "Payment request"
// @Success 201 {object} domain.SupplierPaymentDTO
// @Failure 409 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments [post]
func (h *FinanceHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	var req domain.SupplierPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	payment, err := h.financeService.RequestPayment(r.Context(), *user, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToSupplierPaymentDTO(payment))
}

// UpdatePayment godoc
// @Summary Update a pending payment request
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body domain.SupplierPaymentUpdateRequest true "Fields to update"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id} [put]
func (h *FinanceHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	var req domain.SupplierPaymentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	payment, err := h.financeService.UpdatePayment(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// DeletePayment godoc
// @Summary Delete a pending or rejected payment request
// @Tags Finance
// @Param id path string true "Payment ID"
// @Success 204
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id} [delete]
func (h *FinanceHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	if err := h.financeService.DeletePayment(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ApprovePayment godoc
// @Summary Approve a payment request and assign the paying account
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body domain.PaymentApprovalRequest true "Paying account"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 403 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id}/approve [post]
func (h *FinanceHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	var req domain.PaymentApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	payment, err := h.financeService.ApprovePayment(r.Context(), *user, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// RejectPayment godoc
// @Summary Reject a payment request
// @Tags Finance
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id}/reject [post]
func (h *FinanceHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	payment, err := h.financeService.RejectPayment(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// RevokeApproval godoc
// @Summary Send an approved payment back to pending
// @Tags Finance
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id}/revoke [post]
func (h *FinanceHandler) RevokeApproval(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	payment, err := h.financeService.RevokeApproval(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// ExecutePayment godoc
// @Summary Execute an approved payment
// @Description Debits the assigned bank account, records the treasury movement and settles the invoice balance atomically
// @Tags Finance
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.SupplierPaymentDTO
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /finance/payments/{id}/execute [post]
func (h *FinanceHandler) ExecutePayment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	payment, err := h.financeService.ExecutePayment(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierPaymentDTO(payment))
}

// AgingReport godoc
// @Summary Accounts payable aging report
// @Tags Finance
// @Produce json
// @Param asOf query string false "Reference date (RFC 3339 or YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.AgingReportDTO
// @Security BearerAuth
// @Router /finance/reports/aging [get]
func (h *FinanceHandler) AgingReport(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid asOf date")
			return
		}
		asOf = parsed
	}
	report, err := h.financeService.AgingReport(r.Context(), asOf)
	if err != nil {
		h.logger.Error("failed to build aging report", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// PayableStats godoc
// @Summary Payment planning buckets around the weekly Friday cutoff
// @Tags Finance
// @Produce json
// @Success 200 {object} domain.PayableStatsDTO
// @Security BearerAuth
// @Router /finance/reports/payment-stats [get]
func (h *FinanceHandler) PayableStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.financeService.PayableStats(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to build payable stats", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
