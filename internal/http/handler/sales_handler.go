package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type SalesHandler struct {
	salesService *service.SalesOrderService
	logger       *zap.Logger
}

func NewSalesHandler(salesService *service.SalesOrderService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{salesService: salesService, logger: logger}
}

// List godoc
// @Summary List quotes
// @Description Salespeople only see their own quotes
// @Tags Sales
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status"
// @Param clientId query string false "Filter by client"
// @Success 200 {object} domain.PagedResponse{data=[]domain.SalesOrderDTO}
// @Security BearerAuth
// @Router /sales/orders [get]
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	filters := repository.SalesOrderFilters{}
	if status := r.URL.Query().Get("status"); status != "" {
		st := domain.SalesOrderStatus(status)
		filters.Status = &st
	}
	if cid := r.URL.Query().Get("clientId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid client ID")
			return
		}
		filters.ClientID = &id
	}

	orders, total, err := h.salesService.List(r.Context(), *user, page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToSalesOrderDTOs(orders),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get godoc
// @Summary Get a quote
// @Tags Sales
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.SalesOrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id} [get]
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	order, err := h.salesService.GetByID(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSalesOrderDTO(order))
}

// Create godoc
// @Summary Create a quote
// @Description Prices the quote and freezes production costs of catalog-backed lines
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body domain.SalesOrderCreateRequest true "Quote data"
// @Success 201 {object} domain.SalesOrderDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders [post]
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	var req domain.SalesOrderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	order, err := h.salesService.Create(r.Context(), *user, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToSalesOrderDTO(order))
}

// Update godoc
// @Summary Update a quote
// @Description Reprices the quote. Editing a SENT or ACCEPTED quote without a privileged role demotes it to CHANGE_REQUESTED.
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.SalesOrderUpdateRequest true "Fields to update"
// @Success 200 {object} domain.SalesOrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id} [put]
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req domain.SalesOrderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	order, err := h.salesService.Update(r.Context(), *user, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSalesOrderDTO(order))
}

// SetStatus godoc
// @Summary Move a quote through its lifecycle
// @Description Approval (ACCEPTED) and rejection (REJECTED) require a privileged role
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} domain.SalesOrderDTO
// @Failure 403 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id}/status [patch]
func (h *SalesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	order, err := h.salesService.SetStatus(r.Context(), *user, id, domain.SalesOrderStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSalesOrderDTO(order))
}

// Delete godoc
// @Summary Delete a quote
// @Tags Sales
// @Param id path string true "Order ID"
// @Success 204
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id} [delete]
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if err := h.salesService.Delete(r.Context(), *user, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// AddPayment godoc
// @Summary Record a customer payment against a sold order
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.CustomerPaymentRequest true "Payment data"
// @Success 200 {object} domain.SalesOrderDTO
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id}/payments [post]
func (h *SalesHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req domain.CustomerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	order, err := h.salesService.AddPayment(r.Context(), *user, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSalesOrderDTO(order))
}

// ListPayments godoc
// @Summary List customer payments of an order
// @Tags Sales
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {array} domain.CustomerPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id}/payments [get]
func (h *SalesHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	payments, err := h.salesService.ListPayments(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToCustomerPaymentDTOs(payments))
}

// DownloadPDF godoc
// @Summary Download the printable quote document
// @Tags Sales
// @Produce application/pdf
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sales/orders/{id}/pdf [get]
func (h *SalesHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	data, filename, err := h.salesService.QuotePDF(r.Context(), *user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}
