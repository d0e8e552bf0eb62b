package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, logger: logger}
}

// ListReceptions godoc
// @Summary List merchandise receptions
// @Tags Inventory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param providerId query string false "Filter by provider"
// @Success 200 {object} domain.PagedResponse{data=[]domain.ReceptionDTO}
// @Security BearerAuth
// @Router /inventory/receptions [get]
func (h *InventoryHandler) ListReceptions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var providerID *uuid.UUID
	if pid := r.URL.Query().Get("providerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
			return
		}
		providerID = &id
	}

	receptions, total, err := h.inventoryService.ListReceptions(r.Context(), page, pageSize, providerID)
	if err != nil {
		h.logger.Error("failed to list receptions", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToReceptionDTOs(receptions),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetReception godoc
// @Summary Get a reception with its stock movements
// @Tags Inventory
// @Produce json
// @Param id path string true "Reception ID"
// @Success 200 {object} domain.ReceptionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/receptions/{id} [get]
func (h *InventoryHandler) GetReception(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reception ID")
		return
	}
	reception, err := h.inventoryService.GetReception(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToReceptionDTO(reception))
}

// PostReception godoc
// @Summary Register a merchandise reception
// @Description Updates stock and replacement costs of every received material and mirrors the reception as a payable invoice
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body domain.ReceptionCreateRequest true "Reception data"
// @Success 201 {object} domain.ReceptionDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/receptions [post]
func (h *InventoryHandler) PostReception(w http.ResponseWriter, r *http.Request) {
	var req domain.ReceptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	reception, err := h.inventoryService.PostReception(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToReceptionDTO(reception))
}

// CancelReception godoc
// @Summary Cancel a reception
// @Description Reverts stock, restores previous replacement costs and voids the mirrored invoice. Blocked once the invoice is paid.
// @Tags Inventory
// @Produce json
// @Param id path string true "Reception ID"
// @Success 200 {object} domain.ReceptionDTO
// @Failure 404 {object} domain.APIError
// @Failure 412 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/receptions/{id}/cancel [post]
func (h *InventoryHandler) CancelReception(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reception ID")
		return
	}
	reception, err := h.inventoryService.CancelReception(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToReceptionDTO(reception))
}
