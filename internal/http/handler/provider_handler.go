package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type ProviderHandler struct {
	providerService *service.ProviderService
	logger          *zap.Logger
}

func NewProviderHandler(providerService *service.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{providerService: providerService, logger: logger}
}

// List godoc
// @Summary List providers
// @Tags Providers
// @Produce json
// @Param includeInactive query bool false "Include deactivated providers"
// @Success 200 {array} domain.ProviderDTO
// @Security BearerAuth
// @Router /providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	providers, err := h.providerService.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("failed to list providers", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProviderDTOs(providers))
}

// Get godoc
// @Summary Get a provider
// @Tags Providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} domain.ProviderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /providers/{id} [get]
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
		return
	}
	provider, err := h.providerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProviderDTO(provider))
}

// Create godoc
// @Summary Create a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param request body domain.ProviderRequest true "Provider data"
// @Success 201 {object} domain.ProviderDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /providers [post]
func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	provider, err := h.providerService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToProviderDTO(provider))
}

// Update godoc
// @Summary Update a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID"
// @Param request body domain.ProviderRequest true "Provider data"
// @Success 200 {object} domain.ProviderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /providers/{id} [put]
func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
		return
	}
	var req domain.ProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	provider, err := h.providerService.Update(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProviderDTO(provider))
}

// Delete godoc
// @Summary Deactivate a provider
// @Tags Providers
// @Param id path string true "Provider ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /providers/{id} [delete]
func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
		return
	}
	if err := h.providerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
