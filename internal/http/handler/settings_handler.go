package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/service"
)

// SettingsHandler exposes tax rates and the global business configuration
type SettingsHandler struct {
	taxRateService *service.TaxRateService
	configService  *service.ConfigService
	logger         *zap.Logger
}

func NewSettingsHandler(taxRateService *service.TaxRateService, configService *service.ConfigService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		taxRateService: taxRateService,
		configService:  configService,
		logger:         logger,
	}
}

// ListTaxRates godoc
// @Summary List tax rates
// @Tags Settings
// @Produce json
// @Param includeInactive query bool false "Include deactivated rates"
// @Success 200 {array} domain.TaxRateDTO
// @Security BearerAuth
// @Router /settings/tax-rates [get]
func (h *SettingsHandler) ListTaxRates(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	rates, err := h.taxRateService.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("failed to list tax rates", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTaxRateDTOs(rates))
}

// CreateTaxRate godoc
// @Summary Create a tax rate
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body domain.TaxRateRequest true "Tax rate data"
// @Success 201 {object} domain.TaxRateDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /settings/tax-rates [post]
func (h *SettingsHandler) CreateTaxRate(w http.ResponseWriter, r *http.Request) {
	var req domain.TaxRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	rate, err := h.taxRateService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToTaxRateDTO(rate))
}

// UpdateTaxRate godoc
// @Summary Update a tax rate
// @Tags Settings
// @Accept json
// @Produce json
// @Param id path string true "Tax rate ID"
// @Param request body domain.TaxRateRequest true "Tax rate data"
// @Success 200 {object} domain.TaxRateDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /settings/tax-rates/{id} [put]
func (h *SettingsHandler) UpdateTaxRate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tax rate ID")
		return
	}
	var req domain.TaxRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	rate, err := h.taxRateService.Update(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTaxRateDTO(rate))
}

// ToggleTaxRate godoc
// @Summary Toggle a tax rate on or off
// @Tags Settings
// @Produce json
// @Param id path string true "Tax rate ID"
// @Success 200 {object} domain.TaxRateDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /settings/tax-rates/{id}/toggle [patch]
func (h *SettingsHandler) ToggleTaxRate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tax rate ID")
		return
	}
	rate, err := h.taxRateService.Toggle(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToTaxRateDTO(rate))
}

// GetConfig godoc
// @Summary Get global configuration
// @Tags Settings
// @Produce json
// @Success 200 {object} domain.GlobalConfigDTO
// @Security BearerAuth
// @Router /settings/config [get]
func (h *SettingsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configService.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load configuration", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToGlobalConfigDTO(cfg))
}

// UpdateConfig godoc
// @Summary Update global configuration
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body domain.GlobalConfigUpdateRequest true "Fields to update"
// @Success 200 {object} domain.GlobalConfigDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /settings/config [put]
func (h *SettingsHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req domain.GlobalConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	cfg, err := h.configService.Update(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToGlobalConfigDTO(cfg))
}

// UploadLogo godoc
// @Summary Upload the company logo
// @Tags Settings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Logo image (png, jpg, svg, webp)"
// @Success 200 {object} domain.GlobalConfigDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /settings/config/logo [post]
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	cfg, err := h.configService.UploadLogo(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToGlobalConfigDTO(cfg))
}
