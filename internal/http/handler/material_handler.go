package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{materialService: materialService, logger: logger}
}

// List godoc
// @Summary List materials
// @Tags Materials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param category query string false "Filter by category"
// @Param productionRoute query string false "Filter by route" Enums(MATERIAL, PROCESO, CONSUMIBLE, SERVICIO)
// @Param providerId query string false "Filter by provider"
// @Param search query string false "Search by SKU or name"
// @Param includeInactive query bool false "Include deactivated materials"
// @Success 200 {object} domain.PagedResponse{data=[]domain.MaterialDTO}
// @Security BearerAuth
// @Router /materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := repository.MaterialFilters{
		Category:        r.URL.Query().Get("category"),
		Search:          r.URL.Query().Get("search"),
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
	}
	if route := r.URL.Query().Get("productionRoute"); route != "" {
		pr := domain.ProductionRoute(route)
		filters.ProductionRoute = &pr
	}
	if pid := r.URL.Query().Get("providerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid provider ID")
			return
		}
		filters.ProviderID = &id
	}

	materials, total, err := h.materialService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list materials", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToMaterialDTOs(materials),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get godoc
// @Summary Get a material
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}
	material, err := h.materialService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToMaterialDTO(material))
}

// Create godoc
// @Summary Create a material
// @Tags Materials
// @Accept json
// @Produce json
// @Param request body domain.MaterialCreateRequest true "Material data"
// @Success 201 {object} domain.MaterialDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.MaterialCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	material, err := h.materialService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToMaterialDTO(material))
}

// Update godoc
// @Summary Update a material
// @Description Edit descriptive fields. Stock quantities are owned by the inventory module.
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body domain.MaterialUpdateRequest true "Fields to update"
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /materials/{id} [put]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}
	var req domain.MaterialUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	material, err := h.materialService.Update(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToMaterialDTO(material))
}

// Delete godoc
// @Summary Deactivate a material
// @Tags Materials
// @Param id path string true "Material ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}
	if err := h.materialService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Categories godoc
// @Summary List material categories
// @Tags Materials
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Router /materials/categories [get]
func (h *MaterialHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.materialService.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// Import godoc
// @Summary Bulk import materials from CSV
// @Description Best-effort import: valid rows land, bad rows come back with their row number. Existing SKUs are updated in place.
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file (comma or semicolon separated, UTF-8 or Latin-1)"
// @Success 200 {object} domain.ImportResultDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /materials/import [post]
func (h *MaterialHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.materialService.ImportCSV(r.Context(), file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
