package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type DesignHandler struct {
	designService *service.DesignService
	logger        *zap.Logger
}

func NewDesignHandler(designService *service.DesignService, logger *zap.Logger) *DesignHandler {
	return &DesignHandler{designService: designService, logger: logger}
}

// ListMasters godoc
// @Summary List product families
// @Description Salespeople only see families with at least one READY version
// @Tags Design
// @Produce json
// @Param clientId query string false "Filter by client"
// @Param category query string false "Filter by category"
// @Success 200 {array} domain.ProductMasterDTO
// @Security BearerAuth
// @Router /design/masters [get]
func (h *DesignHandler) ListMasters(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	filters := repository.ProductMasterFilters{
		Category: r.URL.Query().Get("category"),
	}
	if cid := r.URL.Query().Get("clientId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid client ID")
			return
		}
		filters.ClientID = &id
	}

	masters, err := h.designService.ListMasters(r.Context(), *user, filters)
	if err != nil {
		h.logger.Error("failed to list product masters", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductMasterDTOs(masters))
}

// GetMaster godoc
// @Summary Get a product family with its versions
// @Tags Design
// @Produce json
// @Param id path string true "Master ID"
// @Success 200 {object} domain.ProductMasterDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters/{id} [get]
func (h *DesignHandler) GetMaster(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid master ID")
		return
	}
	master, err := h.designService.GetMaster(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductMasterDTO(master))
}

// CreateMaster godoc
// @Summary Create a product family
// @Tags Design
// @Accept json
// @Produce json
// @Param request body domain.ProductMasterRequest true "Family data"
// @Success 201 {object} domain.ProductMasterDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters [post]
func (h *DesignHandler) CreateMaster(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductMasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	master, err := h.designService.CreateMaster(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToProductMasterDTO(master))
}

// UpdateMaster godoc
// @Summary Update a product family
// @Tags Design
// @Accept json
// @Produce json
// @Param id path string true "Master ID"
// @Param request body domain.ProductMasterRequest true "Family data"
// @Success 200 {object} domain.ProductMasterDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters/{id} [put]
func (h *DesignHandler) UpdateMaster(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid master ID")
		return
	}
	var req domain.ProductMasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	master, err := h.designService.UpdateMaster(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductMasterDTO(master))
}

// DeleteMaster godoc
// @Summary Delete a product family with all its versions
// @Tags Design
// @Param id path string true "Master ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters/{id} [delete]
func (h *DesignHandler) DeleteMaster(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid master ID")
		return
	}
	if err := h.designService.DeleteMaster(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// UploadBlueprint godoc
// @Summary Upload a blueprint for a product family
// @Tags Design
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Master ID"
// @Param file formData file true "Blueprint file"
// @Success 200 {object} domain.ProductMasterDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters/{id}/blueprint [post]
func (h *DesignHandler) UploadBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid master ID")
		return
	}
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	master, err := h.designService.UploadBlueprint(r.Context(), id, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductMasterDTO(master))
}

// DownloadBlueprint godoc
// @Summary Download the blueprint of a product family
// @Tags Design
// @Produce octet-stream
// @Param id path string true "Master ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/masters/{id}/blueprint [get]
func (h *DesignHandler) DownloadBlueprint(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid master ID")
		return
	}
	rc, filename, err := h.designService.OpenBlueprint(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("blueprint download interrupted", zap.Error(err))
	}
}

// RenameCategory godoc
// @Summary Rename a product category across all families
// @Tags Design
// @Accept json
// @Produce json
// @Param request body domain.CategoryRenameRequest true "Old and new category names"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /design/categories/rename [post]
func (h *DesignHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryRenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	updated, err := h.designService.RenameCategory(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// CreateVersion godoc
// @Summary Create a recipe version
// @Tags Design
// @Accept json
// @Produce json
// @Param request body domain.ProductVersionRequest true "Version data with components"
// @Success 201 {object} domain.ProductVersionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/versions [post]
func (h *DesignHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	version, err := h.designService.CreateVersion(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToProductVersionDTO(version))
}

// GetVersion godoc
// @Summary Get a recipe version with its components
// @Tags Design
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} domain.ProductVersionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/versions/{id} [get]
func (h *DesignHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid version ID")
		return
	}
	version, err := h.designService.GetVersion(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductVersionDTO(version))
}

// UpdateVersion godoc
// @Summary Update a recipe version
// @Description Replaces the component list and reprices the version at current material costs
// @Tags Design
// @Accept json
// @Produce json
// @Param id path string true "Version ID"
// @Param request body domain.ProductVersionRequest true "Version data with components"
// @Success 200 {object} domain.ProductVersionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/versions/{id} [put]
func (h *DesignHandler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid version ID")
		return
	}
	var req domain.ProductVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	version, err := h.designService.UpdateVersion(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductVersionDTO(version))
}

// SetVersionStatus godoc
// @Summary Change the status of a recipe version
// @Tags Design
// @Accept json
// @Produce json
// @Param id path string true "Version ID"
// @Param request body domain.VersionStatusRequest true "Target status"
// @Success 200 {object} domain.ProductVersionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /design/versions/{id}/status [patch]
func (h *DesignHandler) SetVersionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid version ID")
		return
	}
	var req domain.VersionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	version, err := h.designService.SetVersionStatus(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToProductVersionDTO(version))
}
