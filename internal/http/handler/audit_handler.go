package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
)

type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

// List godoc
// @Summary List audit trail entries, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by acting user"
// @Param entityType query string false "Filter by entity type"
// @Param action query string false "Filter by action (CREATE, UPDATE, DELETE)"
// @Param startTime query string false "Start of period (RFC 3339 or YYYY-MM-DD)"
// @Param endTime query string false "End of period (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} domain.PagedResponse{data=[]domain.AuditLogDTO}
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filter := &repository.AuditLogFilter{
		EntityType: r.URL.Query().Get("entityType"),
		Action:     r.URL.Query().Get("action"),
	}
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		filter.UserID = &id
	}
	if raw := r.URL.Query().Get("startTime"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid startTime")
			return
		}
		filter.StartTime = &t
	}
	if raw := r.URL.Query().Get("endTime"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid endTime")
			return
		}
		// Date-only end bounds are inclusive of the whole day.
		if len(raw) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.EndTime = &t
	}

	logs, total, err := h.auditService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PagedResponse{
		Data:     mapper.ToAuditLogDTOs(logs),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
