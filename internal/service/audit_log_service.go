package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// AuditLogService records who did what against the API
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{auditRepo: auditRepo, logger: logger}
}

// AuditEntry is the input for one audit trail record
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Method     string
	Path       string
	StatusCode int
	Detail     map[string]interface{}
}

// Log writes one audit record. A failed write is logged and swallowed so
// auditing never turns a successful business operation into an error.
func (s *AuditLogService) Log(ctx context.Context, entry AuditEntry) {
	record := &domain.AuditLog{
		ID:         uuid.New(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Method:     entry.Method,
		Path:       entry.Path,
		StatusCode: entry.StatusCode,
		Detail:     "null",
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		uid := userCtx.UserID
		record.UserID = &uid
		record.UserEmail = userCtx.Email
	}

	if entry.Detail != nil {
		if detailJSON, err := json.Marshal(entry.Detail); err == nil {
			record.Detail = string(detailJSON)
		}
	}

	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.Error("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("path", entry.Path),
			zap.Error(err))
	}
}

// List returns audit records matching the filter, newest first.
func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, page, pageSize int) ([]domain.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, filter, page, pageSize)
}
