package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grupo-sgp/erp-api/internal/service"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains path prefixes that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited
	SkipMethods []string
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/swagger",
			"/api/v1/auth/login",
		},
		SkipMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
	}
}

// AuditMiddleware records successful mutating requests in the audit trail
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{auditService: auditService, config: config}
}

// Audit returns middleware that logs modifications to the audit log
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		var requestBody []byte
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// Only successful modifications make it into the trail.
		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}

		action := methodToAction(r.Method)
		if action == "" {
			return
		}

		entityType, entityID := extractEntityInfo(r)

		var detail map[string]interface{}
		if len(requestBody) > 0 {
			var parsed map[string]interface{}
			if json.Unmarshal(requestBody, &parsed) == nil {
				delete(parsed, "password")
				delete(parsed, "secret")
				delete(parsed, "token")
				detail = parsed
			}
		}

		m.auditService.Log(r.Context(), service.AuditEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: rw.statusCode,
			Detail:     detail,
		})
	})
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}

	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skipPath) {
			return false
		}
	}

	return true
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return ""
	}
}

// extractEntityInfo derives the entity type from the matched route and the
// entity ID from the "id" URL param, when present.
func extractEntityInfo(r *http.Request) (string, string) {
	entityID := ""
	pattern := r.URL.Path

	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		entityID = routeCtx.URLParam("id")
		if p := routeCtx.RoutePattern(); p != "" {
			pattern = p
		}
	}

	return parseEntityFromPath(pattern), entityID
}

func parseEntityFromPath(path string) string {
	if strings.Contains(path, "/orders/") && strings.HasSuffix(path, "/payments") {
		return "CustomerPayment"
	}

	entityMap := map[string]string{
		"users":        "User",
		"providers":    "Provider",
		"clients":      "Client",
		"tax-rates":    "TaxRate",
		"config":       "GlobalConfig",
		"materials":    "Material",
		"masters":      "ProductMaster",
		"versions":     "ProductVersion",
		"orders":       "SalesOrder",
		"receptions":   "InventoryReception",
		"invoices":     "PurchaseInvoice",
		"payments":     "SupplierPayment",
		"accounts":     "BankAccount",
		"transfers":    "BankTransaction",
		"transactions": "BankTransaction",
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	// Later segments are more specific (orders/{id}/payments is a payment).
	for i := len(parts) - 1; i >= 0; i-- {
		if entityType, ok := entityMap[parts[i]]; ok {
			return entityType
		}
	}

	return "Unknown"
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
