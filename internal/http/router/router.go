package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/config"
	"github.com/grupo-sgp/erp-api/internal/database"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/http/handler"
	"github.com/grupo-sgp/erp-api/internal/http/middleware"

	_ "github.com/grupo-sgp/erp-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	auditMiddleware  *middleware.AuditMiddleware
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	providerHandler  *handler.ProviderHandler
	clientHandler    *handler.ClientHandler
	settingsHandler  *handler.SettingsHandler
	materialHandler  *handler.MaterialHandler
	designHandler    *handler.DesignHandler
	salesHandler     *handler.SalesHandler
	inventoryHandler *handler.InventoryHandler
	financeHandler   *handler.FinanceHandler
	treasuryHandler  *handler.TreasuryHandler
	dashboardHandler *handler.DashboardHandler
	auditHandler     *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	providerHandler *handler.ProviderHandler,
	clientHandler *handler.ClientHandler,
	settingsHandler *handler.SettingsHandler,
	materialHandler *handler.MaterialHandler,
	designHandler *handler.DesignHandler,
	salesHandler *handler.SalesHandler,
	inventoryHandler *handler.InventoryHandler,
	financeHandler *handler.FinanceHandler,
	treasuryHandler *handler.TreasuryHandler,
	dashboardHandler *handler.DashboardHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		auditMiddleware:  auditMiddleware,
		authHandler:      authHandler,
		userHandler:      userHandler,
		providerHandler:  providerHandler,
		clientHandler:    clientHandler,
		settingsHandler:  settingsHandler,
		materialHandler:  materialHandler,
		designHandler:    designHandler,
		salesHandler:     salesHandler,
		inventoryHandler: inventoryHandler,
		financeHandler:   financeHandler,
		treasuryHandler:  treasuryHandler,
		dashboardHandler: dashboardHandler,
		auditHandler:     auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with connection pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitLogin)
			r.Post("/auth/login", rt.authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)
			r.Use(rt.auditMiddleware.Audit)

			adminOnly := rt.authMiddleware.RequireRole(domain.RoleDirector, domain.RoleAdmin)

			// Users (administration only)
			r.Route("/users", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Get("/{id}", rt.userHandler.Get)
				r.Put("/{id}", rt.userHandler.Update)
				r.Delete("/{id}", rt.userHandler.Delete)
			})

			// Providers
			r.Route("/providers", func(r chi.Router) {
				r.Get("/", rt.providerHandler.List)
				r.Post("/", rt.providerHandler.Create)
				r.Get("/{id}", rt.providerHandler.Get)
				r.Put("/{id}", rt.providerHandler.Update)
				r.Delete("/{id}", rt.providerHandler.Delete)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.Get)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Settings
			r.Route("/settings", func(r chi.Router) {
				r.Get("/tax-rates", rt.settingsHandler.ListTaxRates)
				r.Get("/config", rt.settingsHandler.GetConfig)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/tax-rates", rt.settingsHandler.CreateTaxRate)
					r.Put("/tax-rates/{id}", rt.settingsHandler.UpdateTaxRate)
					r.Patch("/tax-rates/{id}/toggle", rt.settingsHandler.ToggleTaxRate)
					r.Put("/config", rt.settingsHandler.UpdateConfig)
					r.Post("/config/logo", rt.settingsHandler.UploadLogo)
				})
			})

			// Materials
			r.Route("/materials", func(r chi.Router) {
				r.Get("/", rt.materialHandler.List)
				r.Post("/", rt.materialHandler.Create)
				r.Get("/categories", rt.materialHandler.Categories)
				r.Post("/import", rt.materialHandler.Import)
				r.Get("/{id}", rt.materialHandler.Get)
				r.Put("/{id}", rt.materialHandler.Update)
				r.Delete("/{id}", rt.materialHandler.Delete)
			})

			// Product design catalog
			r.Route("/design", func(r chi.Router) {
				r.Route("/masters", func(r chi.Router) {
					r.Get("/", rt.designHandler.ListMasters)
					r.Post("/", rt.designHandler.CreateMaster)
					r.Post("/rename-category", rt.designHandler.RenameCategory)
					r.Get("/{id}", rt.designHandler.GetMaster)
					r.Put("/{id}", rt.designHandler.UpdateMaster)
					r.Delete("/{id}", rt.designHandler.DeleteMaster)
					r.Post("/{id}/blueprint", rt.designHandler.UploadBlueprint)
					r.Get("/{id}/blueprint", rt.designHandler.DownloadBlueprint)
				})
				r.Route("/versions", func(r chi.Router) {
					r.Post("/", rt.designHandler.CreateVersion)
					r.Get("/{id}", rt.designHandler.GetVersion)
					r.Put("/{id}", rt.designHandler.UpdateVersion)
					r.Patch("/{id}/status", rt.designHandler.SetVersionStatus)
				})
			})

			// Sales quotes and orders
			r.Route("/sales/orders", func(r chi.Router) {
				r.Get("/", rt.salesHandler.List)
				r.Post("/", rt.salesHandler.Create)
				r.Get("/{id}", rt.salesHandler.Get)
				r.Put("/{id}", rt.salesHandler.Update)
				r.Delete("/{id}", rt.salesHandler.Delete)
				r.Patch("/{id}/status", rt.salesHandler.SetStatus)
				r.Get("/{id}/payments", rt.salesHandler.ListPayments)
				r.Post("/{id}/payments", rt.salesHandler.AddPayment)
				r.Get("/{id}/pdf", rt.salesHandler.DownloadPDF)
			})

			// Inventory
			r.Route("/inventory/receptions", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.ListReceptions)
				r.Post("/", rt.inventoryHandler.PostReception)
				r.Get("/{id}", rt.inventoryHandler.GetReception)
				r.Post("/{id}/cancel", rt.inventoryHandler.CancelReception)
			})

			// Accounts payable
			r.Route("/finance", func(r chi.Router) {
				r.Get("/invoices", rt.financeHandler.ListInvoices)
				r.Get("/invoices/{id}", rt.financeHandler.GetInvoice)
				r.Get("/invoices/{id}/payments", rt.financeHandler.ListInvoicePayments)

				r.Get("/payments", rt.financeHandler.ListPayments)
				r.Post("/payments", rt.financeHandler.RequestPayment)
				r.Get("/payments/{id}", rt.financeHandler.GetPayment)
				r.Put("/payments/{id}", rt.financeHandler.UpdatePayment)
				r.Delete("/payments/{id}", rt.financeHandler.DeletePayment)

				// Approval and execution are management-only decisions
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/payments/{id}/approve", rt.financeHandler.ApprovePayment)
					r.Post("/payments/{id}/reject", rt.financeHandler.RejectPayment)
					r.Post("/payments/{id}/revoke", rt.financeHandler.RevokeApproval)
					r.Post("/payments/{id}/execute", rt.financeHandler.ExecutePayment)
				})

				r.Get("/reports/aging", rt.financeHandler.AgingReport)
				r.Get("/reports/payment-stats", rt.financeHandler.PayableStats)
			})

			// Treasury (management only)
			r.Route("/treasury", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/accounts", rt.treasuryHandler.ListAccounts)
				r.Post("/accounts", rt.treasuryHandler.CreateAccount)
				r.Get("/accounts/{id}", rt.treasuryHandler.GetAccount)
				r.Put("/accounts/{id}", rt.treasuryHandler.UpdateAccount)
				r.Delete("/accounts/{id}", rt.treasuryHandler.DeactivateAccount)
				r.Get("/accounts/{id}/transactions", rt.treasuryHandler.History)
				r.Post("/transactions", rt.treasuryHandler.RecordTransaction)
				r.Post("/transfers", rt.treasuryHandler.Transfer)
			})

			// Dashboard
			r.Get("/dashboard", rt.dashboardHandler.Summary)

			// Audit trail (management only)
			r.With(adminOnly).Get("/audit-logs", rt.auditHandler.List)
		})
	})

	return r
}
