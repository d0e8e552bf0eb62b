package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/docs"
	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/config"
	"github.com/grupo-sgp/erp-api/internal/database"
	"github.com/grupo-sgp/erp-api/internal/http/handler"
	"github.com/grupo-sgp/erp-api/internal/http/middleware"
	"github.com/grupo-sgp/erp-api/internal/http/router"
	"github.com/grupo-sgp/erp-api/internal/logger"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/internal/storage"
)

// @title SGP ERP API
// @version 1.0
// @description Quoting, inventory, payables and treasury backend for Grupo SGP

// @contact.name API Support
// @contact.email sistemas@gruposgp.mx

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "erp-staging.gruposgp.mx"
	case "production":
		docs.SwaggerInfo.Host = "erp.gruposgp.mx"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize storage
	var fileStorage storage.Storage
	switch cfg.Storage.Mode {
	case "cloud":
		fileStorage, err = storage.NewAzureBlobStorage(cfg.Storage.CloudConnectionString, cfg.Storage.CloudContainer, log)
	default:
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.LocalBasePath)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	clientRepo := repository.NewClientRepository(db)
	taxRateRepo := repository.NewTaxRateRepository(db)
	configRepo := repository.NewGlobalConfigRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	productRepo := repository.NewProductRepository(db)
	salesOrderRepo := repository.NewSalesOrderRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	invoiceRepo := repository.NewPurchaseInvoiceRepository(db)
	supplierPaymentRepo := repository.NewSupplierPaymentRepository(db)
	bankRepo := repository.NewBankRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Token service
	tokenService, err := auth.NewTokenService(&cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokenService, log)
	userService := service.NewUserService(userRepo, log)
	providerService := service.NewProviderService(providerRepo, log)
	clientService := service.NewClientService(clientRepo, log)
	taxRateService := service.NewTaxRateService(taxRateRepo, log)
	configService := service.NewConfigService(configRepo, fileStorage, log)
	materialService := service.NewMaterialService(materialRepo, providerRepo, log)
	designService := service.NewDesignService(productRepo, materialRepo, fileStorage, log)
	salesOrderService := service.NewSalesOrderService(salesOrderRepo, clientRepo, taxRateRepo, productRepo, configRepo, fileStorage, log)
	inventoryService := service.NewInventoryService(inventoryRepo, providerRepo, invoiceRepo, log)
	financeService := service.NewFinanceService(invoiceRepo, supplierPaymentRepo, log)
	treasuryService := service.NewTreasuryService(bankRepo, log)
	dashboardService := service.NewDashboardService(salesOrderRepo, configRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	// Seed the initial director account when configured
	if cfg.App.BootstrapPassword != "" {
		if err := userService.EnsureBootstrapUser(ctx, cfg.App.BootstrapEmail, cfg.App.BootstrapPassword); err != nil {
			return fmt.Errorf("failed to ensure bootstrap user: %w", err)
		}
	} else {
		log.Warn("Bootstrap password not configured, skipping initial account seeding")
	}

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(tokenService, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	providerHandler := handler.NewProviderHandler(providerService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	settingsHandler := handler.NewSettingsHandler(taxRateService, configService, log)
	materialHandler := handler.NewMaterialHandler(materialService, log)
	designHandler := handler.NewDesignHandler(designService, log)
	salesHandler := handler.NewSalesHandler(salesOrderService, log)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)
	financeHandler := handler.NewFinanceHandler(financeService, log)
	treasuryHandler := handler.NewTreasuryHandler(treasuryService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		userHandler,
		providerHandler,
		clientHandler,
		settingsHandler,
		materialHandler,
		designHandler,
		salesHandler,
		inventoryHandler,
		financeHandler,
		treasuryHandler,
		dashboardHandler,
		auditHandler,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
