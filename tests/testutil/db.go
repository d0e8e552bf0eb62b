package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grupo-sgp/erp-api/internal/database"
	"github.com/grupo-sgp/erp-api/internal/domain"
)

var dbCounter int64

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. Each call gets its own database so tests never share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))

	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes access for transaction tests.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateTestUser inserts an active user with the given role.
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	user := &domain.User{
		Email:          fmt.Sprintf("user-%s@test.mx", uuid.New().String()[:8]),
		FullName:       "Usuario de Prueba",
		Role:           role,
		CommissionRate: 0.035,
		HashedPassword: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProvider inserts a provider with the given credit days.
func CreateTestProvider(t *testing.T, db *gorm.DB, creditDays int) *domain.Provider {
	provider := &domain.Provider{
		BusinessName: fmt.Sprintf("Proveedor %s", uuid.New().String()[:8]),
		ContactName:  "Contacto",
		Email:        "compras@proveedor.mx",
		CreditDays:   creditDays,
		IsActive:     true,
	}
	require.NoError(t, db.Create(provider).Error)
	return provider
}

// CreateTestClient inserts a client organization.
func CreateTestClient(t *testing.T, db *gorm.DB) *domain.Client {
	client := &domain.Client{
		BusinessName: fmt.Sprintf("Cliente %s", uuid.New().String()[:8]),
		TaxID:        "XAXX010101000",
		IsActive:     true,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestTaxRate inserts an active tax rate with the given fraction.
func CreateTestTaxRate(t *testing.T, db *gorm.DB, rate float64) *domain.TaxRate {
	taxRate := &domain.TaxRate{
		Name:     "IVA",
		Rate:     rate,
		IsActive: true,
	}
	require.NoError(t, db.Create(taxRate).Error)
	return taxRate
}

// CreateTestConfig inserts the global configuration row.
func CreateTestConfig(t *testing.T, db *gorm.DB) *domain.GlobalConfig {
	cfg := &domain.GlobalConfig{
		TargetProfitMargin:       0.30,
		CostTolerancePercent:     0.05,
		QuoteValidityDays:        15,
		DefaultEdgebandingFactor: 1.0,
		AnnualSalesTarget:        1000000,
	}
	require.NoError(t, db.Create(cfg).Error)
	return cfg
}

// CreateTestMaterial inserts a material with the given cost, stock and
// conversion factor.
func CreateTestMaterial(t *testing.T, db *gorm.DB, cost, stock, factor float64) *domain.Material {
	material := &domain.Material{
		SKU:              fmt.Sprintf("SKU-%s", uuid.New().String()[:8]),
		Name:             "Material de prueba",
		Category:         "Tableros",
		ProductionRoute:  domain.RouteMaterial,
		PurchaseUnit:     "hoja",
		UsageUnit:        "m2",
		ConversionFactor: factor,
		CurrentCost:      cost,
		PhysicalStock:    stock,
		IsActive:         true,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

// CreateTestAccount inserts a bank account with the given balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, balance float64) *domain.BankAccount {
	account := &domain.BankAccount{
		Name:           fmt.Sprintf("Cuenta %s", uuid.New().String()[:8]),
		BankName:       "BBVA",
		InitialBalance: balance,
		CurrentBalance: balance,
		IsActive:       true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// Date builds a UTC date without the time component.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
