package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

// TokenResponse is the login response payload
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	UserID      uuid.UUID `json:"userId"`
	Role        UserRole  `json:"role"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
}

type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Role           UserRole  `json:"role"`
	CommissionRate float64   `json:"commissionRate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      string    `json:"createdAt"`
}

type ProviderDTO struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"businessName"`
	ContactName  string    `json:"contactName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreditDays   int       `json:"creditDays"`
	IsActive     bool      `json:"isActive"`
}

// ClientContactDTO is one of the four contact slots of a client
type ClientContactDTO struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type ClientDTO struct {
	ID           uuid.UUID          `json:"id"`
	BusinessName string             `json:"businessName"`
	TaxID        string             `json:"taxId,omitempty"`
	Address      string             `json:"address,omitempty"`
	Contacts     []ClientContactDTO `json:"contacts"`
	IsActive     bool               `json:"isActive"`
}

type TaxRateDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Rate     float64   `json:"rate"`
	IsActive bool      `json:"isActive"`
}

type GlobalConfigDTO struct {
	TargetProfitMargin       float64 `json:"targetProfitMargin"`
	CostTolerancePercent     float64 `json:"costTolerancePercent"`
	QuoteValidityDays        int     `json:"quoteValidityDays"`
	DefaultEdgebandingFactor float64 `json:"defaultEdgebandingFactor"`
	AnnualSalesTarget        float64 `json:"annualSalesTarget"`
	LogoPath                 string  `json:"logoPath,omitempty"`
}

type MaterialDTO struct {
	ID                   uuid.UUID       `json:"id"`
	SKU                  string          `json:"sku"`
	Name                 string          `json:"name"`
	Category             string          `json:"category,omitempty"`
	ProductionRoute      ProductionRoute `json:"productionRoute"`
	PurchaseUnit         string          `json:"purchaseUnit"`
	UsageUnit            string          `json:"usageUnit"`
	ConversionFactor     float64         `json:"conversionFactor"`
	CurrentCost          float64         `json:"currentCost"`
	PhysicalStock        float64         `json:"physicalStock"`
	CommittedStock       float64         `json:"committedStock"`
	ProviderID           *uuid.UUID      `json:"providerId,omitempty"`
	ProviderName         string          `json:"providerName,omitempty"`
	AssociatedElementSKU string          `json:"associatedElementSku,omitempty"`
	IsActive             bool            `json:"isActive"`
}

type VersionComponentDTO struct {
	ID           uuid.UUID `json:"id"`
	MaterialID   uuid.UUID `json:"materialId"`
	MaterialSKU  string    `json:"materialSku,omitempty"`
	MaterialName string    `json:"materialName,omitempty"`
	Quantity     float64   `json:"quantity"`
	UnitCost     float64   `json:"unitCost"`
}

type ProductVersionDTO struct {
	ID            uuid.UUID             `json:"id"`
	MasterID      uuid.UUID             `json:"masterId"`
	VersionName   string                `json:"versionName"`
	Status        VersionStatus         `json:"status"`
	EstimatedCost float64               `json:"estimatedCost"`
	IsActive      bool                  `json:"isActive"`
	Components    []VersionComponentDTO `json:"components,omitempty"`
}

type ProductMasterDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Category      string              `json:"category,omitempty"`
	Description   string              `json:"description,omitempty"`
	ClientID      *uuid.UUID          `json:"clientId,omitempty"`
	ClientName    string              `json:"clientName,omitempty"`
	BlueprintPath string              `json:"blueprintPath,omitempty"`
	IsActive      bool                `json:"isActive"`
	Versions      []ProductVersionDTO `json:"versions,omitempty"`
}

type SalesOrderItemDTO struct {
	ID              uuid.UUID    `json:"id"`
	ProductName     string       `json:"productName"`
	OriginVersionID *uuid.UUID   `json:"originVersionId,omitempty"`
	Quantity        float64      `json:"quantity"`
	UnitPrice       float64      `json:"unitPrice"`
	SubtotalPrice   float64      `json:"subtotalPrice"`
	FrozenUnitCost  float64      `json:"frozenUnitCost"`
	CostSnapshot    CostSnapshot `json:"costSnapshot"`
}

type SalesOrderDTO struct {
	ID                       uuid.UUID           `json:"id"`
	ProjectName              string              `json:"projectName"`
	ClientID                 uuid.UUID           `json:"clientId"`
	ClientName               string              `json:"clientName,omitempty"`
	UserID                   *uuid.UUID          `json:"userId,omitempty"`
	TaxRateID                uuid.UUID           `json:"taxRateId"`
	Status                   SalesOrderStatus    `json:"status"`
	ValidUntil               string              `json:"validUntil"`
	DeliveryDate             *string             `json:"deliveryDate,omitempty"`
	AppliedMarginPercent     float64             `json:"appliedMarginPercent"`
	AppliedTolerancePercent  float64             `json:"appliedTolerancePercent"`
	AppliedCommissionPercent float64             `json:"appliedCommissionPercent"`
	CommissionAmount         float64             `json:"commissionAmount"`
	Currency                 string              `json:"currency"`
	Notes                    string              `json:"notes,omitempty"`
	Conditions               string              `json:"conditions,omitempty"`
	ExternalInvoiceRef       string              `json:"externalInvoiceRef,omitempty"`
	IsWarranty               bool                `json:"isWarranty"`
	Subtotal                 float64             `json:"subtotal"`
	TaxAmount                float64             `json:"taxAmount"`
	TotalPrice               float64             `json:"totalPrice"`
	OutstandingBalance       float64             `json:"outstandingBalance"`
	PaymentStatus            PaymentStatus       `json:"paymentStatus"`
	CreatedAt                string              `json:"createdAt"`
	Items                    []SalesOrderItemDTO `json:"items"`
}

type CustomerPaymentDTO struct {
	ID           uuid.UUID `json:"id"`
	SalesOrderID uuid.UUID `json:"salesOrderId"`
	Amount       float64   `json:"amount"`
	PaymentDate  string    `json:"paymentDate"`
	Method       string    `json:"method,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

type InventoryTransactionDTO struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"materialId"`
	MaterialSKU  string          `json:"materialSku,omitempty"`
	MaterialName string          `json:"materialName,omitempty"`
	Type         TransactionType `json:"type"`
	Quantity     float64         `json:"quantity"`
	UnitCost     float64         `json:"unitCost"`
	TotalCost    float64         `json:"totalCost"`
}

type ReceptionDTO struct {
	ID           uuid.UUID                 `json:"id"`
	Folio        string                    `json:"folio"`
	ProviderID   uuid.UUID                 `json:"providerId"`
	ProviderName string                    `json:"providerName,omitempty"`
	InvoiceDate  string                    `json:"invoiceDate"`
	DueDate      string                    `json:"dueDate"`
	TotalAmount  float64                   `json:"totalAmount"`
	Status       ReceptionStatus           `json:"status"`
	Notes        string                    `json:"notes,omitempty"`
	Transactions []InventoryTransactionDTO `json:"transactions,omitempty"`
}

type PurchaseInvoiceDTO struct {
	ID                 uuid.UUID     `json:"id"`
	Folio              string        `json:"folio"`
	InvoiceUUID        string        `json:"invoiceUuid,omitempty"`
	ProviderID         uuid.UUID     `json:"providerId"`
	ProviderName       string        `json:"providerName,omitempty"`
	ReceptionID        *uuid.UUID    `json:"receptionId,omitempty"`
	TotalAmount        float64       `json:"totalAmount"`
	OutstandingBalance float64       `json:"outstandingBalance"`
	InvoiceDate        string        `json:"invoiceDate"`
	DueDate            string        `json:"dueDate"`
	Status             InvoiceStatus `json:"status"`
}

type SupplierPaymentDTO struct {
	ID                    uuid.UUID             `json:"id"`
	InvoiceID             uuid.UUID             `json:"invoiceId"`
	InvoiceFolio          string                `json:"invoiceFolio,omitempty"`
	ProviderName          string                `json:"providerName,omitempty"`
	RequestedBy           *uuid.UUID            `json:"requestedBy,omitempty"`
	Amount                float64               `json:"amount"`
	Status                SupplierPaymentStatus `json:"status"`
	PaymentMethod         PaymentMethod         `json:"paymentMethod"`
	SuggestedAccountID    *uuid.UUID            `json:"suggestedAccountId,omitempty"`
	ApprovedAccountID     *uuid.UUID            `json:"approvedAccountId,omitempty"`
	ApprovedBy            *uuid.UUID            `json:"approvedBy,omitempty"`
	Notes                 string                `json:"notes,omitempty"`
	TreasuryTransactionID *uuid.UUID            `json:"treasuryTransactionId,omitempty"`
	ScheduledDate         *string               `json:"scheduledDate,omitempty"`
	ExecutedAt            *string               `json:"executedAt,omitempty"`
	CreatedAt             string                `json:"createdAt"`
}

type BankAccountDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	BankName       string    `json:"bankName,omitempty"`
	AccountNumber  string    `json:"accountNumber,omitempty"`
	CLABE          string    `json:"clabe,omitempty"`
	InitialBalance float64   `json:"initialBalance"`
	CurrentBalance float64   `json:"currentBalance"`
	IsActive       bool      `json:"isActive"`
}

type BankTransactionDTO struct {
	ID                uuid.UUID           `json:"id"`
	AccountID         uuid.UUID           `json:"accountId"`
	Type              BankTransactionType `json:"type"`
	Amount            float64             `json:"amount"`
	Concept           string              `json:"concept"`
	TransactionDate   string              `json:"transactionDate"`
	RelatedEntityType string              `json:"relatedEntityType,omitempty"`
	RelatedEntityID   *uuid.UUID          `json:"relatedEntityId,omitempty"`
}

// AgingBucketDTO is one day-range classification of overdue invoices
type AgingBucketDTO struct {
	Label string               `json:"label"`
	Count int                  `json:"count"`
	Total float64              `json:"total"`
	Items []PurchaseInvoiceDTO `json:"items,omitempty"`
}

// AgingReportDTO is the accounts-payable aging report
type AgingReportDTO struct {
	AsOf       string           `json:"asOf"`
	Current    AgingBucketDTO   `json:"current"`
	Buckets    []AgingBucketDTO `json:"buckets"`
	TotalCount int              `json:"totalCount"`
	TotalDebt  float64          `json:"totalDebt"`
}

// PayableStatsDTO buckets open invoices around the next Friday cutoff
type PayableStatsDTO struct {
	CutoffDate     string  `json:"cutoffDate"`
	NextPeriodEnd  string  `json:"nextPeriodEnd"`
	OverdueTotal   float64 `json:"overdueTotal"`
	OverdueCount   int     `json:"overdueCount"`
	DueThisWeek    float64 `json:"dueThisWeek"`
	DueCount       int     `json:"dueCount"`
	NextPeriod     float64 `json:"nextPeriod"`
	NextCount      int     `json:"nextCount"`
	Future         float64 `json:"future"`
	FutureCount    int     `json:"futureCount"`
	TotalOpenDebt  float64 `json:"totalOpenDebt"`
	TotalOpenCount int     `json:"totalOpenCount"`
}

// DashboardDTO aggregates headline figures for the landing page
type DashboardDTO struct {
	Year              int                        `json:"year"`
	SoldTotal         float64                    `json:"soldTotal"`
	SoldCount         int64                      `json:"soldCount"`
	AnnualSalesTarget float64                    `json:"annualSalesTarget"`
	TargetProgress    float64                    `json:"targetProgress"`
	OrdersByStatus    map[SalesOrderStatus]int64 `json:"ordersByStatus"`
	ReceivablesTotal  float64                    `json:"receivablesTotal"`
}

// ImportRowError describes one failed row of a CSV import
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResultDTO summarizes a best-effort CSV bulk import
type ImportResultDTO struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []ImportRowError `json:"errors"`
}

// PagedResponse wraps list results with pagination metadata
type PagedResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// ---- Request payloads ----

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserCreateRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	FullName       string  `json:"fullName" validate:"required,max=200"`
	Role           string  `json:"role" validate:"required,oneof=DIRECTOR ADMIN SALES DESIGN WAREHOUSE PRODUCTION"`
	CommissionRate float64 `json:"commissionRate" validate:"gte=0"`
	Password       string  `json:"password" validate:"required,min=8"`
}

type UserUpdateRequest struct {
	Email          *string  `json:"email" validate:"omitempty,email"`
	FullName       *string  `json:"fullName" validate:"omitempty,max=200"`
	Role           *string  `json:"role" validate:"omitempty,oneof=DIRECTOR ADMIN SALES DESIGN WAREHOUSE PRODUCTION"`
	CommissionRate *float64 `json:"commissionRate" validate:"omitempty,gte=0"`
	Password       *string  `json:"password" validate:"omitempty,min=8"`
	IsActive       *bool    `json:"isActive"`
}

type ProviderRequest struct {
	BusinessName string `json:"businessName" validate:"required,max=200"`
	ContactName  string `json:"contactName" validate:"max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
	CreditDays   int    `json:"creditDays" validate:"gte=0"`
}

type ClientRequest struct {
	BusinessName string             `json:"businessName" validate:"required,max=200"`
	TaxID        string             `json:"taxId" validate:"max=20"`
	Address      string             `json:"address" validate:"max=500"`
	Contacts     []ClientContactDTO `json:"contacts" validate:"max=4"`
}

type TaxRateRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Rate float64 `json:"rate" validate:"gte=0,lte=1"`
}

type GlobalConfigUpdateRequest struct {
	TargetProfitMargin       *float64 `json:"targetProfitMargin" validate:"omitempty,gte=0"`
	CostTolerancePercent     *float64 `json:"costTolerancePercent" validate:"omitempty,gte=0"`
	QuoteValidityDays        *int     `json:"quoteValidityDays" validate:"omitempty,gt=0"`
	DefaultEdgebandingFactor *float64 `json:"defaultEdgebandingFactor" validate:"omitempty,gt=0"`
	AnnualSalesTarget        *float64 `json:"annualSalesTarget" validate:"omitempty,gte=0"`
	// LogoPath is deliberately never cleared through this request; the
	// logo is managed by its own upload endpoint.
	LogoPath *string `json:"logoPath"`
}

type MaterialCreateRequest struct {
	SKU                  string     `json:"sku" validate:"required,max=100"`
	Name                 string     `json:"name" validate:"required,max=200"`
	Category             string     `json:"category" validate:"max=100"`
	ProductionRoute      string     `json:"productionRoute" validate:"omitempty,oneof=MATERIAL PROCESO CONSUMIBLE SERVICIO"`
	PurchaseUnit         string     `json:"purchaseUnit" validate:"required,max=50"`
	UsageUnit            string     `json:"usageUnit" validate:"required,max=50"`
	ConversionFactor     float64    `json:"conversionFactor" validate:"gt=0"`
	CurrentCost          float64    `json:"currentCost" validate:"gte=0"`
	PhysicalStock        float64    `json:"physicalStock" validate:"gte=0"`
	ProviderID           *uuid.UUID `json:"providerId"`
	AssociatedElementSKU string     `json:"associatedElementSku" validate:"max=100"`
}

type MaterialUpdateRequest struct {
	Name                 *string    `json:"name" validate:"omitempty,max=200"`
	Category             *string    `json:"category" validate:"omitempty,max=100"`
	ProductionRoute      *string    `json:"productionRoute" validate:"omitempty,oneof=MATERIAL PROCESO CONSUMIBLE SERVICIO"`
	PurchaseUnit         *string    `json:"purchaseUnit" validate:"omitempty,max=50"`
	UsageUnit            *string    `json:"usageUnit" validate:"omitempty,max=50"`
	ConversionFactor     *float64   `json:"conversionFactor" validate:"omitempty,gt=0"`
	CurrentCost          *float64   `json:"currentCost" validate:"omitempty,gte=0"`
	ProviderID           *uuid.UUID `json:"providerId"`
	AssociatedElementSKU *string    `json:"associatedElementSku" validate:"omitempty,max=100"`
	IsActive             *bool      `json:"isActive"`
}

type ProductMasterRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Category    string     `json:"category" validate:"max=100"`
	Description string     `json:"description"`
	ClientID    *uuid.UUID `json:"clientId"`
}

type ComponentInput struct {
	MaterialID uuid.UUID `json:"materialId" validate:"required"`
	Quantity   float64   `json:"quantity" validate:"gte=0"`
}

type ProductVersionRequest struct {
	MasterID    uuid.UUID        `json:"masterId" validate:"required"`
	VersionName string           `json:"versionName" validate:"required,max=100"`
	Status      string           `json:"status" validate:"omitempty,oneof=DRAFT READY OBSOLETE"`
	Components  []ComponentInput `json:"components" validate:"dive"`
}

type OrderItemInput struct {
	ProductName     string     `json:"productName" validate:"required,max=200"`
	OriginVersionID *uuid.UUID `json:"originVersionId"`
	Quantity        float64    `json:"quantity" validate:"gt=0"`
	UnitPrice       float64    `json:"unitPrice" validate:"gte=0"`
}

type SalesOrderCreateRequest struct {
	ProjectName              string           `json:"projectName" validate:"required,max=200"`
	ClientID                 uuid.UUID        `json:"clientId" validate:"required"`
	TaxRateID                uuid.UUID        `json:"taxRateId" validate:"required"`
	ValidUntil               time.Time        `json:"validUntil" validate:"required"`
	DeliveryDate             *time.Time       `json:"deliveryDate"`
	AppliedMarginPercent     float64          `json:"appliedMarginPercent" validate:"gte=0"`
	AppliedTolerancePercent  float64          `json:"appliedTolerancePercent" validate:"gte=0"`
	AppliedCommissionPercent *float64         `json:"appliedCommissionPercent" validate:"omitempty,gte=0"`
	Currency                 string           `json:"currency" validate:"omitempty,len=3"`
	Notes                    string           `json:"notes"`
	Conditions               string           `json:"conditions"`
	ExternalInvoiceRef       string           `json:"externalInvoiceRef" validate:"max=100"`
	IsWarranty               bool             `json:"isWarranty"`
	Items                    []OrderItemInput `json:"items" validate:"dive"`
}

type SalesOrderUpdateRequest struct {
	ProjectName              *string           `json:"projectName" validate:"omitempty,max=200"`
	ClientID                 *uuid.UUID        `json:"clientId"`
	TaxRateID                *uuid.UUID        `json:"taxRateId"`
	ValidUntil               *time.Time        `json:"validUntil"`
	DeliveryDate             *time.Time        `json:"deliveryDate"`
	AppliedMarginPercent     *float64          `json:"appliedMarginPercent" validate:"omitempty,gte=0"`
	AppliedCommissionPercent *float64          `json:"appliedCommissionPercent" validate:"omitempty,gte=0"`
	Notes                    *string           `json:"notes"`
	Conditions               *string           `json:"conditions"`
	ExternalInvoiceRef       *string           `json:"externalInvoiceRef" validate:"omitempty,max=100"`
	IsWarranty               *bool             `json:"isWarranty"`
	Items                    *[]OrderItemInput `json:"items" validate:"omitempty,dive"`
}

type CustomerPaymentRequest struct {
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	PaymentDate *time.Time `json:"paymentDate"`
	Method      string     `json:"method" validate:"max=50"`
	Reference   string     `json:"reference" validate:"max=100"`
	Notes       string     `json:"notes"`
}

type ReceptionLineInput struct {
	MaterialID uuid.UUID `json:"materialId" validate:"required"`
	// Quantity is expressed in purchase units; the conversion factor of the
	// material normalizes it into usage units.
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	TotalCost float64 `json:"totalCost" validate:"gte=0"`
}

type ReceptionCreateRequest struct {
	Folio       string               `json:"folio" validate:"required,max=100"`
	ProviderID  uuid.UUID            `json:"providerId" validate:"required"`
	InvoiceDate time.Time            `json:"invoiceDate" validate:"required"`
	DueDate     *time.Time           `json:"dueDate"`
	InvoiceUUID string               `json:"invoiceUuid" validate:"max=100"`
	Notes       string               `json:"notes"`
	Lines       []ReceptionLineInput `json:"lines" validate:"required,min=1,dive"`
}

type SupplierPaymentRequest struct {
	InvoiceID          uuid.UUID  `json:"invoiceId" validate:"required"`
	Amount             float64    `json:"amount" validate:"required,gt=0"`
	PaymentMethod      string     `json:"paymentMethod" validate:"omitempty,oneof=TRANSFERENCIA EFECTIVO CHEQUE TARJETA OTRO"`
	SuggestedAccountID *uuid.UUID `json:"suggestedAccountId"`
	ScheduledDate      *time.Time `json:"scheduledDate"`
	Notes              string     `json:"notes"`
}

type SupplierPaymentUpdateRequest struct {
	Amount             *float64   `json:"amount" validate:"omitempty,gt=0"`
	PaymentMethod      *string    `json:"paymentMethod" validate:"omitempty,oneof=TRANSFERENCIA EFECTIVO CHEQUE TARJETA OTRO"`
	SuggestedAccountID *uuid.UUID `json:"suggestedAccountId"`
	ScheduledDate      *time.Time `json:"scheduledDate"`
	Notes              *string    `json:"notes"`
}

type PaymentApprovalRequest struct {
	AccountID uuid.UUID `json:"accountId" validate:"required"`
}

type BankAccountRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	BankName       string  `json:"bankName" validate:"max=200"`
	AccountNumber  string  `json:"accountNumber" validate:"max=50"`
	CLABE          string  `json:"clabe" validate:"max=50"`
	InitialBalance float64 `json:"initialBalance" validate:"gte=0"`
}

type BankTransactionRequest struct {
	AccountID       uuid.UUID  `json:"accountId" validate:"required"`
	Type            string     `json:"type" validate:"required,oneof=IN OUT"`
	Amount          float64    `json:"amount" validate:"required,gt=0"`
	Concept         string     `json:"concept" validate:"required,max=500"`
	TransactionDate *time.Time `json:"transactionDate"`
}

type TransferRequest struct {
	FromAccountID uuid.UUID `json:"fromAccountId" validate:"required"`
	ToAccountID   uuid.UUID `json:"toAccountId" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Concept       string    `json:"concept" validate:"max=500"`
}

type CategoryRenameRequest struct {
	OldName string `json:"oldName" validate:"required,min=1"`
	NewName string `json:"newName" validate:"required,min=1"`
}

type VersionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT READY OBSOLETE"`
}

type AuditLogDTO struct {
	ID         string          `json:"id"`
	UserID     *string         `json:"userId"`
	UserEmail  string          `json:"userEmail"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	StatusCode int             `json:"statusCode"`
	Detail     json.RawMessage `json:"detail"`
	CreatedAt  string          `json:"createdAt"`
}
