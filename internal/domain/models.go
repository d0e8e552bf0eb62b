package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key; all supported databases get the
// same application-side UUID.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserRole represents the functional role of a system user
type UserRole string

const (
	RoleDirector   UserRole = "DIRECTOR"
	RoleAdmin      UserRole = "ADMIN"
	RoleSales      UserRole = "SALES"
	RoleDesign     UserRole = "DESIGN"
	RoleWarehouse  UserRole = "WAREHOUSE"
	RoleProduction UserRole = "PRODUCTION"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleDirector, RoleAdmin, RoleSales, RoleDesign, RoleWarehouse, RoleProduction:
		return true
	}
	return false
}

// IsPrivileged reports whether the role can authorize quotes and manage users.
func (r UserRole) IsPrivileged() bool {
	return r == RoleDirector || r == RoleAdmin
}

// User represents a system user
type User struct {
	BaseModel
	Email          string   `gorm:"type:varchar(255);not null;unique;index"`
	FullName       string   `gorm:"type:varchar(200);not null;column:full_name"`
	Role           UserRole `gorm:"type:varchar(20);not null;default:'SALES'"`
	CommissionRate float64  `gorm:"not null;default:0;column:commission_rate"`
	HashedPassword string   `gorm:"type:varchar(255);not null;column:hashed_password"`
	IsActive       bool     `gorm:"not null;default:true;column:is_active"`
	IsBootstrap    bool     `gorm:"not null;default:false;column:is_bootstrap"`
}

// Provider represents a supplier of materials and services
type Provider struct {
	BaseModel
	BusinessName string `gorm:"type:varchar(200);not null;index;column:business_name"`
	ContactName  string `gorm:"type:varchar(200);column:contact_name"`
	Email        string `gorm:"type:varchar(255)"`
	Phone        string `gorm:"type:varchar(50)"`
	CreditDays   int    `gorm:"not null;default:0;column:credit_days"`
	IsActive     bool   `gorm:"not null;default:true;column:is_active"`
}

// Client represents a customer organization
type Client struct {
	BaseModel
	BusinessName string `gorm:"type:varchar(200);not null;index;column:business_name"`
	TaxID        string `gorm:"type:varchar(20);column:tax_id"`
	Address      string `gorm:"type:varchar(500)"`
	Contact1Name string `gorm:"type:varchar(200);column:contact1_name"`
	Contact1Mail string `gorm:"type:varchar(255);column:contact1_mail"`
	Contact1Tel  string `gorm:"type:varchar(50);column:contact1_tel"`
	Contact1Role string `gorm:"type:varchar(100);column:contact1_role"`
	Contact2Name string `gorm:"type:varchar(200);column:contact2_name"`
	Contact2Mail string `gorm:"type:varchar(255);column:contact2_mail"`
	Contact2Tel  string `gorm:"type:varchar(50);column:contact2_tel"`
	Contact2Role string `gorm:"type:varchar(100);column:contact2_role"`
	Contact3Name string `gorm:"type:varchar(200);column:contact3_name"`
	Contact3Mail string `gorm:"type:varchar(255);column:contact3_mail"`
	Contact3Tel  string `gorm:"type:varchar(50);column:contact3_tel"`
	Contact3Role string `gorm:"type:varchar(100);column:contact3_role"`
	Contact4Name string `gorm:"type:varchar(200);column:contact4_name"`
	Contact4Mail string `gorm:"type:varchar(255);column:contact4_mail"`
	Contact4Tel  string `gorm:"type:varchar(50);column:contact4_tel"`
	Contact4Role string `gorm:"type:varchar(100);column:contact4_role"`
	IsActive     bool   `gorm:"not null;default:true;column:is_active"`
}

// TableName overrides the default table name
func (Client) TableName() string {
	return "clients"
}

// TaxRate represents a configurable tax percentage applied to quotes
type TaxRate struct {
	BaseModel
	Name     string  `gorm:"type:varchar(100);not null"`
	Rate     float64 `gorm:"not null"` // fraction, e.g. 0.16
	IsActive bool    `gorm:"not null;default:true;column:is_active"`
}

// GlobalConfig holds the single row of business-wide settings
type GlobalConfig struct {
	BaseModel
	TargetProfitMargin       float64 `gorm:"not null;default:0.30;column:target_profit_margin"`
	CostTolerancePercent     float64 `gorm:"not null;default:0.05;column:cost_tolerance_percent"`
	QuoteValidityDays        int     `gorm:"not null;default:15;column:quote_validity_days"`
	DefaultEdgebandingFactor float64 `gorm:"not null;default:1.0;column:default_edgebanding_factor"`
	AnnualSalesTarget        float64 `gorm:"not null;default:0;column:annual_sales_target"`
	LogoPath                 string  `gorm:"type:varchar(500);column:logo_path"`
}

// TableName overrides the default table name
func (GlobalConfig) TableName() string {
	return "global_config"
}

// ProductionRoute classifies how a material enters production
type ProductionRoute string

const (
	RouteMaterial   ProductionRoute = "MATERIAL"
	RouteProceso    ProductionRoute = "PROCESO"
	RouteConsumible ProductionRoute = "CONSUMIBLE"
	RouteServicio   ProductionRoute = "SERVICIO"
)

// IsValid checks if the production route is valid
func (r ProductionRoute) IsValid() bool {
	switch r {
	case RouteMaterial, RouteProceso, RouteConsumible, RouteServicio:
		return true
	}
	return false
}

// Material represents a purchasable input with a running unit cost
type Material struct {
	BaseModel
	SKU                  string          `gorm:"type:varchar(100);not null;unique;index;column:sku"`
	Name                 string          `gorm:"type:varchar(200);not null;index"`
	Category             string          `gorm:"type:varchar(100);index"`
	ProductionRoute      ProductionRoute `gorm:"type:varchar(20);not null;default:'MATERIAL';column:production_route"`
	PurchaseUnit         string          `gorm:"type:varchar(50);not null;column:purchase_unit"`
	UsageUnit            string          `gorm:"type:varchar(50);not null;column:usage_unit"`
	ConversionFactor     float64         `gorm:"not null;default:1;column:conversion_factor"`
	CurrentCost          float64         `gorm:"not null;default:0;column:current_cost"`
	PhysicalStock        float64         `gorm:"not null;default:0;column:physical_stock"`
	CommittedStock       float64         `gorm:"not null;default:0;column:committed_stock"`
	ProviderID           *uuid.UUID      `gorm:"type:uuid;index;column:provider_id"`
	Provider             *Provider       `gorm:"foreignKey:ProviderID"`
	AssociatedElementSKU string          `gorm:"type:varchar(100);column:associated_element_sku"`
	IsActive             bool            `gorm:"not null;default:true;column:is_active"`
}

// VersionStatus represents the lifecycle state of a product recipe
type VersionStatus string

const (
	VersionDraft    VersionStatus = "DRAFT"
	VersionReady    VersionStatus = "READY"
	VersionObsolete VersionStatus = "OBSOLETE"
)

// IsValid checks if the version status is valid
func (s VersionStatus) IsValid() bool {
	switch s {
	case VersionDraft, VersionReady, VersionObsolete:
		return true
	}
	return false
}

// ProductMaster represents a product family owned by the design area
type ProductMaster struct {
	BaseModel
	Name          string           `gorm:"type:varchar(200);not null;index"`
	Category      string           `gorm:"type:varchar(100);index"`
	Description   string           `gorm:"type:text"`
	ClientID      *uuid.UUID       `gorm:"type:uuid;index;column:client_id"`
	Client        *Client          `gorm:"foreignKey:ClientID"`
	BlueprintPath string           `gorm:"type:varchar(500);column:blueprint_path"`
	IsActive      bool             `gorm:"not null;default:true;column:is_active"`
	Versions      []ProductVersion `gorm:"foreignKey:MasterID"`
}

// ProductVersion represents one costed recipe of a product family
type ProductVersion struct {
	BaseModel
	MasterID      uuid.UUID          `gorm:"type:uuid;not null;index;column:master_id"`
	VersionName   string             `gorm:"type:varchar(100);not null;column:version_name"`
	Status        VersionStatus      `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	EstimatedCost float64            `gorm:"not null;default:0;column:estimated_cost"`
	IsActive      bool               `gorm:"not null;default:true;column:is_active"`
	Components    []VersionComponent `gorm:"foreignKey:VersionID"`
}

// VersionComponent is one material line inside a recipe
type VersionComponent struct {
	BaseModel
	VersionID  uuid.UUID `gorm:"type:uuid;not null;index;column:version_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index;column:material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID"`
	Quantity   float64   `gorm:"not null"`
}

// SalesOrderStatus represents the lifecycle state of a quote/order
type SalesOrderStatus string

const (
	OrderDraft           SalesOrderStatus = "DRAFT"
	OrderSent            SalesOrderStatus = "SENT"
	OrderAccepted        SalesOrderStatus = "ACCEPTED"
	OrderRejected        SalesOrderStatus = "REJECTED"
	OrderSold            SalesOrderStatus = "SOLD"
	OrderClientRejected  SalesOrderStatus = "CLIENT_REJECTED"
	OrderChangeRequested SalesOrderStatus = "CHANGE_REQUESTED"
	OrderInProduction    SalesOrderStatus = "IN_PRODUCTION"
	OrderCompleted       SalesOrderStatus = "COMPLETED"
	OrderCancelled       SalesOrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case OrderDraft, OrderSent, OrderAccepted, OrderRejected, OrderSold,
		OrderClientRejected, OrderChangeRequested, OrderInProduction,
		OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// IsEditable reports whether order fields and items may still change.
func (s SalesOrderStatus) IsEditable() bool {
	switch s {
	case OrderDraft, OrderChangeRequested, OrderRejected, OrderSent:
		return true
	}
	return false
}

// PaymentStatus tracks how much of a receivable has been collected
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// CostSnapshotLine is one frozen component cost captured at quote time
type CostSnapshotLine struct {
	MaterialID uuid.UUID `json:"materialId"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	UnitCost   float64   `json:"unitCost"`
	LineCost   float64   `json:"lineCost"`
}

// CostSnapshot stores the frozen component costs of an order item as JSON.
// Later changes to material costs never touch an existing snapshot.
type CostSnapshot []CostSnapshotLine

// Value implements driver.Valuer
func (s CostSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *CostSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported cost snapshot type %T", value)
}

// SalesOrder represents a quote/order header
type SalesOrder struct {
	BaseModel
	ProjectName              string           `gorm:"type:varchar(200);not null;column:project_name"`
	ClientID                 uuid.UUID        `gorm:"type:uuid;not null;index;column:client_id"`
	Client                   *Client          `gorm:"foreignKey:ClientID"`
	UserID                   *uuid.UUID       `gorm:"type:uuid;index;column:user_id"`
	TaxRateID                uuid.UUID        `gorm:"type:uuid;not null;column:tax_rate_id"`
	Status                   SalesOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ValidUntil               time.Time        `gorm:"not null;column:valid_until"`
	DeliveryDate             *time.Time       `gorm:"column:delivery_date"`
	AppliedMarginPercent     float64          `gorm:"not null;default:0;column:applied_margin_percent"`
	AppliedTolerancePercent  float64          `gorm:"not null;default:0;column:applied_tolerance_percent"`
	AppliedCommissionPercent float64          `gorm:"not null;default:0;column:applied_commission_percent"`
	CommissionAmount         float64          `gorm:"not null;default:0;column:commission_amount"`
	Currency                 string           `gorm:"type:varchar(10);not null;default:'MXN'"`
	Notes                    string           `gorm:"type:text"`
	Conditions               string           `gorm:"type:text"`
	ExternalInvoiceRef       string           `gorm:"type:varchar(100);column:external_invoice_ref"`
	IsWarranty               bool             `gorm:"not null;default:false;column:is_warranty"`
	Subtotal                 float64          `gorm:"not null;default:0"`
	TaxAmount                float64          `gorm:"not null;default:0;column:tax_amount"`
	TotalPrice               float64          `gorm:"not null;default:0;column:total_price"`
	OutstandingBalance       float64          `gorm:"not null;default:0;column:outstanding_balance"`
	PaymentStatus            PaymentStatus    `gorm:"type:varchar(20);not null;default:'PENDING';column:payment_status"`
	Items                    []SalesOrderItem `gorm:"foreignKey:SalesOrderID"`
}

// SalesOrderItem is one quoted line of a sales order
type SalesOrderItem struct {
	BaseModel
	SalesOrderID    uuid.UUID    `gorm:"type:uuid;not null;index;column:sales_order_id"`
	ProductName     string       `gorm:"type:varchar(200);not null;column:product_name"`
	OriginVersionID *uuid.UUID   `gorm:"type:uuid;column:origin_version_id"`
	Quantity        float64      `gorm:"not null;default:1"`
	UnitPrice       float64      `gorm:"not null;column:unit_price"`
	SubtotalPrice   float64      `gorm:"not null;column:subtotal_price"`
	FrozenUnitCost  float64      `gorm:"not null;default:0;column:frozen_unit_cost"`
	CostSnapshot    CostSnapshot `gorm:"type:jsonb;column:cost_snapshot"`
}

// CustomerPayment records a collection against a sold order
type CustomerPayment struct {
	BaseModel
	SalesOrderID uuid.UUID `gorm:"type:uuid;not null;index;column:sales_order_id"`
	Amount       float64   `gorm:"not null"`
	PaymentDate  time.Time `gorm:"not null;column:payment_date"`
	Method       string    `gorm:"type:varchar(50)"`
	Reference    string    `gorm:"type:varchar(100)"`
	Notes        string    `gorm:"type:text"`
}

// ReceptionStatus represents the lifecycle state of a goods receipt
type ReceptionStatus string

const (
	ReceptionActive    ReceptionStatus = "ACTIVE"
	ReceptionCancelled ReceptionStatus = "CANCELLED"
)

// InventoryReception is a goods-receipt header tied to a provider invoice folio
type InventoryReception struct {
	BaseModel
	Folio        string                 `gorm:"type:varchar(100);not null;unique;index"`
	ProviderID   uuid.UUID              `gorm:"type:uuid;not null;index;column:provider_id"`
	Provider     *Provider              `gorm:"foreignKey:ProviderID"`
	InvoiceDate  time.Time              `gorm:"not null;column:invoice_date"`
	DueDate      time.Time              `gorm:"not null;column:due_date"`
	TotalAmount  float64                `gorm:"not null;column:total_amount"`
	Status       ReceptionStatus        `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Notes        string                 `gorm:"type:text"`
	Transactions []InventoryTransaction `gorm:"foreignKey:ReceptionID"`
}

// TransactionType classifies inventory movements
type TransactionType string

const (
	TransactionEntry TransactionType = "ENTRY"
)

// InventoryTransaction is one material movement produced by a reception
type InventoryTransaction struct {
	BaseModel
	ReceptionID     uuid.UUID       `gorm:"type:uuid;not null;index;column:reception_id"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index;column:material_id"`
	Material        *Material       `gorm:"foreignKey:MaterialID"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;default:'ENTRY';column:transaction_type"`
	Quantity        float64         `gorm:"not null"` // usage units
	UnitCost        float64         `gorm:"not null;column:unit_cost"`
	TotalCost       float64         `gorm:"not null;column:total_cost"`
}

// InvoiceStatus represents the payable state of a purchase invoice
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePartial   InvoiceStatus = "PARTIAL"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// IsLive reports whether the invoice still represents an open debt.
func (s InvoiceStatus) IsLive() bool {
	return s != InvoicePaid && s != InvoiceCancelled
}

// PurchaseInvoice is the financial mirror of an inventory reception
type PurchaseInvoice struct {
	BaseModel
	Folio              string        `gorm:"type:varchar(100);not null;index"`
	InvoiceUUID        string        `gorm:"type:varchar(100);column:invoice_uuid"`
	ProviderID         uuid.UUID     `gorm:"type:uuid;not null;index;column:provider_id"`
	Provider           *Provider     `gorm:"foreignKey:ProviderID"`
	ReceptionID        *uuid.UUID    `gorm:"type:uuid;index;column:reception_id"`
	TotalAmount        float64       `gorm:"not null;column:total_amount"`
	OutstandingBalance float64       `gorm:"not null;column:outstanding_balance"`
	InvoiceDate        time.Time     `gorm:"not null;column:invoice_date"`
	DueDate            time.Time     `gorm:"not null;index;column:due_date"`
	Status             InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// SupplierPaymentStatus represents the approval state of a payment request
type SupplierPaymentStatus string

const (
	SupplierPaymentPending  SupplierPaymentStatus = "PENDING"
	SupplierPaymentApproved SupplierPaymentStatus = "APPROVED"
	SupplierPaymentRejected SupplierPaymentStatus = "REJECTED"
	SupplierPaymentPaid     SupplierPaymentStatus = "PAID"
)

// PaymentMethod is how a supplier payment will be settled
type PaymentMethod string

const (
	MethodTransferencia PaymentMethod = "TRANSFERENCIA"
	MethodEfectivo      PaymentMethod = "EFECTIVO"
	MethodCheque        PaymentMethod = "CHEQUE"
	MethodTarjeta       PaymentMethod = "TARJETA"
	MethodOtro          PaymentMethod = "OTRO"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodTransferencia, MethodEfectivo, MethodCheque, MethodTarjeta, MethodOtro:
		return true
	}
	return false
}

// SupplierPayment is a request to pay down a purchase invoice
type SupplierPayment struct {
	BaseModel
	InvoiceID             uuid.UUID             `gorm:"type:uuid;not null;index;column:invoice_id"`
	Invoice               *PurchaseInvoice      `gorm:"foreignKey:InvoiceID"`
	RequestedBy           *uuid.UUID            `gorm:"type:uuid;column:requested_by"`
	Amount                float64               `gorm:"not null"`
	Status                SupplierPaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod         PaymentMethod         `gorm:"type:varchar(20);not null;default:'TRANSFERENCIA';column:payment_method"`
	SuggestedAccountID    *uuid.UUID            `gorm:"type:uuid;column:suggested_account_id"`
	ApprovedAccountID     *uuid.UUID            `gorm:"type:uuid;column:approved_account_id"`
	ApprovedBy            *uuid.UUID            `gorm:"type:uuid;column:approved_by"`
	Notes                 string                `gorm:"type:text"`
	TreasuryTransactionID *uuid.UUID            `gorm:"type:uuid;column:treasury_transaction_id"`
	ScheduledDate         *time.Time            `gorm:"column:scheduled_date"`
	ExecutedAt            *time.Time            `gorm:"column:executed_at"`
}

// BankAccount is one treasury account with a running balance
type BankAccount struct {
	BaseModel
	Name           string  `gorm:"type:varchar(200);not null"`
	BankName       string  `gorm:"type:varchar(200);column:bank_name"`
	AccountNumber  string  `gorm:"type:varchar(50);column:account_number"`
	CLABE          string  `gorm:"type:varchar(50);column:clabe"`
	InitialBalance float64 `gorm:"not null;default:0;column:initial_balance"`
	CurrentBalance float64 `gorm:"not null;default:0;column:current_balance"`
	IsActive       bool    `gorm:"not null;default:true;column:is_active"`
}

// BankTransactionType classifies ledger movements
type BankTransactionType string

const (
	BankTxIn       BankTransactionType = "IN"
	BankTxOut      BankTransactionType = "OUT"
	BankTxTransfer BankTransactionType = "TRANSFER"
)

// IsValid checks if the bank transaction type is valid
func (t BankTransactionType) IsValid() bool {
	switch t {
	case BankTxIn, BankTxOut, BankTxTransfer:
		return true
	}
	return false
}

// BankTransaction is one ledger movement on a bank account
type BankTransaction struct {
	BaseModel
	AccountID         uuid.UUID           `gorm:"type:uuid;not null;index;column:account_id"`
	TransactionType   BankTransactionType `gorm:"type:varchar(20);not null;column:transaction_type"`
	Amount            float64             `gorm:"not null"`
	Concept           string              `gorm:"type:varchar(500);not null"`
	TransactionDate   time.Time           `gorm:"not null;index;column:transaction_date"`
	RelatedEntityType string              `gorm:"type:varchar(50);column:related_entity_type"`
	RelatedEntityID   *uuid.UUID          `gorm:"type:uuid;column:related_entity_id"`
}

// AuditLog represents an audit trail entry for mutating requests
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	UserID     *uuid.UUID `gorm:"type:uuid;column:user_id"`
	UserEmail  string     `gorm:"type:varchar(255);column:user_email"`
	Action     string     `gorm:"type:varchar(20);not null"`
	EntityType string     `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID   string     `gorm:"type:varchar(100);column:entity_id"`
	Method     string     `gorm:"type:varchar(10);not null"`
	Path       string     `gorm:"type:varchar(500);not null"`
	StatusCode int        `gorm:"not null;column:status_code"`
	Detail     string     `gorm:"type:jsonb"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite).
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
