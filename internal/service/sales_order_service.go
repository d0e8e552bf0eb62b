package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/pdf"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/storage"
)

// SalesOrderService manages quotes, their frozen costing and their lifecycle
type SalesOrderService struct {
	orders   *repository.SalesOrderRepository
	clients  *repository.ClientRepository
	taxRates *repository.TaxRateRepository
	products *repository.ProductRepository
	configs  *repository.GlobalConfigRepository
	files    storage.Storage
	logger   *zap.Logger
}

func NewSalesOrderService(
	orders *repository.SalesOrderRepository,
	clients *repository.ClientRepository,
	taxRates *repository.TaxRateRepository,
	products *repository.ProductRepository,
	configs *repository.GlobalConfigRepository,
	files storage.Storage,
	logger *zap.Logger,
) *SalesOrderService {
	return &SalesOrderService{
		orders:   orders,
		clients:  clients,
		taxRates: taxRates,
		products: products,
		configs:  configs,
		files:    files,
		logger:   logger,
	}
}

// orderTransitions lists the statuses each status may move to.
var orderTransitions = map[domain.SalesOrderStatus][]domain.SalesOrderStatus{
	domain.OrderDraft:           {domain.OrderSent},
	domain.OrderSent:            {domain.OrderAccepted, domain.OrderRejected, domain.OrderChangeRequested, domain.OrderDraft},
	domain.OrderAccepted:        {domain.OrderSold, domain.OrderClientRejected, domain.OrderChangeRequested},
	domain.OrderRejected:        {domain.OrderSent, domain.OrderDraft},
	domain.OrderChangeRequested: {domain.OrderSent, domain.OrderDraft},
	domain.OrderSold:            {domain.OrderInProduction},
	domain.OrderInProduction:    {domain.OrderCompleted},
}

// privilegedTargets are transitions only a director or admin may perform.
var privilegedTargets = map[domain.SalesOrderStatus]bool{
	domain.OrderAccepted: true,
	domain.OrderRejected: true,
}

func (s *SalesOrderService) Create(ctx context.Context, user auth.UserContext, req domain.SalesOrderCreateRequest) (*domain.SalesOrder, error) {
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	taxRate, err := s.taxRates.GetByID(ctx, req.TaxRateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaxRateNotFound
		}
		return nil, err
	}
	cfg, err := s.configs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	commissionRate := user.CommissionRate
	if req.AppliedCommissionPercent != nil {
		commissionRate = *req.AppliedCommissionPercent
	}
	commissionRate = money.NormalizeRate(commissionRate)

	margin := req.AppliedMarginPercent
	if margin == 0 {
		margin = cfg.TargetProfitMargin
	}
	tolerance := req.AppliedTolerancePercent
	if tolerance == 0 {
		tolerance = cfg.CostTolerancePercent
	}

	validUntil := req.ValidUntil
	if validUntil.IsZero() {
		validUntil = time.Now().UTC().AddDate(0, 0, cfg.QuoteValidityDays)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "MXN"
	}

	userID := user.UserID
	order := &domain.SalesOrder{
		ProjectName:              strings.TrimSpace(req.ProjectName),
		ClientID:                 req.ClientID,
		UserID:                   &userID,
		TaxRateID:                req.TaxRateID,
		Status:                   domain.OrderDraft,
		ValidUntil:               validUntil,
		DeliveryDate:             req.DeliveryDate,
		AppliedMarginPercent:     margin,
		AppliedTolerancePercent:  tolerance,
		AppliedCommissionPercent: commissionRate,
		Currency:                 currency,
		Notes:                    req.Notes,
		Conditions:               req.Conditions,
		ExternalInvoiceRef:       req.ExternalInvoiceRef,
		IsWarranty:               req.IsWarranty,
		PaymentStatus:            domain.PaymentPending,
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	s.priceOrder(order, items, taxRate.Rate)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := s.orders.ReplaceItems(ctx, order.ID, items); err != nil {
			return nil, err
		}
	}

	s.logger.Info("quote created",
		zap.String("orderId", order.ID.String()),
		zap.Float64("total", order.TotalPrice))
	return s.GetByID(ctx, user, order.ID)
}

func (s *SalesOrderService) GetByID(ctx context.Context, user auth.UserContext, id uuid.UUID) (*domain.SalesOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if user.Role == domain.RoleSales && (order.UserID == nil || *order.UserID != user.UserID) {
		return nil, ErrPermissionDenied
	}
	return order, nil
}

// List scopes results to the caller: salespeople only see their own quotes.
func (s *SalesOrderService) List(ctx context.Context, user auth.UserContext, page, pageSize int, filters repository.SalesOrderFilters) ([]domain.SalesOrder, int64, error) {
	if user.Role == domain.RoleSales {
		uid := user.UserID
		filters.UserID = &uid
	}
	return s.orders.List(ctx, page, pageSize, filters)
}

// Update edits a quote and reprices it. A salesperson editing a quote that
// was already sent or accepted silently demotes it to CHANGE_REQUESTED, so
// the client never holds a stale authorized price.
func (s *SalesOrderService) Update(ctx context.Context, user auth.UserContext, id uuid.UUID, req domain.SalesOrderUpdateRequest) (*domain.SalesOrder, error) {
	order, err := s.GetByID(ctx, user, id)
	if err != nil {
		return nil, err
	}

	editable := order.Status.IsEditable() || order.Status == domain.OrderAccepted
	if !editable {
		return nil, ErrOrderNotEditable
	}
	if (order.Status == domain.OrderSent || order.Status == domain.OrderAccepted) && !user.IsPrivileged() {
		order.Status = domain.OrderChangeRequested
	}

	if req.ProjectName != nil {
		order.ProjectName = strings.TrimSpace(*req.ProjectName)
	}
	if req.ClientID != nil {
		if _, err := s.clients.GetByID(ctx, *req.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, err
		}
		order.ClientID = *req.ClientID
	}
	if req.TaxRateID != nil {
		order.TaxRateID = *req.TaxRateID
	}
	if req.ValidUntil != nil {
		order.ValidUntil = *req.ValidUntil
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = req.DeliveryDate
	}
	if req.AppliedMarginPercent != nil {
		order.AppliedMarginPercent = *req.AppliedMarginPercent
	}
	if req.AppliedCommissionPercent != nil {
		order.AppliedCommissionPercent = money.NormalizeRate(*req.AppliedCommissionPercent)
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Conditions != nil {
		order.Conditions = *req.Conditions
	}
	if req.ExternalInvoiceRef != nil {
		order.ExternalInvoiceRef = *req.ExternalInvoiceRef
	}
	if req.IsWarranty != nil {
		order.IsWarranty = *req.IsWarranty
	}

	taxRate, err := s.taxRates.GetByID(ctx, order.TaxRateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaxRateNotFound
		}
		return nil, err
	}

	items := order.Items
	if req.Items != nil {
		items, err = s.buildItems(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		if err := s.orders.ReplaceItems(ctx, order.ID, items); err != nil {
			return nil, err
		}
	}
	s.priceOrder(order, items, taxRate.Rate)

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, user, order.ID)
}

// SetStatus moves a quote through its lifecycle. Approval and rejection are
// reserved for directors and admins.
func (s *SalesOrderService) SetStatus(ctx context.Context, user auth.UserContext, id uuid.UUID, target domain.SalesOrderStatus) (*domain.SalesOrder, error) {
	if !target.IsValid() {
		return nil, ErrInvalidTransition
	}
	order, err := s.GetByID(ctx, user, id)
	if err != nil {
		return nil, err
	}

	// Change requests are accepted from any state so a client can always
	// reopen a quote, even one already sold or in production.
	allowed := target == domain.OrderChangeRequested && order.Status != target
	for _, next := range orderTransitions[order.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}
	if privilegedTargets[target] && !user.IsPrivileged() {
		return nil, ErrPermissionDenied
	}

	order.Status = target
	if target == domain.OrderSold {
		// The full price becomes an open receivable the moment it sells.
		order.OutstandingBalance = order.TotalPrice
		order.PaymentStatus = domain.PaymentPending
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("quote status changed",
		zap.String("orderId", order.ID.String()),
		zap.String("status", string(target)))
	return order, nil
}

// Delete removes a quote that never reached the client or the shop floor.
func (s *SalesOrderService) Delete(ctx context.Context, user auth.UserContext, id uuid.UUID) error {
	order, err := s.GetByID(ctx, user, id)
	if err != nil {
		return err
	}
	switch order.Status {
	case domain.OrderSent, domain.OrderAccepted, domain.OrderSold,
		domain.OrderInProduction, domain.OrderCompleted:
		return ErrOrderNotDeletable
	}
	return s.orders.Delete(ctx, id)
}

// AddPayment records a collection against a sold order and settles the
// receivable when the remaining balance drops within the cent tolerance.
func (s *SalesOrderService) AddPayment(ctx context.Context, user auth.UserContext, orderID uuid.UUID, req domain.CustomerPaymentRequest) (*domain.SalesOrder, error) {
	order, err := s.GetByID(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case domain.OrderSold, domain.OrderInProduction, domain.OrderCompleted:
	default:
		return nil, ErrInvalidTransition
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	payment := &domain.CustomerPayment{
		SalesOrderID: order.ID,
		Amount:       req.Amount,
		PaymentDate:  paymentDate,
		Method:       req.Method,
		Reference:    req.Reference,
		Notes:        req.Notes,
	}
	if err := s.orders.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	balance := money.RoundCents(order.OutstandingBalance - req.Amount)
	if balance < 0 {
		balance = 0
	}
	order.OutstandingBalance = balance
	if money.IsSettled(balance) {
		order.OutstandingBalance = 0
		order.PaymentStatus = domain.PaymentPaid
	} else {
		order.PaymentStatus = domain.PaymentPartial
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *SalesOrderService) ListPayments(ctx context.Context, user auth.UserContext, orderID uuid.UUID) ([]domain.CustomerPayment, error) {
	if _, err := s.GetByID(ctx, user, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListPayments(ctx, orderID)
}

// QuotePDF renders the customer-facing document for a quote, with the
// configured company logo when one is uploaded.
func (s *SalesOrderService) QuotePDF(ctx context.Context, user auth.UserContext, id uuid.UUID) ([]byte, string, error) {
	order, err := s.GetByID(ctx, user, id)
	if err != nil {
		return nil, "", err
	}

	doc := pdf.QuoteDocument{Order: order, Seller: user.FullName}
	if order.Client != nil {
		doc.ClientName = order.Client.BusinessName
	}

	if cfg, err := s.configs.GetOrCreate(ctx); err == nil && cfg.LogoPath != "" {
		if rc, err := s.files.Open(ctx, cfg.LogoPath); err == nil {
			defer rc.Close()
			doc.Logo = rc
			doc.LogoExt = filepath.Ext(cfg.LogoPath)
		} else {
			s.logger.Warn("could not open logo for quote pdf", zap.Error(err))
		}
	}

	data, err := pdf.RenderQuote(doc)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("cotizacion-%s.pdf", order.ID.String()[:8])
	return data, filename, nil
}

// buildItems prices each requested line and freezes the production cost of
// catalog-backed lines from the current recipe. The snapshot is immutable
// from here on: later material cost changes never reprice a quote.
func (s *SalesOrderService) buildItems(ctx context.Context, inputs []domain.OrderItemInput) ([]domain.SalesOrderItem, error) {
	items := make([]domain.SalesOrderItem, 0, len(inputs))
	for _, in := range inputs {
		item := domain.SalesOrderItem{
			ProductName:     strings.TrimSpace(in.ProductName),
			OriginVersionID: in.OriginVersionID,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			SubtotalPrice:   money.RoundCents(money.Mul(in.Quantity, in.UnitPrice)),
			CostSnapshot:    domain.CostSnapshot{},
		}

		if in.OriginVersionID != nil {
			version, err := s.products.GetVersionByID(ctx, *in.OriginVersionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrVersionNotFound
				}
				return nil, err
			}
			snapshot, unitCost := freezeCosts(version)
			item.CostSnapshot = snapshot
			item.FrozenUnitCost = unitCost
		}
		items = append(items, item)
	}
	return items, nil
}

// freezeCosts captures the component costs of a recipe at this instant.
func freezeCosts(version *domain.ProductVersion) (domain.CostSnapshot, float64) {
	snapshot := make(domain.CostSnapshot, 0, len(version.Components))
	total := 0.0
	for _, comp := range version.Components {
		if comp.Material == nil || comp.Quantity <= 0 {
			continue
		}
		lineCost := money.LineCost(comp.Quantity, comp.Material.CurrentCost)
		snapshot = append(snapshot, domain.CostSnapshotLine{
			MaterialID: comp.MaterialID,
			SKU:        comp.Material.SKU,
			Name:       comp.Material.Name,
			Quantity:   comp.Quantity,
			UnitCost:   comp.Material.CurrentCost,
			LineCost:   lineCost,
		})
		total += lineCost
	}
	return snapshot, money.RoundCents(total)
}

// priceOrder computes the financial totals. The commission is money added on
// top of the item sum, and tax applies to the commissioned subtotal.
func (s *SalesOrderService) priceOrder(order *domain.SalesOrder, items []domain.SalesOrderItem, taxRate float64) {
	itemsSum := 0.0
	for i := range items {
		itemsSum += items[i].SubtotalPrice
	}
	itemsSum = money.RoundCents(itemsSum)

	commission := money.RoundCents(money.Mul(itemsSum, order.AppliedCommissionPercent))
	subtotal := money.RoundCents(itemsSum + commission)
	tax := money.RoundCents(money.Mul(subtotal, taxRate))

	order.CommissionAmount = commission
	order.Subtotal = subtotal
	order.TaxAmount = tax
	order.TotalPrice = money.RoundCents(subtotal + tax)
	order.Items = items
}
