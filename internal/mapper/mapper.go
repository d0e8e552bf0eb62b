// Package mapper converts persistence entities into API DTOs.
package mapper

import (
	"encoding/json"
	"time"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

const isoFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		CommissionRate: u.CommissionRate,
		IsActive:       u.IsActive,
		CreatedAt:      formatTime(u.CreatedAt),
	}
}

func ToUserDTOs(users []domain.User) []domain.UserDTO {
	dtos := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, ToUserDTO(&users[i]))
	}
	return dtos
}

func ToProviderDTO(p *domain.Provider) domain.ProviderDTO {
	return domain.ProviderDTO{
		ID:           p.ID,
		BusinessName: p.BusinessName,
		ContactName:  p.ContactName,
		Email:        p.Email,
		Phone:        p.Phone,
		CreditDays:   p.CreditDays,
		IsActive:     p.IsActive,
	}
}

func ToProviderDTOs(providers []domain.Provider) []domain.ProviderDTO {
	dtos := make([]domain.ProviderDTO, 0, len(providers))
	for i := range providers {
		dtos = append(dtos, ToProviderDTO(&providers[i]))
	}
	return dtos
}

func ToClientDTO(c *domain.Client) domain.ClientDTO {
	contacts := make([]domain.ClientContactDTO, 0, 4)
	for _, ct := range []struct{ name, email, phone, role string }{
		{c.Contact1Name, c.Contact1Mail, c.Contact1Tel, c.Contact1Role},
		{c.Contact2Name, c.Contact2Mail, c.Contact2Tel, c.Contact2Role},
		{c.Contact3Name, c.Contact3Mail, c.Contact3Tel, c.Contact3Role},
		{c.Contact4Name, c.Contact4Mail, c.Contact4Tel, c.Contact4Role},
	} {
		if ct.name == "" && ct.email == "" && ct.phone == "" {
			continue
		}
		contacts = append(contacts, domain.ClientContactDTO{
			Name:  ct.name,
			Email: ct.email,
			Phone: ct.phone,
			Role:  ct.role,
		})
	}
	return domain.ClientDTO{
		ID:           c.ID,
		BusinessName: c.BusinessName,
		TaxID:        c.TaxID,
		Address:      c.Address,
		Contacts:     contacts,
		IsActive:     c.IsActive,
	}
}

func ToClientDTOs(clients []domain.Client) []domain.ClientDTO {
	dtos := make([]domain.ClientDTO, 0, len(clients))
	for i := range clients {
		dtos = append(dtos, ToClientDTO(&clients[i]))
	}
	return dtos
}

func ToTaxRateDTO(t *domain.TaxRate) domain.TaxRateDTO {
	return domain.TaxRateDTO{ID: t.ID, Name: t.Name, Rate: t.Rate, IsActive: t.IsActive}
}

func ToTaxRateDTOs(rates []domain.TaxRate) []domain.TaxRateDTO {
	dtos := make([]domain.TaxRateDTO, 0, len(rates))
	for i := range rates {
		dtos = append(dtos, ToTaxRateDTO(&rates[i]))
	}
	return dtos
}

func ToGlobalConfigDTO(cfg *domain.GlobalConfig) domain.GlobalConfigDTO {
	return domain.GlobalConfigDTO{
		TargetProfitMargin:       cfg.TargetProfitMargin,
		CostTolerancePercent:     cfg.CostTolerancePercent,
		QuoteValidityDays:        cfg.QuoteValidityDays,
		DefaultEdgebandingFactor: cfg.DefaultEdgebandingFactor,
		AnnualSalesTarget:        cfg.AnnualSalesTarget,
		LogoPath:                 cfg.LogoPath,
	}
}

func ToMaterialDTO(m *domain.Material) domain.MaterialDTO {
	dto := domain.MaterialDTO{
		ID:                   m.ID,
		SKU:                  m.SKU,
		Name:                 m.Name,
		Category:             m.Category,
		ProductionRoute:      m.ProductionRoute,
		PurchaseUnit:         m.PurchaseUnit,
		UsageUnit:            m.UsageUnit,
		ConversionFactor:     m.ConversionFactor,
		CurrentCost:          m.CurrentCost,
		PhysicalStock:        m.PhysicalStock,
		CommittedStock:       m.CommittedStock,
		ProviderID:           m.ProviderID,
		AssociatedElementSKU: m.AssociatedElementSKU,
		IsActive:             m.IsActive,
	}
	if m.Provider != nil {
		dto.ProviderName = m.Provider.BusinessName
	}
	return dto
}

func ToMaterialDTOs(materials []domain.Material) []domain.MaterialDTO {
	dtos := make([]domain.MaterialDTO, 0, len(materials))
	for i := range materials {
		dtos = append(dtos, ToMaterialDTO(&materials[i]))
	}
	return dtos
}

func ToVersionComponentDTO(c *domain.VersionComponent) domain.VersionComponentDTO {
	dto := domain.VersionComponentDTO{
		ID:         c.ID,
		MaterialID: c.MaterialID,
		Quantity:   c.Quantity,
	}
	if c.Material != nil {
		dto.MaterialSKU = c.Material.SKU
		dto.MaterialName = c.Material.Name
		dto.UnitCost = c.Material.CurrentCost
	}
	return dto
}

func ToProductVersionDTO(v *domain.ProductVersion) domain.ProductVersionDTO {
	dto := domain.ProductVersionDTO{
		ID:            v.ID,
		MasterID:      v.MasterID,
		VersionName:   v.VersionName,
		Status:        v.Status,
		EstimatedCost: v.EstimatedCost,
		IsActive:      v.IsActive,
	}
	for i := range v.Components {
		dto.Components = append(dto.Components, ToVersionComponentDTO(&v.Components[i]))
	}
	return dto
}

func ToProductMasterDTO(m *domain.ProductMaster) domain.ProductMasterDTO {
	dto := domain.ProductMasterDTO{
		ID:            m.ID,
		Name:          m.Name,
		Category:      m.Category,
		Description:   m.Description,
		ClientID:      m.ClientID,
		BlueprintPath: m.BlueprintPath,
		IsActive:      m.IsActive,
	}
	if m.Client != nil {
		dto.ClientName = m.Client.BusinessName
	}
	for i := range m.Versions {
		dto.Versions = append(dto.Versions, ToProductVersionDTO(&m.Versions[i]))
	}
	return dto
}

func ToProductMasterDTOs(masters []domain.ProductMaster) []domain.ProductMasterDTO {
	dtos := make([]domain.ProductMasterDTO, 0, len(masters))
	for i := range masters {
		dtos = append(dtos, ToProductMasterDTO(&masters[i]))
	}
	return dtos
}

func ToSalesOrderItemDTO(it *domain.SalesOrderItem) domain.SalesOrderItemDTO {
	return domain.SalesOrderItemDTO{
		ID:              it.ID,
		ProductName:     it.ProductName,
		OriginVersionID: it.OriginVersionID,
		Quantity:        it.Quantity,
		UnitPrice:       it.UnitPrice,
		SubtotalPrice:   it.SubtotalPrice,
		FrozenUnitCost:  it.FrozenUnitCost,
		CostSnapshot:    it.CostSnapshot,
	}
}

func ToSalesOrderDTO(o *domain.SalesOrder) domain.SalesOrderDTO {
	dto := domain.SalesOrderDTO{
		ID:                       o.ID,
		ProjectName:              o.ProjectName,
		ClientID:                 o.ClientID,
		UserID:                   o.UserID,
		TaxRateID:                o.TaxRateID,
		Status:                   o.Status,
		ValidUntil:               formatTime(o.ValidUntil),
		DeliveryDate:             formatTimePtr(o.DeliveryDate),
		AppliedMarginPercent:     o.AppliedMarginPercent,
		AppliedTolerancePercent:  o.AppliedTolerancePercent,
		AppliedCommissionPercent: o.AppliedCommissionPercent,
		CommissionAmount:         o.CommissionAmount,
		Currency:                 o.Currency,
		Notes:                    o.Notes,
		Conditions:               o.Conditions,
		ExternalInvoiceRef:       o.ExternalInvoiceRef,
		IsWarranty:               o.IsWarranty,
		Subtotal:                 o.Subtotal,
		TaxAmount:                o.TaxAmount,
		TotalPrice:               o.TotalPrice,
		OutstandingBalance:       o.OutstandingBalance,
		PaymentStatus:            o.PaymentStatus,
		CreatedAt:                formatTime(o.CreatedAt),
		Items:                    make([]domain.SalesOrderItemDTO, 0, len(o.Items)),
	}
	if o.Client != nil {
		dto.ClientName = o.Client.BusinessName
	}
	for i := range o.Items {
		dto.Items = append(dto.Items, ToSalesOrderItemDTO(&o.Items[i]))
	}
	return dto
}

func ToSalesOrderDTOs(orders []domain.SalesOrder) []domain.SalesOrderDTO {
	dtos := make([]domain.SalesOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, ToSalesOrderDTO(&orders[i]))
	}
	return dtos
}

func ToCustomerPaymentDTO(p *domain.CustomerPayment) domain.CustomerPaymentDTO {
	return domain.CustomerPaymentDTO{
		ID:           p.ID,
		SalesOrderID: p.SalesOrderID,
		Amount:       p.Amount,
		PaymentDate:  formatTime(p.PaymentDate),
		Method:       p.Method,
		Reference:    p.Reference,
		Notes:        p.Notes,
	}
}

func ToCustomerPaymentDTOs(payments []domain.CustomerPayment) []domain.CustomerPaymentDTO {
	dtos := make([]domain.CustomerPaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, ToCustomerPaymentDTO(&payments[i]))
	}
	return dtos
}

func ToInventoryTransactionDTO(t *domain.InventoryTransaction) domain.InventoryTransactionDTO {
	dto := domain.InventoryTransactionDTO{
		ID:         t.ID,
		MaterialID: t.MaterialID,
		Type:       t.TransactionType,
		Quantity:   t.Quantity,
		UnitCost:   t.UnitCost,
		TotalCost:  t.TotalCost,
	}
	if t.Material != nil {
		dto.MaterialSKU = t.Material.SKU
		dto.MaterialName = t.Material.Name
	}
	return dto
}

func ToReceptionDTO(r *domain.InventoryReception) domain.ReceptionDTO {
	dto := domain.ReceptionDTO{
		ID:          r.ID,
		Folio:       r.Folio,
		ProviderID:  r.ProviderID,
		InvoiceDate: formatTime(r.InvoiceDate),
		DueDate:     formatTime(r.DueDate),
		TotalAmount: r.TotalAmount,
		Status:      r.Status,
		Notes:       r.Notes,
	}
	if r.Provider != nil {
		dto.ProviderName = r.Provider.BusinessName
	}
	for i := range r.Transactions {
		dto.Transactions = append(dto.Transactions, ToInventoryTransactionDTO(&r.Transactions[i]))
	}
	return dto
}

func ToReceptionDTOs(receptions []domain.InventoryReception) []domain.ReceptionDTO {
	dtos := make([]domain.ReceptionDTO, 0, len(receptions))
	for i := range receptions {
		dtos = append(dtos, ToReceptionDTO(&receptions[i]))
	}
	return dtos
}

func ToPurchaseInvoiceDTO(inv *domain.PurchaseInvoice) domain.PurchaseInvoiceDTO {
	dto := domain.PurchaseInvoiceDTO{
		ID:                 inv.ID,
		Folio:              inv.Folio,
		InvoiceUUID:        inv.InvoiceUUID,
		ProviderID:         inv.ProviderID,
		ReceptionID:        inv.ReceptionID,
		TotalAmount:        inv.TotalAmount,
		OutstandingBalance: inv.OutstandingBalance,
		InvoiceDate:        formatTime(inv.InvoiceDate),
		DueDate:            formatTime(inv.DueDate),
		Status:             inv.Status,
	}
	if inv.Provider != nil {
		dto.ProviderName = inv.Provider.BusinessName
	}
	return dto
}

func ToPurchaseInvoiceDTOs(invoices []domain.PurchaseInvoice) []domain.PurchaseInvoiceDTO {
	dtos := make([]domain.PurchaseInvoiceDTO, 0, len(invoices))
	for i := range invoices {
		dtos = append(dtos, ToPurchaseInvoiceDTO(&invoices[i]))
	}
	return dtos
}

func ToSupplierPaymentDTO(p *domain.SupplierPayment) domain.SupplierPaymentDTO {
	dto := domain.SupplierPaymentDTO{
		ID:                    p.ID,
		InvoiceID:             p.InvoiceID,
		RequestedBy:           p.RequestedBy,
		Amount:                p.Amount,
		Status:                p.Status,
		PaymentMethod:         p.PaymentMethod,
		SuggestedAccountID:    p.SuggestedAccountID,
		ApprovedAccountID:     p.ApprovedAccountID,
		ApprovedBy:            p.ApprovedBy,
		Notes:                 p.Notes,
		TreasuryTransactionID: p.TreasuryTransactionID,
		ScheduledDate:         formatTimePtr(p.ScheduledDate),
		ExecutedAt:            formatTimePtr(p.ExecutedAt),
		CreatedAt:             formatTime(p.CreatedAt),
	}
	if p.Invoice != nil {
		dto.InvoiceFolio = p.Invoice.Folio
		if p.Invoice.Provider != nil {
			dto.ProviderName = p.Invoice.Provider.BusinessName
		}
	}
	return dto
}

func ToSupplierPaymentDTOs(payments []domain.SupplierPayment) []domain.SupplierPaymentDTO {
	dtos := make([]domain.SupplierPaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, ToSupplierPaymentDTO(&payments[i]))
	}
	return dtos
}

func ToBankAccountDTO(a *domain.BankAccount) domain.BankAccountDTO {
	return domain.BankAccountDTO{
		ID:             a.ID,
		Name:           a.Name,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		CLABE:          a.CLABE,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
	}
}

func ToBankAccountDTOs(accounts []domain.BankAccount) []domain.BankAccountDTO {
	dtos := make([]domain.BankAccountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, ToBankAccountDTO(&accounts[i]))
	}
	return dtos
}

func ToBankTransactionDTO(t *domain.BankTransaction) domain.BankTransactionDTO {
	return domain.BankTransactionDTO{
		ID:                t.ID,
		AccountID:         t.AccountID,
		Type:              t.TransactionType,
		Amount:            t.Amount,
		Concept:           t.Concept,
		TransactionDate:   formatTime(t.TransactionDate),
		RelatedEntityType: t.RelatedEntityType,
		RelatedEntityID:   t.RelatedEntityID,
	}
}

func ToBankTransactionDTOs(txns []domain.BankTransaction) []domain.BankTransactionDTO {
	dtos := make([]domain.BankTransactionDTO, 0, len(txns))
	for i := range txns {
		dtos = append(dtos, ToBankTransactionDTO(&txns[i]))
	}
	return dtos
}

func ToAuditLogDTO(l *domain.AuditLog) domain.AuditLogDTO {
	detail := json.RawMessage(l.Detail)
	if len(detail) == 0 || !json.Valid(detail) {
		detail = json.RawMessage("null")
	}
	var userID *string
	if l.UserID != nil {
		s := l.UserID.String()
		userID = &s
	}
	return domain.AuditLogDTO{
		ID:         l.ID.String(),
		UserID:     userID,
		UserEmail:  l.UserEmail,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Method:     l.Method,
		Path:       l.Path,
		StatusCode: l.StatusCode,
		Detail:     detail,
		CreatedAt:  formatTime(l.CreatedAt),
	}
}

func ToAuditLogDTOs(logs []domain.AuditLog) []domain.AuditLogDTO {
	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, ToAuditLogDTO(&logs[i]))
	}
	return dtos
}
