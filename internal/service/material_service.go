package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// MaterialService manages the purchasable materials catalog
type MaterialService struct {
	materials *repository.MaterialRepository
	providers *repository.ProviderRepository
	logger    *zap.Logger
}

func NewMaterialService(materials *repository.MaterialRepository, providers *repository.ProviderRepository, logger *zap.Logger) *MaterialService {
	return &MaterialService{materials: materials, providers: providers, logger: logger}
}

// Create registers a material. When the SKU already exists the request is
// merged into the existing row instead of failing, since catalog captures
// often re-send rows; stock stays owned by the inventory module.
func (s *MaterialService) Create(ctx context.Context, req domain.MaterialCreateRequest) (*domain.Material, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))

	existing, err := s.materials.GetBySKU(ctx, sku)
	if err == nil && existing != nil {
		return s.mergeInto(ctx, existing, req)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	route := domain.ProductionRoute(req.ProductionRoute)
	if route == "" {
		route = domain.RouteMaterial
	}
	factor := req.ConversionFactor
	if factor <= 0 {
		factor = 1
	}

	material := &domain.Material{
		SKU:                  sku,
		Name:                 strings.TrimSpace(req.Name),
		Category:             strings.TrimSpace(req.Category),
		ProductionRoute:      route,
		PurchaseUnit:         req.PurchaseUnit,
		UsageUnit:            req.UsageUnit,
		ConversionFactor:     factor,
		CurrentCost:          money.CeilCents(req.CurrentCost),
		PhysicalStock:        req.PhysicalStock,
		ProviderID:           req.ProviderID,
		AssociatedElementSKU: strings.TrimSpace(req.AssociatedElementSKU),
		IsActive:             true,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *MaterialService) mergeInto(ctx context.Context, existing *domain.Material, req domain.MaterialCreateRequest) (*domain.Material, error) {
	if name := strings.TrimSpace(req.Name); name != "" {
		existing.Name = name
	}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		existing.Category = cat
	}
	if req.ProductionRoute != "" {
		existing.ProductionRoute = domain.ProductionRoute(req.ProductionRoute)
	}
	if req.PurchaseUnit != "" {
		existing.PurchaseUnit = req.PurchaseUnit
	}
	if req.UsageUnit != "" {
		existing.UsageUnit = req.UsageUnit
	}
	if req.ConversionFactor > 0 {
		existing.ConversionFactor = req.ConversionFactor
	}
	existing.CurrentCost = money.CeilCents(req.CurrentCost)
	if req.ProviderID != nil {
		existing.ProviderID = req.ProviderID
	}
	if sku := strings.TrimSpace(req.AssociatedElementSKU); sku != "" {
		existing.AssociatedElementSKU = sku
	}
	existing.IsActive = true

	if err := s.materials.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	return material, nil
}

func (s *MaterialService) List(ctx context.Context, page, pageSize int, filters repository.MaterialFilters) ([]domain.Material, int64, error) {
	return s.materials.List(ctx, page, pageSize, filters)
}

func (s *MaterialService) Categories(ctx context.Context) ([]string, error) {
	return s.materials.Categories(ctx)
}

// Update edits descriptive fields. Stock and committed quantities are owned
// by the inventory module and cannot be set from here.
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req domain.MaterialUpdateRequest) (*domain.Material, error) {
	material, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		material.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		material.Category = strings.TrimSpace(*req.Category)
	}
	if req.ProductionRoute != nil {
		material.ProductionRoute = domain.ProductionRoute(*req.ProductionRoute)
	}
	if req.PurchaseUnit != nil {
		material.PurchaseUnit = *req.PurchaseUnit
	}
	if req.UsageUnit != nil {
		material.UsageUnit = *req.UsageUnit
	}
	if req.ConversionFactor != nil {
		material.ConversionFactor = *req.ConversionFactor
	}
	if req.CurrentCost != nil {
		material.CurrentCost = money.CeilCents(*req.CurrentCost)
	}
	if req.ProviderID != nil {
		material.ProviderID = req.ProviderID
	}
	if req.AssociatedElementSKU != nil {
		material.AssociatedElementSKU = strings.TrimSpace(*req.AssociatedElementSKU)
	}
	if req.IsActive != nil {
		material.IsActive = *req.IsActive
	}

	if err := s.materials.Update(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// Delete deactivates the material; recipes and transactions keep referencing it.
func (s *MaterialService) Delete(ctx context.Context, id uuid.UUID) error {
	material, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	material.IsActive = false
	return s.materials.Update(ctx, material)
}

// ImportCSV bulk-loads materials from a spreadsheet export. The import is
// best effort: bad rows are reported per row number and good rows still land.
// Existing SKUs are updated in place, except stock quantities which stay
// owned by the inventory module.
func (s *MaterialService) ImportCSV(ctx context.Context, r io.Reader) (*domain.ImportResultDTO, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := decodeCSVText(data)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	columns := mapColumns(header)
	if _, ok := columns["sku"]; !ok {
		return nil, fmt.Errorf("%w: missing sku column", ErrInvalidInput)
	}

	result := &domain.ImportResultDTO{Errors: []domain.ImportRowError{}}

	// Providers referenced by name are created on the fly; the cache keeps
	// repeated names from hitting the database once per row.
	providerCache := map[string]uuid.UUID{}

	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "unreadable row"})
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		sku := strings.ToUpper(field("sku"))
		if sku == "" {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "missing sku"})
			continue
		}
		name := field("name")

		cost, costErr := money.ParseAmount(field("cost"))
		if costErr != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "invalid cost: " + field("cost")})
			continue
		}
		factor := 1.0
		if raw := field("factor"); raw != "" {
			factor, err = strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil || factor <= 0 {
				result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "invalid conversion factor: " + raw})
				continue
			}
		}

		var providerID *uuid.UUID
		if providerName := field("provider"); providerName != "" {
			id, err := s.resolveProvider(ctx, providerName, providerCache)
			if err != nil {
				result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "provider: " + err.Error()})
				continue
			}
			providerID = &id
		}

		route := domain.ProductionRoute(strings.ToUpper(field("route")))
		if route != "" && !route.IsValid() {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "invalid production route: " + field("route")})
			continue
		}

		existing, err := s.materials.GetBySKU(ctx, sku)
		switch {
		case err == nil:
			if name != "" {
				existing.Name = name
			}
			if cat := field("category"); cat != "" {
				existing.Category = cat
			}
			if route != "" {
				existing.ProductionRoute = route
			}
			if u := field("purchaseUnit"); u != "" {
				existing.PurchaseUnit = u
			}
			if u := field("usageUnit"); u != "" {
				existing.UsageUnit = u
			}
			existing.ConversionFactor = factor
			existing.CurrentCost = money.CeilCents(cost)
			if providerID != nil {
				existing.ProviderID = providerID
			}
			if updateErr := s.materials.Update(ctx, existing); updateErr != nil {
				result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: updateErr.Error()})
				continue
			}
			result.Updated++

		case errors.Is(err, gorm.ErrRecordNotFound):
			if name == "" {
				result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: "missing name for new sku " + sku})
				continue
			}
			if route == "" {
				route = domain.RouteMaterial
			}
			stock := 0.0
			if raw := field("stock"); raw != "" {
				stock, _ = strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			}
			material := &domain.Material{
				SKU:              sku,
				Name:             name,
				Category:         field("category"),
				ProductionRoute:  route,
				PurchaseUnit:     orDefault(field("purchaseUnit"), "PZA"),
				UsageUnit:        orDefault(field("usageUnit"), "PZA"),
				ConversionFactor: factor,
				CurrentCost:      money.CeilCents(cost),
				PhysicalStock:    stock,
				ProviderID:       providerID,
				IsActive:         true,
			}
			if createErr := s.materials.Create(ctx, material); createErr != nil {
				result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Message: createErr.Error()})
				continue
			}
			result.Created++

		default:
			return nil, err
		}
	}

	s.logger.Info("material import finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *MaterialService) resolveProvider(ctx context.Context, name string, cache map[string]uuid.UUID) (uuid.UUID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := cache[key]; ok {
		return id, nil
	}

	provider, err := s.providers.GetByBusinessName(ctx, name)
	if err == nil {
		cache[key] = provider.ID
		return provider.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	created := &domain.Provider{BusinessName: strings.TrimSpace(name), IsActive: true}
	if err := s.providers.Create(ctx, created); err != nil {
		return uuid.Nil, err
	}
	cache[key] = created.ID
	return created.ID, nil
}

// decodeCSVText strips a UTF-8 BOM and falls back to Latin-1 when the bytes
// are not valid UTF-8. Spreadsheet exports in either encoding show up often.
func decodeCSVText(data []byte) string {
	data = []byte(strings.TrimPrefix(string(data), "\uFEFF"))
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// sniffDelimiter picks between comma and semicolon based on the first line.
func sniffDelimiter(text string) rune {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

// mapColumns normalizes header names to canonical field keys.
func mapColumns(header []string) map[string]int {
	aliases := map[string]string{
		"sku": "sku", "clave": "sku", "codigo": "sku",
		"nombre": "name", "name": "name", "descripcion": "name",
		"categoria": "category", "category": "category",
		"ruta": "route", "ruta_produccion": "route", "production_route": "route",
		"unidad_compra": "purchaseUnit", "purchase_unit": "purchaseUnit",
		"unidad_uso": "usageUnit", "usage_unit": "usageUnit",
		"factor": "factor", "factor_conversion": "factor", "conversion_factor": "factor",
		"costo": "cost", "cost": "cost", "costo_actual": "cost", "precio": "cost",
		"stock": "stock", "existencia": "stock", "physical_stock": "stock",
		"proveedor": "provider", "provider": "provider",
	}
	columns := map[string]int{}
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF")))
		key = strings.ReplaceAll(key, " ", "_")
		if canonical, ok := aliases[key]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
