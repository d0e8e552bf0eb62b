package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// DashboardService aggregates headline figures for the landing page
type DashboardService struct {
	orders  *repository.SalesOrderRepository
	configs *repository.GlobalConfigRepository
	logger  *zap.Logger
}

func NewDashboardService(orders *repository.SalesOrderRepository, configs *repository.GlobalConfigRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{orders: orders, configs: configs, logger: logger}
}

// Summary returns the sold total for the year against the annual target,
// pipeline counts by status and the open receivables balance.
func (s *DashboardService) Summary(ctx context.Context, year int) (*domain.DashboardDTO, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	soldTotal, soldCount, err := s.orders.SoldTotalsForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	receivables, err := s.orders.ReceivablesTotal(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	progress := 0.0
	if cfg.AnnualSalesTarget > 0 {
		progress = money.RoundCents(soldTotal / cfg.AnnualSalesTarget * 100)
	}

	return &domain.DashboardDTO{
		Year:              year,
		SoldTotal:         money.RoundCents(soldTotal),
		SoldCount:         soldCount,
		AnnualSalesTarget: cfg.AnnualSalesTarget,
		TargetProgress:    progress,
		OrdersByStatus:    byStatus,
		ReceivablesTotal:  money.RoundCents(receivables),
	}, nil
}
