package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const DefaultOrderLimit = 24

type Service struct {
	orders     interfaces.OrderRepository
	menu       interfaces.MenuRepository
	tables     interfaces.TableRepository
	logger     logger.Logger
	orderLimit int
	now        func() time.Time
}

func NewService(
	orders interfaces.OrderRepository,
	menu interfaces.MenuRepository,
	tables interfaces.TableRepository,
	logger logger.Logger,
	orderLimit int,
) *Service {
	if orderLimit <= 0 {
		orderLimit = DefaultOrderLimit
	}
	return &Service{
		orders:     orders,
		menu:       menu,
		tables:     tables,
		logger:     logger,
		orderLimit: orderLimit,
		now:        time.Now,
	}
}

// GetDashboard returns the recent order window, the full menu and floor plan,
// and the headline summary. Revenue covers every paid order of the current
// local day, not only the fetched window.
func (s *Service) GetDashboard(ctx context.Context) (*interfaces.DashboardView, error) {
	orders, err := s.orders.ListRecent(ctx, s.orderLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	menu, err := s.menu.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	from, to := domain.DayBounds(s.now())
	revenue, err := s.orders.SumPaidBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	view := &interfaces.DashboardView{
		MenuItems: menu,
		Tables:    tables,
		Orders:    orders,
		Summary:   domain.Summarize(orders, menu, tables, revenue),
	}
	s.logger.Debug("dashboard_built", "Dashboard aggregated", logger.RequestID(ctx), map[string]interface{}{
		"orders":        len(orders),
		"open_orders":   view.Summary.OpenOrders,
		"revenue_today": view.Summary.RevenueToday,
	})
	return view, nil
}

// DailyReport lists paid orders created on day's local calendar date.
func (s *Service) DailyReport(ctx context.Context, day time.Time) ([]*domain.Order, error) {
	if day.IsZero() {
		day = s.now()
	}
	from, to := domain.DayBounds(day)
	orders, err := s.orders.ListPaidBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid orders: %w", err)
	}
	return orders, nil
}
