package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

// OrderLister lists orders newest first
type OrderLister interface {
	ListOrders(ctx context.Context) ([]models.OrderSummary, error)
}

// DashboardService aggregates the order register for the admin dashboard
type DashboardService struct {
	orders OrderLister
	now    func() time.Time
}

func NewDashboardService(orders OrderLister) *DashboardService {
	return &DashboardService{
		orders: orders,
		now:    time.Now,
	}
}

// GetDashboard summarises the orders created inside period. An empty period
// covers every order.
func (s *DashboardService) GetDashboard(ctx context.Context, period models.DashboardPeriod) (models.DashboardStats, error) {
	if period == "" {
		period = models.PeriodAll
	}

	since, err := periodStart(period, s.now())
	if err != nil {
		return models.DashboardStats{}, err
	}

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		Period:         period,
		TotalRevenue:   decimal.Zero,
		OrdersByStatus: make(map[models.OrderStatus]int, len(models.AllStatuses)),
		RecentOrders:   []models.OrderSummary{},
	}
	for _, st := range models.AllStatuses {
		stats.OrdersByStatus[st] = 0
	}

	for _, o := range orders {
		if !since.IsZero() && o.CreatedAt.Before(since) {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		stats.OrdersByStatus[o.Status]++
		if len(stats.RecentOrders) < recentOrdersLimit {
			stats.RecentOrders = append(stats.RecentOrders, o)
		}
	}

	return stats, nil
}

// periodStart returns the earliest creation time inside period; zero means
// unbounded.
func periodStart(period models.DashboardPeriod, now time.Time) (time.Time, error) {
	switch period {
	case models.PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case models.PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	case models.PeriodAll:
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", period, ErrInvalidPeriod)
}
