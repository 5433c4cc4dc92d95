package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	created := []time.Time{
		now.AddDate(0, -2, 0),      // outside month
		now.AddDate(0, 0, -20),     // month
		now.AddDate(0, 0, -3),      // week
		now.Add(-2 * time.Hour),    // today
		now.Add(-1 * time.Hour),    // today
		now.Add(-30 * time.Minute), // today
		now.Add(-10 * time.Minute), // today
		now.Add(-5 * time.Minute),  // today
	}
	for _, at := range created {
		at := at
		f.orders.now = func() time.Time { return at }
		if _, err := f.orders.CreateOrder(ctx, validRequest(models.OrderItem{MenuItemID: "1", Quantity: 1})); err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
	}
	f.orders.now = func() time.Time { return now }
	if _, err := f.orders.UpdateStatus(ctx, "ORD00008", models.StatusCancelled); err != nil {
		t.Fatal(err)
	}

	dashboard := NewDashboardService(f.orders)
	dashboard.now = func() time.Time { return now }

	// every order totals 60 + 3 tax
	tests := []struct {
		period      models.DashboardPeriod
		wantOrders  int
		wantRevenue string
		wantRecent  []string
	}{
		{models.PeriodToday, 5, "315", []string{"ORD00008", "ORD00007", "ORD00006", "ORD00005", "ORD00004"}},
		{models.PeriodWeek, 6, "378", []string{"ORD00008", "ORD00007", "ORD00006", "ORD00005", "ORD00004"}},
		{models.PeriodMonth, 7, "441", nil},
		{models.PeriodAll, 8, "504", nil},
		{"", 8, "504", nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			stats, err := dashboard.GetDashboard(ctx, tt.period)
			if err != nil {
				t.Fatalf("GetDashboard() error = %v", err)
			}
			if stats.TotalOrders != tt.wantOrders {
				t.Errorf("TotalOrders = %d, want %d", stats.TotalOrders, tt.wantOrders)
			}
			if !stats.TotalRevenue.Equal(dec(tt.wantRevenue)) {
				t.Errorf("TotalRevenue = %s, want %s", stats.TotalRevenue, tt.wantRevenue)
			}
			if len(stats.RecentOrders) > 5 {
				t.Errorf("RecentOrders has %d entries, want at most 5", len(stats.RecentOrders))
			}
			for i, id := range tt.wantRecent {
				if stats.RecentOrders[i].ID != id {
					t.Errorf("RecentOrders[%d] = %s, want %s", i, stats.RecentOrders[i].ID, id)
				}
			}
			if stats.OrdersByStatus[models.StatusCancelled] != 1 {
				t.Errorf("cancelled = %d, want 1", stats.OrdersByStatus[models.StatusCancelled])
			}
			if stats.OrdersByStatus[models.StatusPending] != tt.wantOrders-1 {
				t.Errorf("pending = %d, want %d", stats.OrdersByStatus[models.StatusPending], tt.wantOrders-1)
			}
			if _, ok := stats.OrdersByStatus[models.StatusDelivered]; !ok {
				t.Error("OrdersByStatus misses delivered")
			}
		})
	}
}

func TestDashboardService_Empty(t *testing.T) {
	dashboard := NewDashboardService(newFixture(t).orders)

	stats, err := dashboard.GetDashboard(context.Background(), models.PeriodToday)
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}
	if stats.TotalOrders != 0 || !stats.TotalRevenue.IsZero() || len(stats.RecentOrders) != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
}

func TestDashboardService_InvalidPeriod(t *testing.T) {
	dashboard := NewDashboardService(newFixture(t).orders)

	if _, err := dashboard.GetDashboard(context.Background(), "year"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("error = %v, want ErrInvalidPeriod", err)
	}
}
