package models

import "github.com/shopspring/decimal"

// DashboardPeriod bounds the orders a dashboard covers
type DashboardPeriod string

const (
	PeriodToday DashboardPeriod = "today"
	PeriodWeek  DashboardPeriod = "week"
	PeriodMonth DashboardPeriod = "month"
	PeriodAll   DashboardPeriod = "all"
)

// DashboardStats aggregates the order register
type DashboardStats struct {
	Period         DashboardPeriod     `json:"period"`
	TotalOrders    int                 `json:"totalOrders"`
	TotalRevenue   decimal.Decimal     `json:"totalRevenue"`
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
	RecentOrders   []OrderSummary      `json:"recentOrders"`
}
