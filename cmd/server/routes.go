package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/config"
	"github.com/Lixing-Zhang/stall-backend/internal/handlers"
	"github.com/Lixing-Zhang/stall-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *slog.Logger
	health    *handlers.HealthHandler
	menu      *handlers.MenuHandler
	orders    *handlers.OrderHandler
	coupons   *handlers.CouponHandler
	dashboard *handlers.DashboardHandler
	realtime  *handlers.RealtimeHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", d.health.ServeHTTP)

	// long-lived connection, kept out of the request timeout
	r.Get("/ws", d.realtime.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/stores/{storeSlug}/menu", d.menu.ListMenu)
		r.Get("/stores/{storeSlug}/menu/{itemId}", d.menu.GetItem)

		r.Post("/orders", d.orders.CreateOrder)
		r.Get("/orders/{orderId}", d.orders.GetOrder)

		r.Post("/coupons/validate", d.coupons.ValidateCoupon)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(d.cfg.Auth))

			r.Patch("/stores/{storeSlug}/menu/availability", d.menu.BulkSetAvailability)
			r.Patch("/stores/{storeSlug}/menu/{itemId}/availability", d.menu.SetAvailability)
			r.Post("/stores/{storeSlug}/menu/statistics", d.menu.PublishStatistics)
			r.Get("/orders", d.orders.ListOrders)
			r.Patch("/orders/{orderId}/status", d.orders.UpdateStatus)
			r.Get("/dashboard", d.dashboard.GetDashboard)
			r.Get("/coupons/stats", d.coupons.GetStats)
		})
	})

	return r
}
