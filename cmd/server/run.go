package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/stall-backend/internal/config"
	"github.com/Lixing-Zhang/stall-backend/internal/coupon"
	"github.com/Lixing-Zhang/stall-backend/internal/database"
	"github.com/Lixing-Zhang/stall-backend/internal/handlers"
	"github.com/Lixing-Zhang/stall-backend/internal/pricing"
	"github.com/Lixing-Zhang/stall-backend/internal/realtime"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/Lixing-Zhang/stall-backend/internal/repository/postgres"
	"github.com/Lixing-Zhang/stall-backend/internal/service"
	"github.com/Lixing-Zhang/stall-backend/pkg/logger"
)

// run wires the application together and serves until ctx is cancelled
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting stall backend",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"database", cfg.Database.URL != "",
	)

	stores, menu, db, err := openRepositories(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	catalog := coupon.NewCatalog()
	if len(cfg.Coupon.Files) > 0 {
		log.Info("loading coupon data...", "files", len(cfg.Coupon.Files))
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Coupon.LoadTimeout)
		err := catalog.LoadFromFiles(loadCtx, cfg.Coupon.Files)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to load coupon data: %w", err)
		}

		stats := catalog.GetStats()
		log.Info("coupon data loaded successfully",
			"total_files", stats["total_files"],
			"total_coupons", stats["total_coupons"],
		)
	} else {
		log.Warn("no coupon files configured, every coupon code will be rejected")
	}

	pricingOpts, err := pricingOptions(cfg.Pricing)
	if err != nil {
		return err
	}

	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, log)

	menuService := service.NewMenuService(stores, menu, broadcaster, log)
	engine := pricing.NewEngine(menuService, pricingOpts)
	validator := coupon.NewValidator(catalog, catalog)
	orderService := service.NewOrderService(stores, engine, validator, catalog, log)
	dashboardService := service.NewDashboardService(orderService)

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	router := newRouter(routerDeps{
		cfg:       cfg,
		logger:    log,
		health:    handlers.NewHealthHandler(log, pinger),
		menu:      handlers.NewMenuHandler(menuService, log),
		orders:    handlers.NewOrderHandler(orderService, log),
		coupons:   handlers.NewCouponHandler(validator, catalog, log),
		dashboard: handlers.NewDashboardHandler(dashboardService, log),
		realtime:  handlers.NewRealtimeHandler(registry, stores, cfg.Server.AllowedOrigins, log),
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// pricingOptions passes the configured rate through as set, zero included.
func pricingOptions(cfg config.PricingConfig) (pricing.Options, error) {
	fallback, err := cfg.Fallback()
	if err != nil {
		return pricing.Options{}, err
	}

	taxRate := cfg.TaxRate
	return pricing.Options{
		TaxRate:        &taxRate,
		FallbackPrice:  fallback,
		Locale:         cfg.Locale,
		CurrencySymbol: cfg.CurrencySymbol,
	}, nil
}

// openRepositories selects PostgreSQL when a database URL is configured and
// the in-memory repositories otherwise. db is nil for the in-memory case.
func openRepositories(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (repository.StoreRepository, repository.MenuRepository, *database.DB, error) {
	if cfg.URL == "" {
		log.Info("using in-memory repositories")
		return repository.NewInMemoryStoreRepository(), repository.NewInMemoryMenuRepository(), nil, nil
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	stores := postgres.NewStoreRepository(db.Pool)
	menu := postgres.NewMenuRepository(db.Pool)

	if cfg.Seed {
		if err := stores.Seed(ctx, repository.SeedStores()); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to seed stores: %w", err)
		}
		if err := menu.Seed(ctx, repository.SeedMenu()); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to seed menu: %w", err)
		}
	}

	log.Info("connected to database")
	return stores, menu, db, nil
}
