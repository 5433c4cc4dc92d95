package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/stall-backend/internal/coupon"
	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/pricing"
	"github.com/Lixing-Zhang/stall-backend/internal/realtime"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/Lixing-Zhang/stall-backend/internal/service"
	"github.com/Lixing-Zhang/stall-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type testApp struct {
	registry *realtime.Registry
	stores   *repository.InMemoryStoreRepository
	catalog  *coupon.Catalog
	menu     *MenuHandler
	orders   *OrderHandler
	coupons  *CouponHandler
	dash     *DashboardHandler
	router   chi.Router
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logger.New("error")
	stores := repository.NewInMemoryStoreRepository()
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, log)

	menuService := service.NewMenuService(stores, repository.NewInMemoryMenuRepository(), broadcaster, log)

	catalog := coupon.NewCatalog()
	catalog.Add(
		models.Coupon{
			Code:           "WELCOME10",
			Type:           models.DiscountPercentage,
			Value:          decimal.NewFromInt(10),
			MinOrderAmount: decimal.NewFromInt(100),
			MaxDiscount:    decimal.NewFromInt(50),
			Active:         true,
		},
		models.Coupon{
			Code:           "SAVE20",
			Type:           models.DiscountFixed,
			Value:          decimal.NewFromInt(20),
			MinOrderAmount: decimal.NewFromInt(200),
			Active:         true,
		},
	)
	validator := coupon.NewValidator(catalog, catalog)

	taxRate := decimal.RequireFromString("0.05")
	engine := pricing.NewEngine(menuService, pricing.Options{
		TaxRate:        &taxRate,
		Locale:         "en",
		CurrencySymbol: "₹",
	})
	orderService := service.NewOrderService(stores, engine, validator, catalog, log)

	app := &testApp{
		registry: registry,
		stores:   stores,
		catalog:  catalog,
		menu:     NewMenuHandler(menuService, log),
		orders:   NewOrderHandler(orderService, log),
		coupons:  NewCouponHandler(validator, catalog, log),
		dash:     NewDashboardHandler(service.NewDashboardService(orderService), log),
	}

	r := chi.NewRouter()
	r.Get("/api/stores/{storeSlug}/menu", app.menu.ListMenu)
	r.Get("/api/stores/{storeSlug}/menu/{itemId}", app.menu.GetItem)
	r.Patch("/api/admin/stores/{storeSlug}/menu/availability", app.menu.BulkSetAvailability)
	r.Patch("/api/admin/stores/{storeSlug}/menu/{itemId}/availability", app.menu.SetAvailability)
	r.Post("/api/admin/stores/{storeSlug}/menu/statistics", app.menu.PublishStatistics)
	r.Post("/api/orders", app.orders.CreateOrder)
	r.Get("/api/admin/orders", app.orders.ListOrders)
	r.Get("/api/orders/{orderId}", app.orders.GetOrder)
	r.Patch("/api/admin/orders/{orderId}/status", app.orders.UpdateStatus)
	r.Post("/api/coupons/validate", app.coupons.ValidateCoupon)
	r.Get("/api/admin/coupons/stats", app.coupons.GetStats)
	r.Get("/api/admin/dashboard", app.dash.GetDashboard)
	app.router = r

	return app
}

// do sends a request through the test router. body may be a string of raw
// JSON or any value to marshal.
func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, w.Body.String())
	}
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Code != code {
		t.Errorf("code = %q, want %q", resp.Code, code)
	}
	if resp.Error == "" {
		t.Error("error message is empty")
	}
}
