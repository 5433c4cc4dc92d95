package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/stall-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		database       Pinger
		expectedStatus int
		expectedHealth string
	}{
		{name: "in-memory", database: nil, expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "database reachable", database: stubPinger{}, expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "database down", database: stubPinger{err: errors.New("connection refused")}, expectedStatus: http.StatusServiceUnavailable, expectedHealth: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(logger.New("error"), tt.database)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			var resp HealthResponse
			decodeBody(t, w, &resp)
			if resp.Status != tt.expectedHealth {
				t.Errorf("health = %q, want %q", resp.Status, tt.expectedHealth)
			}
		})
	}
}
