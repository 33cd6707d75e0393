package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bimakw/wallet-explorer/internal/testutil"
)

func newTestHealthHandler(db, cache *testutil.MockHealthChecker) *HealthHandler {
	components := []Component{}
	if db != nil {
		components = append(components, Component{Name: "database", Checker: db, Critical: true})
	}
	if cache != nil {
		components = append(components, Component{Name: "cache", Checker: cache})
	}
	return NewHealthHandler(components...)
}

func TestHealthHandler_Health_AllHealthy(t *testing.T) {
	handler := newTestHealthHandler(testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Services["database"] != "healthy" || response.Services["cache"] != "healthy" {
		t.Errorf("expected all services healthy, got %v", response.Services)
	}
	if response.Timestamp == "" {
		t.Error("expected non-empty timestamp")
	}
}

func TestHealthHandler_Health_CriticalUnhealthy(t *testing.T) {
	handler := newTestHealthHandler(testutil.NewMockHealthChecker(false), testutil.NewMockHealthChecker(false))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
}

func TestHealthHandler_Health_CacheUnhealthy(t *testing.T) {
	handler := newTestHealthHandler(testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(false))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	// Cache unhealthy should result in "degraded" status, not "unhealthy"
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for degraded, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", response.Status)
	}
	if response.Services["cache"] == "healthy" {
		t.Error("expected cache to be unhealthy")
	}
}

func TestHealthHandler_Health_NoComponents(t *testing.T) {
	handler := NewHealthHandler(Component{Name: "database", Critical: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if _, exists := response.Services["database"]; exists {
		t.Error("components without a checker should not be reported")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name     string
		db       *testutil.MockHealthChecker
		cache    *testutil.MockHealthChecker
		expected int
	}{
		{"all healthy", testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(true), http.StatusOK},
		{"cache down is still ready", testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(false), http.StatusOK},
		{"database down", testutil.NewMockHealthChecker(false), nil, http.StatusServiceUnavailable},
		{"no database", nil, testutil.NewMockHealthChecker(true), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHealthHandler(tt.db, tt.cache)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()

			handler.Ready(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, rec.Code)
			}
			if tt.expected == http.StatusOK && rec.Body.String() != "ready" {
				t.Errorf("expected body 'ready', got '%s'", rec.Body.String())
			}
		})
	}
}

func TestHealthHandler_Live_AlwaysAlive(t *testing.T) {
	// Even when the database is unhealthy, liveness should pass
	handler := newTestHealthHandler(testutil.NewMockHealthChecker(false), nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	handler.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "alive" {
		t.Errorf("expected body 'alive', got '%s'", body)
	}
}
