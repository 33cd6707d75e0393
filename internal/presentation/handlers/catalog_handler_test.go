package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/testutil"
)

func setupCatalogHandlerTest() (chi.Router, *testutil.MockTokenCatalogRepository) {
	repo := testutil.NewMockTokenCatalogRepository()
	logger := zap.NewNop()

	service := services.NewCatalogService(repo, nil, nil, time.Minute, logger)
	handler := NewCatalogHandler(service, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, repo
}

func TestCatalogHandler_GetToken(t *testing.T) {
	router, repo := setupCatalogHandlerTest()
	repo.AddToken(testutil.CreateTestCatalogToken())
	repo.AddToken(testutil.CreateTestCatalogToken(
		testutil.CatalogTokenWithChainID(137),
		testutil.CatalogTokenWithSymbol("USDT.e"),
	))

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedSymbol string
	}{
		{"default chain", "/catalog/tokens/" + testutil.USDTAddress, http.StatusOK, "USDT"},
		{"explicit chain", "/catalog/tokens/" + testutil.USDTAddress + "?chainid=137", http.StatusOK, "USDT.e"},
		{"unknown token", "/catalog/tokens/" + testutil.WETHAddress, http.StatusNotFound, ""},
		{"unknown chain", "/catalog/tokens/" + testutil.USDTAddress + "?chainid=56", http.StatusNotFound, ""},
		{"invalid address", "/catalog/tokens/0xnothex", http.StatusBadRequest, ""},
		{"invalid chain", "/catalog/tokens/" + testutil.USDTAddress + "?chainid=-5", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSymbol == "" {
				return
			}

			var response services.CatalogTokenResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Data.Symbol != tt.expectedSymbol {
				t.Errorf("expected symbol %s, got %s", tt.expectedSymbol, response.Data.Symbol)
			}
		})
	}
}

func TestCatalogHandler_GetToken_RepositoryError(t *testing.T) {
	router, repo := setupCatalogHandlerTest()
	repo.GetByAddressFunc = func(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error) {
		return nil, errors.New("connection reset")
	}

	req := httptest.NewRequest(http.MethodGet, "/catalog/tokens/"+testutil.USDTAddress, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestCatalogHandler_GetStats(t *testing.T) {
	router, repo := setupCatalogHandlerTest()
	repo.AddToken(testutil.CreateTestCatalogToken())

	req := httptest.NewRequest(http.MethodGet, "/catalog/stats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.CatalogStatsResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Data.TotalTokens != 1 {
		t.Errorf("expected 1 token, got %d", response.Data.TotalTokens)
	}
}
