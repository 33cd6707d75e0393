package alchemy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

const wallet = "0x1111111111111111111111111111111111111111"

var ethereum = entities.Chain{ID: "1", Name: "Ethereum", Unit: "ETH", TokenNetwork: "eth-mainnet"}

func newTestClient(url string) *Client {
	return NewClient(config.AlchemyConfig{APIURL: url, APIKey: "test-key"}, 5*time.Second, nil, 0, zap.NewNop())
}

func TestClient_FetchTokenBalancePage(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a page and forwards the page key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/test-key/assets/tokens/by-address" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var body tokensRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if body.PageKey != "page-2" {
				t.Errorf("expected pageKey page-2, got %q", body.PageKey)
			}
			if len(body.Addresses) != 1 || body.Addresses[0].Networks[0] != "eth-mainnet" {
				t.Errorf("unexpected addresses %+v", body.Addresses)
			}
			if !body.WithMetadata || !body.WithPrices || body.IncludeNativeTokens {
				t.Errorf("unexpected flags %+v", body)
			}

			_, _ = w.Write([]byte(`{
				"data": {
					"tokens": [{
						"address": "` + wallet + `",
						"network": "eth-mainnet",
						"tokenAddress": "0xDAC17F958D2ee523a2206206994597C13D831ec7",
						"tokenBalance": "0x000000000000000000000000000000000000000000000000000000003b9aca00",
						"tokenMetadata": {"name": "Tether USD", "symbol": "USDT", "decimals": 6, "logo": "https://logo"},
						"tokenPrices": [{"currency": "usd", "value": "1.0001", "lastUpdatedAt": "2024-05-01T00:00:00Z"}]
					}],
					"pageKey": "page-3"
				}
			}`))
		}))
		defer srv.Close()

		page, err := newTestClient(srv.URL).FetchTokenBalancePage(ctx, wallet, ethereum, "page-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.ContinuationToken != "page-3" {
			t.Errorf("expected continuation page-3, got %q", page.ContinuationToken)
		}
		if len(page.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(page.Entries))
		}

		entry := page.Entries[0]
		if entry.Contract() != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
			t.Errorf("expected lower-cased contract, got %s", entry.Contract())
		}
		if !entry.Metadata.Decimals.Valid || entry.Metadata.Decimals.Value != 6 {
			t.Errorf("expected decimals 6, got %+v", entry.Metadata.Decimals)
		}
		if p := entry.USDPrice(); p == nil || p.Value != "1.0001" {
			t.Errorf("unexpected price %+v", p)
		}
	})

	t.Run("last page has no continuation token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"tokens": []}}`))
		}))
		defer srv.Close()

		page, err := newTestClient(srv.URL).FetchTokenBalancePage(ctx, wallet, ethereum, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.HasMore() {
			t.Error("expected no more pages")
		}
	})

	t.Run("missing tokens key is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"assets": []}}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchTokenBalancePage(ctx, wallet, ethereum, "")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if !strings.Contains(err.Error(), "unexpected API response format") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("unauthorized is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"message": "Must be authenticated!"}}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchTokenBalancePage(ctx, wallet, ethereum, "")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if upstreamErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", upstreamErr.StatusCode)
		}
	})

	t.Run("rejects chains without a token network", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:0")

		_, err := client.FetchTokenBalancePage(ctx, wallet, entities.Chain{ID: "999"}, "")
		if !errors.Is(err, entities.ErrUnsupportedChain) {
			t.Errorf("expected ErrUnsupportedChain, got %v", err)
		}
	})
}
