package etherscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
)

const wallet = "0x1111111111111111111111111111111111111111"

func newTestClient(url string, c cache.Cache) *Client {
	return NewClient(config.EtherscanConfig{APIURL: url, APIKey: "key"}, 5*time.Second, c, time.Minute, zap.NewNop())
}

func TestClient_GetNativeBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("returns wei balance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			expected := map[string]string{
				"chainid": "137",
				"module":  "account",
				"action":  "balance",
				"address": wallet,
				"tag":     "latest",
				"apikey":  "key",
			}
			for k, v := range expected {
				if q.Get(k) != v {
					t.Errorf("expected %s=%s, got %q", k, v, q.Get(k))
				}
			}
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"1500000000000000000"}`))
		}))
		defer srv.Close()

		wei, err := newTestClient(srv.URL, nil).GetNativeBalance(ctx, wallet, "137")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wei.String() != "1500000000000000000" {
			t.Errorf("expected 1500000000000000000, got %s", wei)
		}
	})

	t.Run("status 0 is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Missing/Invalid API Key"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, nil).GetNativeBalance(ctx, wallet, "1")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
	})

	t.Run("non numeric result is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"abc"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, nil).GetNativeBalance(ctx, wallet, "1")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
	})

	t.Run("cached balance is served without a second call", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"42"}`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, cache.NewMemoryCache(time.Minute))

		for i := 0; i < 2; i++ {
			wei, err := client.GetNativeBalance(ctx, wallet, "1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if wei.Int64() != 42 {
				t.Errorf("expected 42, got %s", wei)
			}
		}

		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("expected 1 upstream call, got %d", got)
		}
	})
}

func TestClient_GetTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("returns transactions", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("action") != "txlist" || q.Get("sort") != "desc" || q.Get("offset") != "1000" ||
				q.Get("page") != "1" || q.Get("startblock") != "0" || q.Get("endblock") != "99999999" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":[
				{"hash":"0xabc","blockNumber":"100","timeStamp":"1700000000","from":"` + wallet + `","to":"0x2222222222222222222222222222222222222222","value":"1000000000000000000","gasPrice":"20000000000","gasUsed":"21000","isError":"0","txreceipt_status":"1","functionName":""}
			]}`))
		}))
		defer srv.Close()

		txs, err := newTestClient(srv.URL, nil).GetTransactions(ctx, wallet, "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(txs))
		}
		if txs[0].Hash != "0xabc" || txs[0].GasUsed != "21000" || txs[0].Timestamp != "1700000000" {
			t.Errorf("unexpected transaction %+v", txs[0])
		}
	})

	t.Run("no transactions found is an empty list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
		}))
		defer srv.Close()

		txs, err := newTestClient(srv.URL, nil).GetTransactions(ctx, wallet, "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != 0 {
			t.Errorf("expected no transactions, got %d", len(txs))
		}
	})

	t.Run("other failures are upstream errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, nil).GetTransactions(ctx, wallet, "1")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
	})
}

func TestClient_GetEtherPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("returns price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("module") != "stats" || r.URL.Query().Get("action") != "ethprice" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":{"ethbtc":"0.05","ethbtc_timestamp":"1700000000","ethusd":"3000.12","ethusd_timestamp":"1700000001"}}`))
		}))
		defer srv.Close()

		price, err := newTestClient(srv.URL, nil).GetEtherPrice(ctx, "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price.ETHUSD != "3000.12" || price.ETHBTC != "0.05" {
			t.Errorf("unexpected price %+v", price)
		}
	})

	t.Run("unexpected result shape is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":[1,2,3]}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, nil).GetEtherPrice(ctx, "1")

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
	})
}
