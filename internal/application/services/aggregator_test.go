package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/testutil"
)

func TestBalanceAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("concatenates pages in order with one call per page", func(t *testing.T) {
		pages := [][]entities.RawBalanceEntry{
			testutil.CreateTestEntries(2),
			testutil.CreateTestEntries(3),
			testutil.CreateTestEntries(1),
		}
		pages[1][0].Metadata.Symbol = "SECOND"
		pages[2][0].Metadata.Symbol = "THIRD"

		provider := testutil.NewMockTokenBalanceProvider(pages...)
		aggregator := NewBalanceAggregator(provider, 10, zap.NewNop())

		result, err := aggregator.Aggregate(ctx, testutil.AliceAddress, testutil.EthereumChain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Entries) != 6 {
			t.Fatalf("expected 6 entries, got %d", len(result.Entries))
		}
		if result.Entries[2].Metadata.Symbol != "SECOND" || result.Entries[5].Metadata.Symbol != "THIRD" {
			t.Errorf("entries not in arrival order")
		}
		if result.Pages != 3 || result.Truncated {
			t.Errorf("expected 3 pages not truncated, got %d %v", result.Pages, result.Truncated)
		}

		keys := provider.PageKeys()
		expected := []string{"", testutil.PageKey(1), testutil.PageKey(2)}
		if len(keys) != len(expected) {
			t.Fatalf("expected %d calls, got %d", len(expected), len(keys))
		}
		for i := range expected {
			if keys[i] != expected[i] {
				t.Errorf("call %d: expected page key %q, got %q", i, expected[i], keys[i])
			}
		}
	})

	t.Run("single page issues one call", func(t *testing.T) {
		provider := testutil.NewMockTokenBalanceProvider(testutil.CreateTestEntries(4))
		aggregator := NewBalanceAggregator(provider, 10, zap.NewNop())

		result, err := aggregator.Aggregate(ctx, testutil.AliceAddress, testutil.EthereumChain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Entries) != 4 || len(provider.Calls) != 1 {
			t.Errorf("expected 4 entries from 1 call, got %d from %d", len(result.Entries), len(provider.Calls))
		}
	})

	t.Run("stops at the page ceiling when the provider never ends", func(t *testing.T) {
		provider := testutil.NewMockTokenBalanceProvider()
		calls := 0
		provider.FetchTokenBalancePageFunc = func(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
			calls++
			return &entities.PageResult{
				Entries:           testutil.CreateTestEntries(1),
				ContinuationToken: "forever",
			}, nil
		}

		aggregator := NewBalanceAggregator(provider, 4, zap.NewNop())

		result, err := aggregator.Aggregate(ctx, testutil.AliceAddress, testutil.EthereumChain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 4 {
			t.Errorf("expected 4 calls, got %d", calls)
		}
		if len(result.Entries) != 4 || !result.Truncated {
			t.Errorf("expected 4 entries and truncation, got %d %v", len(result.Entries), result.Truncated)
		}
	})

	t.Run("non-positive ceiling falls back to default", func(t *testing.T) {
		provider := testutil.NewMockTokenBalanceProvider()
		provider.FetchTokenBalancePageFunc = func(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
			return &entities.PageResult{ContinuationToken: "more"}, nil
		}

		aggregator := NewBalanceAggregator(provider, 0, zap.NewNop())

		result, err := aggregator.Aggregate(ctx, testutil.AliceAddress, testutil.EthereumChain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Pages != DefaultMaxPages {
			t.Errorf("expected %d pages, got %d", DefaultMaxPages, result.Pages)
		}
	})

	t.Run("page failure aborts without partial results", func(t *testing.T) {
		provider := testutil.NewMockTokenBalanceProvider()
		provider.FetchTokenBalancePageFunc = func(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
			if pageKey == "" {
				return &entities.PageResult{Entries: testutil.CreateTestEntries(5), ContinuationToken: "next"}, nil
			}
			return nil, entities.NewUpstreamError("alchemy", 500, "internal error")
		}

		aggregator := NewBalanceAggregator(provider, 10, zap.NewNop())

		result, err := aggregator.Aggregate(ctx, testutil.AliceAddress, testutil.EthereumChain)
		if result != nil {
			t.Errorf("expected no result, got %d entries", len(result.Entries))
		}

		var upstreamErr *entities.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if len(provider.Calls) != 2 {
			t.Errorf("expected 2 calls, got %d", len(provider.Calls))
		}
	})

	t.Run("cancelled context stops before the next page", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)

		provider := testutil.NewMockTokenBalanceProvider()
		provider.FetchTokenBalancePageFunc = func(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
			cancel()
			return &entities.PageResult{ContinuationToken: "next"}, nil
		}

		aggregator := NewBalanceAggregator(provider, 10, zap.NewNop())

		_, err := aggregator.Aggregate(cctx, testutil.AliceAddress, testutil.EthereumChain)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(provider.Calls) != 1 {
			t.Errorf("expected 1 call, got %d", len(provider.Calls))
		}
	})
}
