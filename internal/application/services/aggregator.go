package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/metrics"
)

// DefaultMaxPages bounds pagination when no ceiling is configured
const DefaultMaxPages = 10

// BalanceAggregator collects every page of token balances for a wallet
type BalanceAggregator struct {
	provider repositories.TokenBalanceProvider
	maxPages int
	logger   *zap.Logger
}

// NewBalanceAggregator creates a new aggregator
func NewBalanceAggregator(provider repositories.TokenBalanceProvider, maxPages int, logger *zap.Logger) *BalanceAggregator {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	return &BalanceAggregator{
		provider: provider,
		maxPages: maxPages,
		logger:   logger,
	}
}

// AggregationResult holds the concatenated entries of all fetched pages
type AggregationResult struct {
	Entries   []entities.RawBalanceEntry
	Pages     int
	Truncated bool // the page ceiling was reached while more pages were announced
}

// Aggregate fetches pages sequentially, passing each continuation token to the
// next request, until the provider stops returning one or the ceiling is hit.
// Any page failure aborts the aggregation without a partial result.
func (a *BalanceAggregator) Aggregate(ctx context.Context, address string, chain entities.Chain) (*AggregationResult, error) {
	result := &AggregationResult{
		Entries: make([]entities.RawBalanceEntry, 0),
	}

	pageKey := ""
	for result.Pages < a.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := a.provider.FetchTokenBalancePage(ctx, address, chain, pageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch token balance page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		if page == nil {
			pageKey = ""
			break
		}
		result.Entries = append(result.Entries, page.Entries...)

		if !page.HasMore() {
			metrics.ObserveAggregation(result.Pages)
			return result, nil
		}
		pageKey = page.ContinuationToken
	}

	if pageKey != "" {
		result.Truncated = true
		a.logger.Warn("Token balance page ceiling reached, remaining pages skipped",
			zap.String("address", address),
			zap.String("chain_id", chain.ID),
			zap.Int("max_pages", a.maxPages),
			zap.Int("entries", len(result.Entries)),
		)
	}

	metrics.ObserveAggregation(result.Pages)
	return result, nil
}
