package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

// TokenService builds the valued token holdings of a wallet
type TokenService struct {
	aggregator *BalanceAggregator
	normalizer *Normalizer
	catalog    repositories.TokenCatalogRepository
	logger     *zap.Logger
}

// NewTokenService creates a new token service. catalog may be nil.
func NewTokenService(
	aggregator *BalanceAggregator,
	normalizer *Normalizer,
	catalog repositories.TokenCatalogRepository,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		aggregator: aggregator,
		normalizer: normalizer,
		catalog:    catalog,
		logger:     logger,
	}
}

// GetTokenBalances aggregates every page of balances for address on chain,
// fills metadata gaps from the token catalog and normalizes the result
func (s *TokenService) GetTokenBalances(ctx context.Context, address string, chain entities.Chain) ([]entities.NormalizedBalance, error) {
	if !chain.SupportsTokens() {
		return nil, entities.ErrUnsupportedChain
	}

	result, err := s.aggregator.Aggregate(ctx, address, chain)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, chain, result.Entries)

	balances := s.normalizer.Normalize(result.Entries)

	s.logger.Debug("Token balances computed",
		zap.String("address", address),
		zap.String("chain_id", chain.ID),
		zap.Int("pages", result.Pages),
		zap.Bool("truncated", result.Truncated),
		zap.Int("tokens", len(balances)),
	)

	return balances, nil
}

// enrich fills missing name, symbol, logo and decimals from the catalog.
// Catalog failures are logged and otherwise ignored.
func (s *TokenService) enrich(ctx context.Context, chain entities.Chain, entries []entities.RawBalanceEntry) {
	if s.catalog == nil || len(entries) == 0 {
		return
	}

	chainID, err := strconv.ParseInt(chain.ID, 10, 64)
	if err != nil {
		return
	}

	addresses := make([]string, 0, len(entries))
	for i := range entries {
		if needsMetadata(entries[i]) {
			addresses = append(addresses, entries[i].Contract())
		}
	}
	if len(addresses) == 0 {
		return
	}

	known, err := s.catalog.GetByAddresses(ctx, chainID, addresses)
	if err != nil {
		s.logger.Warn("Failed to read token catalog", zap.Error(err))
		return
	}

	for i := range entries {
		token, ok := known[strings.ToLower(entries[i].Contract())]
		if !ok {
			continue
		}

		md := &entries[i].Metadata
		if md.Name == "" {
			md.Name = token.Name
		}
		if md.Symbol == "" {
			md.Symbol = token.Symbol
		}
		if md.Logo == "" {
			md.Logo = token.LogoURI
		}
		if !md.Decimals.Valid {
			md.Decimals = entities.NewDecimals(token.Decimals)
		}
	}
}

func needsMetadata(e entities.RawBalanceEntry) bool {
	if e.ContractAddress == nil {
		return false
	}
	md := e.Metadata
	return md.Name == "" || md.Symbol == "" || md.Logo == "" || !md.Decimals.Valid
}
