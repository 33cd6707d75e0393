package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
)

// DefaultImportWorkers is the number of concurrent on-chain lookups during import
const DefaultImportWorkers = 4

// CatalogService provides reference metadata for token contracts
type CatalogService struct {
	repo     repositories.TokenCatalogRepository
	resolver repositories.TokenResolver
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. resolver and cache may be nil.
func NewCatalogService(
	repo repositories.TokenCatalogRepository,
	resolver repositories.TokenResolver,
	cache cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:     repo,
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CatalogTokenDTO is the API representation of a catalog token
type CatalogTokenDTO struct {
	Address  string `json:"address"`
	ChainID  int64  `json:"chain_id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logo_uri,omitempty"`
}

// CatalogTokenResponse wraps a catalog token for API response
type CatalogTokenResponse struct {
	Data CatalogTokenDTO `json:"data"`
}

// CatalogStatsResponse is the API response for catalog size queries
type CatalogStatsResponse struct {
	Data CatalogStatsDTO `json:"data"`
}

// CatalogStatsDTO holds catalog totals
type CatalogStatsDTO struct {
	TotalTokens int64 `json:"total_tokens"`
}

// ImportResult summarizes a catalog import
type ImportResult struct {
	Imported int
	Resolved int
	Skipped  int
}

// GetToken returns catalog metadata of a token contract. Unknown tokens are
// read from the chain when a resolver for that chain is configured.
// Returns nil when the token is unknown.
func (s *CatalogService) GetToken(ctx context.Context, chainID, address string) (*CatalogTokenResponse, error) {
	chainID, err := ParseChainID(chainID)
	if err != nil {
		return nil, err
	}
	id, _ := strconv.ParseInt(chainID, 10, 64)

	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, entities.ErrMissingAddress
	}
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return nil, entities.ErrInvalidAddress
	}

	cacheKey := fmt.Sprintf("catalog:%s", entities.CatalogKey(id, address))

	var cached CatalogTokenResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	token, err := s.repo.GetByAddress(ctx, id, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog token: %w", err)
	}

	if token == nil && s.resolver != nil && s.resolver.ChainID() == id {
		token, err = s.resolver.ResolveToken(ctx, address)
		if err != nil {
			s.logger.Debug("Token not resolvable on chain",
				zap.String("address", address),
				zap.Error(err),
			)
			return nil, nil
		}
		token.ChainID = id
		token.Address = address
		if err := s.repo.Upsert(ctx, token); err != nil {
			s.logger.Warn("Failed to store resolved token", zap.String("address", address), zap.Error(err))
		}
	}
	if token == nil {
		return nil, nil
	}

	response := &CatalogTokenResponse{Data: catalogTokenToDTO(token)}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// Stats returns catalog totals
func (s *CatalogService) Stats(ctx context.Context) (*CatalogStatsResponse, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog tokens: %w", err)
	}
	return &CatalogStatsResponse{Data: CatalogStatsDTO{TotalTokens: count}}, nil
}

// Import stores tokens in the catalog. Entries with invalid addresses are
// skipped; entries missing a name or symbol are completed on-chain when the
// resolver serves their chain. A storage failure aborts the import.
func (s *CatalogService) Import(ctx context.Context, tokens []*entities.CatalogToken, workers int) (*ImportResult, error) {
	if workers < 1 {
		workers = DefaultImportWorkers
	}

	var (
		mu     sync.Mutex
		result ImportResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, token := range tokens {
		token := token
		if !common.IsHexAddress(token.Address) || token.ChainID <= 0 {
			s.logger.Debug("Skipping invalid catalog entry",
				zap.String("address", token.Address),
				zap.Int64("chain_id", token.ChainID),
			)
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			resolved := s.complete(gCtx, token)

			token.Address = strings.ToLower(token.Address)
			if err := s.repo.Upsert(gCtx, token); err != nil {
				return fmt.Errorf("failed to import token %s: %w", token.Address, err)
			}

			mu.Lock()
			result.Imported++
			if resolved {
				result.Resolved++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Token catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("resolved", result.Resolved),
		zap.Int("skipped", result.Skipped),
	)

	return &result, nil
}

// complete fills a missing name, symbol or decimals from the chain
func (s *CatalogService) complete(ctx context.Context, token *entities.CatalogToken) bool {
	if s.resolver == nil || s.resolver.ChainID() != token.ChainID {
		return false
	}
	if token.Name != "" && token.Symbol != "" {
		return false
	}

	onChain, err := s.resolver.ResolveToken(ctx, token.Address)
	if err != nil {
		s.logger.Warn("Failed to resolve token metadata",
			zap.String("address", token.Address),
			zap.Error(err),
		)
		return false
	}

	if token.Name == "" {
		token.Name = onChain.Name
	}
	if token.Symbol == "" {
		token.Symbol = onChain.Symbol
	}
	token.Decimals = onChain.Decimals
	return true
}

func catalogTokenToDTO(t *entities.CatalogToken) CatalogTokenDTO {
	return CatalogTokenDTO{
		Address:  t.Address,
		ChainID:  t.ChainID,
		Name:     t.Name,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
		LogoURI:  t.LogoURI,
	}
}
