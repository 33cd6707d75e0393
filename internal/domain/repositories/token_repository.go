package repositories

import (
	"context"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// TokenCatalogRepository defines the interface for token catalog operations
type TokenCatalogRepository interface {
	// GetByAddress retrieves a token by chain and contract address, nil when unknown
	GetByAddress(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error)

	// GetByAddresses retrieves the known tokens among addresses, keyed by lower-cased address
	GetByAddresses(ctx context.Context, chainID int64, addresses []string) (map[string]*entities.CatalogToken, error)

	// Upsert creates or updates a token
	Upsert(ctx context.Context, token *entities.CatalogToken) error

	// Count returns the total number of tokens
	Count(ctx context.Context) (int64, error)
}
