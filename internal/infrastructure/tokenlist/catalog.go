package tokenlist

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

var _ repositories.TokenCatalogRepository = (*Catalog)(nil)

// Catalog is an in-memory token catalog used when no database is configured
type Catalog struct {
	mu     sync.RWMutex
	tokens map[string]*entities.CatalogToken
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		tokens: make(map[string]*entities.CatalogToken),
	}
}

// GetByAddress retrieves a token by chain and address, nil when unknown
func (c *Catalog) GetByAddress(_ context.Context, chainID int64, address string) (*entities.CatalogToken, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	token, ok := c.tokens[entities.CatalogKey(chainID, address)]
	if !ok {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

// GetByAddresses retrieves the known tokens among addresses, keyed by lower-cased address
func (c *Catalog) GetByAddresses(_ context.Context, chainID int64, addresses []string) (map[string]*entities.CatalogToken, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]*entities.CatalogToken)
	for _, addr := range addresses {
		if token, ok := c.tokens[entities.CatalogKey(chainID, addr)]; ok {
			copied := *token
			result[strings.ToLower(addr)] = &copied
		}
	}
	return result, nil
}

// Upsert creates or updates a token
func (c *Catalog) Upsert(_ context.Context, token *entities.CatalogToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *token
	copied.Address = strings.ToLower(copied.Address)

	now := time.Now().UTC()
	if existing, ok := c.tokens[copied.Key()]; ok {
		copied.CreatedAt = existing.CreatedAt
	} else {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now

	c.tokens[copied.Key()] = &copied
	return nil
}

// Count returns the number of tokens
func (c *Catalog) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.tokens)), nil
}
