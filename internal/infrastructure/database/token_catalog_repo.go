package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

// Ensure TokenCatalogRepo implements TokenCatalogRepository
var _ repositories.TokenCatalogRepository = (*TokenCatalogRepo)(nil)

// TokenCatalogRepo implements TokenCatalogRepository using PostgreSQL
type TokenCatalogRepo struct {
	db *sqlx.DB
}

// NewTokenCatalogRepo creates a new token catalog repository
func NewTokenCatalogRepo(db *sqlx.DB) *TokenCatalogRepo {
	return &TokenCatalogRepo{db: db}
}

// GetByAddress retrieves a token by chain and address
func (r *TokenCatalogRepo) GetByAddress(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error) {
	var token entities.CatalogToken
	query := `SELECT * FROM token_catalog WHERE chain_id = $1 AND address = $2`

	if err := r.db.GetContext(ctx, &token, query, chainID, strings.ToLower(address)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog token: %w", err)
	}

	return &token, nil
}

// GetByAddresses retrieves the known tokens among addresses on a chain
func (r *TokenCatalogRepo) GetByAddresses(ctx context.Context, chainID int64, addresses []string) (map[string]*entities.CatalogToken, error) {
	result := make(map[string]*entities.CatalogToken)
	if len(addresses) == 0 {
		return result, nil
	}

	lowered := make([]string, len(addresses))
	for i, a := range addresses {
		lowered[i] = strings.ToLower(a)
	}

	query, args, err := sqlx.In(`SELECT * FROM token_catalog WHERE chain_id = ? AND address IN (?)`, chainID, lowered)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog query: %w", err)
	}

	var tokens []entities.CatalogToken
	if err := r.db.SelectContext(ctx, &tokens, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get catalog tokens: %w", err)
	}

	for i := range tokens {
		result[tokens[i].Address] = &tokens[i]
	}
	return result, nil
}

// Upsert creates or updates a token
func (r *TokenCatalogRepo) Upsert(ctx context.Context, token *entities.CatalogToken) error {
	query := `
		INSERT INTO token_catalog (chain_id, address, name, symbol, decimals, logo_uri)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chain_id, address) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			logo_uri = EXCLUDED.logo_uri,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ChainID,
		strings.ToLower(token.Address),
		token.Name,
		token.Symbol,
		token.Decimals,
		token.LogoURI,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog token: %w", err)
	}

	return nil
}

// Count returns the number of catalog tokens
func (r *TokenCatalogRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM token_catalog`); err != nil {
		return 0, fmt.Errorf("failed to count catalog tokens: %w", err)
	}
	return count, nil
}
