package repositories

import (
	"context"
	"math/big"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// TokenBalanceProvider fetches one page of token balances for a wallet.
// An empty pageKey requests the first page.
type TokenBalanceProvider interface {
	FetchTokenBalancePage(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error)
}

// ExplorerProvider is a block explorer API
type ExplorerProvider interface {
	// GetNativeBalance returns the balance of address in wei
	GetNativeBalance(ctx context.Context, address, chainID string) (*big.Int, error)

	// GetTransactions returns the most recent normal transactions of address, newest first
	GetTransactions(ctx context.Context, address, chainID string) ([]entities.Transaction, error)

	// GetEtherPrice returns the latest native currency price
	GetEtherPrice(ctx context.Context, chainID string) (*entities.EtherPrice, error)
}

// TokenResolver reads token metadata directly from the chain
type TokenResolver interface {
	// ChainID returns the chain the resolver is connected to
	ChainID() int64

	// ResolveToken reads name, symbol and decimals of a token contract
	ResolveToken(ctx context.Context, address string) (*entities.CatalogToken, error)
}

// TokenListSource loads token list entries from an external source
type TokenListSource interface {
	LoadTokens(ctx context.Context) ([]*entities.CatalogToken, error)
}
