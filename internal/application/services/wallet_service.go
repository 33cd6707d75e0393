package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

// Fraction digits of formatted native amounts
const (
	balancePlaces     = 6
	transactionPlaces = 8
)

// WalletService answers wallet lookups from the block explorer and the token data API
type WalletService struct {
	explorer repositories.ExplorerProvider
	tokens   *TokenService
	chains   *entities.ChainRegistry
	logger   *zap.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	explorer repositories.ExplorerProvider,
	tokens *TokenService,
	chains *entities.ChainRegistry,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		explorer: explorer,
		tokens:   tokens,
		chains:   chains,
		logger:   logger,
	}
}

// BalanceResponse wraps a native balance for API response
type BalanceResponse struct {
	Data entities.BalanceRecord `json:"data"`
}

// TransactionListResponse wraps a transaction list for API response
type TransactionListResponse struct {
	Data  []entities.Transaction `json:"data"`
	Count int                    `json:"count"`
}

// TokenBalanceListResponse wraps valued token holdings for API response
type TokenBalanceListResponse struct {
	Data          []entities.NormalizedBalance `json:"data"`
	Count         int                          `json:"count"`
	TotalValueUSD float64                      `json:"total_value_usd"`
}

// WalletOverviewResponse wraps a wallet overview for API response
type WalletOverviewResponse struct {
	Data entities.WalletOverview `json:"data"`
}

// WalletQuery identifies a wallet on a chain
type WalletQuery struct {
	Address string
	ChainID string
}

// ParseWalletQuery validates a raw address and chain id.
// An empty chain id selects the default chain.
func ParseWalletQuery(address, chainID string) (WalletQuery, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return WalletQuery{}, entities.ErrMissingAddress
	}
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return WalletQuery{}, entities.ErrInvalidAddress
	}

	chainID, err := ParseChainID(chainID)
	if err != nil {
		return WalletQuery{}, err
	}

	return WalletQuery{Address: address, ChainID: chainID}, nil
}

// ParseChainID validates a chain id, defaulting to mainnet when empty
func ParseChainID(chainID string) (string, error) {
	chainID = strings.TrimSpace(chainID)
	if chainID == "" {
		return entities.DefaultChainID, nil
	}
	id, err := strconv.ParseInt(chainID, 10, 64)
	if err != nil || id <= 0 {
		return "", entities.ErrInvalidChain
	}
	return strconv.FormatInt(id, 10), nil
}

// GetBalance returns the native currency balance of a wallet
func (s *WalletService) GetBalance(ctx context.Context, address, chainID string) (*BalanceResponse, error) {
	q, err := ParseWalletQuery(address, chainID)
	if err != nil {
		return nil, err
	}

	record, err := s.balance(ctx, q)
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{Data: *record}, nil
}

// GetTransactions returns the latest normal transactions of a wallet, newest first
func (s *WalletService) GetTransactions(ctx context.Context, address, chainID string) (*TransactionListResponse, error) {
	q, err := ParseWalletQuery(address, chainID)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions(ctx, q)
	if err != nil {
		return nil, err
	}

	return &TransactionListResponse{
		Data:  txs,
		Count: len(txs),
	}, nil
}

// GetTokens returns the valued token holdings of a wallet, highest value first
func (s *WalletService) GetTokens(ctx context.Context, address, chainID string) (*TokenBalanceListResponse, error) {
	q, err := ParseWalletQuery(address, chainID)
	if err != nil {
		return nil, err
	}

	balances, err := s.tokenBalances(ctx, q)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, b := range balances {
		total += b.ValueUSD
	}

	return &TokenBalanceListResponse{
		Data:          balances,
		Count:         len(balances),
		TotalValueUSD: total,
	}, nil
}

// GetOverview fetches balance, transactions and tokens concurrently.
// The first failure cancels the others and is the only error returned.
// Chains without token data get an empty token list.
func (s *WalletService) GetOverview(ctx context.Context, address, chainID string) (*WalletOverviewResponse, error) {
	q, err := ParseWalletQuery(address, chainID)
	if err != nil {
		return nil, err
	}

	var (
		record *entities.BalanceRecord
		txs    []entities.Transaction
		tokens []entities.NormalizedBalance
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		record, err = s.balance(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions(gctx, q)
		return err
	})
	if chain, ok := s.chains.Lookup(q.ChainID); ok && chain.SupportsTokens() {
		g.Go(func() error {
			var err error
			tokens, err = s.tokenBalances(gctx, q)
			return err
		})
	} else {
		tokens = make([]entities.NormalizedBalance, 0)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &WalletOverviewResponse{
		Data: entities.WalletOverview{
			Balance:      record,
			Transactions: txs,
			Tokens:       tokens,
		},
	}, nil
}

func (s *WalletService) balance(ctx context.Context, q WalletQuery) (*entities.BalanceRecord, error) {
	wei, err := s.explorer.GetNativeBalance(ctx, q.Address, q.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}

	chain := s.chains.Resolve(q.ChainID)

	return &entities.BalanceRecord{
		Address:   q.Address,
		ChainID:   q.ChainID,
		ChainName: chain.Name,
		Balance:   FormatUnits(wei, NativeDecimals, balancePlaces),
		Unit:      chain.Unit,
		Wei:       wei.String(),
	}, nil
}

func (s *WalletService) transactions(ctx context.Context, q WalletQuery) ([]entities.Transaction, error) {
	txs, err := s.explorer.GetTransactions(ctx, q.Address, q.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	if txs == nil {
		txs = make([]entities.Transaction, 0)
	}

	for i := range txs {
		txs[i].ValueFormatted = FormatWei(txs[i].Value, transactionPlaces)
		if fee := TransactionFee(txs[i].GasUsed, txs[i].GasPrice); fee != nil {
			txs[i].FeeFormatted = FormatUnits(fee, NativeDecimals, transactionPlaces)
		}
	}

	return txs, nil
}

func (s *WalletService) tokenBalances(ctx context.Context, q WalletQuery) ([]entities.NormalizedBalance, error) {
	chain, ok := s.chains.Lookup(q.ChainID)
	if !ok {
		return nil, entities.ErrUnsupportedChain
	}

	balances, err := s.tokens.GetTokenBalances(ctx, q.Address, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balances: %w", err)
	}
	return balances, nil
}
