package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

var (
	_ repositories.TokenBalanceProvider   = (*MockTokenBalanceProvider)(nil)
	_ repositories.ExplorerProvider       = (*MockExplorerProvider)(nil)
	_ repositories.TokenCatalogRepository = (*MockTokenCatalogRepository)(nil)
	_ repositories.TokenResolver          = (*MockTokenResolver)(nil)
)

// MockTokenBalanceProvider is a mock implementation of TokenBalanceProvider.
// By default it serves Pages in order: page i carries token "page-(i+1)" unless it is the last one.
type MockTokenBalanceProvider struct {
	mu    sync.RWMutex
	Pages [][]entities.RawBalanceEntry

	// Function hooks for custom behavior
	FetchTokenBalancePageFunc func(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error)

	// Call tracking
	Calls []MockCall
}

func NewMockTokenBalanceProvider(pages ...[]entities.RawBalanceEntry) *MockTokenBalanceProvider {
	return &MockTokenBalanceProvider{
		Pages: pages,
		Calls: make([]MockCall, 0),
	}
}

func (m *MockTokenBalanceProvider) FetchTokenBalancePage(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchTokenBalancePage", Args: []interface{}{address, chain.ID, pageKey}})
	m.mu.Unlock()

	if m.FetchTokenBalancePageFunc != nil {
		return m.FetchTokenBalancePageFunc(ctx, address, chain, pageKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	index := 0
	if pageKey != "" {
		if _, err := fmt.Sscanf(pageKey, "page-%d", &index); err != nil {
			return nil, errors.New("unknown page key " + pageKey)
		}
	}
	if index >= len(m.Pages) {
		return &entities.PageResult{}, nil
	}

	page := &entities.PageResult{Entries: m.Pages[index]}
	if index+1 < len(m.Pages) {
		page.ContinuationToken = PageKey(index + 1)
	}
	return page, nil
}

// PageKeys returns the page keys received, in call order
func (m *MockTokenBalanceProvider) PageKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		keys = append(keys, c.Args[2].(string))
	}
	return keys
}

// MockExplorerProvider is a mock implementation of ExplorerProvider
type MockExplorerProvider struct {
	mu sync.RWMutex

	// Function hooks for custom behavior
	GetNativeBalanceFunc func(ctx context.Context, address, chainID string) (*big.Int, error)
	GetTransactionsFunc  func(ctx context.Context, address, chainID string) ([]entities.Transaction, error)
	GetEtherPriceFunc    func(ctx context.Context, chainID string) (*entities.EtherPrice, error)

	// Call tracking
	Calls []MockCall
}

func NewMockExplorerProvider() *MockExplorerProvider {
	return &MockExplorerProvider{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockExplorerProvider) GetNativeBalance(ctx context.Context, address, chainID string) (*big.Int, error) {
	m.track("GetNativeBalance", address, chainID)

	if m.GetNativeBalanceFunc != nil {
		return m.GetNativeBalanceFunc(ctx, address, chainID)
	}
	return big.NewInt(0), nil
}

func (m *MockExplorerProvider) GetTransactions(ctx context.Context, address, chainID string) ([]entities.Transaction, error) {
	m.track("GetTransactions", address, chainID)

	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, address, chainID)
	}
	return []entities.Transaction{}, nil
}

func (m *MockExplorerProvider) GetEtherPrice(ctx context.Context, chainID string) (*entities.EtherPrice, error) {
	m.track("GetEtherPrice", chainID)

	if m.GetEtherPriceFunc != nil {
		return m.GetEtherPriceFunc(ctx, chainID)
	}
	return &entities.EtherPrice{}, nil
}

func (m *MockExplorerProvider) track(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was called
func (m *MockExplorerProvider) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockTokenCatalogRepository is a mock implementation of TokenCatalogRepository
type MockTokenCatalogRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.CatalogToken

	// Function hooks for custom behavior
	GetByAddressFunc   func(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error)
	GetByAddressesFunc func(ctx context.Context, chainID int64, addresses []string) (map[string]*entities.CatalogToken, error)
	UpsertFunc         func(ctx context.Context, token *entities.CatalogToken) error

	// Call tracking
	Calls []MockCall
}

func NewMockTokenCatalogRepository() *MockTokenCatalogRepository {
	return &MockTokenCatalogRepository{
		tokens: make(map[string]*entities.CatalogToken),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTokenCatalogRepository) GetByAddress(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{chainID, address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, chainID, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if token, ok := m.tokens[entities.CatalogKey(chainID, address)]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, nil
}

func (m *MockTokenCatalogRepository) GetByAddresses(ctx context.Context, chainID int64, addresses []string) (map[string]*entities.CatalogToken, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddresses", Args: []interface{}{chainID, addresses}})
	m.mu.Unlock()

	if m.GetByAddressesFunc != nil {
		return m.GetByAddressesFunc(ctx, chainID, addresses)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*entities.CatalogToken)
	for _, addr := range addresses {
		if token, ok := m.tokens[entities.CatalogKey(chainID, addr)]; ok {
			copied := *token
			result[strings.ToLower(addr)] = &copied
		}
	}
	return result, nil
}

func (m *MockTokenCatalogRepository) Upsert(ctx context.Context, token *entities.CatalogToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{token}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, token)
	}

	copied := *token
	copied.Address = strings.ToLower(copied.Address)
	m.tokens[copied.Key()] = &copied
	return nil
}

func (m *MockTokenCatalogRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.tokens)), nil
}

// AddToken adds a token to the mock repository
func (m *MockTokenCatalogRepository) AddToken(token *entities.CatalogToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *token
	copied.Address = strings.ToLower(copied.Address)
	m.tokens[copied.Key()] = &copied
}

// MockTokenResolver is a mock implementation of TokenResolver
type MockTokenResolver struct {
	mu sync.RWMutex

	Chain int64

	// Function hooks for custom behavior
	ResolveTokenFunc func(ctx context.Context, address string) (*entities.CatalogToken, error)

	// Call tracking
	Calls []MockCall
}

func NewMockTokenResolver(chainID int64) *MockTokenResolver {
	return &MockTokenResolver{
		Chain: chainID,
		Calls: make([]MockCall, 0),
	}
}

func (m *MockTokenResolver) ChainID() int64 {
	return m.Chain
}

func (m *MockTokenResolver) ResolveToken(ctx context.Context, address string) (*entities.CatalogToken, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ResolveToken", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.ResolveTokenFunc != nil {
		return m.ResolveTokenFunc(ctx, address)
	}
	return nil, errors.New("token not resolvable")
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
