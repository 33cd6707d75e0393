package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-explorer/internal/testutil"
)

func setupCatalogServiceTest() (*CatalogService, *testutil.MockTokenCatalogRepository, *testutil.MockTokenResolver) {
	repo := testutil.NewMockTokenCatalogRepository()
	resolver := testutil.NewMockTokenResolver(1)
	service := NewCatalogService(repo, resolver, nil, time.Minute, zap.NewNop())
	return service, repo, resolver
}

func TestCatalogService_GetToken_Known(t *testing.T) {
	service, repo, resolver := setupCatalogServiceTest()
	repo.AddToken(testutil.CreateTestCatalogToken())

	_, err := service.GetToken(context.Background(), "1", strings.ToUpper(testutil.USDTAddress[2:]))
	if !errors.Is(err, entities.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress without prefix, got %v", err)
	}

	response, err := service.GetToken(context.Background(), "", "0x"+strings.ToUpper(testutil.USDTAddress[2:]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response == nil {
		t.Fatal("expected token")
	}
	if response.Data.Symbol != "USDT" || response.Data.Decimals != 6 {
		t.Errorf("unexpected token %+v", response.Data)
	}
	if len(resolver.Calls) != 0 {
		t.Error("expected no on-chain lookup for a known token")
	}
}

func TestCatalogService_GetToken_ResolvesOnChain(t *testing.T) {
	service, repo, resolver := setupCatalogServiceTest()
	resolver.ResolveTokenFunc = func(ctx context.Context, address string) (*entities.CatalogToken, error) {
		return &entities.CatalogToken{Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18}, nil
	}

	response, err := service.GetToken(context.Background(), "1", testutil.WETHAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response == nil || response.Data.Symbol != "WETH" {
		t.Fatalf("expected resolved WETH, got %+v", response)
	}

	stored, _ := repo.GetByAddress(context.Background(), 1, testutil.WETHAddress)
	if stored == nil || stored.Decimals != 18 {
		t.Errorf("expected resolved token to be stored, got %+v", stored)
	}
}

func TestCatalogService_GetToken_Unknown(t *testing.T) {
	service, _, resolver := setupCatalogServiceTest()

	response, err := service.GetToken(context.Background(), "1", testutil.WETHAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != nil {
		t.Errorf("expected nil for unresolvable token, got %+v", response)
	}

	// resolver serves chain 1 only
	response, err = service.GetToken(context.Background(), "137", testutil.WETHAddress)
	if err != nil || response != nil {
		t.Errorf("expected nil, nil for other chain, got %+v %v", response, err)
	}
	if len(resolver.Calls) != 1 {
		t.Errorf("expected 1 resolver call, got %d", len(resolver.Calls))
	}
}

func TestCatalogService_GetToken_RepositoryError(t *testing.T) {
	service, repo, _ := setupCatalogServiceTest()
	repo.GetByAddressFunc = func(ctx context.Context, chainID int64, address string) (*entities.CatalogToken, error) {
		return nil, errors.New("connection refused")
	}

	_, err := service.GetToken(context.Background(), "1", testutil.USDTAddress)
	if err == nil {
		t.Fatal("expected error")
	}
	if entities.IsClientError(err) {
		t.Error("repository failure must not be a client error")
	}
}

func TestCatalogService_GetToken_Cached(t *testing.T) {
	repo := testutil.NewMockTokenCatalogRepository()
	repo.AddToken(testutil.CreateTestCatalogToken())
	service := NewCatalogService(repo, nil, cache.NewMemoryCache(time.Minute), time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		response, err := service.GetToken(context.Background(), "1", testutil.USDTAddress)
		if err != nil || response == nil {
			t.Fatalf("unexpected result: %+v %v", response, err)
		}
	}

	lookups := 0
	for _, c := range repo.Calls {
		if c.Method == "GetByAddress" {
			lookups++
		}
	}
	if lookups != 1 {
		t.Errorf("expected 1 repository lookup, got %d", lookups)
	}
}

func TestCatalogService_Import(t *testing.T) {
	service, repo, resolver := setupCatalogServiceTest()
	resolver.ResolveTokenFunc = func(ctx context.Context, address string) (*entities.CatalogToken, error) {
		return &entities.CatalogToken{Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18}, nil
	}

	tokens := []*entities.CatalogToken{
		testutil.CreateTestCatalogToken(),
		testutil.CreateTestCatalogToken(
			testutil.CatalogTokenWithAddress(testutil.USDCAddress),
			testutil.CatalogTokenWithSymbol("USDC"),
			testutil.CatalogTokenWithChainID(137),
		),
		testutil.CreateTestCatalogToken(
			testutil.CatalogTokenWithAddress(strings.ToUpper(testutil.WETHAddress)),
			testutil.CatalogTokenWithSymbol(""),
		),
		testutil.CreateTestCatalogToken(testutil.CatalogTokenWithAddress("not-an-address")),
	}

	result, err := service.Import(context.Background(), tokens, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Imported != 3 || result.Skipped != 1 || result.Resolved != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	count, _ := repo.Count(context.Background())
	if count != 3 {
		t.Errorf("expected 3 stored tokens, got %d", count)
	}

	weth, _ := repo.GetByAddress(context.Background(), 1, testutil.WETHAddress)
	if weth == nil || weth.Symbol != "WETH" || weth.Decimals != 18 {
		t.Errorf("expected WETH completed on-chain, got %+v", weth)
	}
}

func TestCatalogService_Import_StorageFailure(t *testing.T) {
	service, repo, _ := setupCatalogServiceTest()
	repo.UpsertFunc = func(ctx context.Context, token *entities.CatalogToken) error {
		return errors.New("disk full")
	}

	_, err := service.Import(context.Background(), []*entities.CatalogToken{testutil.CreateTestCatalogToken()}, 1)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCatalogService_Stats(t *testing.T) {
	service, repo, _ := setupCatalogServiceTest()
	repo.AddToken(testutil.CreateTestCatalogToken())

	response, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Data.TotalTokens != 1 {
		t.Errorf("expected 1 token, got %d", response.Data.TotalTokens)
	}
}
