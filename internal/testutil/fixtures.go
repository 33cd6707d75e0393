package testutil

import (
	"fmt"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// Common test addresses
const (
	USDTAddress  = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	USDCAddress  = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	WETHAddress  = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	AliceAddress = "0x1111111111111111111111111111111111111111"
	BobAddress   = "0x2222222222222222222222222222222222222222"
	CharlieAddr  = "0x3333333333333333333333333333333333333333"
)

// EthereumChain is the mainnet entry of the default chain table
var EthereumChain = entities.Chain{ID: "1", Name: "Ethereum", Unit: "ETH", TokenNetwork: "eth-mainnet"}

// PageKey returns the continuation token MockTokenBalanceProvider uses for page index i
func PageKey(i int) string {
	return fmt.Sprintf("page-%d", i)
}

// CreateTestEntry creates a raw token balance with default values (1000 USDT at $1)
func CreateTestEntry(opts ...EntryOption) entities.RawBalanceEntry {
	e := entities.RawBalanceEntry{
		Network:         "eth-mainnet",
		ContractAddress: PointerTo(USDTAddress),
		RawBalance:      "0x000000000000000000000000000000000000000000000000000000003b9aca00", // 1000 USDT
		Metadata: entities.TokenMetadata{
			Name:     "Tether USD",
			Symbol:   "USDT",
			Decimals: entities.NewDecimals(6),
			Logo:     "https://static.alchemyapi.io/images/assets/825.png",
		},
		Prices: []entities.TokenPrice{
			{Currency: "usd", Value: "1", LastUpdatedAt: "2024-05-01T00:00:00Z"},
		},
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

type EntryOption func(*entities.RawBalanceEntry)

func EntryWithContract(addr string) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.ContractAddress = PointerTo(addr)
	}
}

func EntryWithBalance(raw string) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.RawBalance = raw
	}
}

func EntryWithDecimals(d int) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Metadata.Decimals = entities.NewDecimals(d)
	}
}

func EntryWithoutDecimals() EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Metadata.Decimals = entities.Decimals{}
	}
}

func EntryWithSymbol(symbol string) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Metadata.Symbol = symbol
	}
}

func EntryWithMetadata(md entities.TokenMetadata) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Metadata = md
	}
}

func EntryWithPrice(value string) EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Prices = []entities.TokenPrice{{Currency: "usd", Value: value}}
	}
}

func EntryWithoutPrice() EntryOption {
	return func(e *entities.RawBalanceEntry) {
		e.Prices = nil
	}
}

// CreateTestEntries creates count entries with distinct contracts
func CreateTestEntries(count int, opts ...EntryOption) []entities.RawBalanceEntry {
	entries := make([]entities.RawBalanceEntry, count)
	for i := 0; i < count; i++ {
		e := CreateTestEntry(opts...)
		e.ContractAddress = PointerTo(generateAddress(i))
		e.Metadata.Symbol = fmt.Sprintf("TK%d", i)
		entries[i] = e
	}
	return entries
}

// CreateTestCatalogToken creates a catalog token with default values
func CreateTestCatalogToken(opts ...CatalogTokenOption) *entities.CatalogToken {
	t := &entities.CatalogToken{
		Address:  USDTAddress,
		ChainID:  1,
		Name:     "Tether USD",
		Symbol:   "USDT",
		Decimals: 6,
		LogoURI:  "https://assets.coingecko.com/coins/images/325/thumb/Tether.png",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type CatalogTokenOption func(*entities.CatalogToken)

func CatalogTokenWithAddress(addr string) CatalogTokenOption {
	return func(t *entities.CatalogToken) {
		t.Address = addr
	}
}

func CatalogTokenWithChainID(id int64) CatalogTokenOption {
	return func(t *entities.CatalogToken) {
		t.ChainID = id
	}
}

func CatalogTokenWithSymbol(symbol string) CatalogTokenOption {
	return func(t *entities.CatalogToken) {
		t.Symbol = symbol
	}
}

func CatalogTokenWithDecimals(d int) CatalogTokenOption {
	return func(t *entities.CatalogToken) {
		t.Decimals = d
	}
}

// CreateTestTransaction creates an explorer transaction with default values
func CreateTestTransaction(hash string) entities.Transaction {
	return entities.Transaction{
		Hash:            hash,
		BlockNumber:     "19000000",
		Timestamp:       "1705312200",
		From:            AliceAddress,
		To:              BobAddress,
		Value:           "1000000000000000000",
		Gas:             "21000",
		GasPrice:        "20000000000",
		GasUsed:         "21000",
		IsError:         "0",
		TxReceiptStatus: "1",
	}
}

func generateAddress(index int) string {
	return fmt.Sprintf("0x%040x", index+1)
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
