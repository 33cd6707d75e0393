package alchemy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/httpclient"
)

// ProviderName identifies the token data API in errors, logs and metrics
const ProviderName = "alchemy"

const tokensByAddressPath = "/assets/tokens/by-address"

var _ repositories.TokenBalanceProvider = (*Client)(nil)

// Client fetches paginated token balances from the Alchemy data API
type Client struct {
	http     *httpclient.Client
	endpoint string
	logger   *zap.Logger
}

// NewClient creates a new token data API client
func NewClient(cfg config.AlchemyConfig, timeout time.Duration, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Client {
	logger = logger.Named(ProviderName)

	base := strings.TrimRight(cfg.APIURL, "/")
	endpoint := base + tokensByAddressPath
	if cfg.APIKey != "" {
		endpoint = base + "/" + cfg.APIKey + tokensByAddressPath
	}

	return &Client{
		http: httpclient.New(httpclient.Options{
			Provider: ProviderName,
			Timeout:  timeout,
			Cache:    c,
			CacheTTL: cacheTTL,
		}, logger),
		endpoint: endpoint,
		logger:   logger,
	}
}

type addressNetworks struct {
	Address  string   `json:"address"`
	Networks []string `json:"networks"`
}

type tokensRequest struct {
	Addresses           []addressNetworks `json:"addresses"`
	WithMetadata        bool              `json:"withMetadata"`
	WithPrices          bool              `json:"withPrices"`
	IncludeNativeTokens bool              `json:"includeNativeTokens"`
	PageKey             string            `json:"pageKey,omitempty"`
}

type tokenMetadata struct {
	Name     string            `json:"name"`
	Symbol   string            `json:"symbol"`
	Decimals entities.Decimals `json:"decimals"`
	Logo     string            `json:"logo"`
}

type tokenPrice struct {
	Currency      string `json:"currency"`
	Value         string `json:"value"`
	LastUpdatedAt string `json:"lastUpdatedAt"`
}

type tokenBalance struct {
	Address       string        `json:"address"`
	Network       string        `json:"network"`
	TokenAddress  *string       `json:"tokenAddress"`
	TokenBalance  string        `json:"tokenBalance"`
	TokenMetadata tokenMetadata `json:"tokenMetadata"`
	TokenPrices   []tokenPrice  `json:"tokenPrices"`
}

type tokensData struct {
	Tokens  *[]tokenBalance `json:"tokens"`
	PageKey string          `json:"pageKey,omitempty"`
}

type tokensResponse struct {
	Data *tokensData `json:"data"`
}

// FetchTokenBalancePage fetches one page of token balances for address on chain
func (c *Client) FetchTokenBalancePage(ctx context.Context, address string, chain entities.Chain, pageKey string) (*entities.PageResult, error) {
	if !chain.SupportsTokens() {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedChain, chain.ID)
	}

	body := tokensRequest{
		Addresses: []addressNetworks{
			{Address: address, Networks: []string{chain.TokenNetwork}},
		},
		WithMetadata:        true,
		WithPrices:          true,
		IncludeNativeTokens: false,
		PageKey:             pageKey,
	}

	var resp tokensResponse
	req := httpclient.Request{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Body:   body,
		Check: func() error {
			if resp.Data == nil || resp.Data.Tokens == nil {
				return errors.New("unexpected API response format: missing data.tokens")
			}
			return nil
		},
	}

	if err := c.http.Do(ctx, req, &resp); err != nil {
		var upstreamErr *entities.UpstreamError
		if errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("Token data API rejected the request, the API key may be missing or invalid")
		}
		return nil, err
	}

	tokens := *resp.Data.Tokens
	page := &entities.PageResult{
		Entries:           make([]entities.RawBalanceEntry, 0, len(tokens)),
		ContinuationToken: resp.Data.PageKey,
	}
	for _, t := range tokens {
		page.Entries = append(page.Entries, toEntry(t))
	}

	c.logger.Debug("Fetched token balance page",
		zap.String("address", address),
		zap.String("network", chain.TokenNetwork),
		zap.Int("entries", len(page.Entries)),
		zap.Bool("has_more", page.HasMore()),
	)

	return page, nil
}

func toEntry(t tokenBalance) entities.RawBalanceEntry {
	prices := make([]entities.TokenPrice, 0, len(t.TokenPrices))
	for _, p := range t.TokenPrices {
		prices = append(prices, entities.TokenPrice{
			Currency:      p.Currency,
			Value:         p.Value,
			LastUpdatedAt: p.LastUpdatedAt,
		})
	}

	var contract *string
	if t.TokenAddress != nil {
		addr := strings.ToLower(*t.TokenAddress)
		contract = &addr
	}

	return entities.RawBalanceEntry{
		Network:         t.Network,
		ContractAddress: contract,
		RawBalance:      t.TokenBalance,
		Metadata: entities.TokenMetadata{
			Name:     t.TokenMetadata.Name,
			Symbol:   t.TokenMetadata.Symbol,
			Decimals: t.TokenMetadata.Decimals,
			Logo:     t.TokenMetadata.Logo,
		},
		Prices: prices,
	}
}
