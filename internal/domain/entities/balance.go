package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Decimals is the number of decimal places reported for a token.
// Upstream APIs send it as a number, a numeric string or null.
type Decimals struct {
	Value int
	Valid bool
}

// NewDecimals returns a valid Decimals value
func NewDecimals(v int) Decimals {
	return Decimals{Value: v, Valid: true}
}

// UnmarshalJSON accepts 18, "18" and null. Anything unparseable is left invalid
// so that a single bad entry does not reject the whole page.
func (d *Decimals) UnmarshalJSON(data []byte) error {
	*d = Decimals{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}

	d.Value = v
	d.Valid = true
	return nil
}

// MarshalJSON writes the value as a number, or null when unknown
func (d Decimals) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(d.Value)), nil
}

// TokenMetadata describes a token as reported by the token data API
type TokenMetadata struct {
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Decimals Decimals `json:"decimals"`
	Logo     string   `json:"logo,omitempty"`
}

// TokenPrice is a single quoted price for a token
type TokenPrice struct {
	Currency      string `json:"currency"`
	Value         string `json:"value"`
	LastUpdatedAt string `json:"last_updated_at,omitempty"`
}

// RawBalanceEntry is one token balance exactly as received from the provider
type RawBalanceEntry struct {
	Network         string
	ContractAddress *string // nil for the native asset
	RawBalance      string  // hex ("0x...") or decimal integer string
	Metadata        TokenMetadata
	Prices          []TokenPrice
}

// Contract returns the contract address or an empty string for the native asset
func (e RawBalanceEntry) Contract() string {
	if e.ContractAddress == nil {
		return ""
	}
	return *e.ContractAddress
}

// USDPrice returns the first USD quote, or nil when the provider sent none
func (e RawBalanceEntry) USDPrice() *TokenPrice {
	for i := range e.Prices {
		if strings.EqualFold(e.Prices[i].Currency, "usd") {
			return &e.Prices[i]
		}
	}
	return nil
}

// PageResult is one page of token balances
type PageResult struct {
	Entries           []RawBalanceEntry
	ContinuationToken string // empty when there are no more pages
}

// HasMore reports whether the provider announced another page
func (p *PageResult) HasMore() bool {
	return p.ContinuationToken != ""
}

// NormalizedBalance is a token balance converted to human units and valued in USD
type NormalizedBalance struct {
	ContractAddress  string        `json:"contract_address"`
	Balance          float64       `json:"balance"`
	BalanceFormatted string        `json:"balance_formatted"`
	PriceUSD         float64       `json:"price_usd"`
	ValueUSD         float64       `json:"value_usd"`
	PriceUpdatedAt   string        `json:"price_updated_at,omitempty"`
	Metadata         TokenMetadata `json:"metadata"`
}
