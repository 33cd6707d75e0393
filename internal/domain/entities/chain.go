package entities

import "sort"

// DefaultChainID is used when a request does not name a chain
const DefaultChainID = "1"

// UnknownUnit is reported for chains missing from the registry
const UnknownUnit = "?"

// Chain describes an EVM chain served by the explorer
type Chain struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Unit         string `json:"unit" yaml:"unit"`
	TokenNetwork string `json:"token_network,omitempty" yaml:"token_network"`
}

// SupportsTokens reports whether the token data API serves this chain
func (c Chain) SupportsTokens() bool {
	return c.TokenNetwork != ""
}

// DefaultChains returns the built-in chain table
func DefaultChains() []Chain {
	return []Chain{
		{ID: "1", Name: "Ethereum", Unit: "ETH", TokenNetwork: "eth-mainnet"},
		{ID: "56", Name: "Binance Chain", Unit: "BNB", TokenNetwork: "bnb-mainnet"},
		{ID: "137", Name: "Polygon", Unit: "MATIC", TokenNetwork: "polygon-mainnet"},
		{ID: "42161", Name: "Arbitrum", Unit: "ARBI", TokenNetwork: "arb-mainnet"},
		{ID: "8453", Name: "Base Chain", Unit: "BASE", TokenNetwork: "base-mainnet"},
	}
}

// ChainRegistry is a read-only lookup table of chains keyed by id
type ChainRegistry struct {
	chains map[string]Chain
}

// NewChainRegistry builds a registry. Later entries replace earlier ones with the same id.
func NewChainRegistry(chains []Chain) *ChainRegistry {
	r := &ChainRegistry{chains: make(map[string]Chain, len(chains))}
	for _, c := range chains {
		r.chains[c.ID] = c
	}
	return r
}

// Lookup returns the chain with the given id
func (r *ChainRegistry) Lookup(id string) (Chain, bool) {
	c, ok := r.chains[id]
	return c, ok
}

// Resolve returns the chain with the given id, or a placeholder with an unknown unit
func (r *ChainRegistry) Resolve(id string) Chain {
	if c, ok := r.chains[id]; ok {
		return c
	}
	return Chain{ID: id, Name: "Unknown", Unit: UnknownUnit}
}

// All returns every chain ordered by numeric id
func (r *ChainRegistry) All() []Chain {
	chains := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool {
		if len(chains[i].ID) != len(chains[j].ID) {
			return len(chains[i].ID) < len(chains[j].ID)
		}
		return chains[i].ID < chains[j].ID
	})
	return chains
}
