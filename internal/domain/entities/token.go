package entities

import (
	"strconv"
	"strings"
	"time"
)

// CatalogToken is reference metadata for a token, loaded from a token list
type CatalogToken struct {
	Address   string    `db:"address" json:"address"`
	ChainID   int64     `db:"chain_id" json:"chainId"`
	Name      string    `db:"name" json:"name"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Decimals  int       `db:"decimals" json:"decimals"`
	LogoURI   string    `db:"logo_uri" json:"logoURI"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Key returns the catalog lookup key of the token
func (t *CatalogToken) Key() string {
	return CatalogKey(t.ChainID, t.Address)
}

// CatalogKey builds the lookup key for a (chain, address) pair
func CatalogKey(chainID int64, address string) string {
	return strconv.FormatInt(chainID, 10) + ":" + strings.ToLower(address)
}
