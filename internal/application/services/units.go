package services

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// NativeDecimals is the precision of wei amounts
const NativeDecimals = 18

const maxDecimals = 255

// ParseRawBalance parses an on-chain integer given as "0x"-prefixed hex or as a
// decimal string. Leading zeros are accepted and a bare "0x" is zero.
func ParseRawBalance(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty balance")
	}
	if s == "0x" || s == "0X" {
		return new(big.Int), nil
	}

	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("not a 256-bit integer")
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative balance")
	}

	return v, nil
}

// ValidateDecimals checks that decimals fits an ERC-20 uint8
func ValidateDecimals(decimals int) error {
	if decimals < 0 || decimals > maxDecimals {
		return fmt.Errorf("decimals %d out of range", decimals)
	}
	return nil
}

// ToDecimal returns raw / 10^decimals exactly
func ToDecimal(raw *big.Int, decimals int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ToFloat returns raw / 10^decimals as the nearest float64
func ToFloat(raw *big.Int, decimals int) float64 {
	f, _ := ToDecimal(raw, decimals).Float64()
	return f
}

// FormatUnits renders raw / 10^decimals with a fixed number of fraction digits
func FormatUnits(raw *big.Int, decimals int, places int32) string {
	return ToDecimal(raw, decimals).StringFixed(places)
}

// NormalizeBalance converts a raw balance string into human units
func NormalizeBalance(raw string, decimals int) (float64, error) {
	v, err := ParseRawBalance(raw)
	if err != nil {
		return 0, err
	}
	if err := ValidateDecimals(decimals); err != nil {
		return 0, err
	}
	return ToFloat(v, decimals), nil
}

// FormatWei renders a decimal wei string in native units, or "" when it is not a number
func FormatWei(wei string, places int32) string {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return ""
	}
	return FormatUnits(v, NativeDecimals, places)
}

// TransactionFee returns gasUsed * gasPrice in wei, or nil when either is not a number
func TransactionFee(gasUsed, gasPrice string) *big.Int {
	used, ok := new(big.Int).SetString(gasUsed, 10)
	if !ok {
		return nil
	}
	price, ok := new(big.Int).SetString(gasPrice, 10)
	if !ok {
		return nil
	}
	return new(big.Int).Mul(used, price)
}
