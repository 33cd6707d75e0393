package services

import (
	"fmt"
	gomath "math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/metrics"
)

// DefaultMinValueUSD is the smallest holding value kept in results
const DefaultMinValueUSD = 0.01

// Drop reasons
const (
	dropConversion     = "conversion_error"
	dropZeroBalance    = "zero_balance"
	dropNoPrice        = "no_price"
	dropBelowThreshold = "below_threshold"
)

// Normalizer converts raw token balances into valued, filtered and sorted holdings
type Normalizer struct {
	minValueUSD float64
	logger      *zap.Logger
}

// NewNormalizer creates a normalizer that drops holdings worth less than minValueUSD
func NewNormalizer(minValueUSD float64, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		minValueUSD: minValueUSD,
		logger:      logger,
	}
}

// Normalize converts entries, drops zero, unpriced and negligible holdings, and
// sorts the rest by USD value, highest first. Equal values keep arrival order.
func (n *Normalizer) Normalize(entries []entities.RawBalanceEntry) []entities.NormalizedBalance {
	result := make([]entities.NormalizedBalance, 0, len(entries))
	dropped := make(map[string]int)

	for _, entry := range entries {
		balance, reason, err := n.normalizeEntry(entry)
		if err != nil {
			n.logger.Warn("Skipping token balance",
				zap.String("contract", entry.Contract()),
				zap.Error(err),
			)
			dropped[dropConversion]++
			continue
		}
		if reason != "" {
			dropped[reason]++
			continue
		}
		result = append(result, balance)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ValueUSD > result[j].ValueUSD
	})

	for reason, count := range dropped {
		metrics.ObserveDropped(reason, count)
	}

	n.logger.Debug("Normalized token balances",
		zap.Int("received", len(entries)),
		zap.Int("kept", len(result)),
	)

	return result
}

// normalizeEntry returns the converted balance, or a drop reason, or a *entities.ConversionError
func (n *Normalizer) normalizeEntry(entry entities.RawBalanceEntry) (entities.NormalizedBalance, string, error) {
	raw, err := ParseRawBalance(entry.RawBalance)
	if err != nil {
		return entities.NormalizedBalance{}, "", &entities.ConversionError{
			ContractAddress: entry.Contract(),
			Value:           entry.RawBalance,
			Err:             err,
		}
	}
	if raw.Sign() == 0 {
		return entities.NormalizedBalance{}, dropZeroBalance, nil
	}

	decimals := entry.Metadata.Decimals
	if !decimals.Valid {
		return entities.NormalizedBalance{}, "", &entities.ConversionError{
			ContractAddress: entry.Contract(),
			Value:           entry.RawBalance,
			Err:             fmt.Errorf("unknown decimals"),
		}
	}
	if err := ValidateDecimals(decimals.Value); err != nil {
		return entities.NormalizedBalance{}, "", &entities.ConversionError{
			ContractAddress: entry.Contract(),
			Value:           entry.RawBalance,
			Err:             err,
		}
	}

	amount := ToDecimal(raw, decimals.Value)
	balance, _ := amount.Float64()

	price := entry.USDPrice()
	if price == nil {
		return entities.NormalizedBalance{}, dropNoPrice, nil
	}
	priceUSD, err := strconv.ParseFloat(price.Value, 64)
	if err != nil || priceUSD <= 0 || gomath.IsNaN(priceUSD) || gomath.IsInf(priceUSD, 0) {
		return entities.NormalizedBalance{}, dropNoPrice, nil
	}

	valueUSD := balance * priceUSD
	if valueUSD < n.minValueUSD {
		return entities.NormalizedBalance{}, dropBelowThreshold, nil
	}

	return entities.NormalizedBalance{
		ContractAddress:  entry.Contract(),
		Balance:          balance,
		BalanceFormatted: amount.String(),
		PriceUSD:         priceUSD,
		ValueUSD:         valueUSD,
		PriceUpdatedAt:   price.LastUpdatedAt,
		Metadata:         entry.Metadata,
	}, "", nil
}
