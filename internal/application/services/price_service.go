package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

// PriceService provides native currency price quotes
type PriceService struct {
	explorer repositories.ExplorerProvider
	logger   *zap.Logger
}

// NewPriceService creates a new price service
func NewPriceService(explorer repositories.ExplorerProvider, logger *zap.Logger) *PriceService {
	return &PriceService{
		explorer: explorer,
		logger:   logger,
	}
}

// EtherPriceResponse wraps a price quote for API response
type EtherPriceResponse struct {
	Data entities.EtherPrice `json:"data"`
}

// GetEtherPrice returns the latest native currency price of a chain
func (s *PriceService) GetEtherPrice(ctx context.Context, chainID string) (*EtherPriceResponse, error) {
	chainID, err := ParseChainID(chainID)
	if err != nil {
		return nil, err
	}

	price, err := s.explorer.GetEtherPrice(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ether price: %w", err)
	}

	return &EtherPriceResponse{Data: *price}, nil
}
