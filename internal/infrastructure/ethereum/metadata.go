/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ethereum

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

var _ repositories.TokenResolver = (*TokenResolver)(nil)

// ContractCaller executes read-only contract calls
type ContractCaller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// ERC-20 view function selectors
var (
	nameSig     = selector("name()")
	symbolSig   = selector("symbol()")
	decimalsSig = selector("decimals()")
)

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

var (
	stringArgs abi.Arguments
	uint8Args  abi.Arguments
)

func init() {
	stringType, _ := abi.NewType("string", "", nil)
	uint8Type, _ := abi.NewType("uint8", "", nil)
	stringArgs = abi.Arguments{{Type: stringType}}
	uint8Args = abi.Arguments{{Type: uint8Type}}
}

// TokenResolver reads ERC-20 metadata from a contract via eth_call
type TokenResolver struct {
	caller  ContractCaller
	chainID int64
	logger  *zap.Logger
}

// NewTokenResolver creates a resolver for contracts on chainID
func NewTokenResolver(caller ContractCaller, chainID int64, logger *zap.Logger) *TokenResolver {
	return &TokenResolver{
		caller:  caller,
		chainID: chainID,
		logger:  logger,
	}
}

// ChainID returns the chain the resolver reads from
func (r *TokenResolver) ChainID() int64 {
	return r.chainID
}

// ResolveToken reads name, symbol and decimals of a token contract.
// decimals is required; a missing name or symbol is left empty.
func (r *TokenResolver) ResolveToken(ctx context.Context, address string) (*entities.CatalogToken, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid token address %q", address)
	}
	addr := common.HexToAddress(address)

	decimals, err := r.fetchDecimals(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to read decimals: %w", err)
	}

	name, err := r.fetchString(ctx, addr, nameSig)
	if err != nil {
		r.logger.Debug("Token has no readable name", zap.String("token", address), zap.Error(err))
	}

	symbol, err := r.fetchString(ctx, addr, symbolSig)
	if err != nil {
		r.logger.Debug("Token has no readable symbol", zap.String("token", address), zap.Error(err))
	}

	return &entities.CatalogToken{
		Address:  strings.ToLower(address),
		ChainID:  r.chainID,
		Name:     name,
		Symbol:   symbol,
		Decimals: int(decimals),
	}, nil
}

func (r *TokenResolver) fetchString(ctx context.Context, addr common.Address, sig []byte) (string, error) {
	result, err := r.caller.CallContract(ctx, addr, sig)
	if err != nil {
		return "", err
	}
	return decodeStringOrBytes32(result)
}

func (r *TokenResolver) fetchDecimals(ctx context.Context, addr common.Address) (uint8, error) {
	result, err := r.caller.CallContract(ctx, addr, decimalsSig)
	if err != nil {
		return 0, err
	}

	values, err := uint8Args.Unpack(result)
	if err != nil {
		return 0, fmt.Errorf("invalid decimals response: %w", err)
	}
	return values[0].(uint8), nil
}

// decodeStringOrBytes32 decodes an ABI string, falling back to the bytes32
// encoding some older tokens (MKR, SAI) use for name and symbol
func decodeStringOrBytes32(data []byte) (string, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("data too short: %d bytes", len(data))
	}

	if len(data) >= 64 {
		if values, err := stringArgs.Unpack(data); err == nil {
			return strings.TrimRight(values[0].(string), "\x00"), nil
		}
	}

	word := bytes.TrimRight(data[:32], "\x00")
	if isPrintableASCII(word) {
		return string(word), nil
	}

	return "0x" + hex.EncodeToString(data[:32]), nil
}

// isPrintableASCII checks if all bytes are printable ASCII characters
func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return len(data) > 0
}
