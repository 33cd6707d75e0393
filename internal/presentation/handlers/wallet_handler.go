package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
)

// WalletHandler handles HTTP requests for wallet lookups
type WalletHandler struct {
	service *services.WalletService
	logger  *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(service *services.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallet", func(r chi.Router) {
		r.Get("/balance", h.GetBalance)
		r.Get("/transactions", h.GetTransactions)
		r.Get("/tokens", h.GetTokens)
		r.Get("/overview", h.GetOverview)
	})
}

// GetBalance handles GET /api/v1/wallet/balance?address=&chainid=
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	address, chainID := walletParams(r)

	response, err := h.service.GetBalance(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fetch wallet balance")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTransactions handles GET /api/v1/wallet/transactions?address=&chainid=
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	address, chainID := walletParams(r)

	response, err := h.service.GetTransactions(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fetch transactions")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTokens handles GET /api/v1/wallet/tokens?address=&chainid=
func (h *WalletHandler) GetTokens(w http.ResponseWriter, r *http.Request) {
	address, chainID := walletParams(r)

	response, err := h.service.GetTokens(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fetch token balances")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetOverview handles GET /api/v1/wallet/overview?address=&chainid=
func (h *WalletHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	address, chainID := walletParams(r)

	response, err := h.service.GetOverview(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fetch wallet overview")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// walletParams reads the address and chain id query parameters
func walletParams(r *http.Request) (address, chainID string) {
	q := r.URL.Query()
	return q.Get("address"), chainParam(r)
}

// chainParam reads the chain id, accepting chainid and chainId
func chainParam(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("chainid"); v != "" {
		return v
	}
	return q.Get("chainId")
}
