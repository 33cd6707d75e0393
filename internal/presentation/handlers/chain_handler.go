package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// ChainListResponse is the API response for the chain table
type ChainListResponse struct {
	Data []entities.Chain `json:"data"`
}

// ChainHandler serves the supported chain table
type ChainHandler struct {
	chains *entities.ChainRegistry
}

// NewChainHandler creates a new chain handler
func NewChainHandler(chains *entities.ChainRegistry) *ChainHandler {
	return &ChainHandler{chains: chains}
}

// RegisterRoutes registers the chain routes
func (h *ChainHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chains", h.GetChains)
}

// GetChains handles GET /api/v1/chains
func (h *ChainHandler) GetChains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ChainListResponse{Data: h.chains.All()})
}
