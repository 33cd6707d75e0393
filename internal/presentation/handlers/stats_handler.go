package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
)

// StatsHandler handles HTTP requests for market statistics
type StatsHandler struct {
	service *services.PriceService
	logger  *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *services.PriceService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the stats routes
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats/price", h.GetPrice)
}

// GetPrice handles GET /api/v1/stats/price?chainid=
func (h *StatsHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetEtherPrice(r.Context(), chainParam(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fetch price")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
