package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// CatalogHandler handles HTTP requests for token reference metadata
type CatalogHandler struct {
	service *services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog/tokens/{address}", h.GetToken)
	r.Get("/catalog/stats", h.GetStats)
}

// GetToken handles GET /api/v1/catalog/tokens/{address}?chainid=
func (h *CatalogHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	response, err := h.service.GetToken(r.Context(), chainParam(r), address)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAddress) || errors.Is(err, entities.ErrMissingAddress) {
			respondError(w, http.StatusBadRequest, "Invalid token address format")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to get token")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetStats handles GET /api/v1/catalog/stats
func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get catalog stats")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
