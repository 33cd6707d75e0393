package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// Client-facing messages for the errors entities.IsClientError accepts
var clientErrorMessages = []struct {
	err     error
	message string
}{
	{entities.ErrMissingAddress, "Missing wallet address"},
	{entities.ErrInvalidAddress, "Invalid wallet address format"},
	{entities.ErrInvalidChain, "Invalid chain id"},
	{entities.ErrUnsupportedChain, "Token balances are not available for this chain"},
}

func clientErrorMessage(err error) string {
	for _, ce := range clientErrorMessages {
		if errors.Is(err, ce.err) {
			return ce.message
		}
	}
	return "Bad request"
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError answers 400 for invalid input and 500 with message for anything else
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	if entities.IsClientError(err) {
		logger.Info("Rejected request", zap.Error(err))
		respondError(w, http.StatusBadRequest, clientErrorMessage(err))
		return
	}

	fields := []zap.Field{zap.Error(err)}
	var upstreamErr *entities.UpstreamError
	if errors.As(err, &upstreamErr) {
		fields = append(fields,
			zap.String("provider", upstreamErr.Provider),
			zap.Int("upstream_status", upstreamErr.StatusCode),
		)
	}
	logger.Error(message, fields...)

	respondError(w, http.StatusInternalServerError, message)
}
