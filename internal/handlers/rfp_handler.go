package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/middleware"
	"github.com/haricode-hub/rfp-ofsaa/internal/rfp"
)

// RFPHandler serves the standalone RFP text analysis endpoint.
type RFPHandler struct {
	logger *zap.Logger
}

// NewRFPHandler creates the RFP analysis handler.
func NewRFPHandler(logger *zap.Logger) *RFPHandler {
	return &RFPHandler{logger: logger}
}

// AnalyzeRequest carries the RFP text to classify.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Analyze classifies RFP text and extracts submission signals.
func (h *RFPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", requestID)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, h.logger, http.StatusBadRequest, "text is required", requestID)
		return
	}

	analysis := rfp.Analyze(req.Text)

	h.logger.Info("RFP text analyzed",
		zap.String("request_id", requestID),
		zap.String("category", analysis.Classification.Category),
		zap.String("confidence", analysis.Classification.Confidence))

	respondJSON(w, h.logger, http.StatusOK, analysis, requestID)
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.String("request_id", requestID), zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, message, requestID string) {
	respondJSON(w, logger, status, map[string]string{
		"error":      message,
		"request_id": requestID,
	}, requestID)
}
