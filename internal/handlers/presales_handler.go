package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/cache"
	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/engine"
	"github.com/haricode-hub/rfp-ofsaa/internal/middleware"
	"github.com/haricode-hub/rfp-ofsaa/internal/session"
	"github.com/haricode-hub/rfp-ofsaa/internal/workbook"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PresalesHandler serves the upload-process-download flow.
type PresalesHandler struct {
	store        *session.Store
	orchestrator *engine.Orchestrator
	cache        *cache.EvidenceCache
	cfg          *config.Config
	logger       *zap.Logger
}

// NewPresalesHandler creates the presales HTTP handler.
func NewPresalesHandler(store *session.Store, orchestrator *engine.Orchestrator, evidenceCache *cache.EvidenceCache, cfg *config.Config, logger *zap.Logger) *PresalesHandler {
	return &PresalesHandler{
		store:        store,
		orchestrator: orchestrator,
		cache:        evidenceCache,
		cfg:          cfg,
		logger:       logger,
	}
}

// UploadResponse is the payload returned after a successful upload.
type UploadResponse struct {
	Filename         string   `json:"filename"`
	Columns          []string `json:"columns"`
	RowCount         int      `json:"row_count"`
	OriginalFilename string   `json:"original_filename"`
}

// ProcessRequest selects the columns and instructions for one analysis run.
type ProcessRequest struct {
	InputColumns  []string `json:"input_columns"`
	OutputColumns []string `json:"output_columns"`
	Filename      string   `json:"filename"`
	UserPrompt    string   `json:"user_prompt"`
}

// ProcessStats summarizes one completed analysis run.
type ProcessStats struct {
	TotalRows    int      `json:"total_rows"`
	CacheEntries int      `json:"cache_entries"`
	Features     []string `json:"enhancement_features"`
}

// ProcessResponse is the payload returned after processing completes.
type ProcessResponse struct {
	FileID             string       `json:"file_id"`
	Message            string       `json:"message"`
	ProcessingStats    ProcessStats `json:"processing_stats"`
	ProcessingComplete bool         `json:"processing_complete"`
}

// Upload accepts a spreadsheet file and registers it for processing.
func (h *PresalesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %dMB limit", h.cfg.Upload.MaxFileSizeMB), requestID)
			return
		}
		h.respondError(w, http.StatusBadRequest, "file field is required", requestID)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		h.respondError(w, http.StatusBadRequest, "only .xlsx and .xls files are supported", requestID)
		return
	}

	maxBytes := h.cfg.MaxFileSizeBytes()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read uploaded file", requestID)
		return
	}
	if int64(len(data)) > maxBytes {
		h.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %dMB limit", h.cfg.Upload.MaxFileSizeMB), requestID)
		return
	}

	table, err := workbook.Read(data)
	if err != nil {
		h.respondDomainError(w, err, requestID)
		return
	}

	up := h.store.PutUpload(header.Filename, data, table.Columns, len(table.Rows))

	h.logger.Info("Spreadsheet uploaded",
		zap.String("request_id", requestID),
		zap.String("upload_id", up.ID),
		zap.Int("rows", up.RowCount))

	h.respondJSON(w, http.StatusOK, UploadResponse{
		Filename:         up.ID,
		Columns:          up.Columns,
		RowCount:         up.RowCount,
		OriginalFilename: up.OriginalFilename,
	}, requestID)
}

// Process runs the compliance analysis over an uploaded spreadsheet.
func (h *PresalesHandler) Process(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", requestID)
		return
	}
	if len(req.InputColumns) == 0 || len(req.OutputColumns) == 0 {
		h.respondError(w, http.StatusBadRequest, "input_columns and output_columns are required", requestID)
		return
	}

	up, err := h.store.GetUpload(req.Filename)
	if err != nil {
		h.respondDomainError(w, err, requestID)
		return
	}

	table, err := workbook.Read(up.Data)
	if err != nil {
		h.respondDomainError(w, err, requestID)
		return
	}

	inputCols := normalizeColumns(req.InputColumns)
	outputCols := normalizeColumns(req.OutputColumns)

	known := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		known[col] = true
	}
	for _, col := range inputCols {
		if !known[col] {
			h.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("input column %q not found in uploaded file", col), requestID)
			return
		}
	}

	// Append output columns the sheet does not carry yet.
	for _, col := range outputCols {
		if !known[col] {
			table.Columns = append(table.Columns, col)
			known[col] = true
		}
	}

	rows := make([]*domain.RequirementRow, len(table.Rows))
	for i, cells := range table.Rows {
		input := make(map[string]string, len(inputCols))
		for _, col := range inputCols {
			if v := cells[col]; v != "" {
				input[col] = v
			}
		}
		rows[i] = &domain.RequirementRow{Index: i, Input: input}
	}

	h.orchestrator.Run(r.Context(), rows, inputCols, outputCols, req.UserPrompt)

	for i, row := range rows {
		for _, col := range outputCols {
			table.Rows[i][col] = row.Output[col]
		}
	}

	out, err := workbook.Write(table)
	if err != nil {
		h.logger.Error("Failed to render workbook", zap.String("request_id", requestID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to generate output file", requestID)
		return
	}

	res := h.store.PutResult("processed_"+up.OriginalFilename, out)
	h.store.ConsumeUpload(up.ID)

	h.logger.Info("Analysis completed",
		zap.String("request_id", requestID),
		zap.String("result_id", res.ID),
		zap.Int("rows", len(rows)))

	h.respondJSON(w, http.StatusOK, ProcessResponse{
		FileID:  res.ID,
		Message: fmt.Sprintf("Presales analysis completed successfully - %d rows analyzed", len(rows)),
		ProcessingStats: ProcessStats{
			TotalRows:    len(rows),
			CacheEntries: h.cache.Len(),
			Features: []string{
				"Oracle banking solution analysis",
				"Evidence-based assessment",
				"Professional RFP responses",
			},
		},
		ProcessingComplete: true,
	}, requestID)
}

// Download streams a processed spreadsheet back as an attachment.
func (h *PresalesHandler) Download(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "id parameter is required", requestID)
		return
	}

	res, err := h.store.GetResult(id)
	if err != nil {
		h.respondDomainError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// CacheStats reports evidence cache statistics.
func (h *PresalesHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	stats := h.cache.Stats()

	h.respondJSON(w, http.StatusOK, map[string]any{
		"total_entries":        stats.TotalEntries,
		"entries_with_sources": stats.EntriesWithSources,
		"success_rate":         stats.SuccessRate,
		"source_analysis": map[string]any{
			"total_sources":         stats.TotalSources,
			"avg_sources_per_entry": stats.AvgSourcesPerEntry,
			"shard_count":           stats.ShardCount,
		},
	}, requestID)
}

// ClearCache wipes the evidence cache.
func (h *PresalesHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	removed := h.cache.Clear()

	h.logger.Info("Evidence cache cleared",
		zap.String("request_id", requestID),
		zap.Int("removed", removed))

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":         "cache cleared",
		"entries_removed": removed,
	}, requestID)
}

func normalizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = strings.ToUpper(strings.TrimSpace(col))
	}
	return out
}

// respondJSON sends a JSON response.
func (h *PresalesHandler) respondJSON(w http.ResponseWriter, status int, data any, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.String("request_id", requestID), zap.Error(err))
	}
}

// respondError sends a structured error payload.
func (h *PresalesHandler) respondError(w http.ResponseWriter, status int, message, requestID string) {
	h.respondJSON(w, status, map[string]string{
		"error":      message,
		"request_id": requestID,
	}, requestID)
}

// respondDomainError maps a domain error kind to an HTTP status.
func (h *PresalesHandler) respondDomainError(w http.ResponseWriter, err error, requestID string) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindExternal:
		status = http.StatusBadGateway
	}
	h.respondError(w, status, err.Error(), requestID)
}
