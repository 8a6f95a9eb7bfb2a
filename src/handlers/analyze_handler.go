package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/cafeledger/backend/src/config"
	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/parsers"
	"github.com/username/cafeledger/backend/src/security/validation"
	"github.com/username/cafeledger/backend/src/services"
	"github.com/username/cafeledger/backend/src/utils"
)

type AnalyzeHandler struct {
	analysisService services.AnalysisService
}

func NewAnalyzeHandler(service services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: service,
	}
}

// analyzeRequest is the JSON body accepted by POST /api/analyze.
// Multipart form uploads with a "file" part are accepted as an alternative.
type analyzeRequest struct {
	CSV        string  `json:"csv"`
	FixedCosts float64 `json:"fixed_costs"`
}

func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	csvText, fixedCosts, err := h.readAnalyzePayload(r)
	if err != nil {
		logger.L.Warn("Failed to read analyze payload", "requestID", requestID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(csvText) == "" {
		utils.SendJSONError(w, "No data provided. Send a JSON body with a \"csv\" field or a multipart \"file\" upload.", http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing analyze request", "requestID", requestID, "payloadBytes", len(csvText), "fixedCosts", fixedCosts)
	report, err := h.analysisService.Analyze(r.Context(), csvText, fixedCosts)
	if err != nil {
		if errors.Is(err, parsers.ErrEmptyInput) {
			logger.L.Warn("Analyze rejected: empty input", "requestID", requestID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		} else if errors.Is(err, parsers.ErrSchemaDetection) {
			logger.L.Warn("Analyze rejected: schema detection failed", "requestID", requestID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing analyze request", "requestID", requestID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while analyzing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.L.Error("Error encoding JSON response for analysis report", "requestID", requestID, "error", err)
	}
}

// readAnalyzePayload extracts the CSV text and fixed-cost figure from either
// a multipart form upload or a JSON body.
func (h *AnalyzeHandler) readAnalyzePayload(r *http.Request) (string, float64, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.readMultipartPayload(r)
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, config.Cfg.MaxUploadSizeBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read request body (max %d MB): %w", config.Cfg.MaxUploadSizeBytes/(1024*1024), err)
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", 0, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req.CSV, req.FixedCosts, nil
}

func (h *AnalyzeHandler) readMultipartPayload(r *http.Request) (string, float64, error) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		return "", 0, fmt.Errorf("failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		return "", 0, fmt.Errorf("failed to retrieve file from request; ensure the 'file' field is used")
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		return "", 0, fmt.Errorf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}
	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		return "", 0, err
	}
	if _, err := validation.ValidateUploadIsText(file); err != nil {
		return "", 0, err
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	var fixedCosts float64
	if raw := r.FormValue("fixed_costs"); raw != "" {
		fixedCosts, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid fixed_costs value '%s'", raw)
		}
	}
	return string(content), fixedCosts, nil
}

// HandleHealth is the liveness probe.
func (h *AnalyzeHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"ai":        config.Cfg.AIAPIKey != "",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleBanner describes the service and its endpoints.
func (h *AnalyzeHandler) HandleBanner(w http.ResponseWriter, r *http.Request) {
	aiEnabled := config.Cfg.AIAPIKey != ""
	var aiModel any
	if aiEnabled {
		aiModel = config.Cfg.AIModel
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":       "Cafe Ledger Analyst",
		"version":    "1.0.0",
		"status":     "online",
		"ai_enabled": aiEnabled,
		"ai_model":   aiModel,
		"endpoints": map[string]string{
			"POST /api/analyze": "Upload cafe sales data and get financial analysis + AI recommendations",
			"GET /api/health":   "Health check",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
