package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/twstrategy/internal/brain"
	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// StockService scores single securities and searches the directory
type StockService interface {
	Stock(ctx context.Context, query string) (*brain.StockView, error)
	Search(ctx context.Context, query string, limit int) []contracts.SecurityRecord
}

// StockHandler handles single-security API endpoints
// ⭐ SSOT: 종목 API 핸들러는 이 구조체에서만
type StockHandler struct {
	service StockService
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service StockService, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  log,
	}
}

// SearchResult is one search hit
type SearchResult struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Market      contracts.Market `json:"market"`
	MarketLabel string           `json:"market_label"`
	Label       string           `json:"label"` // "2330 台積電"
}

// Search returns securities whose code or name matches
// GET /api/stocks/search?q=台積&limit=20
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(parsed, maxSearchLimit)
	}

	records := h.service.Search(r.Context(), query, limit)
	results := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, SearchResult{
			Code:        rec.Code,
			Name:        rec.Name,
			Market:      rec.Market,
			MarketLabel: rec.Market.Label(),
			Label:       rec.Code + " " + rec.Name,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// GetStock returns the strategy view of one security
// GET /api/stocks/{query}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(mux.Vars(r)["query"])
	if query == "" {
		respondError(w, http.StatusBadRequest, "Stock code or name is required")
		return
	}

	view, err := h.service.Stock(r.Context(), query)
	if err != nil {
		if errors.Is(err, brain.ErrUnknownSecurity) {
			respondError(w, http.StatusNotFound, "Unknown stock: "+query)
			return
		}
		h.logger.WithError(err).WithField("query", query).Error("Failed to score stock")
		respondError(w, http.StatusInternalServerError, "Failed to score stock")
		return
	}

	respondJSON(w, http.StatusOK, view)
}
