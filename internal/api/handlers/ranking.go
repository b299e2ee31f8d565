package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/twstrategy/internal/brain"
	"github.com/wonny/twstrategy/pkg/logger"
)

// RankingService serves and publishes the leaderboard
type RankingService interface {
	Ranking(ctx context.Context, rescan bool) *brain.RankingView
	Leaderboard() *brain.RankingView
	Subscribe(fn func(brain.RankingView)) func()
}

// RankingHandler handles leaderboard API endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	service RankingService
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service RankingService, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  log,
	}
}

// GetRanking returns the current leaderboard
// GET /api/ranking
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Ranking(r.Context(), false))
}

// Rescan refetches today's flow and rebuilds the leaderboard
// POST /api/ranking/rescan
func (h *RankingHandler) Rescan(w http.ResponseWriter, r *http.Request) {
	view := h.service.Ranking(r.Context(), true)

	h.logger.WithFields(map[string]interface{}{
		"trade_date": view.TradeDate,
		"entries":    len(view.Entries),
	}).Info("Leaderboard rescanned")

	respondJSON(w, http.StatusOK, view)
}
