package brain

import (
	"time"

	"github.com/wonny/twstrategy/internal/contracts"
)

// StockView is the single-security result
type StockView struct {
	Code        string                       `json:"code"`
	Name        string                       `json:"name"`
	Market      contracts.Market             `json:"market"`
	MarketLabel string                       `json:"market_label"` // 上市 / 上櫃
	TradeDate   string                       `json:"trade_date"`
	Flow        *contracts.InstitutionalFlow `json:"flow"`      // nil: no institutional data today
	Technical   *contracts.TechnicalSnapshot `json:"technical"` // nil: no quote
	Score       contracts.ScoreResult        `json:"score"`
	Diagnosis   contracts.Diagnosis          `json:"diagnosis"`
	Messages    []string                     `json:"messages"`
}

// RankingView is a published leaderboard
type RankingView struct {
	TradeDate   string                  `json:"trade_date"`
	GeneratedAt time.Time               `json:"generated_at"`
	Scanned     int                     `json:"scanned"`
	Entries     []contracts.RankedEntry `json:"entries"`
	Message     string                  `json:"message,omitempty"`

	Quality *contracts.DataQualitySnapshot `json:"quality,omitempty"`
}
