package contracts

// RankedEntry is one row of the chip-only leaderboard
// ⭐ SSOT: S3 → API 랭킹 결과 전달
type RankedEntry struct {
	Rank           int    `json:"rank"` // 1-based
	Code           string `json:"code"`
	Name           string `json:"name"` // carries the warning marker when Flagged
	Score          int    `json:"score"`
	ForeignNet     int64  `json:"foreign_net"`
	TrustNet       int64  `json:"trust_net"`
	DealerHedgeNet int64  `json:"dealer_hedge_net"`
	Flagged        bool   `json:"flagged"` // fake-foreign pattern on chips alone
}

// IsTopRanked checks if the entry is in top N ranks
func (r *RankedEntry) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
