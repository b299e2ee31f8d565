package selection

import (
	"sort"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

// DefaultTopN is the leaderboard length
const DefaultTopN = 30

// WarningMarker is appended to the name of a flagged entry
const WarningMarker = " (⚠️)"

// Scanner ranks the whole market on chips alone (no price history)
// ⭐ SSOT: 랭킹 로직은 여기서만
type Scanner struct {
	screener *Screener
	topN     int
	logger   *logger.Logger
}

// NewScanner creates a new scanner; a non-positive topN falls back to DefaultTopN
func NewScanner(screener *Screener, topN int, log *logger.Logger) *Scanner {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Scanner{
		screener: screener,
		topN:     topN,
		logger:   log.WithField("module", "scanner"),
	}
}

// ChipScore scores a flow without technicals. flagged marks the fake-foreign
// shape: heavy foreign buying against a sold-down hedge book.
func ChipScore(flow contracts.InstitutionalFlow) (score int, flagged bool) {
	score = 60
	if flow.TrustNet > 0 {
		score += 20
	}
	if flow.ForeignNet > 1000 {
		score += 10
	}
	if flow.ForeignNet > 1000 && flow.DealerHedgeNet < -300 {
		score -= 15
		flagged = true
	}
	return score, flagged
}

// Scan builds the leaderboard: screen, chip-score, stable sort descending, cut to topN.
// Ties keep the flow set's order. Names fall back to the code.
func (s *Scanner) Scan(flows *contracts.FlowSet, dir *contracts.Directory) []contracts.RankedEntry {
	candidates := s.screener.Screen(flows)
	ranked := make([]contracts.RankedEntry, 0, len(candidates))

	for _, flow := range candidates {
		score, flagged := ChipScore(flow)

		name, ok := dir.Name(flow.Code)
		if !ok || name == "" {
			name = flow.Code
		}
		if flagged {
			name += WarningMarker
		}

		ranked = append(ranked, contracts.RankedEntry{
			Code:           flow.Code,
			Name:           name,
			Score:          score,
			ForeignNet:     flow.ForeignNet,
			TrustNet:       flow.TrustNet,
			DealerHedgeNet: flow.DealerHedgeNet,
			Flagged:        flagged,
		})
	}

	// Sort by score (descending), equal scores keep input order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"candidates": len(candidates),
			"ranked":     len(ranked),
			"top_score":  ranked[0].Score,
			"top_code":   ranked[0].Code,
		}).Info("Ranking completed")
	} else {
		s.logger.WithField("candidates", len(candidates)).Info("Ranking completed with no entries")
	}

	return ranked
}

// TopN returns the configured leaderboard length
func (s *Scanner) TopN() int {
	return s.topN
}
