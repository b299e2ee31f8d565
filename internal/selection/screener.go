package selection

import (
	"strings"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

// Screener implements the leaderboard hard cuts
// ⭐ SSOT: 랭킹 대상 필터는 여기서만
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines the hard cut conditions (lots)
type ScreenerConfig struct {
	// Code prefixes never ranked: ETFs (00) and the financial-sector prefixes (28, 58, 60)
	ExcludedPrefixes []string

	// A flow passes when either threshold is met
	MinForeignNet int64 // 外資 (기본: 500)
	MinTrustNet   int64 // 投信 (기본: 100)
}

// DefaultScreenerConfig returns the standard hard cuts
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		ExcludedPrefixes: []string{"00", "28", "58", "60"},
		MinForeignNet:    500,
		MinTrustNet:      100,
	}
}

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, log *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: log,
	}
}

// Excluded reports whether a code belongs to an excluded instrument class
func (s *Screener) Excluded(code string) bool {
	for _, prefix := range s.config.ExcludedPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// Pass applies the exclusions and the flow pre-filter
func (s *Screener) Pass(flow contracts.InstitutionalFlow) bool {
	if s.Excluded(flow.Code) {
		return false
	}
	return flow.ForeignNet >= s.config.MinForeignNet || flow.TrustNet >= s.config.MinTrustNet
}

// Screen returns the flows that pass, in the set's order
func (s *Screener) Screen(flows *contracts.FlowSet) []contracts.InstitutionalFlow {
	all := flows.All()
	passed := make([]contracts.InstitutionalFlow, 0, len(all))
	excluded := 0

	for _, flow := range all {
		if s.Excluded(flow.Code) {
			excluded++
			continue
		}
		if s.Pass(flow) {
			passed = append(passed, flow)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"input":    len(all),
		"excluded": excluded,
		"passed":   len(passed),
	}).Debug("Screening completed")

	return passed
}
