package strategyconfig

import (
	"fmt"
	"regexp"
	"time"
	_ "time/tzdata" // zone names validate on hosts without tzdata

	"github.com/wonny/twstrategy/internal/selection"
)

// maxTopN is the leaderboard contract of scan
const maxTopN = selection.DefaultTopN

// minTopN below which the board is flagged as short
const minTopN = 10

var (
	strategyIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	prefixPattern     = regexp.MustCompile(`^\d{1,3}$`)
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if !strategyIDPattern.MatchString(cfg.Meta.StrategyID) {
		return ValidationError{"meta.strategy_id", "must match [a-z0-9_]+"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	// === Screening ===
	seen := make(map[string]bool)
	for i, prefix := range cfg.Screening.ExcludedPrefixes {
		field := fmt.Sprintf("screening.excluded_prefixes[%d]", i)
		if !prefixPattern.MatchString(prefix) {
			return ValidationError{field, "must be 1-3 digits"}
		}
		if seen[prefix] {
			return ValidationError{field, "duplicate prefix " + prefix}
		}
		seen[prefix] = true
	}
	if cfg.Screening.MinForeignNetLots < 0 {
		return ValidationError{"screening.min_foreign_net_lots", "must be >= 0"}
	}
	if cfg.Screening.MinTrustNetLots < 0 {
		return ValidationError{"screening.min_trust_net_lots", "must be >= 0"}
	}

	// === Ranking ===
	if cfg.Ranking.TopN <= 0 || cfg.Ranking.TopN > maxTopN {
		return ValidationError{"ranking.top_n", fmt.Sprintf("must be in [1, %d]", maxTopN)}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 00 (ETF) 미제외 경고
	excludesETF := false
	for _, prefix := range cfg.Screening.ExcludedPrefixes {
		if prefix == "00" {
			excludesETF = true
		}
	}
	if !excludesETF {
		warnings = append(warnings, Warning{
			Code:    "ETF_INCLUDED",
			Message: "ETFs (00xx) are ranked: index flows will crowd the leaderboard",
		})
	}

	// 문턱값이 너무 낮으면 거의 모든 종목 통과
	if cfg.Screening.MinForeignNetLots < 100 && cfg.Screening.MinTrustNetLots < 10 {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_SCREEN",
			Message: "screening thresholds pass most of the market",
		})
	}

	if cfg.Ranking.TopN > 0 && cfg.Ranking.TopN < minTopN {
		warnings = append(warnings, Warning{
			Code:    "SHORT_BOARD",
			Message: fmt.Sprintf("top_n < %d: the leaderboard shows only a handful of names", minTopN),
		})
	}

	return warnings
}
