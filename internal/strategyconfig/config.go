package strategyconfig

import (
	"time"

	"github.com/wonny/twstrategy/internal/selection"
)

// Config는 수급 랭킹 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Screening Screening `yaml:"screening" json:"screening"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"` // 거래일/스케줄 기준 시간대, 비우면 MARKET_TIMEZONE
}

// Screening hard cuts applied before chip scoring (lots)
type Screening struct {
	ExcludedPrefixes  []string `yaml:"excluded_prefixes" json:"excluded_prefixes"` // 00 ETF, 28/58/60 금융
	MinForeignNetLots int64    `yaml:"min_foreign_net_lots" json:"min_foreign_net_lots"`
	MinTrustNetLots   int64    `yaml:"min_trust_net_lots" json:"min_trust_net_lots"`
}

// Ranking leaderboard shape
type Ranking struct {
	TopN int `yaml:"top_n" json:"top_n"`
}

// Default returns the built-in strategy
func Default() *Config {
	screener := selection.DefaultScreenerConfig()
	return &Config{
		Meta: Meta{
			StrategyID: "tw_chip_v1",
			Version:    "1",
			Timezone:   "Asia/Taipei",
		},
		Screening: Screening{
			ExcludedPrefixes:  screener.ExcludedPrefixes,
			MinForeignNetLots: screener.MinForeignNet,
			MinTrustNetLots:   screener.MinTrustNet,
		},
		Ranking: Ranking{
			TopN: selection.DefaultTopN,
		},
	}
}

// ScreenerConfig converts the screening section for the scanner
func (c *Config) ScreenerConfig() selection.ScreenerConfig {
	return selection.ScreenerConfig{
		ExcludedPrefixes: append([]string(nil), c.Screening.ExcludedPrefixes...),
		MinForeignNet:    c.Screening.MinForeignNetLots,
		MinTrustNet:      c.Screening.MinTrustNetLots,
	}
}

// Location returns the strategy time zone, or fallback when unset or unknown
func (c *Config) Location(fallback *time.Location) *time.Location {
	if c.Meta.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(c.Meta.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
