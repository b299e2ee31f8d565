package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/twstrategy/internal/selection"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/tw_chip_v1.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	// 파일과 기본값이 같아야 함
	assert.Equal(t, Default(), cfg)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(Default())
	assert.Equal(t, hash, hash2)
}

func TestDefaultMatchesScreener(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Empty(t, Warn(cfg))

	assert.Equal(t, selection.DefaultScreenerConfig(), cfg.ScreenerConfig())
	assert.Equal(t, selection.DefaultTopN, cfg.Ranking.TopN)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  strategy_id: tw_chip_v1
ranking:
  top_n: 30
  topn: 10
`))
	assert.Error(t, err, "typos must fail")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad id", func(c *Config) { c.Meta.StrategyID = "Chip V1" }, "meta.strategy_id"},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Olympus" }, "meta.timezone"},
		{"non-digit prefix", func(c *Config) { c.Screening.ExcludedPrefixes = []string{"ETF"} }, "screening.excluded_prefixes[0]"},
		{"duplicate prefix", func(c *Config) { c.Screening.ExcludedPrefixes = []string{"00", "00"} }, "screening.excluded_prefixes[1]"},
		{"negative foreign", func(c *Config) { c.Screening.MinForeignNetLots = -1 }, "screening.min_foreign_net_lots"},
		{"negative trust", func(c *Config) { c.Screening.MinTrustNetLots = -1 }, "screening.min_trust_net_lots"},
		{"zero top n", func(c *Config) { c.Ranking.TopN = 0 }, "ranking.top_n"},
		{"huge top n", func(c *Config) { c.Ranking.TopN = 500 }, "ranking.top_n"},
		{"board longer than default", func(c *Config) { c.Ranking.TopN = selection.DefaultTopN + 1 }, "ranking.top_n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Screening.ExcludedPrefixes = []string{"28"}
	cfg.Screening.MinForeignNetLots = 0
	cfg.Screening.MinTrustNetLots = 0
	cfg.Ranking.TopN = 5

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"ETF_INCLUDED", "LOOSE_SCREEN", "SHORT_BOARD"}, codes)

	assert.Empty(t, Warn(Default()))
}

func TestValidate_TopNBounds(t *testing.T) {
	cfg := Default()

	cfg.Ranking.TopN = 1
	assert.NoError(t, Validate(cfg))

	cfg.Ranking.TopN = selection.DefaultTopN
	assert.NoError(t, Validate(cfg))
}

func TestLocation(t *testing.T) {
	fallback := time.FixedZone("CST", 8*60*60)

	cfg := Default()
	assert.Equal(t, "Asia/Taipei", cfg.Location(fallback).String())

	cfg.Meta.Timezone = ""
	assert.Same(t, fallback, cfg.Location(fallback))

	cfg.Meta.Timezone = "Mars/Olympus"
	assert.Same(t, fallback, cfg.Location(fallback))

	cfg.Meta.Timezone = "Asia/Tokyo"
	assert.Equal(t, "Asia/Tokyo", cfg.Location(fallback).String())
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  strategy_id: tw_chip_v1\nranking:\n  top_n: 0\n"), 0o600))

	_, data, err := Load(path)
	assert.Error(t, err)
	assert.NotEmpty(t, data, "raw bytes are returned for diagnostics")
}
