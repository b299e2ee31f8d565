package commands

import (
	"fmt"
	"time"

	"github.com/wonny/twstrategy/internal/brain"
	"github.com/wonny/twstrategy/internal/external/tpex"
	"github.com/wonny/twstrategy/internal/external/twse"
	"github.com/wonny/twstrategy/internal/external/yahoo"
	"github.com/wonny/twstrategy/internal/s0_data/collector"
	"github.com/wonny/twstrategy/internal/s0_data/directory"
	"github.com/wonny/twstrategy/internal/s2_signals"
	"github.com/wonny/twstrategy/internal/selection"
	"github.com/wonny/twstrategy/internal/strategyconfig"
	"github.com/wonny/twstrategy/pkg/config"
	"github.com/wonny/twstrategy/pkg/httputil"
	"github.com/wonny/twstrategy/pkg/logger"
)

// app holds the wired components shared by the commands
type app struct {
	strategy     *strategyconfig.Config
	location     *time.Location // exchange time zone (strategy meta.timezone, else MARKET_TIMEZONE)
	directory    *directory.Builder
	collector    *collector.Collector
	technical    *s2_signals.TechnicalProvider
	scanner      *selection.Scanner
	orchestrator *brain.Orchestrator
}

// newApp wires feed clients, builders and the orchestrator
func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	// 0. Strategy (file overrides SCAN_TOP_N)
	strategy, err := loadStrategy(cfg, log)
	if err != nil {
		return nil, err
	}

	location := strategy.Location(cfg.Location())

	// 1. Outbound HTTP (browser UA, retry, rate limit)
	httpClient := httputil.New(cfg, log)

	// 2. Feed clients
	twseClient := twse.NewClient(httpClient, log, cfg.TWSE.BaseURL, cfg.TWSE.ISINBaseURL)
	tpexClient := tpex.NewClient(httpClient, log, cfg.TPEx.BaseURL)
	yahooClient := yahoo.NewClient(httpClient, log, cfg.Yahoo.BaseURL, cfg.Yahoo.Range)

	// 3. Stage components
	dirBuilder := directory.NewBuilder(twseClient, log)
	col := collector.NewCollector(twseClient, tpexClient, location, log)
	technical := s2_signals.NewTechnicalProvider(yahooClient, log)
	scanner := selection.NewScanner(
		selection.NewScreener(strategy.ScreenerConfig(), log),
		strategy.Ranking.TopN,
		log,
	)

	// 4. Orchestrator (owns the snapshot caches)
	orchestrator := brain.NewOrchestrator(
		brain.Config{
			DirectoryTTL: cfg.Snapshot.DirectoryTTL,
			FlowTTL:      cfg.Snapshot.FlowTTL,
		},
		dirBuilder, col, technical, scanner, log,
	)

	return &app{
		strategy:     strategy,
		location:     location,
		directory:    dirBuilder,
		collector:    col,
		technical:    technical,
		scanner:      scanner,
		orchestrator: orchestrator,
	}, nil
}

// loadStrategy reads STRATEGY_CONFIG when set, else the built-in strategy sized by SCAN_TOP_N
func loadStrategy(cfg *config.Config, log *logger.Logger) (*strategyconfig.Config, error) {
	strategy := strategyconfig.Default()
	strategy.Ranking.TopN = cfg.Snapshot.ScanTopN

	if cfg.StrategyFile != "" {
		loaded, _, err := strategyconfig.Load(cfg.StrategyFile)
		if err != nil {
			return nil, fmt.Errorf("load strategy %s: %w", cfg.StrategyFile, err)
		}
		strategy = loaded
	}

	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("invalid strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy config warning")
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"hash":        hash[:12],
		"top_n":       strategy.Ranking.TopN,
		"timezone":    strategy.Meta.Timezone,
	}).Debug("Strategy loaded")

	return strategy, nil
}
