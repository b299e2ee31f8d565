package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/twstrategy/internal/cache"
	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/internal/s0_data/quality"
	"github.com/wonny/twstrategy/internal/s2_signals"
	"github.com/wonny/twstrategy/internal/selection"
	"github.com/wonny/twstrategy/pkg/logger"
)

// User-facing messages
const (
	MessageNoQuote   = "no real-time quote available"
	MessageNoFlow    = "no institutional data today"
	MessageNoRanking = "no qualifying securities today"
)

const (
	directoryKey = "directory"
	flowKey      = "flows"
)

// ErrUnknownSecurity is returned when a query resolves to no security
var ErrUnknownSecurity = errors.New("unknown security")

// errEmptySnapshot keeps an empty feed result out of the cache so the next call retries
var errEmptySnapshot = errors.New("empty snapshot")

// DirectorySource builds the security directory
type DirectorySource interface {
	Build(ctx context.Context) *contracts.Directory
}

// FlowSource fetches the institutional flow of the current reference trading date
type FlowSource interface {
	FetchLatest(ctx context.Context) *contracts.FlowSet
}

// TechnicalSource fetches a technical snapshot; ok is false when none is available
type TechnicalSource interface {
	Fetch(ctx context.Context, code string, market contracts.Market) (*contracts.TechnicalSnapshot, bool)
}

// Orchestrator coordinates directory, flow, technicals, scoring and ranking
// ⭐ SSOT: 조회/랭킹 조율은 여기서만
type Orchestrator struct {
	directory DirectorySource
	flows     FlowSource
	technical TechnicalSource
	scanner   *selection.Scanner
	gate      *quality.QualityGate

	directoryCache *cache.TTLCache[*contracts.Directory]
	flowCache      *cache.TTLCache[*contracts.FlowSet]

	mu          sync.RWMutex
	leaderboard *RankingView
	subscribers map[int]func(RankingView)
	nextSubID   int

	now    func() time.Time
	logger *logger.Logger
}

// Config holds the cache windows and the flow coverage gate
type Config struct {
	DirectoryTTL time.Duration
	FlowTTL      time.Duration
	Quality      quality.Config // zero value uses quality.DefaultConfig
	Clock        func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	cfg Config,
	directory DirectorySource,
	flows FlowSource,
	technical TechnicalSource,
	scanner *selection.Scanner,
	log *logger.Logger,
) *Orchestrator {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	gateConfig := cfg.Quality
	if gateConfig == (quality.Config{}) {
		gateConfig = quality.DefaultConfig()
	}

	return &Orchestrator{
		directory:      directory,
		flows:          flows,
		technical:      technical,
		scanner:        scanner,
		gate:           quality.NewQualityGate(gateConfig),
		directoryCache: cache.New[*contracts.Directory]("directory", cfg.DirectoryTTL, log, cache.WithClock(now)),
		flowCache:      cache.New[*contracts.FlowSet]("flows", cfg.FlowTTL, log, cache.WithClock(now)),
		subscribers:    make(map[int]func(RankingView)),
		now:            now,
		logger:         log.WithField("module", "orchestrator"),
	}
}

// Directory returns the cached security directory, building it when stale
func (o *Orchestrator) Directory(ctx context.Context) *contracts.Directory {
	dir, err := o.directoryCache.GetOrLoad(ctx, directoryKey, func(ctx context.Context) (*contracts.Directory, error) {
		dir := o.directory.Build(ctx)
		if dir.Len() == 0 {
			return nil, errEmptySnapshot
		}
		return dir, nil
	})
	if err != nil {
		o.logger.WithError(err).Warn("Security directory unavailable")
		return contracts.NewDirectory()
	}
	return dir
}

// Flows returns the cached institutional flow, collecting it when stale.
// An empty collection is returned as is but not cached.
func (o *Orchestrator) Flows(ctx context.Context) *contracts.FlowSet {
	var loaded *contracts.FlowSet
	set, err := o.flowCache.GetOrLoad(ctx, flowKey, func(ctx context.Context) (*contracts.FlowSet, error) {
		loaded = o.flows.FetchLatest(ctx)
		if loaded.Len() == 0 {
			return nil, errEmptySnapshot
		}
		return loaded, nil
	})
	if err != nil {
		o.logger.WithError(err).Warn("Institutional flow unavailable")
		if loaded != nil {
			return loaded
		}
		return contracts.NewFlowSet(time.Time{})
	}
	return set
}

// Search returns directory entries matching a code or name fragment
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) []contracts.SecurityRecord {
	return o.Directory(ctx).Search(query, limit)
}

// Stock builds the single-security view for a code or name
func (o *Orchestrator) Stock(ctx context.Context, query string) (*StockView, error) {
	dir := o.Directory(ctx)

	record, ok := resolve(dir, query)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSecurity, query)
	}

	flows := o.Flows(ctx)
	flow := flows.Lookup(record.Code)

	// Market: flow record first, then directory, then listed
	market := contracts.MarketListed
	switch {
	case flow != nil && flow.Market != "":
		market = flow.Market
	case record.Market != "":
		market = record.Market
	}

	tech, hasTech := o.technical.Fetch(ctx, record.Code, market)
	if !hasTech {
		tech = nil
	}

	result := s2_signals.Score(flow, tech)

	view := &StockView{
		Code:        record.Code,
		Name:        record.Name,
		Market:      market,
		MarketLabel: market.Label(),
		TradeDate:   formatDate(flows.Date),
		Flow:        flow,
		Technical:   tech,
		Score:       result,
		Diagnosis:   contracts.Diagnose(result.Score),
		Messages:    make([]string, 0, 2),
	}
	if tech == nil {
		view.Messages = append(view.Messages, MessageNoQuote)
	}
	if flow == nil {
		view.Messages = append(view.Messages, MessageNoFlow)
	}

	o.logger.WithFields(map[string]interface{}{
		"code":   view.Code,
		"market": market,
		"score":  result.Score,
		"flow":   flow != nil,
		"tech":   tech != nil,
	}).Info("Scored security")

	return view, nil
}

// Ranking returns the chip-only leaderboard. rescan drops the cached flow first.
func (o *Orchestrator) Ranking(ctx context.Context, rescan bool) *RankingView {
	if rescan {
		o.flowCache.Invalidate(flowKey)
		return o.publish(o.scan(ctx))
	}

	o.mu.RLock()
	current := o.leaderboard
	o.mu.RUnlock()

	if current != nil {
		if _, fresh := o.flowCache.Get(flowKey); fresh {
			return current
		}
	}

	return o.publish(o.scan(ctx))
}

// Leaderboard returns the last published leaderboard, nil before the first scan
func (o *Orchestrator) Leaderboard() *RankingView {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.leaderboard
}

// Refresh drops both snapshots, reloads them and publishes the new leaderboard
func (o *Orchestrator) Refresh(ctx context.Context) (*RankingView, error) {
	o.directoryCache.Invalidate(directoryKey)
	o.flowCache.Invalidate(flowKey)

	view := o.publish(o.scan(ctx))

	if err := ctx.Err(); err != nil {
		return view, fmt.Errorf("refresh interrupted: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"trade_date": view.TradeDate,
		"entries":    len(view.Entries),
		"coverage":   view.Quality.CoverageRate(),
	}).Info("Snapshot refreshed")

	return view, nil
}

// Subscribe registers fn for every published leaderboard. The returned func unregisters it.
func (o *Orchestrator) Subscribe(fn func(RankingView)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subscribers, id)
	}
}

// CleanStale drops expired snapshots from both caches
func (o *Orchestrator) CleanStale() int {
	return o.directoryCache.CleanStale() + o.flowCache.CleanStale()
}

// CacheStats returns statistics for both snapshot caches
func (o *Orchestrator) CacheStats() []cache.Stats {
	return []cache.Stats{o.directoryCache.Stats(), o.flowCache.Stats()}
}

func (o *Orchestrator) scan(ctx context.Context) *RankingView {
	flows := o.Flows(ctx)
	dir := o.Directory(ctx)

	entries := o.scanner.Scan(flows, dir)

	view := &RankingView{
		TradeDate:   formatDate(flows.Date),
		GeneratedAt: o.now(),
		Scanned:     flows.Len(),
		Entries:     entries,
		Quality:     o.gate.Check(dir, flows),
	}
	if len(entries) == 0 {
		view.Message = MessageNoRanking
	}
	if !view.Quality.Passed {
		o.logger.WithFields(map[string]interface{}{
			"trade_date": view.TradeDate,
			"issues":     view.Quality.Issues,
		}).Warn("Flow snapshot failed quality gate")
	}
	return view
}

func (o *Orchestrator) publish(view *RankingView) *RankingView {
	o.mu.Lock()
	o.leaderboard = view
	listeners := make([]func(RankingView), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(*view)
	}
	return view
}

// resolve maps a query to a record. A bare 4-digit code missing from the
// directory is still accepted so a failed directory build does not block lookups.
func resolve(dir *contracts.Directory, query string) (contracts.SecurityRecord, bool) {
	if record, ok := dir.Lookup(query); ok {
		return record, true
	}

	code := strings.TrimSpace(query)
	if len(code) != 4 {
		return contracts.SecurityRecord{}, false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return contracts.SecurityRecord{}, false
		}
	}
	return contracts.SecurityRecord{Code: code, Name: code}, true
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}
