package collector

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/internal/s0_data"
	"github.com/wonny/twstrategy/pkg/logger"
)

// FlowSource fetches one market's institutional flow for a trading date
type FlowSource interface {
	FetchInstitutionalFlow(ctx context.Context, date time.Time) ([]contracts.InstitutionalFlow, error)
}

// Collector merges the listed and OTC institutional-flow feeds
// ⭐ SSOT: 법인 수급 수집은 이 패키지에서만
type Collector struct {
	listed   FlowSource
	otc      FlowSource
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewCollector creates a new Collector instance. loc is the exchange time zone.
func NewCollector(listed, otc FlowSource, loc *time.Location, log *logger.Logger) *Collector {
	if loc == nil {
		loc = time.Local
	}
	return &Collector{
		listed:   listed,
		otc:      otc,
		location: loc,
		now:      time.Now,
		logger:   log.WithField("module", "collector"),
	}
}

// ReferenceDate returns the trading date whose data should be fetched now
func (c *Collector) ReferenceDate() time.Time {
	return s0_data.LastTradingDate(c.now().In(c.location))
}

// FetchLatest fetches the flow for the reference trading date
func (c *Collector) FetchLatest(ctx context.Context) *contracts.FlowSet {
	return c.Fetch(ctx, c.ReferenceDate())
}

// sourceResult is the contribution of one feed
type sourceResult struct {
	flows []contracts.InstitutionalFlow
	err   error
}

// Fetch fetches both feeds for a date and merges them, listed first.
// OTC entries never overwrite listed ones. A failing feed contributes nothing.
func (c *Collector) Fetch(ctx context.Context, date time.Time) *contracts.FlowSet {
	var wg sync.WaitGroup
	var listedRes, otcRes sourceResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		listedRes.flows, listedRes.err = c.listed.FetchInstitutionalFlow(ctx, date)
	}()
	go func() {
		defer wg.Done()
		otcRes.flows, otcRes.err = c.otc.FetchInstitutionalFlow(ctx, date)
	}()
	wg.Wait()

	set := contracts.NewFlowSet(date)
	listedCount := c.merge(set, contracts.MarketListed, listedRes)
	otcCount := c.merge(set, contracts.MarketOTC, otcRes)

	c.logger.WithFields(map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"listed": listedCount,
		"otc":    otcCount,
		"total":  set.Len(),
	}).Info("Institutional flow collected")

	return set
}

func (c *Collector) merge(set *contracts.FlowSet, market contracts.Market, res sourceResult) int {
	if res.err != nil {
		c.logger.WithError(res.err).WithField("market", market).Warn("Flow feed unavailable, skipping source")
		return 0
	}

	added := 0
	for _, flow := range res.flows {
		flow.Market = market
		if set.Add(flow) {
			added++
		} else {
			c.logger.WithFields(map[string]interface{}{
				"code":   flow.Code,
				"market": market,
			}).Debug("Duplicate code across feeds, keeping first")
		}
	}
	return added
}
