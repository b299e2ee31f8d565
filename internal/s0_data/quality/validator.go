package quality

import (
	"fmt"

	"github.com/wonny/twstrategy/internal/contracts"
)

// QualityGate checks a flow snapshot against the directory
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds (share of directory securities with flow)
type Config struct {
	MinListedCoverage float64 // 0.5
	MinOTCCoverage    float64 // 0.3
}

// DefaultConfig returns thresholds that only trip when a feed is missing or truncated
func DefaultConfig() Config {
	return Config{
		MinListedCoverage: 0.5,
		MinOTCCoverage:    0.3,
	}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check measures per-market coverage of the flow set
// ⭐ SSOT: 수급 데이터 품질 검증
func (g *QualityGate) Check(dir *contracts.Directory, flows *contracts.FlowSet) *contracts.DataQualitySnapshot {
	snapshot := &contracts.DataQualitySnapshot{
		TotalStocks: dir.Len(),
		FlowStocks:  flows.Len(),
		Coverage:    make(map[string]float64),
		Issues:      make([]string, 0),
	}
	if flows != nil {
		snapshot.Date = flows.Date
	}

	// 1. 디렉토리 / 수급 존재 여부
	if snapshot.TotalStocks == 0 {
		snapshot.Issues = append(snapshot.Issues, "security directory is empty")
	}
	if snapshot.FlowStocks == 0 {
		snapshot.Issues = append(snapshot.Issues, "no institutional flow")
	}

	// 2. 시장별 커버리지
	matched := make(map[contracts.Market]int)
	for _, flow := range flows.All() {
		if rec, ok := dir.Record(flow.Code); ok {
			matched[rec.Market]++
		}
	}

	directoryCounts := dir.CountByMarket()
	minimums := map[contracts.Market]float64{
		contracts.MarketListed: g.config.MinListedCoverage,
		contracts.MarketOTC:    g.config.MinOTCCoverage,
	}

	for _, market := range []contracts.Market{contracts.MarketListed, contracts.MarketOTC} {
		total := directoryCounts[market]
		if total == 0 {
			continue
		}

		coverage := float64(matched[market]) / float64(total)
		snapshot.Coverage[string(market)] = coverage
		snapshot.ValidStocks += matched[market]

		if snapshot.FlowStocks > 0 && coverage < minimums[market] {
			snapshot.Issues = append(snapshot.Issues,
				fmt.Sprintf("%s coverage %.2f below %.2f", market, coverage, minimums[market]))
		}
	}

	// 3. 품질 점수
	if snapshot.TotalStocks > 0 {
		snapshot.QualityScore = float64(snapshot.ValidStocks) / float64(snapshot.TotalStocks)
	}
	snapshot.Passed = len(snapshot.Issues) == 0

	return snapshot
}
