package selection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

func newTestScanner(topN int) *Scanner {
	log := logger.Nop()
	return NewScanner(NewScreener(DefaultScreenerConfig(), log), topN, log)
}

func flowSet(flows ...contracts.InstitutionalFlow) *contracts.FlowSet {
	set := contracts.NewFlowSet(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	for _, f := range flows {
		set.Add(f)
	}
	return set
}

func TestScreener_Excluded(t *testing.T) {
	screener := NewScreener(DefaultScreenerConfig(), logger.Nop())

	for _, code := range []string{"0050", "2801", "5880", "6005"} {
		assert.True(t, screener.Excluded(code), code)
	}
	for _, code := range []string{"2330", "2603", "6488", "1101"} {
		assert.False(t, screener.Excluded(code), code)
	}
}

func TestScreener_Pass(t *testing.T) {
	screener := NewScreener(DefaultScreenerConfig(), logger.Nop())

	tests := []struct {
		name string
		flow contracts.InstitutionalFlow
		want bool
	}{
		{"foreign at threshold", contracts.InstitutionalFlow{Code: "2330", ForeignNet: 500}, true},
		{"trust at threshold", contracts.InstitutionalFlow{Code: "2330", TrustNet: 100}, true},
		{"below both", contracts.InstitutionalFlow{Code: "2330", ForeignNet: 499, TrustNet: 99}, false},
		{"excluded despite flow", contracts.InstitutionalFlow{Code: "0050", ForeignNet: 9000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, screener.Pass(tt.flow))
		})
	}
}

func TestChipScore(t *testing.T) {
	tests := []struct {
		name        string
		flow        contracts.InstitutionalFlow
		wantScore   int
		wantFlagged bool
	}{
		{"foreign only", contracts.InstitutionalFlow{ForeignNet: 600}, 60, false},
		{"trust buying", contracts.InstitutionalFlow{TrustNet: 150}, 80, false},
		{"heavy foreign", contracts.InstitutionalFlow{ForeignNet: 1500}, 70, false},
		{"both", contracts.InstitutionalFlow{ForeignNet: 1500, TrustNet: 1}, 90, false},
		{"fake foreign", contracts.InstitutionalFlow{ForeignNet: 1500, DealerHedgeNet: -301}, 55, true},
		{"hedge at boundary", contracts.InstitutionalFlow{ForeignNet: 1500, DealerHedgeNet: -300}, 70, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, flagged := ChipScore(tt.flow)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantFlagged, flagged)
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	dir := contracts.NewDirectory()
	dir.Add(contracts.SecurityRecord{Code: "2330", Name: "台積電", Market: contracts.MarketListed})
	dir.Add(contracts.SecurityRecord{Code: "2603", Name: "長榮", Market: contracts.MarketListed})
	dir.Add(contracts.SecurityRecord{Code: "6488", Name: "環球晶", Market: contracts.MarketOTC})

	flows := flowSet(
		contracts.InstitutionalFlow{Code: "0050", ForeignNet: 9000, TrustNet: 900},
		contracts.InstitutionalFlow{Code: "2330", ForeignNet: 600},
		contracts.InstitutionalFlow{Code: "2603", ForeignNet: 1500, DealerHedgeNet: -400},
		contracts.InstitutionalFlow{Code: "6488", ForeignNet: 1200, TrustNet: 300, Market: contracts.MarketOTC},
		contracts.InstitutionalFlow{Code: "3008", TrustNet: 150},
		contracts.InstitutionalFlow{Code: "1101", ForeignNet: 10, TrustNet: 10},
	)

	ranked := newTestScanner(30).Scan(flows, dir)
	require.Len(t, ranked, 4)

	assert.Equal(t, "6488", ranked[0].Code)
	assert.Equal(t, 90, ranked[0].Score)
	assert.Equal(t, "環球晶", ranked[0].Name)

	assert.Equal(t, "3008", ranked[1].Code)
	assert.Equal(t, "3008", ranked[1].Name, "name falls back to code")

	assert.Equal(t, "2330", ranked[2].Code)
	assert.Equal(t, 60, ranked[2].Score)

	assert.Equal(t, "2603", ranked[3].Code)
	assert.Equal(t, 55, ranked[3].Score)
	assert.Equal(t, "長榮"+WarningMarker, ranked[3].Name)
	assert.True(t, ranked[3].Flagged)
	assert.Equal(t, int64(-400), ranked[3].DealerHedgeNet)

	for i, entry := range ranked {
		assert.Equal(t, i+1, entry.Rank)
		assert.NotEqual(t, "0050", entry.Code)
	}
}

func TestScanner_StableOrderAndTopN(t *testing.T) {
	flows := contracts.NewFlowSet(time.Now())
	for i := 0; i < 40; i++ {
		flows.Add(contracts.InstitutionalFlow{Code: fmt.Sprintf("%d", 3000+i), ForeignNet: 600})
	}
	// Higher score appended last still leads
	flows.Add(contracts.InstitutionalFlow{Code: "4999", TrustNet: 500})

	ranked := newTestScanner(30).Scan(flows, contracts.NewDirectory())
	require.Len(t, ranked, 30)

	assert.Equal(t, "4999", ranked[0].Code)
	for i := 1; i < len(ranked); i++ {
		assert.Equal(t, fmt.Sprintf("%d", 3000+i-1), ranked[i].Code, "ties keep input order")
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	assert.Equal(t, 30, ranked[29].Rank)
}

func TestScanner_Empty(t *testing.T) {
	scanner := newTestScanner(0)
	assert.Equal(t, DefaultTopN, scanner.TopN())

	ranked := scanner.Scan(contracts.NewFlowSet(time.Now()), nil)
	assert.Empty(t, ranked)

	ranked = scanner.Scan(nil, nil)
	assert.Empty(t, ranked)
}
