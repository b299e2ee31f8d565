package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowSet_AddDoesNotOverwrite(t *testing.T) {
	set := NewFlowSet(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))

	assert.True(t, set.Add(InstitutionalFlow{Code: "2330", ForeignNet: 100, Market: MarketListed}))
	assert.False(t, set.Add(InstitutionalFlow{Code: "2330", ForeignNet: -1, Market: MarketOTC}))

	flow, ok := set.Get("2330")
	require.True(t, ok)
	assert.Equal(t, int64(100), flow.ForeignNet)
	assert.Equal(t, MarketListed, flow.Market)
	assert.Equal(t, 1, set.Len())
}

func TestFlowSet_AbsentIsNotZero(t *testing.T) {
	set := NewFlowSet(time.Now())
	set.Add(InstitutionalFlow{Code: "1101", Market: MarketListed})

	zero, ok := set.Get("1101")
	assert.True(t, ok, "zero-flow entry is present")
	assert.Equal(t, int64(0), zero.TrustNet)
	assert.NotNil(t, set.Lookup("1101"))

	_, ok = set.Get("2330")
	assert.False(t, ok)
	assert.Nil(t, set.Lookup("2330"))
}

func TestFlowSet_InsertionOrder(t *testing.T) {
	set := NewFlowSet(time.Now())
	for _, code := range []string{"3008", "1101", "6488", "2330"} {
		set.Add(InstitutionalFlow{Code: code})
	}

	codes := make([]string, 0)
	for _, flow := range set.All() {
		codes = append(codes, flow.Code)
	}
	assert.Equal(t, []string{"3008", "1101", "6488", "2330"}, codes)
}

func TestFlowSet_CountByMarket(t *testing.T) {
	set := NewFlowSet(time.Now())
	set.Add(InstitutionalFlow{Code: "2330", Market: MarketListed})
	set.Add(InstitutionalFlow{Code: "2317", Market: MarketListed})
	set.Add(InstitutionalFlow{Code: "6488", Market: MarketOTC})

	counts := set.CountByMarket()
	assert.Equal(t, 2, counts[MarketListed])
	assert.Equal(t, 1, counts[MarketOTC])
}

func TestFlowSet_NilSafe(t *testing.T) {
	var set *FlowSet
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Lookup("2330"))
	assert.Empty(t, set.All())
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, BandStrongBullish},
		{80, BandStrongBullish},
		{79, BandNeutralBull},
		{60, BandNeutralBull},
		{59, BandChoppy},
		{40, BandChoppy},
		{39, BandWeak},
		{0, BandWeak},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Diagnose(tt.score).Band, "score %d", tt.score)
	}
}
