package s2_signals

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

// Moving-average windows in sessions
const (
	WindowWeek    = 5
	WindowMonth   = 20
	WindowQuarter = 60
	WindowYear    = 240

	// volumeLookback is the number of sessions averaged for the volume ratio
	volumeLookback = 5
)

// HistorySource fetches daily bars for a security, oldest first
type HistorySource interface {
	FetchHistory(ctx context.Context, code string, market contracts.Market) ([]contracts.PriceBar, error)
}

// TechnicalProvider builds technical snapshots from price history
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalProvider struct {
	source HistorySource
	logger *logger.Logger
}

// NewTechnicalProvider creates a new technical provider
func NewTechnicalProvider(source HistorySource, log *logger.Logger) *TechnicalProvider {
	return &TechnicalProvider{
		source: source,
		logger: log.WithField("module", "technical"),
	}
}

// Fetch returns the snapshot for a security; ok is false when no usable history exists.
// Fetch failures are logged, never returned.
func (p *TechnicalProvider) Fetch(ctx context.Context, code string, market contracts.Market) (*contracts.TechnicalSnapshot, bool) {
	bars, err := p.source.FetchHistory(ctx, code, market)
	if err != nil {
		p.logger.WithError(err).WithFields(map[string]interface{}{
			"code":   code,
			"market": market,
		}).Warn("Price history unavailable")
		return nil, false
	}

	snapshot, ok := DeriveSnapshot(bars)
	if !ok {
		p.logger.WithFields(map[string]interface{}{
			"code":     code,
			"sessions": len(bars),
		}).Warn("Not enough history for a snapshot")
		return nil, false
	}

	p.logger.WithFields(map[string]interface{}{
		"code":         code,
		"price":        snapshot.Price,
		"change_pct":   snapshot.ChangePct,
		"sessions":     snapshot.Sessions,
		"above_ma20":   snapshot.AboveMA20(),
		"volume_ratio": snapshot.VolumeRatio,
	}).Debug("Calculated technical snapshot")

	return snapshot, true
}

// DeriveSnapshot computes the indicators from bars ordered oldest first.
// Two sessions are required for a previous close.
func DeriveSnapshot(bars []contracts.PriceBar) (*contracts.TechnicalSnapshot, bool) {
	n := len(bars)
	if n < 2 {
		return nil, false
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = float64(bar.Volume)
	}

	price := closes[n-1]
	prevClose := closes[n-2]

	snapshot := &contracts.TechnicalSnapshot{
		Price:       price,
		PrevClose:   prevClose,
		ChangePct:   changePct(price, prevClose),
		MA5:         trailingMean(closes, WindowWeek),
		MA20:        trailingMean(closes, WindowMonth),
		MA60:        trailingMean(closes, WindowQuarter),
		MA240:       trailingMean(closes, WindowYear),
		VolumeRatio: volumeRatio(volumes),
		Volume:      bars[n-1].Volume,
		Sessions:    n,
	}

	return snapshot, true
}

func changePct(price, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}
	return (price - prevClose) / prevClose * 100
}

// trailingMean is the simple moving average of the last window values,
// nil when the series is shorter than the window.
func trailingMean(values []float64, window int) *float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	mean := stat.Mean(values[len(values)-window:], nil)
	return &mean
}

// volumeRatio is the latest volume over the mean of the sessions right before it
func volumeRatio(volumes []float64) float64 {
	n := len(volumes)
	if n < volumeLookback+1 {
		return 0
	}

	avg := stat.Mean(volumes[n-1-volumeLookback:n-1], nil)
	if avg <= 0 {
		return 0
	}
	return volumes[n-1] / avg
}
