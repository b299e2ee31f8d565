package contracts

import "time"

// DataQualitySnapshot summarises how well the day's flow covers the directory
// ⭐ SSOT: S0 → S3 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	Date         time.Time          `json:"date"`
	TotalStocks  int                `json:"total_stocks"`  // directory size
	FlowStocks   int                `json:"flow_stocks"`   // flow entries (any code)
	ValidStocks  int                `json:"valid_stocks"`  // flow entries found in the directory
	Coverage     map[string]float64 `json:"coverage"`      // per market: valid / directory
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`
	Issues       []string           `json:"issues,omitempty"`
}

// CoverageRate returns the average coverage across markets
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if d == nil || len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
