package contracts

// ScoreResult is the output of the strategy scoring engine
type ScoreResult struct {
	Score   int      `json:"score"`   // 0 ~ 100
	Badges  []string `json:"badges"`  // discovery order, no duplicates
	Reasons []string `json:"reasons"` // evaluation order
}

// HasBadge reports whether a badge was awarded
func (r ScoreResult) HasBadge(badge string) bool {
	for _, b := range r.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// Diagnosis is the qualitative band shown next to a score
type Diagnosis struct {
	Band    string `json:"band"`
	Label   string `json:"label"`
	Summary string `json:"summary"`
}

// Diagnosis bands
const (
	BandStrongBullish = "strong_bullish"
	BandNeutralBull   = "neutral_bullish"
	BandChoppy        = "choppy"
	BandWeak          = "weak"
)

// Diagnose maps a score to its band
func Diagnose(score int) Diagnosis {
	switch {
	case score >= 80:
		return Diagnosis{Band: BandStrongBullish, Label: "strong bullish", Summary: "chips and technicals strengthening together"}
	case score >= 60:
		return Diagnosis{Band: BandNeutralBull, Label: "neutral-to-bullish", Summary: "steady, keep watching"}
	case score < 40:
		return Diagnosis{Band: BandWeak, Label: "weak — caution", Summary: "avoid or reduce exposure"}
	default:
		return Diagnosis{Band: BandChoppy, Label: "choppy/consolidating", Summary: "bulls and bears in a tug-of-war"}
	}
}
