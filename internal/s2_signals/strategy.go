package s2_signals

import (
	"github.com/wonny/twstrategy/internal/contracts"
)

// BaseScore is the neutral starting point of every strategy score
const BaseScore = 60

// Badges
const (
	BadgeHeavyTrust   = "heavy trust-fund buying"
	BadgeLargeForeign = "large foreign position"
	BadgeFakeForeign  = "suspected fake-foreign"
	BadgeLongTermBull = "long-term bullish structure"
)

// Reasons
const (
	ReasonFakeForeign   = "foreign buying stalled with hedge unwinding"
	ReasonDivergence    = "foreign/domestic conflict"
	ReasonAboveMonthly  = "above monthly average"
	ReasonVolumeAndRise = "volume and price both rising"
	ReasonOverheated    = "overheated limit-up move"
)

// Score combines one day of institutional flow and a technical snapshot into a
// bounded strategy score. Either input may be nil (no data); nil is not the same
// as a zero-flow record. Inputs are never modified.
// ⭐ SSOT: 전략 점수 계산은 여기서만
func Score(flow *contracts.InstitutionalFlow, tech *contracts.TechnicalSnapshot) contracts.ScoreResult {
	card := newScoreCard()

	if flow != nil {
		scoreChips(card, flow, tech)
	}
	if tech != nil {
		scoreTechnical(card, tech)
	}

	return card.result()
}

// scoreChips is the institutional component
func scoreChips(card *scoreCard, flow *contracts.InstitutionalFlow, tech *contracts.TechnicalSnapshot) {
	f := flow.ForeignNet
	t := flow.TrustNet

	// 投信
	if t > 0 {
		card.add(int(min(15, t/50)))
		if t > 500 {
			card.badge(BadgeHeavyTrust)
		}
	} else if t < 0 {
		card.add(-5)
	}

	// 外資
	if f > 0 {
		card.add(int(min(10, f/200)))
		if f > 2000 {
			card.badge(BadgeLargeForeign)
		}
	} else if f < -1000 {
		card.add(-5)
	}

	// 假外資 / 隔日沖: heavy foreign buying, flat price, hedge book unwinding
	if f > 1000 && tech != nil && tech.ChangePct < 1.0 && flow.DealerHedgeNet < -200 {
		card.add(-20)
		card.badge(BadgeFakeForeign)
		card.reason(ReasonFakeForeign)
	}

	// 土洋對作
	if f > 500 && t < -100 {
		card.add(-5)
		card.reason(ReasonDivergence)
	}
}

// scoreTechnical is the technical component
func scoreTechnical(card *scoreCard, tech *contracts.TechnicalSnapshot) {
	// MA20 absent counts as not above it
	if tech.AboveMA20() {
		card.add(10)
		card.reason(ReasonAboveMonthly)
	} else {
		card.add(-5)
	}

	if tech.MA240 != nil && tech.Price > *tech.MA240 {
		card.add(5)
		card.badge(BadgeLongTermBull)
	}

	if tech.VolumeRatio > 1.5 && tech.ChangePct > 0 {
		card.add(5)
		card.reason(ReasonVolumeAndRise)
	}

	if tech.ChangePct > 9.0 {
		card.add(-5)
		card.reason(ReasonOverheated)
	}
}

// scoreCard accumulates points, a badge set and an ordered reason list
type scoreCard struct {
	score   int
	badges  []string
	seen    map[string]bool
	reasons []string
}

func newScoreCard() *scoreCard {
	return &scoreCard{
		score:   BaseScore,
		badges:  make([]string, 0),
		seen:    make(map[string]bool),
		reasons: make([]string, 0),
	}
}

func (c *scoreCard) add(points int) {
	c.score += points
}

func (c *scoreCard) badge(b string) {
	if c.seen[b] {
		return
	}
	c.seen[b] = true
	c.badges = append(c.badges, b)
}

func (c *scoreCard) reason(r string) {
	c.reasons = append(c.reasons, r)
}

func (c *scoreCard) result() contracts.ScoreResult {
	return contracts.ScoreResult{
		Score:   ClampScore(c.score),
		Badges:  c.badges,
		Reasons: c.reasons,
	}
}

// ClampScore bounds a score to [0, 100]
func ClampScore(score int) int {
	return max(0, min(100, score))
}
