package contracts

import "time"

// TechnicalSnapshot holds price-derived indicators for one security
type TechnicalSnapshot struct {
	Price       float64  `json:"price"`
	PrevClose   float64  `json:"prev_close"`
	ChangePct   float64  `json:"change_pct"` // (Price - PrevClose) / PrevClose * 100
	MA5         *float64 `json:"ma5"`        // nil under 5 sessions
	MA20        *float64 `json:"ma20"`       // nil under 20 sessions
	MA60        *float64 `json:"ma60"`       // nil under 60 sessions
	MA240       *float64 `json:"ma240"`      // nil under 240 sessions
	VolumeRatio float64  `json:"volume_ratio"`
	Volume      int64    `json:"volume"`
	Sessions    int      `json:"sessions"`
}

// AboveMA20 reports whether the price is above a known monthly average
func (t *TechnicalSnapshot) AboveMA20() bool {
	return t != nil && t.MA20 != nil && t.Price > *t.MA20
}

// HasMA240 reports whether the yearly average is available
func (t *TechnicalSnapshot) HasMA240() bool {
	return t != nil && t.MA240 != nil
}

// PriceBar is one daily OHLCV session
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
