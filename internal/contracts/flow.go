package contracts

import "time"

// InstitutionalFlow is one trading day of net institutional volume for a security.
// All values are in lots (raw shares / 1000, truncated toward zero).
type InstitutionalFlow struct {
	Code           string `json:"code"`
	ForeignNet     int64  `json:"foreign_net"`      // 外資
	TrustNet       int64  `json:"trust_net"`        // 投信
	DealerHedgeNet int64  `json:"dealer_hedge_net"` // 自營商(避險)
	Market         Market `json:"market"`
}

// FlowSet is the per-day flow mapping keyed by code, preserving insertion order.
// A missing code means "no institutional data today", which is not the same as a zero entry.
// ⭐ SSOT: S0 → S2/S3 수급 데이터 전달
type FlowSet struct {
	Date  time.Time
	order []string
	flows map[string]InstitutionalFlow
}

// NewFlowSet creates an empty set for a trading date
func NewFlowSet(date time.Time) *FlowSet {
	return &FlowSet{
		Date:  date,
		order: make([]string, 0),
		flows: make(map[string]InstitutionalFlow),
	}
}

// Add inserts a flow. An existing code is never overwritten; returns false in that case.
func (s *FlowSet) Add(flow InstitutionalFlow) bool {
	if _, exists := s.flows[flow.Code]; exists {
		return false
	}
	s.flows[flow.Code] = flow
	s.order = append(s.order, flow.Code)
	return true
}

// Get returns the flow for a code and whether it exists
func (s *FlowSet) Get(code string) (InstitutionalFlow, bool) {
	if s == nil {
		return InstitutionalFlow{}, false
	}
	flow, ok := s.flows[code]
	return flow, ok
}

// Lookup returns a pointer to a copy of the flow, nil when absent
func (s *FlowSet) Lookup(code string) *InstitutionalFlow {
	flow, ok := s.Get(code)
	if !ok {
		return nil
	}
	return &flow
}

// Len returns the number of securities with flow data
func (s *FlowSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the flows in insertion order
func (s *FlowSet) All() []InstitutionalFlow {
	if s == nil {
		return []InstitutionalFlow{}
	}
	all := make([]InstitutionalFlow, 0, len(s.order))
	for _, code := range s.order {
		all = append(all, s.flows[code])
	}
	return all
}

// CountByMarket returns how many entries each market contributed
func (s *FlowSet) CountByMarket() map[Market]int {
	counts := make(map[Market]int)
	for _, flow := range s.All() {
		counts[flow.Market]++
	}
	return counts
}
