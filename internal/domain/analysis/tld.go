package analysis

import "github.com/mehrguard/url-security/internal/config"

// tldRiskTable maps effective TLDs to static risk weights. Free or
// near-free registries with heavy abuse history score highest; mainstream
// TLDs are absent and default to zero. Multi-label suffixes are looked up
// in full ("co.uk"), so a risky country registry never taints its
// legitimate second-level zones.
var tldRiskTable = map[string]int{
	// Freenom legacy registries, historically dominant in phishing feeds
	"tk": 10,
	"ml": 10,
	"ga": 10,
	"cf": 10,
	"gq": 10,

	// Cheap generic TLDs with sustained abuse rates
	"xyz":      8,
	"top":      8,
	"icu":      8,
	"buzz":     8,
	"click":    8,
	"work":     7,
	"rest":     7,
	"loan":     8,
	"country":  7,
	"stream":   7,
	"download": 8,
	"racing":   7,
	"win":      7,
	"bid":      7,

	// Mildly elevated
	"online": 5,
	"site":   5,
	"club":   5,
	"info":   4,
	"pw":     6,
	"ws":     4,
	"zip":    6,
	"mov":    6,
}

// TLDScorer is a pure lookup of the static per-TLD risk weight
type TLDScorer struct {
	table  map[string]int
	budget int
}

// NewTLDScorer builds a scorer bounded by the configured TLD budget
func NewTLDScorer(weights config.WeightConfig) *TLDScorer {
	return &TLDScorer{table: tldRiskTable, budget: weights.TLDBudget}
}

// Score returns the risk weight for an effective TLD, 0 for unknown TLDs,
// capped at the TLD budget.
func (s *TLDScorer) Score(etld string) int {
	w := s.table[etld]
	if w > s.budget {
		w = s.budget
	}
	return w
}

// IsSuspicious reports whether the effective TLD carries any risk weight
func (s *TLDScorer) IsSuspicious(etld string) bool {
	return s.table[etld] > 0
}
