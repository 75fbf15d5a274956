package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the final classification of a scanned URL
type Verdict string

const (
	VerdictSafe       Verdict = "SAFE"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictMalicious  Verdict = "MALICIOUS"
	VerdictUnknown    Verdict = "UNKNOWN"
)

// VerdictForScore converts a risk score to a categorical verdict using the
// configured threshold boundaries
func VerdictForScore(score, safeMax, suspiciousMax int) Verdict {
	switch {
	case score <= safeMax:
		return VerdictSafe
	case score <= suspiciousMax:
		return VerdictSuspicious
	default:
		return VerdictMalicious
	}
}

// ParsedURL is a normalized, decomposed URL
//
// Host and all derived labels are lowercase. RegistrableDomain and
// EffectiveTLD follow the longest-suffix-match rule set (multi-label
// suffixes such as "co.uk" are supported).
type ParsedURL struct {
	Raw               string   `json:"raw"`
	Scheme            string   `json:"scheme"`
	Userinfo          string   `json:"userinfo,omitempty"`
	Host              string   `json:"host"`
	Port              string   `json:"port,omitempty"`
	Path              string   `json:"path"`
	Query             string   `json:"query,omitempty"`
	Fragment          string   `json:"fragment,omitempty"`
	RegistrableDomain string   `json:"registrable_domain"`
	EffectiveTLD      string   `json:"effective_tld"`
	Subdomains        []string `json:"subdomains,omitempty"`
	SubdomainDepth    int      `json:"subdomain_depth"`
	IsIPHost          bool     `json:"is_ip_host"`
}

// UnicodeRiskResult is the per-host Unicode/homograph analysis output
type UnicodeRiskResult struct {
	HasRisk        bool     `json:"has_risk"`
	RiskScore      int      `json:"risk_score"` // 0-100, capped
	IsPunycode     bool     `json:"is_punycode"`
	HasZeroWidth   bool     `json:"has_zero_width"`
	HasMixedScript bool     `json:"has_mixed_script"`
	HasConfusables bool     `json:"has_confusables"`
	Reasons        []string `json:"reasons,omitempty"`
	Skeleton       string   `json:"skeleton"`
	Display        string   `json:"display"`
}

// BrandMatch is a brand-impersonation candidate found in a host
//
// Absent (nil) when the host is the brand's own registrable domain.
type BrandMatch struct {
	Brand        string `json:"brand"`
	Distance     int    `json:"distance"` // edit distance, >= 0
	MatchedLabel string `json:"matched_label"`
	Substring    bool   `json:"substring"` // brand embedded in an unrelated domain
}

// AssessmentDetails carries the per-component subscores behind a verdict
type AssessmentDetails struct {
	HeuristicScore int    `json:"heuristic_score"`
	MLScore        int    `json:"ml_score"`
	TLDScore       int    `json:"tld_score"`
	BrandScore     int    `json:"brand_score"`
	BrandMatch     string `json:"brand_match,omitempty"`
	IntelStatus    string `json:"intel_status,omitempty"`
}

// RiskAssessment is the output of the scoring pipeline for a single URL
//
// Score is the clamp of the weighted sum of all component contributions.
// Flags are ordered by descending signal weight.
type RiskAssessment struct {
	InputURL      string            `json:"input_url"`
	NormalizedURL string            `json:"normalized_url"`
	Score         int               `json:"score"` // 0-100
	Verdict       Verdict           `json:"verdict"`
	Flags         []string          `json:"flags"`
	Confidence    float64           `json:"confidence"` // 0.0 to 1.0
	Details       AssessmentDetails `json:"details"`
	Hits          []SignalHit       `json:"hits,omitempty"`
}

// SignalHit is a single triggered detection signal
type SignalHit struct {
	Signal   Signal `json:"signal"`
	Weight   int    `json:"weight"`
	Evidence string `json:"evidence"` // human-readable explanation
}

// CounterfactualHint tells the user which change would reduce the risk
// score, and by exactly how much
type CounterfactualHint struct {
	Signal         Signal `json:"signal"`
	ScoreReduction int    `json:"score_reduction"`
	Explanation    string `json:"explanation"`
	CurrentValue   string `json:"current_value,omitempty"`
}

// ScanRecord wraps an assessment with identity and timing for persistence
//
// Persistence is a boundary concern and never feeds back into scoring.
type ScanRecord struct {
	ID         uuid.UUID      `json:"id"`
	URL        string         `json:"url"`
	Assessment RiskAssessment `json:"assessment"`
	ScannedAt  time.Time      `json:"scanned_at"`
}
