package config

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/mehrguard/url-security/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// RiskConfig is one versioned, immutable calibration of the scoring
	// pipeline. Construct via NewRiskConfig or ForVersion; never mutate an
	// instance after construction. Swapping calibrations means building a
	// new analyzer around a new RiskConfig.
	RiskConfig struct {
		Version    string          `json:"version"`
		Weights    WeightConfig    `json:"weights"`
		Thresholds ThresholdConfig `json:"thresholds"`
		Features   FeatureConfig   `json:"features"`
		Model      ModelConfig     `json:"model"`
	}

	// WeightConfig holds per-signal weights and the point-budget split
	// across the scoring components. The budget split is a tuned constant
	// set, preserved per version and pinned by regression tests.
	WeightConfig struct {
		// Component budgets out of the 100-point total
		HeuristicBudget int `json:"heuristic_budget"`
		EnsembleBudget  int `json:"ensemble_budget"`
		TLDBudget       int `json:"tld_budget"`
		BrandBudget     int `json:"brand_budget"`

		// Heuristic check weights
		InsecureProtocol    int `json:"insecure_protocol"`
		IPHost              int `json:"ip_host"`
		Shortener           int `json:"shortener"`
		ExcessiveSubdomains int `json:"excessive_subdomains"`
		NonstandardPort     int `json:"nonstandard_port"`
		LongURL             int `json:"long_url"`
		HighEntropyHost     int `json:"high_entropy_host"`
		RiskyExtension      int `json:"risky_extension"`
		DoubleExtension     int `json:"double_extension"`
		KeywordPerHit       int `json:"keyword_per_hit"`
		KeywordCap          int `json:"keyword_cap"`
		CredentialParams    int `json:"credential_params"`
		EncodedPayload      int `json:"encoded_payload"`
		ExcessiveEncoding   int `json:"excessive_encoding"`
		AtSymbol            int `json:"at_symbol"`
		MultipleTLD         int `json:"multiple_tld"`
		PunycodeHost        int `json:"punycode_host"`
		NumericSubdomain    int `json:"numeric_subdomain"`
		DangerousScheme     int `json:"dangerous_scheme"`
		FragmentHiding      int `json:"fragment_hiding"`
		ZeroWidth           int `json:"zero_width"`
		MixedScript         int `json:"mixed_script"`
		Confusables         int `json:"confusables"`
		IPObfuscation       int `json:"ip_obfuscation"`

		// Unicode analyzer category weights (0-100 internal scale)
		UnicodePunycode    int `json:"unicode_punycode"`
		UnicodeZeroWidth   int `json:"unicode_zero_width"`
		UnicodeMixedScript int `json:"unicode_mixed_script"`
		UnicodeConfusable  int `json:"unicode_confusable"`

		// Brand detector scoring
		BrandBase            int `json:"brand_base"`
		BrandDistancePenalty int `json:"brand_distance_penalty"`
		BrandSubstring       int `json:"brand_substring"`
	}

	// ThresholdConfig holds the verdict boundaries and structural limits
	ThresholdConfig struct {
		SafeMax          int     `json:"safe_max"`
		SuspiciousMax    int     `json:"suspicious_max"`
		EntropyThreshold float64 `json:"entropy_threshold"`
		LongURLLength    int     `json:"long_url_length"`
		MaxURLLength     int     `json:"max_url_length"`
		MaxSubdomains    int     `json:"max_subdomains"`
	}

	// FeatureConfig enables or disables individual analyzers. Disabled
	// analyzers contribute nothing; they are never consulted.
	FeatureConfig struct {
		UnicodeAnalysis bool `json:"unicode_analysis"`
		BrandDetection  bool `json:"brand_detection"`
		TLDScoring      bool `json:"tld_scoring"`
		ThreatIntel     bool `json:"threat_intel"`
		Heuristics      bool `json:"heuristics"`
		Ensemble        bool `json:"ensemble"`
	}

	// ModelConfig is the fixed logistic-regression model applied to the
	// 15-dimension feature vector. Weights follow the feature order of the
	// extractor; the model is inference-only, never trained in process.
	ModelConfig struct {
		Weights [15]float64 `json:"weights"`
		Bias    float64     `json:"bias"`
	}
)

// NewRiskConfig validates and freezes a calibration. Invalid thresholds are
// the one hard failure in the system: they are rejected here, before any
// Analyze call is possible.
func NewRiskConfig(version string, w WeightConfig, t ThresholdConfig, f FeatureConfig, m ModelConfig) (*RiskConfig, error) {
	if version == "" {
		return nil, fmt.Errorf("risk config: version must not be empty")
	}
	if t.SafeMax < 0 || t.SuspiciousMax > 100 {
		return nil, fmt.Errorf("risk config %s: thresholds must lie in [0,100], got safeMax=%d suspiciousMax=%d",
			version, t.SafeMax, t.SuspiciousMax)
	}
	if t.SafeMax >= t.SuspiciousMax {
		return nil, fmt.Errorf("risk config %s: safeMax (%d) must be strictly below suspiciousMax (%d)",
			version, t.SafeMax, t.SuspiciousMax)
	}
	if w.HeuristicBudget <= 0 || w.EnsembleBudget <= 0 || w.TLDBudget <= 0 || w.BrandBudget <= 0 {
		return nil, fmt.Errorf("risk config %s: component budgets must be positive", version)
	}
	if t.MaxURLLength <= 0 {
		return nil, fmt.Errorf("risk config %s: max URL length must be positive", version)
	}
	cfg := &RiskConfig{
		Version:    version,
		Weights:    w,
		Thresholds: t,
		Features:   f,
		Model:      m,
	}
	return cfg, nil
}

// SignalWeight maps a signal to its configured heuristic weight. The switch
// is exhaustive over the closed signal set; signals scored outside the
// heuristics engine (intel, brand, TLD) return their component's strongest
// weight so that flag ordering and counterfactual hints stay meaningful.
func (w WeightConfig) SignalWeight(s domain.Signal) int {
	switch s {
	case domain.SignalInvalidURL:
		return 0
	case domain.SignalExcessiveEncoding:
		return w.ExcessiveEncoding
	case domain.SignalIPObfuscation:
		return w.IPObfuscation
	case domain.SignalAtSymbol:
		return w.AtSymbol
	case domain.SignalZeroWidth:
		return w.ZeroWidth
	case domain.SignalInsecureProtocol:
		return w.InsecureProtocol
	case domain.SignalDangerousScheme:
		return w.DangerousScheme
	case domain.SignalFragmentHiding:
		return w.FragmentHiding
	case domain.SignalIPHost:
		return w.IPHost
	case domain.SignalShortener:
		return w.Shortener
	case domain.SignalExcessiveSubdomains:
		return w.ExcessiveSubdomains
	case domain.SignalNonstandardPort:
		return w.NonstandardPort
	case domain.SignalHighEntropyHost:
		return w.HighEntropyHost
	case domain.SignalMultipleTLD:
		return w.MultipleTLD
	case domain.SignalNumericSubdomain:
		return w.NumericSubdomain
	case domain.SignalLongURL:
		return w.LongURL
	case domain.SignalRiskyExtension:
		return w.RiskyExtension
	case domain.SignalDoubleExtension:
		return w.DoubleExtension
	case domain.SignalSuspiciousKeywords:
		return w.KeywordCap
	case domain.SignalCredentialParams:
		return w.CredentialParams
	case domain.SignalEncodedPayload:
		return w.EncodedPayload
	case domain.SignalPunycode:
		return w.PunycodeHost
	case domain.SignalMixedScript:
		return w.MixedScript
	case domain.SignalConfusables:
		return w.Confusables
	case domain.SignalBrandImpersonation:
		return w.BrandBase
	case domain.SignalSuspiciousTLD:
		return w.TLDBudget
	case domain.SignalThreatIntel:
		return 100
	default:
		return 0
	}
}

// ToJSON serializes the calibration for version-locking and regression
// comparison. The document round-trips through FromJSON.
func (c *RiskConfig) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// FromJSON reconstructs and re-validates a calibration snapshot
func FromJSON(data []byte) (*RiskConfig, error) {
	var raw RiskConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("risk config: %w", err)
	}
	return NewRiskConfig(raw.Version, raw.Weights, raw.Thresholds, raw.Features, raw.Model)
}
