package config

import (
	"fmt"
	"sort"

	"github.com/blang/semver"
)

// Historical calibrations are retained so regression suites can compare a
// new calibration's verdicts against a pinned older one. Each builder must
// return a fresh value; callers own their copy.
var versions = map[string]func() (*RiskConfig, error){
	"1.0.0": buildV1_0_0,
	"1.1.0": buildV1_1_0,
}

// ForVersion returns the calibration registered under the given version
// string, or an error for unknown or malformed versions.
func ForVersion(version string) (*RiskConfig, error) {
	if _, err := semver.Parse(version); err != nil {
		return nil, fmt.Errorf("risk config: invalid version %q: %w", version, err)
	}
	build, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("risk config: unknown version %q", version)
	}
	return build()
}

// Latest returns the highest registered calibration by semver ordering
func Latest() *RiskConfig {
	vs := make([]semver.Version, 0, len(versions))
	for v := range versions {
		parsed, err := semver.Parse(v)
		if err != nil {
			continue
		}
		vs = append(vs, parsed)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].GT(vs[j]) })
	cfg, err := versions[vs[0].String()]()
	if err != nil {
		// Registered builders are covered by tests; a failure here is a
		// programming error, not an input error.
		panic(fmt.Sprintf("risk config: builtin calibration %s invalid: %v", vs[0], err))
	}
	return cfg
}

// Versions lists all registered calibration versions in ascending order
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func defaultFeatures() FeatureConfig {
	return FeatureConfig{
		UnicodeAnalysis: true,
		BrandDetection:  true,
		TLDScoring:      true,
		ThreatIntel:     true,
		Heuristics:      true,
		Ensemble:        true,
	}
}

func defaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		SafeMax:          30,
		SuspiciousMax:    60,
		EntropyThreshold: 4.2,
		LongURLLength:    120,
		MaxURLLength:     2048,
		MaxSubdomains:    3,
	}
}

// buildV1_0_0 is the initial calibration shipped with the first scanner
// release. Kept for regression comparison; not the default.
func buildV1_0_0() (*RiskConfig, error) {
	w := WeightConfig{
		HeuristicBudget: 40,
		EnsembleBudget:  30,
		TLDBudget:       10,
		BrandBudget:     20,

		InsecureProtocol:    5,
		IPHost:              15,
		Shortener:           12,
		ExcessiveSubdomains: 8,
		NonstandardPort:     8,
		LongURL:             6,
		HighEntropyHost:     8,
		RiskyExtension:      12,
		DoubleExtension:     10,
		KeywordPerHit:       4,
		KeywordCap:          12,
		CredentialParams:    10,
		EncodedPayload:      8,
		ExcessiveEncoding:   10,
		AtSymbol:            14,
		MultipleTLD:         8,
		PunycodeHost:        12,
		NumericSubdomain:    6,
		DangerousScheme:     20,
		FragmentHiding:      6,
		ZeroWidth:           12,
		MixedScript:         12,
		Confusables:         14,
		IPObfuscation:       12,

		UnicodePunycode:    25,
		UnicodeZeroWidth:   30,
		UnicodeMixedScript: 30,
		UnicodeConfusable:  35,

		BrandBase:            20,
		BrandDistancePenalty: 5,
		BrandSubstring:       12,
	}
	return NewRiskConfig("1.0.0", w, defaultThresholds(), defaultFeatures(), defaultModel())
}

// buildV1_1_0 is the current calibration. Shorteners and at-symbol
// injection were raised after field reports of QR redirect abuse.
func buildV1_1_0() (*RiskConfig, error) {
	cfg, err := buildV1_0_0()
	if err != nil {
		return nil, err
	}
	w := cfg.Weights
	w.Shortener = 15
	w.AtSymbol = 15
	w.KeywordPerHit = 5
	w.KeywordCap = 15
	return NewRiskConfig("1.1.0", w, cfg.Thresholds, cfg.Features, cfg.Model)
}

// defaultModel carries the logistic-regression parameters exported by the
// offline training script. Feature order matches the extractor: url length,
// host length, path length, subdomain count, https, ip host, host entropy,
// path entropy, query count, at symbol, dots, dashes, port, shortener,
// suspicious TLD.
func defaultModel() ModelConfig {
	return ModelConfig{
		Weights: [15]float64{
			0.82,  // url length
			0.51,  // host length
			0.34,  // path length
			1.21,  // subdomain count
			-1.48, // https
			2.47,  // ip host
			0.96,  // host entropy
			0.58,  // path entropy
			0.42,  // query param count
			2.05,  // at symbol
			0.68,  // dot count
			0.77,  // dash count
			1.02,  // nonstandard port
			1.83,  // shortener
			2.21,  // suspicious tld
		},
		Bias: -2.04,
	}
}
