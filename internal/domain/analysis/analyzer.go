package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
	"github.com/mehrguard/url-security/internal/domain/intel"
)

// Analyzer composes the full scoring pipeline: normalization, domain
// parsing, the enabled analyzers, and verdict fusion. It is immutable
// after construction and safe for unsynchronized concurrent use; swapping
// calibrations means constructing a new Analyzer.
type Analyzer struct {
	cfg        *config.RiskConfig
	normalizer *Normalizer
	unicode    *UnicodeAnalyzer
	brands     *BrandDetector
	tld        *TLDScorer
	bundle     *intel.Bundle
	heuristics *HeuristicsEngine
	ensemble   *EnsembleScorer
}

// NewAnalyzer wires the pipeline for one calibration and one threat-intel
// snapshot. A nil bundle selects the bundled deny list.
func NewAnalyzer(cfg *config.RiskConfig, bundle *intel.Bundle) *Analyzer {
	if bundle == nil {
		bundle = intel.DefaultBundle()
	}
	return &Analyzer{
		cfg:        cfg,
		normalizer: NewNormalizer(),
		unicode:    NewUnicodeAnalyzer(cfg.Weights),
		brands:     NewBrandDetector(nil, cfg.Weights),
		tld:        NewTLDScorer(cfg.Weights),
		bundle:     bundle,
		heuristics: NewHeuristicsEngine(cfg),
		ensemble:   NewEnsembleScorer(cfg.Model, cfg.Weights),
	}
}

// Config exposes the calibration this analyzer was built with
func (a *Analyzer) Config() *config.RiskConfig {
	return a.cfg
}

// Analyze scores a single raw URL string. It never panics and never
// performs I/O; malformed input yields an UNKNOWN verdict, and a failing
// sub-analyzer simply contributes nothing.
func (a *Analyzer) Analyze(rawURL string) (assessment domain.RiskAssessment) {
	defer func() {
		// Attacker-supplied content must never crash the scanner. A panic
		// this deep is a bug, but the contract is UNKNOWN, not a crash.
		if r := recover(); r != nil {
			assessment = a.unknownAssessment(rawURL, rawURL, "internal analysis failure")
		}
	}()

	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return a.unknownAssessment(rawURL, "", "empty input")
	}
	if len(trimmed) > a.cfg.Thresholds.MaxURLLength {
		return a.unknownAssessment(rawURL, "", "input exceeds maximum URL length")
	}

	norm := a.normalizer.Normalize(trimmed)
	if !norm.Parseable {
		return a.unknownAssessment(rawURL, norm.Normalized, "input does not parse as a URL")
	}
	parsed, err := ParseURL(norm.Normalized)
	if err != nil {
		return a.unknownAssessment(rawURL, norm.Normalized, "input does not parse as a URL")
	}

	details := domain.AssessmentDetails{}

	// Confirmed deny-list membership always wins: short-circuit before any
	// weighting. A probable false positive is recorded but scores nothing.
	if a.cfg.Features.ThreatIntel && parsed.Host != "" {
		res := a.bundle.Lookup(parsed.Host)
		if res.Status != intel.StatusConfirmed && parsed.RegistrableDomain != parsed.Host {
			if apex := a.bundle.Lookup(parsed.RegistrableDomain); apex.Status == intel.StatusConfirmed ||
				(apex.Status == intel.StatusProbableFalsePositive && res.Status == intel.StatusClean) {
				res = apex
			}
		}
		details.IntelStatus = string(res.Status)
		if res.Status == intel.StatusConfirmed {
			// The short circuit skips the weighting, not the reporting:
			// obfuscation signals raised during normalization stay on the
			// assessment alongside the deny-list hit.
			hits := []domain.SignalHit{{
				Signal:   domain.SignalThreatIntel,
				Weight:   a.cfg.Weights.SignalWeight(domain.SignalThreatIntel),
				Evidence: res.Domain + " is on the deny list",
			}}
			hits = append(hits, a.normalizationHits(norm, parsed)...)
			flags := make([]string, 0, len(hits))
			for _, h := range hits {
				flags = append(flags, string(h.Signal))
			}
			return domain.RiskAssessment{
				InputURL:      rawURL,
				NormalizedURL: norm.Normalized,
				Score:         100,
				Verdict:       domain.VerdictMalicious,
				Flags:         flags,
				Confidence:    1.0,
				Details:       details,
				Hits:          hits,
			}
		}
	}

	var unicodeResult *domain.UnicodeRiskResult
	if a.cfg.Features.UnicodeAnalysis && parsed.Host != "" {
		guard(func() {
			r := a.unicode.Analyze(parsed.Host)
			unicodeResult = &r
		})
	}

	var hits []domain.SignalHit
	if a.cfg.Features.Heuristics {
		ctx := &CheckContext{
			Normalized: norm.Normalized,
			URL:        parsed,
			Norm:       norm,
			Unicode:    unicodeResult,
			Config:     a.cfg,
		}
		details.HeuristicScore, hits = a.heuristics.Run(ctx)
	}

	if a.cfg.Features.Ensemble {
		guard(func() {
			details.MLScore = a.ensemble.Score(ExtractFeatures(norm.Normalized, parsed))
		})
	}

	if a.cfg.Features.TLDScoring {
		details.TLDScore = a.tld.Score(parsed.EffectiveTLD)
		if details.TLDScore > 0 {
			hits = append(hits, domain.SignalHit{
				Signal:   domain.SignalSuspiciousTLD,
				Weight:   details.TLDScore,
				Evidence: "." + parsed.EffectiveTLD + " is an abuse-prone TLD",
			})
		}
	}

	if a.cfg.Features.BrandDetection {
		guard(func() {
			if match := a.brands.Detect(parsed); match != nil {
				details.BrandScore = a.brands.Score(match)
				details.BrandMatch = match.Brand
				if details.BrandScore > 0 {
					hits = append(hits, domain.SignalHit{
						Signal:   domain.SignalBrandImpersonation,
						Weight:   details.BrandScore,
						Evidence: "host label " + match.MatchedLabel + " imitates " + match.Brand,
					})
				}
			}
		})
	}

	score := clampScore(details.HeuristicScore + details.MLScore + details.TLDScore + details.BrandScore)
	verdict := domain.VerdictForScore(score, a.cfg.Thresholds.SafeMax, a.cfg.Thresholds.SuspiciousMax)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Weight != hits[j].Weight {
			return hits[i].Weight > hits[j].Weight
		}
		return hits[i].Signal < hits[j].Signal
	})
	flags := make([]string, 0, len(hits))
	for _, h := range hits {
		flags = append(flags, string(h.Signal))
	}

	return domain.RiskAssessment{
		InputURL:      rawURL,
		NormalizedURL: norm.Normalized,
		Score:         score,
		Verdict:       verdict,
		Flags:         flags,
		Confidence:    confidenceFor(score, a.cfg.Thresholds.SafeMax, a.cfg.Thresholds.SuspiciousMax),
		Details:       details,
		Hits:          hits,
	}
}

// Features extracts the numeric feature vector for a raw URL without
// scoring it. This is the read-only surface for downstream consumers such
// as the privacy-preserving feedback module; Analyze never calls out to
// them.
func (a *Analyzer) Features(rawURL string) (FeatureVector, bool) {
	norm := a.normalizer.Normalize(strings.TrimSpace(rawURL))
	if !norm.Parseable {
		return FeatureVector{}, false
	}
	parsed, err := ParseURL(norm.Normalized)
	if err != nil {
		return FeatureVector{}, false
	}
	return ExtractFeatures(norm.Normalized, parsed), true
}

// normalizationHits converts the normalizer's obfuscation flags into hits,
// sorted by weight. Used on the deny-list fast path, where the heuristics
// engine never runs but the flags still belong on the report.
func (a *Analyzer) normalizationHits(norm NormalizationResult, parsed *domain.ParsedURL) []domain.SignalHit {
	var hits []domain.SignalHit
	for _, sig := range norm.Flags {
		var evidence string
		switch sig {
		case domain.SignalAtSymbol:
			evidence = fmt.Sprintf("userinfo %q imitates a trusted site; the real host is %s", parsed.Userinfo, parsed.Host)
		case domain.SignalIPObfuscation:
			evidence = fmt.Sprintf("host was an obfuscated IP form, canonically %s", parsed.Host)
		case domain.SignalZeroWidth:
			evidence = "invisible characters were hidden in the URL"
		case domain.SignalExcessiveEncoding:
			evidence = "nested percent-encoding exceeded the decode limit"
		default:
			evidence = "obfuscation detected during normalization"
		}
		hits = append(hits, domain.SignalHit{
			Signal:   sig,
			Weight:   a.cfg.Weights.SignalWeight(sig),
			Evidence: evidence,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Weight != hits[j].Weight {
			return hits[i].Weight > hits[j].Weight
		}
		return hits[i].Signal < hits[j].Signal
	})
	return hits
}

func (a *Analyzer) unknownAssessment(raw, normalized, reason string) domain.RiskAssessment {
	hit := domain.SignalHit{Signal: domain.SignalInvalidURL, Weight: 0, Evidence: reason}
	return domain.RiskAssessment{
		InputURL:      raw,
		NormalizedURL: normalized,
		Score:         0,
		Verdict:       domain.VerdictUnknown,
		Flags:         []string{string(domain.SignalInvalidURL)},
		Confidence:    0.1,
		Hits:          []domain.SignalHit{hit},
	}
}

// confidenceFor grows with distance from the nearest verdict boundary: a
// score sitting on a threshold is a coin flip (0.5), one 25+ points away
// is certain (1.0).
func confidenceFor(score, safeMax, suspiciousMax int) float64 {
	dSafe := score - safeMax
	if dSafe < 0 {
		dSafe = -dSafe
	}
	dSusp := score - suspiciousMax
	if dSusp < 0 {
		dSusp = -dSusp
	}
	d := dSafe
	if dSusp < d {
		d = dSusp
	}
	return clamp01(0.5 + float64(d)/50.0)
}

// guard runs fn, swallowing panics. Used around optional analyzers so an
// internal error degrades to "signal not triggered" instead of a crash.
func guard(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
