package analysis

import (
	"sort"

	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
)

// CheckContext carries everything a heuristic check may inspect. Checks
// read it, never write it, so the full set can run in any order.
type CheckContext struct {
	Normalized string
	URL        *domain.ParsedURL
	Norm       NormalizationResult
	Unicode    *domain.UnicodeRiskResult
	Config     *config.RiskConfig
}

// HeuristicCheck is a single pure, independent rule. No check may depend
// on another check's trigger state.
//
// run returns (triggered, evidence). weight is optional; when nil the
// check's weight comes from the calibration's exhaustive signal table.
type HeuristicCheck struct {
	signal domain.Signal
	run    func(ctx *CheckContext) (bool, string)
	weight func(ctx *CheckContext) int
}

// Signal identifies the check
func (c HeuristicCheck) Signal() domain.Signal {
	return c.signal
}

// Evaluate runs the check and materializes a hit, or nil
func (c HeuristicCheck) Evaluate(ctx *CheckContext) *domain.SignalHit {
	triggered, evidence := c.run(ctx)
	if !triggered {
		return nil
	}
	w := ctx.Config.Weights.SignalWeight(c.signal)
	if c.weight != nil {
		w = c.weight(ctx)
	}
	return &domain.SignalHit{Signal: c.signal, Weight: w, Evidence: evidence}
}

// HeuristicsEngine runs the ordered catalog of rule checks and aggregates
// their weights into the heuristic subscore, capped at the heuristic
// budget share of the 100-point total.
type HeuristicsEngine struct {
	checks []HeuristicCheck
	cfg    *config.RiskConfig
}

// NewHeuristicsEngine creates the engine with the standard check catalog
func NewHeuristicsEngine(cfg *config.RiskConfig) *HeuristicsEngine {
	return &HeuristicsEngine{checks: standardChecks(), cfg: cfg}
}

// Run evaluates every check and returns the capped subscore plus all hits,
// sorted by descending weight (ties broken by signal name for determinism).
// A panicking check counts as not triggered; nothing propagates.
func (e *HeuristicsEngine) Run(ctx *CheckContext) (int, []domain.SignalHit) {
	var hits []domain.SignalHit
	total := 0
	for _, c := range e.checks {
		hit := evaluateSafely(c, ctx)
		if hit == nil {
			continue
		}
		hits = append(hits, *hit)
		total += hit.Weight
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Weight != hits[j].Weight {
			return hits[i].Weight > hits[j].Weight
		}
		return hits[i].Signal < hits[j].Signal
	})

	if budget := e.cfg.Weights.HeuristicBudget; total > budget {
		total = budget
	}
	return total, hits
}

func evaluateSafely(c HeuristicCheck, ctx *CheckContext) (hit *domain.SignalHit) {
	defer func() {
		if r := recover(); r != nil {
			hit = nil
		}
	}()
	return c.Evaluate(ctx)
}
