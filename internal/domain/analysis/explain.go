package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mehrguard/url-security/internal/domain"
)

// hintTemplates turn triggered signals into "what would reduce the risk"
// guidance. Signals without a template (and unknown names) yield no hint;
// that is expected, not an error.
var hintTemplates = map[domain.Signal]string{
	domain.SignalInsecureProtocol:    "Use an https:// link instead of plain http",
	domain.SignalDangerousScheme:     "Link to a regular web address instead of an executable scheme",
	domain.SignalFragmentHiding:      "Remove the redirect target hidden in the URL fragment",
	domain.SignalIPHost:              "Use a named domain instead of a raw IP address",
	domain.SignalShortener:           "Link to the destination directly instead of through a shortener",
	domain.SignalExcessiveSubdomains: "Reduce the number of subdomain levels",
	domain.SignalNonstandardPort:     "Serve the page on the standard port (443)",
	domain.SignalLongURL:             "Shorten the URL; extreme length hides the real destination",
	domain.SignalHighEntropyHost:     "Use a readable domain name instead of a generated-looking one",
	domain.SignalRiskyExtension:      "Do not link directly to an executable download",
	domain.SignalDoubleExtension:     "Remove the disguised double file extension",
	domain.SignalSuspiciousKeywords:  "Remove credential-harvesting keywords from the path",
	domain.SignalCredentialParams:    "Never pass credentials or tokens in the URL query",
	domain.SignalEncodedPayload:      "Remove the opaque encoded payload from the query",
	domain.SignalExcessiveEncoding:   "Remove the layers of nested percent-encoding",
	domain.SignalAtSymbol:            "Remove the deceptive text before the @ separator",
	domain.SignalIPObfuscation:       "Write the address plainly instead of in an obfuscated numeric form",
	domain.SignalMultipleTLD:         "Remove the fake TLD segment from the subdomain chain",
	domain.SignalPunycode:            "Use plain ASCII labels instead of a punycode homograph",
	domain.SignalNumericSubdomain:    "Replace the numeric subdomain with a named one",
	domain.SignalZeroWidth:           "Remove the invisible characters hidden in the URL",
	domain.SignalMixedScript:         "Use a single script for the whole hostname",
	domain.SignalConfusables:         "Replace lookalike characters with their plain equivalents",
	domain.SignalBrandImpersonation:  "Host the page on the brand's real domain, or drop the brand name",
	domain.SignalSuspiciousTLD:       "Move to a mainstream TLD with a better abuse record",
}

// BuildHints converts triggered signals into counterfactual hints, one per
// signal, sorted by descending score reduction (signal name breaks ties).
func BuildHints(hits []domain.SignalHit) []domain.CounterfactualHint {
	hints := make([]domain.CounterfactualHint, 0, len(hits))
	for _, hit := range hits {
		tmpl, ok := hintTemplates[hit.Signal]
		if !ok || hit.Weight <= 0 {
			continue
		}
		hints = append(hints, domain.CounterfactualHint{
			Signal:         hit.Signal,
			ScoreReduction: hit.Weight,
			Explanation:    tmpl,
			CurrentValue:   hit.Evidence,
		})
	}
	sort.SliceStable(hints, func(i, j int) bool {
		if hints[i].ScoreReduction != hints[j].ScoreReduction {
			return hints[i].ScoreReduction > hints[j].ScoreReduction
		}
		return hints[i].Signal < hints[j].Signal
	})
	return hints
}

// SummarizeHints renders a numbered, display-ready digest of the hints,
// leading with the total reducible points.
func SummarizeHints(hints []domain.CounterfactualHint) string {
	if len(hints) == 0 {
		return "No triggered signals to act on."
	}
	total := 0
	for _, h := range hints {
		total += h.ScoreReduction
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Addressing %d signal(s) could reduce the risk score by up to %d points:\n", len(hints), total)
	for i, h := range hints {
		fmt.Fprintf(&b, "%d. %s (-%d)\n", i+1, h.Explanation, h.ScoreReduction)
	}
	return strings.TrimRight(b.String(), "\n")
}
