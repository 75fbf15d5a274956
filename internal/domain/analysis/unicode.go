package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"

	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
)

// UnicodeAnalyzer inspects a hostname for internationalized-domain abuse:
// punycode labels, zero-width characters, mixed scripts, and confusable
// lookalike characters.
type UnicodeAnalyzer struct {
	weights config.WeightConfig
}

// NewUnicodeAnalyzer creates an analyzer with the given calibration
func NewUnicodeAnalyzer(weights config.WeightConfig) *UnicodeAnalyzer {
	return &UnicodeAnalyzer{weights: weights}
}

// Analyze scores a single lowercase hostname. The risk score is the sum of
// the per-category weights, capped at 100.
func (a *UnicodeAnalyzer) Analyze(host string) domain.UnicodeRiskResult {
	res := domain.UnicodeRiskResult{Display: host}
	if host == "" {
		return res
	}

	// Punycode labels decode to the Unicode form the user would see
	decoded := host
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			res.IsPunycode = true
			break
		}
	}
	if res.IsPunycode {
		if uni, err := idna.ToUnicode(host); err == nil {
			decoded = uni
		}
		res.Reasons = append(res.Reasons, "host uses punycode-encoded labels")
		res.RiskScore += a.weights.UnicodePunycode
	}

	for _, r := range host + decoded {
		if isZeroWidthOrBidi(r) {
			res.HasZeroWidth = true
			res.Reasons = append(res.Reasons, "host contains zero-width or bidi-override characters")
			res.RiskScore += a.weights.UnicodeZeroWidth
			break
		}
	}

	if mixed, scripts := detectMixedScripts(decoded); mixed {
		res.HasMixedScript = true
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("host mixes scripts: %s", strings.Join(scripts, ", ")))
		res.RiskScore += a.weights.UnicodeMixedScript
	}

	res.Skeleton = ToSkeleton(decoded)
	if res.Skeleton != strings.ToLower(decoded) {
		res.HasConfusables = true
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("host contains characters confusable with %q", res.Skeleton))
		res.RiskScore += a.weights.UnicodeConfusable
	}

	if res.RiskScore > 100 {
		res.RiskScore = 100
	}
	res.HasRisk = res.RiskScore > 0
	res.Display = SafeDisplay(host)
	return res
}

// SafeDisplay renders a hostname for presentation to a user. Hosts with
// non-ASCII or punycode content are shown in their Unicode form with an
// explicit IDN annotation carrying the ASCII form, so ambiguous characters
// are never displayed unannotated.
func SafeDisplay(host string) string {
	isASCII := true
	for i := 0; i < len(host); i++ {
		if host[i] >= 0x80 {
			isASCII = false
			break
		}
	}
	if isASCII && !strings.Contains(host, "xn--") {
		return host
	}

	uni, err := idna.ToUnicode(host)
	if err != nil {
		uni = host
	}
	ascii, err := idna.ToASCII(host)
	if err != nil {
		ascii = host
	}
	return fmt.Sprintf("%s [IDN: %s]", uni, ascii)
}
