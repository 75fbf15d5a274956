package analysis

import (
	"strings"

	"golang.org/x/net/idna"

	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
)

// Brand is a protected name and the registrable domain it legitimately
// lives under.
type Brand struct {
	Name   string
	Domain string
}

// DefaultBrands is the bundled protected-brand table: names phishing kits
// impersonate most often. Immutable after construction of a detector.
func DefaultBrands() []Brand {
	return []Brand{
		{"paypal", "paypal.com"},
		{"google", "google.com"},
		{"apple", "apple.com"},
		{"icloud", "icloud.com"},
		{"amazon", "amazon.com"},
		{"microsoft", "microsoft.com"},
		{"outlook", "outlook.com"},
		{"office", "office.com"},
		{"facebook", "facebook.com"},
		{"instagram", "instagram.com"},
		{"whatsapp", "whatsapp.com"},
		{"netflix", "netflix.com"},
		{"linkedin", "linkedin.com"},
		{"twitter", "twitter.com"},
		{"ebay", "ebay.com"},
		{"chase", "chase.com"},
		{"wellsfargo", "wellsfargo.com"},
		{"bankofamerica", "bankofamerica.com"},
		{"citibank", "citibank.com"},
		{"coinbase", "coinbase.com"},
		{"binance", "binance.com"},
		{"adobe", "adobe.com"},
		{"dropbox", "dropbox.com"},
		{"steam", "steampowered.com"},
		{"spotify", "spotify.com"},
	}
}

// BrandDetector flags hosts that impersonate a protected brand via small
// character edits (typosquatting), homograph substitution, or embedding the
// brand name inside an unrelated domain.
type BrandDetector struct {
	brands  []Brand
	weights config.WeightConfig
}

// NewBrandDetector creates a detector over the given brand table; a nil
// table selects the bundled defaults.
func NewBrandDetector(brands []Brand, weights config.WeightConfig) *BrandDetector {
	if brands == nil {
		brands = DefaultBrands()
	}
	return &BrandDetector{brands: brands, weights: weights}
}

// Detect returns the best impersonation candidate for the host, or nil.
// A host on a brand's own registrable domain is never a match.
func (d *BrandDetector) Detect(p *domain.ParsedURL) *domain.BrandMatch {
	if p == nil || p.Host == "" || p.IsIPHost {
		return nil
	}

	// The brand's own domain is legitimate by definition
	for _, brand := range d.brands {
		if p.RegistrableDomain == brand.Domain {
			return nil
		}
	}

	labels := candidateLabels(p)
	var best *domain.BrandMatch
	for _, label := range labels {
		// Punycode labels are matched in their decoded form, so the
		// on-the-wire encoding of a homograph scores like the raw one
		decoded := label
		if strings.HasPrefix(label, "xn--") {
			if uni, err := idna.ToUnicode(label); err == nil {
				decoded = uni
			}
		}
		skeleton := ToSkeleton(decoded)
		for _, brand := range d.brands {
			if m := matchBrand(label, skeleton, brand); m != nil {
				if best == nil || m.Distance < best.Distance ||
					(m.Distance == best.Distance && best.Substring && !m.Substring) {
					best = m
				}
			}
		}
	}
	return best
}

// Score converts a match into the brand component subscore, bounded by the
// brand budget. Closer edits score higher.
func (d *BrandDetector) Score(m *domain.BrandMatch) int {
	if m == nil {
		return 0
	}
	score := d.weights.BrandBase - m.Distance*d.weights.BrandDistancePenalty
	if m.Substring {
		score = d.weights.BrandSubstring
	}
	if score < 0 {
		score = 0
	}
	if score > d.weights.BrandBudget {
		score = d.weights.BrandBudget
	}
	return score
}

func matchBrand(label, skeleton string, brand Brand) *domain.BrandMatch {
	// Exact or homograph-exact label on a foreign domain, e.g.
	// "paypal.evil.tk" or Cyrillic "pаypal.com"
	if label == brand.Name || skeleton == brand.Name {
		return &domain.BrandMatch{Brand: brand.Name, Distance: 0, MatchedLabel: label}
	}

	// Small edit distance relative to the name length: two edits for names
	// of five or more characters, one for four, exact only below that.
	threshold := 0
	switch {
	case len(brand.Name) >= 5:
		threshold = 2
	case len(brand.Name) == 4:
		threshold = 1
	}
	if threshold > 0 {
		if d := levenshteinDistance(skeleton, brand.Name); d > 0 && d <= threshold {
			return &domain.BrandMatch{Brand: brand.Name, Distance: d, MatchedLabel: label}
		}
	}

	// Brand embedded in a longer label, e.g. "secure-paypal-login"
	if len(label) > len(brand.Name) && strings.Contains(skeleton, brand.Name) {
		return &domain.BrandMatch{Brand: brand.Name, Distance: 0, MatchedLabel: label, Substring: true}
	}
	return nil
}

// candidateLabels gathers the host labels worth matching: every subdomain
// plus the registrable domain's first label. Suffix labels ("com", "co")
// are never brand carriers.
func candidateLabels(p *domain.ParsedURL) []string {
	labels := make([]string, 0, len(p.Subdomains)+1)
	labels = append(labels, p.Subdomains...)
	if p.RegistrableDomain != "" {
		first, _, _ := strings.Cut(p.RegistrableDomain, ".")
		labels = append(labels, first)
	}
	return labels
}
