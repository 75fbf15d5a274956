package analysis

import (
	"strings"

	"github.com/mehrguard/url-security/internal/domain"
)

// FeatureVectorSize is the fixed dimensionality of the numeric feature
// vector. The ensemble model's weight vector matches it; both change
// together, never independently.
const FeatureVectorSize = 15

// FeatureVector is the fixed-length numeric description of a URL, each
// dimension scaled to [0,1]. Downstream consumers (the feedback module)
// may read vectors, but nothing feeds them back into scoring.
type FeatureVector [FeatureVectorSize]float64

// FeatureNames labels the vector dimensions, in extraction order
func FeatureNames() [FeatureVectorSize]string {
	return [FeatureVectorSize]string{
		"url_length",
		"host_length",
		"path_length",
		"subdomain_count",
		"has_https",
		"has_ip_host",
		"host_entropy",
		"path_entropy",
		"query_param_count",
		"has_at_symbol",
		"dot_count",
		"dash_count",
		"has_port",
		"is_shortener",
		"suspicious_tld",
	}
}

// shortenerDomains are registrable domains of URL shortening services. A
// shortened URL hides its true destination, which is exactly what a
// phishing QR code wants.
var shortenerDomains = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"t.co":        true,
	"goo.gl":      true,
	"ow.ly":       true,
	"is.gd":       true,
	"buff.ly":     true,
	"cutt.ly":     true,
	"rebrand.ly":  true,
	"shorturl.at": true,
	"rb.gy":       true,
	"tiny.cc":     true,
}

func isShortenerHost(p *domain.ParsedURL) bool {
	return shortenerDomains[p.RegistrableDomain] || shortenerDomains[p.Host]
}

// ExtractFeatures computes the feature vector for a normalized, parsed URL
func ExtractFeatures(normalized string, p *domain.ParsedURL) FeatureVector {
	var v FeatureVector
	if p == nil {
		return v
	}

	v[0] = ratio(len(normalized), 500)
	v[1] = ratio(len(p.Host), 100)
	v[2] = ratio(len(p.Path), 200)
	v[3] = ratio(p.SubdomainDepth, 5)
	if p.Scheme == "https" {
		v[4] = 1
	}
	if p.IsIPHost {
		v[5] = 1
	}
	v[6] = clamp01(shannonEntropy(p.Host) / 5.0)
	v[7] = clamp01(shannonEntropy(p.Path) / 5.0)
	v[8] = ratio(queryParamCount(p.Query), 10)
	if p.Userinfo != "" || strings.Contains(normalized, "@") {
		v[9] = 1
	}
	v[10] = ratio(strings.Count(normalized, "."), 10)
	v[11] = ratio(strings.Count(normalized, "-"), 10)
	if p.Port != "" {
		v[12] = 1
	}
	if isShortenerHost(p) {
		v[13] = 1
	}
	if tldRiskTable[p.EffectiveTLD] > 0 {
		v[14] = 1
	}
	return v
}

func ratio(n, max int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= max {
		return 1
	}
	return float64(n) / float64(max)
}

func queryParamCount(query string) int {
	if query == "" {
		return 0
	}
	return strings.Count(query, "&") + 1
}
