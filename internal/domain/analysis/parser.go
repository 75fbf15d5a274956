package analysis

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/mehrguard/url-security/internal/domain"
)

// ParseURL decomposes a normalized URL string into its structural parts,
// including the effective TLD, registrable domain, and subdomain chain
// derived by longest-suffix match against the public suffix list.
func ParseURL(normalized string) (*domain.ParsedURL, error) {
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	p := &domain.ParsedURL{
		Raw:      normalized,
		Scheme:   strings.ToLower(u.Scheme),
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	if u.User != nil {
		p.Userinfo = u.User.String()
	}
	if u.Opaque != "" && u.Host == "" {
		// Opaque forms (data:, javascript:, mailto:) carry no host; the
		// scheme checks still score them.
		p.Path = u.Opaque
		return p, nil
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return nil, fmt.Errorf("parse url: empty host in %q", normalized)
	}
	p.Host = host
	p.Port = u.Port()
	p.IsIPHost = net.ParseIP(host) != nil

	etld, registrable, subdomains := splitDomain(host, p.IsIPHost)
	p.EffectiveTLD = etld
	p.RegistrableDomain = registrable
	p.Subdomains = subdomains
	p.SubdomainDepth = len(subdomains)
	return p, nil
}

// splitDomain derives (effective TLD, registrable domain, subdomains) from
// a lowercase host.
//
// Edge cases follow the rule set: an empty host yields an empty result; a
// single-label host such as "localhost" is both its own TLD and its own
// registrable domain; IP hosts have no TLD and are their own registrable
// domain.
func splitDomain(host string, isIP bool) (etld, registrable string, subdomains []string) {
	if host == "" {
		return "", "", nil
	}
	if isIP {
		return "", host, nil
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	if host == suffix || !strings.Contains(host, ".") {
		// The host is itself a public suffix or a bare single label
		return suffix, host, nil
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Hosts like "foo.com." slip through normalization only in tests;
		// fall back to treating the whole host as registrable.
		return suffix, host, nil
	}

	prefix := strings.TrimSuffix(host, registrable)
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix != "" {
		subdomains = strings.Split(prefix, ".")
	}
	return suffix, registrable, subdomains
}
