// Package intel provides the bundled deny-list membership test: a Bloom
// filter front stage backed by an exact set. The Bloom stage gives a cheap
// authoritative "not listed" answer; the exact stage resolves the filter's
// expected false positives.
package intel

import (
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// targetFalsePositiveRate sizes the Bloom filter. False positives at this
// rate are expected and resolved by the exact set; they are never surfaced
// as errors.
const targetFalsePositiveRate = 0.01

// Status is the outcome of a deny-list lookup
type Status string

const (
	// StatusClean means the Bloom stage ruled the domain out. Authoritative:
	// the filter has no false negatives.
	StatusClean Status = "CLEAN"

	// StatusConfirmed means the domain is present in the exact set
	StatusConfirmed Status = "CONFIRMED"

	// StatusProbableFalsePositive means the Bloom stage matched but the
	// exact set did not. An expected, correctly-handled event.
	StatusProbableFalsePositive Status = "PROBABLE_FALSE_POSITIVE"
)

// Result is a single lookup outcome
type Result struct {
	Domain string
	Status Status
}

// Bundle is an immutable deny-list snapshot. Build once per process via
// NewBundle; safe for unsynchronized concurrent reads afterwards.
type Bundle struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}

	Version        string
	Source         string
	BuildTimestamp time.Time
	EntryCount     int
}

// NewBundle normalizes, deduplicates, and indexes a deny list. Every
// listed domain is inserted into both stages, so the invariant "exact
// member implies Bloom positive" holds by construction.
func NewBundle(domains []string, version, source string) *Bundle {
	exact := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		n := NormalizeDomain(d)
		if n == "" {
			continue
		}
		exact[n] = struct{}{}
	}

	size := uint(len(exact))
	if size == 0 {
		size = 1
	}
	filter := bloom.NewWithEstimates(size, targetFalsePositiveRate)
	for d := range exact {
		filter.AddString(d)
	}

	return &Bundle{
		filter:         filter,
		exact:          exact,
		Version:        version,
		Source:         source,
		BuildTimestamp: time.Now().UTC(),
		EntryCount:     len(exact),
	}
}

// NormalizeDomain canonicalizes a domain for indexing and lookup:
// lowercase, scheme and "www." prefix stripped, path/query/fragment and
// port removed. Build-time and lookup-time normalization are identical by
// construction: both call this.
func NormalizeDomain(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}

// Lookup runs the two-stage membership test
func (b *Bundle) Lookup(domain string) Result {
	n := NormalizeDomain(domain)
	if n == "" {
		return Result{Domain: n, Status: StatusClean}
	}
	if !b.filter.TestString(n) {
		return Result{Domain: n, Status: StatusClean}
	}
	if _, ok := b.exact[n]; ok {
		return Result{Domain: n, Status: StatusConfirmed}
	}
	return Result{Domain: n, Status: StatusProbableFalsePositive}
}

// IsDenied reports a confirmed deny-list hit. True only when the exact
// stage agrees with the Bloom stage.
func (b *Bundle) IsDenied(domain string) bool {
	return b.Lookup(domain).Status == StatusConfirmed
}

// MightContain exposes the Bloom stage on its own, for tests of the
// no-false-negative property.
func (b *Bundle) MightContain(domain string) bool {
	return b.filter.TestString(NormalizeDomain(domain))
}
