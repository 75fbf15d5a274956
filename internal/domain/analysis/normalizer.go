package analysis

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mehrguard/url-security/internal/domain"
)

// maxDecodePasses bounds the iterative percent-decode loop. Nested encoding
// deeper than this is a decode bomb, not a legitimate URL.
const maxDecodePasses = 5

// isZeroWidthOrBidi reports whether r is an invisible or direction-override
// code point. Each of these is a known URL obfuscation vehicle and is
// stripped during normalization.
func isZeroWidthOrBidi(r rune) bool {
	switch r {
	case '\u200B', // zero width space
		'\u200C', // zero width non-joiner
		'\u200D', // zero width joiner
		'\u200E', // left-to-right mark
		'\u200F', // right-to-left mark
		'\u202A', // left-to-right embedding
		'\u202B', // right-to-left embedding
		'\u202C', // pop directional formatting
		'\u202D', // left-to-right override
		'\u202E', // right-to-left override
		'\u2060', // word joiner
		'\u2061', '\u2062', '\u2063', '\u2064', // invisible operators
		'\uFEFF': // zero width no-break space / BOM
		return true
	}
	return false
}

// NormalizationResult is the normalizer's output: the canonical URL string,
// the obfuscation signals observed while producing it, and whether the
// result parses as a URL at all.
type NormalizationResult struct {
	Raw          string
	Normalized   string
	Flags        []domain.Signal
	Parseable    bool
	DecodePasses int
}

// HasFlag reports whether a given obfuscation signal was raised
func (r NormalizationResult) HasFlag(s domain.Signal) bool {
	for _, f := range r.Flags {
		if f == s {
			return true
		}
	}
	return false
}

// Normalizer canonicalizes raw, untrusted URL strings. It is stateless and
// safe for concurrent use.
//
// Normalize is idempotent: Normalize(Normalize(x).Normalized) yields the
// same normalized string for every input, including decode bombs.
type Normalizer struct{}

// NewNormalizer creates a Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize canonicalizes a raw URL string. It never fails: unparseable
// input comes back with Parseable=false for the orchestrator to translate
// into an UNKNOWN verdict.
func (n *Normalizer) Normalize(raw string) NormalizationResult {
	res := NormalizationResult{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		res.Normalized = ""
		return res
	}

	// Percent-decode to a fixed point, bounded by maxDecodePasses. When the
	// cap is hit the input is kept as-is: half-decoding would break the
	// normalize-twice fixed point, and the EXCESSIVE_ENCODING signal already
	// carries the finding.
	decoded, passes, capHit := decodeToFixedPoint(s)
	res.DecodePasses = passes
	if capHit {
		res.Flags = append(res.Flags, domain.SignalExcessiveEncoding)
		decoded = s
	}

	// Unicode canonical composition
	decoded = norm.NFC.String(decoded)

	// Strip invisible and bidi-override code points
	stripped, removed := stripZeroWidth(decoded)
	if removed > 0 {
		res.Flags = append(res.Flags, domain.SignalZeroWidth)
	}
	decoded = stripped

	// QR payloads frequently omit the scheme; default to http so the host
	// still gets parsed and scored.
	if !hasScheme(decoded) {
		decoded = "http://" + decoded
	}

	u, err := url.Parse(decoded)
	if err != nil || u.Hostname() == "" && u.Opaque == "" && u.Scheme != "data" && u.Scheme != "javascript" {
		res.Normalized = decoded
		return res
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	port := u.Port()

	// Userinfo spoofing: "paypal.com@evil.tk" renders the trusted name
	// first while the request goes to the part after the @.
	if u.User != nil && looksLikeDomain(u.User.Username()) {
		res.Flags = append(res.Flags, domain.SignalAtSymbol)
	}

	// Canonicalize obfuscated IP hosts to dotted quad
	if canonical, isIP, obfuscated := canonicalizeIPHost(host); isIP {
		host = canonical
		if obfuscated {
			res.Flags = append(res.Flags, domain.SignalIPObfuscation)
		}
	}

	rebuiltHost := host
	if strings.Contains(host, ":") { // IPv6 literal needs brackets
		rebuiltHost = "[" + host + "]"
	}
	if port != "" {
		rebuiltHost += ":" + port
	}
	u.Host = rebuiltHost

	res.Normalized = u.String()
	res.Parseable = true
	return res
}

// decodeToFixedPoint repeatedly percent-decodes s until decoding changes
// nothing, up to maxDecodePasses iterations. Returns the decoded string,
// the number of passes that changed it, and whether the cap cut the loop
// short of a fixed point.
func decodeToFixedPoint(s string) (string, int, bool) {
	cur := s
	passes := 0
	for i := 0; i < maxDecodePasses; i++ {
		next, err := url.PathUnescape(cur)
		if err != nil || next == cur {
			return cur, passes, false
		}
		cur = next
		passes++
	}
	// Cap reached; report whether another pass would still change anything
	next, err := url.PathUnescape(cur)
	capHit := err == nil && next != cur
	return cur, passes, capHit
}

func stripZeroWidth(s string) (string, int) {
	removed := 0
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isZeroWidthOrBidi(r) {
			removed++
			continue
		}
		b.WriteRune(r)
	}
	if removed == 0 {
		return s, 0
	}
	return b.String(), removed
}

// opaqueSchemes are schemes that legitimately carry no authority part. A
// bare "host:port" input must not be mistaken for one of these.
var opaqueSchemes = map[string]bool{
	"data":       true,
	"javascript": true,
	"vbscript":   true,
	"mailto":     true,
	"tel":        true,
	"about":      true,
	"blob":       true,
}

// hasScheme reports whether s begins with a URI scheme. A candidate counts
// only when followed by "//" or when it is a known opaque scheme, so that
// "example.com:8080/x" is parsed as host:port rather than scheme "example.com".
func hasScheme(s string) bool {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return false
	}
	candidate := strings.ToLower(s[:idx])
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	if strings.HasPrefix(s[idx+1:], "//") {
		return true
	}
	return opaqueSchemes[candidate]
}

// looksLikeDomain reports whether a userinfo component imitates a hostname
func looksLikeDomain(s string) bool {
	s = strings.ToLower(s)
	if len(s) < 4 || !strings.Contains(s, ".") {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '-') {
			return false
		}
	}
	return true
}

// canonicalizeIPHost detects hosts that are IP addresses, including
// obfuscated decimal, hexadecimal, octal, mixed, and IPv6-mapped-IPv4
// forms, and canonicalizes them to dotted quad. The obfuscated result is
// true only when the textual form differed from the canonical rendering.
func canonicalizeIPHost(host string) (canonical string, isIP bool, obfuscated bool) {
	if host == "" {
		return host, false, false
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			dotted := ip4.String()
			return dotted, true, dotted != host
		}
		return ip.String(), true, false
	}

	// inet_aton-style forms: "0xC0.0xA8.0x1.0x1", "0300.0250.01.01",
	// "3232235777", and mixed or short variants thereof.
	v, ok := parseNumericIPv4(host)
	if !ok {
		return host, false, false
	}
	dotted := net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).String()
	return dotted, true, dotted != host
}

// parseNumericIPv4 implements inet_aton semantics: one to four numeric
// parts in decimal, octal (leading 0), or hex (0x); the final part fills
// the remaining bytes.
func parseNumericIPv4(host string) (uint32, bool) {
	parts := strings.Split(host, ".")
	if len(parts) < 1 || len(parts) > 4 {
		return 0, false
	}
	values := make([]uint64, len(parts))
	for i, p := range parts {
		v, ok := parseIPPart(p)
		if !ok {
			return 0, false
		}
		values[i] = v
	}

	// All parts except the last must be single bytes; the last covers the
	// remaining address width.
	lastWidth := uint(8 * (5 - len(values)))
	for _, v := range values[:len(values)-1] {
		if v > 0xFF {
			return 0, false
		}
	}
	last := values[len(values)-1]
	if lastWidth < 64 && last >= uint64(1)<<lastWidth {
		return 0, false
	}

	var addr uint32
	for _, v := range values[:len(values)-1] {
		addr = addr<<8 | uint32(v)
	}
	addr = addr<<lastWidth | uint32(last)
	return addr, true
}

func parseIPPart(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(lower, "0x"):
		if len(lower) == 2 {
			return 0, false
		}
		v, err = strconv.ParseUint(lower[2:], 16, 64)
	case len(s) > 1 && s[0] == '0':
		v, err = strconv.ParseUint(s, 8, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil || v > 0xFFFFFFFF {
		return 0, false
	}
	return v, true
}
