package analysis

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mehrguard/url-security/internal/domain"
)

// suspiciousKeywords are path/query tokens common in credential-harvesting
// pages. Their combined contribution is capped, so keyword stuffing cannot
// dominate the heuristic budget.
var suspiciousKeywords = []string{
	"login", "signin", "sign-in", "verify", "secure", "account",
	"update", "confirm", "banking", "password", "wallet", "invoice",
	"suspended", "unlock", "billing", "recover",
}

// credentialParamNames are query parameter names that suggest credentials
// or secrets travel in the URL itself.
var credentialParamNames = map[string]bool{
	"password": true, "passwd": true, "pwd": true, "pass": true,
	"token": true, "auth": true, "session": true, "sessionid": true,
	"apikey": true, "api_key": true, "secret": true,
	"ssn": true, "pin": true, "cvv": true, "cardnumber": true,
}

// riskyExtensions are executable or installer payload types that have no
// business being linked from a QR code.
var riskyExtensions = []string{
	".exe", ".scr", ".bat", ".cmd", ".msi", ".apk", ".jar", ".vbs", ".ps1",
}

// decoyExtensions are benign-looking document extensions used as the first
// half of a double-extension lure such as "invoice.pdf.exe".
var decoyExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"jpg": true, "jpeg": true, "png": true, "txt": true, "zip": true,
	"html": true,
}

var dangerousSchemes = map[string]bool{
	"data":       true,
	"javascript": true,
	"vbscript":   true,
}

// standardChecks is the ordered heuristic catalog. Order matters only for
// stable flag output; every check is independent of the others.
func standardChecks() []HeuristicCheck {
	return []HeuristicCheck{
		{
			signal: domain.SignalInsecureProtocol,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.URL.Scheme == "http" && ctx.URL.Host != "" {
					return true, "connection is plain HTTP; content and credentials travel unencrypted"
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalDangerousScheme,
			run: func(ctx *CheckContext) (bool, string) {
				if dangerousSchemes[ctx.URL.Scheme] {
					return true, fmt.Sprintf("%q scheme executes content instead of addressing a site", ctx.URL.Scheme)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalIPHost,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.URL.IsIPHost {
					return true, fmt.Sprintf("host is a raw IP address (%s), not a named site", ctx.URL.Host)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalShortener,
			run: func(ctx *CheckContext) (bool, string) {
				if isShortenerHost(ctx.URL) {
					return true, fmt.Sprintf("%s is a URL shortener; the true destination is hidden", ctx.URL.RegistrableDomain)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalExcessiveSubdomains,
			run: func(ctx *CheckContext) (bool, string) {
				if limit := ctx.Config.Thresholds.MaxSubdomains; ctx.URL.SubdomainDepth > limit {
					return true, fmt.Sprintf("%d subdomain levels (limit %d)", ctx.URL.SubdomainDepth, limit)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalNonstandardPort,
			run: func(ctx *CheckContext) (bool, string) {
				if p := ctx.URL.Port; p != "" && p != "80" && p != "443" {
					return true, fmt.Sprintf("nonstandard port %s", p)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalLongURL,
			run: func(ctx *CheckContext) (bool, string) {
				if limit := ctx.Config.Thresholds.LongURLLength; len(ctx.Normalized) > limit {
					return true, fmt.Sprintf("URL is %d characters long (limit %d)", len(ctx.Normalized), limit)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalHighEntropyHost,
			run: func(ctx *CheckContext) (bool, string) {
				if len(ctx.URL.Host) < 8 {
					return false, ""
				}
				if e := shannonEntropy(ctx.URL.Host); e > ctx.Config.Thresholds.EntropyThreshold {
					return true, fmt.Sprintf("host entropy %.2f suggests a generated domain", e)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalRiskyExtension,
			run: func(ctx *CheckContext) (bool, string) {
				path := strings.ToLower(ctx.URL.Path)
				for _, ext := range riskyExtensions {
					if strings.HasSuffix(path, ext) {
						return true, fmt.Sprintf("path ends in executable payload type %s", ext)
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalDoubleExtension,
			run: func(ctx *CheckContext) (bool, string) {
				name := lastPathSegment(strings.ToLower(ctx.URL.Path))
				parts := strings.Split(name, ".")
				if len(parts) < 3 {
					return false, ""
				}
				last, decoy := parts[len(parts)-1], parts[len(parts)-2]
				for _, ext := range riskyExtensions {
					if "."+last == ext && decoyExtensions[decoy] {
						return true, fmt.Sprintf("%q disguises a .%s payload as a .%s document", name, last, decoy)
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalSuspiciousKeywords,
			run: func(ctx *CheckContext) (bool, string) {
				text := strings.ToLower(ctx.URL.Path + "?" + ctx.URL.Query)
				count := countOccurrences(text, suspiciousKeywords)
				if count > 0 {
					return true, fmt.Sprintf("%d phishing keyword(s) in path/query", count)
				}
				return false, ""
			},
			weight: func(ctx *CheckContext) int {
				text := strings.ToLower(ctx.URL.Path + "?" + ctx.URL.Query)
				w := countOccurrences(text, suspiciousKeywords) * ctx.Config.Weights.KeywordPerHit
				if w > ctx.Config.Weights.KeywordCap {
					w = ctx.Config.Weights.KeywordCap
				}
				return w
			},
		},
		{
			signal: domain.SignalCredentialParams,
			run: func(ctx *CheckContext) (bool, string) {
				values, err := url.ParseQuery(ctx.URL.Query)
				if err != nil {
					return false, ""
				}
				for key := range values {
					if credentialParamNames[strings.ToLower(key)] {
						return true, fmt.Sprintf("query parameter %q carries credential material", key)
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalEncodedPayload,
			run: func(ctx *CheckContext) (bool, string) {
				values, err := url.ParseQuery(ctx.URL.Query)
				if err != nil {
					return false, ""
				}
				for _, vs := range values {
					for _, v := range vs {
						if looksLikeEncodedBlob(v) {
							return true, "query carries a long encoded payload"
						}
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalExcessiveEncoding,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Norm.HasFlag(domain.SignalExcessiveEncoding) {
					return true, "nested percent-encoding exceeded the decode limit"
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalAtSymbol,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Norm.HasFlag(domain.SignalAtSymbol) {
					return true, fmt.Sprintf("userinfo %q imitates a trusted site; the real host is %s", ctx.URL.Userinfo, ctx.URL.Host)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalIPObfuscation,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Norm.HasFlag(domain.SignalIPObfuscation) {
					return true, fmt.Sprintf("host was an obfuscated IP form, canonically %s", ctx.URL.Host)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalMultipleTLD,
			run: func(ctx *CheckContext) (bool, string) {
				for _, label := range ctx.URL.Subdomains {
					if label == "com" || label == "net" || label == "org" || label == "gov" || label == "edu" {
						return true, fmt.Sprintf("TLD-like label %q buried in the subdomain chain", label)
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalPunycode,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Unicode != nil && ctx.Unicode.IsPunycode {
					return true, fmt.Sprintf("internationalized host, shown to users as %s", ctx.Unicode.Display)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalNumericSubdomain,
			run: func(ctx *CheckContext) (bool, string) {
				for _, label := range ctx.URL.Subdomains {
					if isAllDigits(label) {
						return true, fmt.Sprintf("purely numeric subdomain %q", label)
					}
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalZeroWidth,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Norm.HasFlag(domain.SignalZeroWidth) || (ctx.Unicode != nil && ctx.Unicode.HasZeroWidth) {
					return true, "invisible characters were hidden in the URL"
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalMixedScript,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Unicode != nil && ctx.Unicode.HasMixedScript {
					return true, "host mixes characters from multiple scripts"
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalConfusables,
			run: func(ctx *CheckContext) (bool, string) {
				if ctx.Unicode != nil && ctx.Unicode.HasConfusables {
					return true, fmt.Sprintf("host characters are confusable with %q", ctx.Unicode.Skeleton)
				}
				return false, ""
			},
		},
		{
			signal: domain.SignalFragmentHiding,
			run: func(ctx *CheckContext) (bool, string) {
				frag := ctx.URL.Fragment
				if strings.Contains(frag, "http") || len(frag) > 40 {
					return true, "fragment hides a redirect target or payload"
				}
				return false, ""
			},
		},
	}
}

func lastPathSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// looksLikeEncodedBlob reports whether a query value resembles a base64 or
// hex payload rather than human-entered data.
func looksLikeEncodedBlob(v string) bool {
	if len(v) < 24 {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '+', c == '/', c == '=', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
