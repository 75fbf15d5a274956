package domain

// Signal identifies a single detection signal. The set is closed: every
// signal the pipeline can raise is declared here, and weight lookups are
// exhaustive switches over these constants, so a typo cannot silently fall
// through to a zero weight.
type Signal string

const (
	// Input handling
	SignalInvalidURL        Signal = "INVALID_URL_FORMAT"
	SignalExcessiveEncoding Signal = "EXCESSIVE_ENCODING"

	// Obfuscation detected during normalization
	SignalIPObfuscation Signal = "IP_OBFUSCATION"
	SignalAtSymbol      Signal = "AT_SYMBOL_INJECTION"
	SignalZeroWidth     Signal = "ZERO_WIDTH_CHARACTERS"

	// Protocol and scheme
	SignalInsecureProtocol Signal = "INSECURE_PROTOCOL"
	SignalDangerousScheme  Signal = "DANGEROUS_SCHEME"
	SignalFragmentHiding   Signal = "FRAGMENT_REDIRECT"

	// Host structure
	SignalIPHost              Signal = "IP_ADDRESS_HOST"
	SignalShortener           Signal = "URL_SHORTENER"
	SignalExcessiveSubdomains Signal = "EXCESSIVE_SUBDOMAINS"
	SignalNonstandardPort     Signal = "NONSTANDARD_PORT"
	SignalHighEntropyHost     Signal = "HIGH_ENTROPY_HOST"
	SignalMultipleTLD         Signal = "MULTIPLE_TLD_SEGMENTS"
	SignalNumericSubdomain    Signal = "NUMERIC_SUBDOMAIN"

	// URL structure
	SignalLongURL Signal = "EXCESSIVE_URL_LENGTH"

	// Path
	SignalRiskyExtension     Signal = "RISKY_FILE_EXTENSION"
	SignalDoubleExtension    Signal = "DOUBLE_FILE_EXTENSION"
	SignalSuspiciousKeywords Signal = "SUSPICIOUS_KEYWORDS"

	// Query
	SignalCredentialParams Signal = "CREDENTIAL_QUERY_PARAMS"
	SignalEncodedPayload   Signal = "ENCODED_QUERY_PAYLOAD"

	// Unicode / homograph
	SignalPunycode    Signal = "PUNYCODE_DOMAIN"
	SignalMixedScript Signal = "MIXED_SCRIPT_DOMAIN"
	SignalConfusables Signal = "CONFUSABLE_CHARACTERS"

	// Brand and intel
	SignalBrandImpersonation Signal = "BRAND_IMPERSONATION"
	SignalSuspiciousTLD      Signal = "SUSPICIOUS_TLD"
	SignalThreatIntel        Signal = "KNOWN_MALICIOUS_DOMAIN"
)

// AllSignals lists every declared signal, in declaration order. Used by the
// explainer and by tests that assert exhaustive weight coverage.
func AllSignals() []Signal {
	return []Signal{
		SignalInvalidURL,
		SignalExcessiveEncoding,
		SignalIPObfuscation,
		SignalAtSymbol,
		SignalZeroWidth,
		SignalInsecureProtocol,
		SignalDangerousScheme,
		SignalFragmentHiding,
		SignalIPHost,
		SignalShortener,
		SignalExcessiveSubdomains,
		SignalNonstandardPort,
		SignalHighEntropyHost,
		SignalMultipleTLD,
		SignalNumericSubdomain,
		SignalLongURL,
		SignalRiskyExtension,
		SignalDoubleExtension,
		SignalSuspiciousKeywords,
		SignalCredentialParams,
		SignalEncodedPayload,
		SignalPunycode,
		SignalMixedScript,
		SignalConfusables,
		SignalBrandImpersonation,
		SignalSuspiciousTLD,
		SignalThreatIntel,
	}
}
