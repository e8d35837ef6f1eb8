package scoring

import "regexp"

// Ruleset holds the fixed tables the engine scores against. It is read-only
// after construction; tests inject alternate tables through New.
type Ruleset struct {
	TrustedTLDs map[string]bool
	RiskyTLDs   map[string]bool

	// HighRiskPatterns are tried in order; only the first match scores.
	HighRiskPatterns []*regexp.Regexp

	SuspiciousKeywords []string

	HighRiskCountries map[string]bool
	FlaggedCountries  map[string]bool

	// FlaggedASPrefixes are matched against the start of the AS string;
	// first match wins.
	FlaggedASPrefixes []string

	// PrivateIPPrefixes are plain string prefixes, not CIDR ranges. This
	// misses 172.17.0.0-172.31.255.255 and matches 172.160.x.x; kept
	// deliberately, see the engine tests.
	PrivateIPPrefixes []string
}

// Weights for each rule. Trusted TLD subtracts; everything else adds.
const (
	trustedTLDBonus     = 15
	riskyTLDPenalty     = 25
	highRiskPhrase      = 30
	multiKeywordPenalty = 15
	singleKeywordHit    = 8
	deepSubdomain       = 10
	punycodeMarker      = 20
	rawIPHostname       = 15
	longHostname        = 10
	numericRun          = 5
	highRiskCountry     = 35
	flaggedCountry      = 15
	flaggedNetwork      = 10
	privateIP           = 5
)

// Level boundaries, inclusive-lower.
const (
	suspiciousThreshold = 30
	highRiskThreshold   = 60
)

// DefaultRuleset returns the canonical rule tables.
func DefaultRuleset() Ruleset {
	return Ruleset{
		TrustedTLDs: set(".gov", ".edu", ".mil"),
		RiskyTLDs: set(
			".xyz", ".top", ".click", ".link", ".gq", ".ml", ".cf", ".ga",
			".tk", ".pw", ".rest", ".fun", ".icu", ".cyou", ".monster",
		),
		HighRiskPatterns: compile(
			`free.?gift`, `click.?here`, `urgent`, `verify.?account`,
			`confirm.?identity`, `paypal.?secure`, `bank.?update`,
			`signin.?secure`, `update.?info`, `win.?prize`, `\bmalware\b`,
			`phish`, `\bransomware\b`,
		),
		SuspiciousKeywords: []string{
			"login", "secure", "account", "wallet", "crypto", "payment",
			"invoice", "support", "helpdesk", "portal", "download", "free",
		},
		HighRiskCountries: set("North Korea", "Iran"),
		FlaggedCountries:  set("Russia", "China", "Belarus", "Myanmar"),
		// Known bulletproof or frequently abused networks (partial list).
		FlaggedASPrefixes: []string{"AS49367", "AS57523", "AS3462", "AS16276"},
		PrivateIPPrefixes: []string{"10.", "192.168.", "172.16.", "127."},
	}
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
