// Package scoring implements the additive threat scoring engine. The engine
// is pure: no I/O, no side effects, and Score never fails.
package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"geotrace/internal/domain"
)

var (
	ipLiteral = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	digitRun  = regexp.MustCompile(`\d{4,}`)
)

// Engine scores domains against an injected Ruleset.
type Engine struct {
	rules Ruleset
}

func New(rules Ruleset) *Engine {
	return &Engine{rules: rules}
}

// Score computes the assessment for a resolved domain. It is total: an
// internal panic (possible only with a hostile injected ruleset) degrades to
// an UNKNOWN assessment instead of propagating, so the pipeline always
// receives a well-formed result. Given identical inputs the output is
// identical; rule order is fixed because it governs the first-match
// short-circuits and the order of reasons.
func (e *Engine) Score(dom, ip string, geo domain.GeoAttributes) (out domain.ThreatAssessment) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.ThreatAssessment{
				Level:   domain.LevelUnknown,
				Score:   0,
				Reasons: []string{fmt.Sprintf("Scoring aborted internally: %v", r)},
			}
		}
	}()
	return e.score(dom, ip, geo)
}

func (e *Engine) score(dom, ip string, geo domain.GeoAttributes) domain.ThreatAssessment {
	score := 0
	var reasons []string

	dom = strings.ToLower(dom)
	tld := extractTLD(dom)

	if e.rules.TrustedTLDs[tld] {
		score -= trustedTLDBonus
		reasons = append(reasons, fmt.Sprintf("Trusted TLD (%s)", tld))
	}

	if e.rules.RiskyTLDs[tld] {
		score += riskyTLDPenalty
		reasons = append(reasons, fmt.Sprintf("High-risk TLD: %s", tld))
	}

	for _, p := range e.rules.HighRiskPatterns {
		if p.MatchString(dom) {
			score += highRiskPhrase
			reasons = append(reasons, fmt.Sprintf("Matches high-risk pattern: '%s'", p.String()))
			break
		}
	}

	var hits []string
	for _, kw := range e.rules.SuspiciousKeywords {
		if strings.Contains(dom, kw) {
			hits = append(hits, kw)
		}
	}
	switch {
	case len(hits) >= 2:
		score += multiKeywordPenalty
		reasons = append(reasons, "Multiple suspicious keywords: "+strings.Join(hits, ", "))
	case len(hits) == 1:
		score += singleKeywordHit
		reasons = append(reasons, "Suspicious keyword: "+hits[0])
	}

	if strings.Count(dom, ".") >= 4 {
		score += deepSubdomain
		reasons = append(reasons, "Excessive subdomain depth (>=4 labels)")
	}

	if strings.Contains(dom, "xn--") {
		score += punycodeMarker
		reason := "Possible IDN homograph attack (punycode detected)"
		if uni, err := idna.ToUnicode(dom); err == nil && uni != dom {
			reason = fmt.Sprintf("Possible IDN homograph attack (punycode decodes to %q)", uni)
		}
		reasons = append(reasons, reason)
	}

	if ipLiteral.MatchString(dom) {
		score += rawIPHostname
		reasons = append(reasons, "Domain is a raw IP address (no hostname)")
	}

	hostname := dom
	if i := strings.IndexByte(dom, '.'); i >= 0 {
		hostname = dom[:i]
	}
	if len(hostname) > 30 {
		score += longHostname
		reasons = append(reasons, fmt.Sprintf("Unusually long hostname (%d chars)", len(hostname)))
	}
	if digitRun.MatchString(hostname) {
		score += numericRun
		reasons = append(reasons, "Long numeric sequence in hostname")
	}

	// At most one of the two country rules fires.
	switch {
	case e.rules.HighRiskCountries[geo.Country]:
		score += highRiskCountry
		reasons = append(reasons, "Hosted in high-risk country: "+geo.Country)
	case e.rules.FlaggedCountries[geo.Country]:
		score += flaggedCountry
		reasons = append(reasons, "Hosted in flagged country: "+geo.Country)
	}

	for _, prefix := range e.rules.FlaggedASPrefixes {
		if geo.ASN != domain.Unknown && strings.HasPrefix(geo.ASN, prefix) {
			score += flaggedNetwork
			reasons = append(reasons, "Hosted on potentially abused network: "+geo.ASN)
			break
		}
	}

	// Plain prefix matching, not a CIDR test; see Ruleset.PrivateIPPrefixes.
	for _, prefix := range e.rules.PrivateIPPrefixes {
		if strings.HasPrefix(ip, prefix) {
			score += privateIP
			reasons = append(reasons, "Resolves to private/loopback IP")
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := domain.LevelSafe
	switch {
	case score >= highRiskThreshold:
		level = domain.LevelHighRisk
	case score >= suspiciousThreshold:
		level = domain.LevelSuspicious
	}

	if len(reasons) == 0 {
		reasons = []string{"No significant threat indicators found."}
	}

	return domain.ThreatAssessment{Level: level, Score: score, Reasons: reasons}
}

// extractTLD returns the final dot-separated label with a leading dot, or ""
// when the domain has no dot.
func extractTLD(dom string) string {
	dom = strings.TrimSuffix(dom, ".")
	i := strings.LastIndexByte(dom, '.')
	if i < 0 {
		return ""
	}
	return dom[i:]
}
