package sponsor

import (
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

// corporateSuffixes are stripped before comparison so "Acme Therapeutics,
// Inc." and "Acme Therapeutics" score as near-identical (§5.2).
var corporateSuffixes = []string{
	"inc", "inc.", "incorporated", "llc", "ltd", "ltd.", "limited",
	"corp", "corp.", "corporation", "co", "co.", "company",
	"plc", "ag", "sa", "nv", "gmbh", "kk", "spa",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)

// normalizeName lowercases, strips punctuation, and drops a trailing
// corporate suffix token, producing the string the similarity features
// compare (§5.2).
func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	tokens := strings.Fields(s)
	if n := len(tokens); n > 0 {
		last := strings.TrimSuffix(tokens[n-1], ".")
		for _, suf := range corporateSuffixes {
			if last == suf {
				tokens = tokens[:n-1]
				break
			}
		}
	}
	return strings.Join(tokens, " ")
}

// ExtractFeatures computes the full feature vector comparing a sponsor's
// free-text field against one candidate Company and its aliases (§5.2).
func ExtractFeatures(sponsorText string, candidate Company, aliases []CompanyAlias) Features {
	normSponsor := normalizeName(sponsorText)
	normCompany := normalizeName(candidate.Name)

	best := smetrics.JaroWinkler(normSponsor, normCompany, 0.7, 4)
	for _, a := range aliases {
		if a.CompanyID != candidate.ID {
			continue
		}
		if jw := smetrics.JaroWinkler(normSponsor, normalizeName(a.Alias), 0.7, 4); jw > best {
			best = jw
		}
	}

	return Features{
		JWPrimary:              best,
		TokenSetRatio:          tokenSetRatio(normSponsor, normCompany),
		AcronymExact:           boolFloat(isAcronymMatch(sponsorText, candidate.Name)),
		DomainRootMatch:        boolFloat(domainRootMatch(sponsorText, candidate.Domain)),
		TickerStringHit:        boolFloat(tickerHit(sponsorText, candidate.Ticker)),
		AcademicKeywordPenalty: boolFloat(IsAcademicOrGovernment(sponsorText)),
		StrongTokenOverlap:     boolFloat(strongTokenOverlap(normSponsor, normCompany)),
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// tokenSetRatio is the fraction of the union of tokens that lies in the
// intersection, a cheap proxy for fuzzywuzzy's token_set_ratio (§5.2).
func tokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	union := map[string]bool{}
	inter := 0
	for t := range ta {
		union[t] = true
		if tb[t] {
			inter++
		}
	}
	for t := range tb {
		union[t] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Fields(s) {
		out[t] = true
	}
	return out
}

// strongTokenOverlap reports whether every token of the shorter
// normalized name appears as a token of the longer one, catching cases
// like "Acme" fully contained within "Acme Biosciences" (§5.2).
func strongTokenOverlap(a, b string) bool {
	ta, tb := tokenSet(a), tokenSet(b)
	shorter, longer := ta, tb
	if len(tb) < len(ta) {
		shorter, longer = tb, ta
	}
	if len(shorter) == 0 {
		return false
	}
	for t := range shorter {
		if !longer[t] {
			return false
		}
	}
	return true
}

// isAcronymMatch reports whether sponsorText, stripped of non-letters, is
// exactly the initialism of candidateName's significant tokens (§5.2),
// e.g. "BMS" against "Bristol Myers Squibb".
func isAcronymMatch(sponsorText, candidateName string) bool {
	sp := strings.ToUpper(nonAlnum.ReplaceAllString(strings.ToLower(sponsorText), ""))
	if len(sp) < 2 {
		return false
	}
	var acronym strings.Builder
	for _, tok := range strings.Fields(normalizeName(candidateName)) {
		if tok == "" {
			continue
		}
		acronym.WriteByte(strings.ToUpper(tok)[0])
	}
	return acronym.String() == sp
}

// domainRootMatch reports whether sponsorText contains, as a token, the
// registrable-domain root of candidate's domain (e.g. "acme" for
// "acme.com") (§5.2).
func domainRootMatch(sponsorText, domain string) bool {
	if domain == "" {
		return false
	}
	root := strings.SplitN(domain, ".", 2)[0]
	if root == "" {
		return false
	}
	norm := normalizeName(sponsorText)
	for _, tok := range strings.Fields(norm) {
		if tok == strings.ToLower(root) {
			return true
		}
	}
	return false
}

// tickerHit reports whether sponsorText contains the ticker as a
// distinct bracketed or standalone token, e.g. "Acme Corp (NASDAQ: ACME)"
// (§5.2).
func tickerHit(sponsorText, ticker string) bool {
	if ticker == "" {
		return false
	}
	upper := strings.ToUpper(sponsorText)
	for _, tok := range regexp.MustCompile(`[A-Za-z0-9]+`).FindAllString(upper, -1) {
		if tok == strings.ToUpper(ticker) {
			return true
		}
	}
	return false
}
