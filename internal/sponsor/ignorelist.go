package sponsor

import "regexp"

// academicGovernmentRe matches sponsor text that names a university,
// hospital system, or government health agency rather than a company
// (§5.2 academic_keyword_penalty, §5.5 resolver_ignore_sponsor). Trials
// led by these sponsors are excluded from company resolution entirely
// rather than being forced into the REVIEW queue.
var academicGovernmentRe = regexp.MustCompile(`(?i)\b(university|universit[ay]rio|college|hospital|medical center|health system|institute of health|national institutes? of health|\bnih\b|\bva\b|veterans affairs|ministry of health|national health service|\bnhs\b|cancer center|clinic|foundation trust|school of medicine)\b`)

// IsAcademicOrGovernment reports whether sponsorText names an academic or
// government entity rather than a commercial sponsor.
func IsAcademicOrGovernment(sponsorText string) bool {
	return academicGovernmentRe.MatchString(sponsorText)
}
