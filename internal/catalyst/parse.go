package catalyst

import (
	"regexp"
	"strconv"
	"time"
)

var (
	exactDateRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	quarterRe   = regexp.MustCompile(`(?i)\bQ([1-4])\s*'?(\d{4}|\d{2})\b`)
	halfRe      = regexp.MustCompile(`(?i)\bH([12])\s*'?(\d{4}|\d{2})\b`)
	yearRe      = regexp.MustCompile(`\b(20\d{2})\b`)
)

// conferenceBand is a known conference's typical (month, day) start/end,
// applied against a given year.
type conferenceBand struct {
	acronym                      string
	startMonth, startDay         int
	endMonth, endDay             int
}

// conferenceBands is the small table of known medical conferences
// (oncology, hematology, cardiology, neurology, diabetes, rheumatology)
// whose typical dates recur year over year (§4.8: "a known
// acronym with year").
var conferenceBands = []conferenceBand{
	{"ASCO", 5, 30, 6, 3},
	{"ESMO", 9, 12, 9, 16},
	{"AACR", 4, 5, 4, 10},
	{"ASH", 12, 6, 12, 9},
	{"ACC", 3, 28, 3, 30},
	{"ESC", 8, 28, 9, 1},
	{"AAN", 4, 12, 4, 18},
	{"ADA", 6, 20, 6, 24},
	{"EULAR", 6, 10, 6, 13},
}

func conferenceAcronymRe() *regexp.Regexp {
	pattern := `(?i)\b(`
	for i, b := range conferenceBands {
		if i > 0 {
			pattern += "|"
		}
		pattern += b.acronym
	}
	pattern += `)\s*'?(\d{4}|\d{2})\b`
	return regexp.MustCompile(pattern)
}

var conferenceRe = conferenceAcronymRe()

// ParseHints extracts every recognized date hint from study-card free
// text (§4.8). publishedAt stamps every returned hint for later recency
// weighting; studyID/url are caller-supplied provenance.
func ParseHints(text string, publishedAt time.Time, studyID, url string, cfg Weights) []StudyHint {
	var hints []StudyHint

	for _, m := range exactDateRe.FindAllStringSubmatch(text, -1) {
		d, err := time.Parse("January 2, 2006", m[1]+" "+m[2]+", "+m[3])
		if err != nil {
			continue
		}
		hints = append(hints, StudyHint{
			Kind: HintExactDate, Start: d.AddDate(0, 0, -1), End: d.AddDate(0, 0, 2),
			Weight: cfg.ExactDate, RawText: m[0], StudyID: studyID, URL: url, PublishedAt: publishedAt,
		})
	}

	for _, m := range quarterRe.FindAllStringSubmatch(text, -1) {
		q, _ := strconv.Atoi(m[1])
		year := fullYear(m[2])
		startMonth := time.Month((q-1)*3 + 1)
		start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, -1)
		hints = append(hints, StudyHint{
			Kind: HintQuarter, Start: start, End: end, Weight: cfg.Quarter,
			RawText: m[0], StudyID: studyID, URL: url, PublishedAt: publishedAt,
		})
	}

	for _, m := range halfRe.FindAllStringSubmatch(text, -1) {
		h, _ := strconv.Atoi(m[1])
		year := fullYear(m[2])
		startMonth := time.Month((h-1)*6 + 1)
		start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 6, -1)
		hints = append(hints, StudyHint{
			Kind: HintHalf, Start: start, End: end, Weight: cfg.Half,
			RawText: m[0], StudyID: studyID, URL: url, PublishedAt: publishedAt,
		})
	}

	for _, m := range conferenceRe.FindAllStringSubmatch(text, -1) {
		band := findBand(m[1])
		if band == nil {
			continue
		}
		year := fullYear(m[2])
		start := time.Date(year, time.Month(band.startMonth), band.startDay, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.Month(band.endMonth), band.endDay, 0, 0, 0, 0, time.UTC)
		if band.endMonth < band.startMonth {
			end = end.AddDate(1, 0, 0)
		}
		hints = append(hints, StudyHint{
			Kind: HintConference, Start: start.AddDate(0, 0, -2), End: end.AddDate(0, 0, 1),
			Weight: cfg.Conference, RawText: m[0], StudyID: studyID, URL: url, PublishedAt: publishedAt,
		})
	}

	// Bare years: only keep ones not already consumed by a more specific
	// hint above, to avoid double-counting "Q2 2026" as also "year 2026".
	consumed := map[int]bool{}
	for _, h := range hints {
		// Use the window's midpoint: padded windows (exact dates, conferences)
		// can start in the previous year.
		consumed[h.Start.Add(h.End.Sub(h.Start)/2).Year()] = true
	}
	for _, m := range yearRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		if consumed[year] {
			continue
		}
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
		hints = append(hints, StudyHint{
			Kind: HintYear, Start: start, End: end, Weight: cfg.Year,
			RawText: m[0], StudyID: studyID, URL: url, PublishedAt: publishedAt,
		})
	}

	return hints
}

func findBand(acronym string) *conferenceBand {
	for i := range conferenceBands {
		if equalFold(conferenceBands[i].acronym, acronym) {
			return &conferenceBands[i]
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func fullYear(s string) int {
	y, _ := strconv.Atoi(s)
	if y < 100 {
		y += 2000
	}
	return y
}

// Weights is the subset of config.CatalystConfig that hint parsing and
// fusion need, kept local so this package doesn't import internal/config;
// cmd/ncfd converts the loaded config into a Weights value.
type Weights struct {
	ExactDate        float64
	Quarter          float64
	Half             float64
	Year             float64
	Conference       float64
	BaseAnchor       float64
	RecencyHalfLife  float64
	MinSlipShiftDays float64
	MaxSlipShiftDays float64
	MaxWidenPadDays  float64
}

// DefaultWeights matches §4.8's stated constants.
func DefaultWeights() Weights {
	return Weights{
		ExactDate: 0.95, Quarter: 0.60, Half: 0.60, Year: 0.60, Conference: 0.80,
		BaseAnchor: 0.40, RecencyHalfLife: 180, MinSlipShiftDays: -30, MaxSlipShiftDays: 75, MaxWidenPadDays: 14,
	}
}
