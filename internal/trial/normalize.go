package trial

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// knownPhases is the ordered preference list the extractor scans for
// (§4.2: "the first phase in {PHASE2, PHASE3, PHASE2_PHASE3}").
var knownPhases = []Phase{Phase2, Phase3, Phase2Phase3}

var monthDayRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Normalize converts an opaque registry record into a typed Trial plus
// its version Scalars. It is a pure function — no I/O, never panics, and
// degrades to nulled scalars with a recorded warning on missing
// sub-modules (§4.2, §7 DataShape).
func Normalize(accession string, raw Raw) (Trial, Scalars, []string) {
	var warnings []string
	protocol, ok := getMap(raw, "protocolSection")
	if !ok {
		warnings = append(warnings, "missing protocolSection")
		return Trial{ID: accession}, Scalars{}, warnings
	}

	t := Trial{ID: accession}
	s := Scalars{}

	if ident, ok := getMap(protocol, "identificationModule"); ok {
		t.BriefTitle, _ = getString(ident, "briefTitle")
		t.OfficialTitle, _ = getString(ident, "officialTitle")
	} else {
		warnings = append(warnings, "missing identificationModule")
	}

	if sponsors, ok := getMap(protocol, "sponsorCollaboratorsModule"); ok {
		if lead, ok := getMap(sponsors, "leadSponsor"); ok {
			t.SponsorText, _ = getString(lead, "name")
		} else {
			warnings = append(warnings, "missing leadSponsor")
		}
	} else {
		warnings = append(warnings, "missing sponsorCollaboratorsModule")
	}

	if design, ok := getMap(protocol, "designModule"); ok {
		t.Phase = extractPhase(design)
		s.SampleSize = extractSampleSize(design)
	} else {
		warnings = append(warnings, "missing designModule")
	}

	if status, ok := getMap(protocol, "statusModule"); ok {
		t.Status = Status(strings.ToUpper(firstOr(status, "overallStatus", "")))
		s.EstimatedPrimaryCompletionDate = extractDate(status, "primaryCompletionDateStruct")
	} else {
		warnings = append(warnings, "missing statusModule")
	}

	if outcomes, ok := getMap(protocol, "outcomesModule"); ok {
		s.PrimaryEndpointText = extractPrimaryEndpointText(outcomes)
	} else {
		warnings = append(warnings, "missing outcomesModule")
	}

	if design, ok := getMap(protocol, "designModule"); ok {
		if plan, ok := getMap(design, "designInfo"); ok {
			s.AnalysisPlanText, _ = getString(plan, "analysisPlanDescription")
		}
	}

	return t, s, warnings
}

// GetMap, GetString, ExtractPrimaryEndpointText, ExtractSampleSize are
// exported so the Change Detector (package version) can walk the same
// raw-record paths the normalizer does, without duplicating the
// traversal logic.
func GetMap(r Raw, key string) (Raw, bool)       { return getMap(r, key) }
func GetString(r Raw, key string) (string, bool) { return getString(r, key) }
func ExtractPrimaryEndpointText(outcomes Raw) string { return extractPrimaryEndpointText(outcomes) }
func ExtractSampleSize(design Raw) *int              { return extractSampleSize(design) }
func ExtractPhaseOf(design Raw) Phase                { return extractPhase(design) }

func extractPhase(design Raw) Phase {
	rawPhases, ok := design["phases"].([]interface{})
	if !ok {
		return PhaseUnknown
	}
	for _, candidate := range knownPhases {
		for _, rp := range rawPhases {
			ps, ok := rp.(string)
			if !ok {
				continue
			}
			normalized := strings.ToUpper(strings.ReplaceAll(ps, " ", ""))
			if normalized == string(candidate) {
				return candidate
			}
		}
	}
	return PhaseUnknown
}

func extractSampleSize(design Raw) *int {
	enrollment, ok := getMap(design, "enrollmentInfo")
	if !ok {
		return nil
	}
	countRaw, ok := enrollment["count"]
	if !ok {
		return nil
	}
	switch v := countRaw.(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// extractPrimaryEndpointText concatenates "measure (time_frame)" entries
// joined with "; ", omitting the parenthesized portion when time_frame
// is absent (§4.2).
func extractPrimaryEndpointText(outcomes Raw) string {
	primaries, ok := outcomes["primaryOutcomes"].([]interface{})
	if !ok {
		return ""
	}
	var parts []string
	for _, po := range primaries {
		m, ok := po.(map[string]interface{})
		if !ok {
			continue
		}
		measure, _ := getString(Raw(m), "measure")
		if measure == "" {
			continue
		}
		timeFrame, _ := getString(Raw(m), "timeFrame")
		if timeFrame != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", measure, timeFrame))
		} else {
			parts = append(parts, measure)
		}
	}
	return strings.Join(parts, "; ")
}

// extractDate parses either YYYY-MM-DD or YYYY-MM (month form normalized
// to day=1) from a date-struct sub-module; any other form is nil, never
// an error (§4.2).
func extractDate(parent Raw, key string) *time.Time {
	sub, ok := getMap(parent, key)
	if !ok {
		return nil
	}
	raw, ok := getString(sub, "date")
	if !ok || raw == "" {
		return nil
	}
	return ParseRegistryDate(raw)
}

// ParseRegistryDate parses a registry date string in either full or
// year-month form. Returns nil for any other form (§4.2).
func ParseRegistryDate(raw string) *time.Time {
	switch {
	case monthDayRe.MatchString(raw):
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return &d
		}
	case yearMonthRe.MatchString(raw):
		if d, err := time.Parse("2006-01", raw); err == nil {
			return &d
		}
	}
	return nil
}

func getMap(r Raw, key string) (Raw, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return Raw(m), true
}

func getString(r Raw, key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func firstOr(r Raw, key, fallback string) string {
	if s, ok := getString(r, key); ok {
		return s
	}
	return fallback
}
