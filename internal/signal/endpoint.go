package signal

import (
	"regexp"
	"strings"
)

// EndpointClass is the coarse concept S1 normalizes free-text primary
// endpoints into (§4.6 S1).
type EndpointClass string

const (
	EndpointOS    EndpointClass = "OS"
	EndpointPFS   EndpointClass = "PFS"
	EndpointORR   EndpointClass = "ORR"
	EndpointOther EndpointClass = "other"
)

// Inferiority classifies whether the endpoint's framing is
// non-inferiority, superiority, or unstated (§4.6 S1).
type Inferiority string

const (
	InferiorityNonInferiority Inferiority = "ni"
	InferioritySuperiority    Inferiority = "si"
	InferiorityUnknown        Inferiority = "unknown"
)

// EndpointConcept is the normalized shape S1 compares across adjacent
// versions (§4.6 S1: "{class, timepoint, inferiority, blinding}").
type EndpointConcept struct {
	Class       EndpointClass
	Timepoint   string // raw timepoint text, e.g. "Week 24"; empty if absent
	Inferiority Inferiority
	Blinded     bool
}

var (
	osRe          = regexp.MustCompile(`(?i)\boverall survival\b|\bOS\b`)
	pfsRe         = regexp.MustCompile(`(?i)\bprogression.free survival\b|\bPFS\b`)
	orrRe         = regexp.MustCompile(`(?i)\bobjective response rate\b|\bORR\b|\boverall response\b`)
	timepointRe   = regexp.MustCompile(`(?i)\b(week|month|day|year)s?\s*\d+\b`)
	niRe          = regexp.MustCompile(`(?i)non.inferiority`)
	siRe          = regexp.MustCompile(`(?i)superiority`)
	blindedRe     = regexp.MustCompile(`(?i)\b(double|single)[- ]?blind(ed)?\b`)
)

// ClassifyEndpoint extracts an EndpointConcept from free text (the
// primary endpoint description plus any adjoining design-module text
// describing blinding/inferiority framing, concatenated by the caller).
func ClassifyEndpoint(text string) EndpointConcept {
	class := EndpointOther
	switch {
	case osRe.MatchString(text):
		class = EndpointOS
	case pfsRe.MatchString(text):
		class = EndpointPFS
	case orrRe.MatchString(text):
		class = EndpointORR
	}

	inferiority := InferiorityUnknown
	switch {
	case niRe.MatchString(text):
		inferiority = InferiorityNonInferiority
	case siRe.MatchString(text):
		inferiority = InferioritySuperiority
	}

	return EndpointConcept{
		Class:       class,
		Timepoint:   strings.TrimSpace(timepointRe.FindString(text)),
		Inferiority: inferiority,
		Blinded:     blindedRe.MatchString(text),
	}
}

// differs reports whether any component of two EndpointConcepts differs,
// i.e. whether the change is "material" (§4.6 S1).
func (e EndpointConcept) differs(o EndpointConcept) bool {
	return e.Class != o.Class ||
		!strings.EqualFold(e.Timepoint, o.Timepoint) ||
		e.Inferiority != o.Inferiority ||
		e.Blinded != o.Blinded
}
