package catalyst

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// recencyWeight applies the hint-age decay (§4.8):
//
//	w' = w * min(1.0, 0.5 + 0.5*exp(-hint_age_days/halfLife))
func recencyWeight(w, ageDays, halfLife float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	decay := 0.5 + 0.5*math.Exp(-ageDays/halfLife)
	if decay > 1.0 {
		decay = 1.0
	}
	return w * decay
}

// Fuse runs the full §4.8 fusion algorithm: every parsed hint is slip-
// adjusted and recency-weighted, a base anchor is built from the EPCD,
// the two highest-weighted candidates are fused by intersection or
// union, and a terminal-event label (if present) overrides all of it.
//
// now is the evaluation time used to compute each hint's age; epcd and
// epcdVersionAgeDays are the trial's estimated primary completion date
// and how many days old that EPCD estimate is.
func Fuse(hints []StudyHint, stats SlipStats, epcd time.Time, epcdVersionAgeDays float64, terminal *TerminalEvent, now time.Time, cfg Weights) Window {
	if terminal != nil && (terminal.Status == "Completed" || terminal.Status == "Terminated") && !terminal.EventDate.IsZero() {
		return Window{Start: terminal.EventDate, End: terminal.EventDate, Certainty: 1.0, Basis: "terminal_event"}
	}

	candidates := make([]window, 0, len(hints)+1)
	for _, h := range hints {
		w := window{start: h.Start, end: h.End, weight: h.Weight, source: string(h.Kind)}
		w = applySlip(w, stats, cfg)
		age := 0.0
		if !h.PublishedAt.IsZero() {
			age = now.Sub(h.PublishedAt).Hours() / 24
		}
		w.weight = recencyWeight(w.weight, age, cfg.RecencyHalfLife)
		candidates = append(candidates, w)
	}

	if !epcd.IsZero() {
		anchor := window{
			start: epcd.AddDate(0, 0, -14), end: epcd.AddDate(0, 0, 28),
			weight: recencyWeight(cfg.BaseAnchor, epcdVersionAgeDays, cfg.RecencyHalfLife),
			source: "epcd_anchor",
		}
		candidates = append(candidates, anchor)
	}

	if len(candidates) == 0 {
		return Window{}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].weight > candidates[j].weight })

	if len(candidates) == 1 {
		c := candidates[0]
		return Window{Start: c.start, End: c.end, Certainty: clamp01(c.weight), Basis: c.source}
	}

	a, b := candidates[0], candidates[1]
	maxW := a.weight
	if b.weight > maxW {
		maxW = b.weight
	}

	interStart, interEnd := maxTime(a.start, b.start), minTime(a.end, b.end)
	if !interStart.After(interEnd) {
		span := interEnd.Sub(interStart).Hours() / 24
		certainty := clamp01(1 - (span/30)*(1-maxW))
		return Window{Start: interStart, End: interEnd, Certainty: certainty, Basis: fmt.Sprintf("intersect(%s,%s)", a.source, b.source)}
	}

	unionStart, unionEnd := minTime(a.start, b.start), maxTime(a.end, b.end)
	span := unionEnd.Sub(unionStart).Hours() / 24
	certainty := clamp01(1 - (span/45)*(1-maxW))
	return Window{Start: unionStart, End: unionEnd, Certainty: certainty, Basis: fmt.Sprintf("union(%s,%s)", a.source, b.source)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
