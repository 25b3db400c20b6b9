package catalyst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHints_ExactDate(t *testing.T) {
	hints := ParseHints("topline data expected March 15, 2026 per guidance", time.Time{}, "NCT1", "", DefaultWeights())
	require.Len(t, hints, 1)
	h := hints[0]
	assert.Equal(t, HintExactDate, h.Kind)
	assert.Equal(t, 0.95, h.Weight)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), h.Start)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), h.End)
}

func TestParseHints_Quarter(t *testing.T) {
	hints := ParseHints("data readout anticipated Q3 2026", time.Time{}, "NCT1", "", DefaultWeights())
	require.Len(t, hints, 1)
	h := hints[0]
	assert.Equal(t, HintQuarter, h.Kind)
	assert.Equal(t, 0.60, h.Weight)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), h.Start)
	assert.Equal(t, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), h.End)
}

func TestParseHints_Half(t *testing.T) {
	hints := ParseHints("results expected H1 2027", time.Time{}, "NCT1", "", DefaultWeights())
	require.Len(t, hints, 1)
	h := hints[0]
	assert.Equal(t, HintHalf, h.Kind)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), h.Start)
	assert.Equal(t, time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), h.End)
}

func TestParseHints_BareYearOnlyWhenNotAlreadyConsumed(t *testing.T) {
	hints := ParseHints("guidance reaffirmed for 2026 with data in Q3 2026", time.Time{}, "NCT1", "", DefaultWeights())
	kinds := map[HintKind]int{}
	for _, h := range hints {
		kinds[h.Kind]++
	}
	assert.Equal(t, 1, kinds[HintQuarter])
	assert.Equal(t, 0, kinds[HintYear])
}

func TestParseHints_Conference(t *testing.T) {
	hints := ParseHints("investigators plan to present at ASCO 2026", time.Time{}, "NCT1", "", DefaultWeights())
	require.Len(t, hints, 1)
	h := hints[0]
	assert.Equal(t, HintConference, h.Kind)
	assert.Equal(t, 0.80, h.Weight)
	assert.True(t, h.Start.Before(h.End))
}

func TestParseHints_NoHintsInPlainText(t *testing.T) {
	hints := ParseHints("the trial enrolled patients across 40 sites", time.Time{}, "NCT1", "", DefaultWeights())
	assert.Empty(t, hints)
}
