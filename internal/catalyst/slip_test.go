package catalyst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplySlip_ShiftAndWidenClamped(t *testing.T) {
	cfg := DefaultWeights()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	w := window{start: start, end: end, weight: 0.8}

	// mean slip of 100 days clamps to +75; (p90-p10)/2 = 40 clamps to 14.
	stats := SlipStats{MeanSlipDays: 100, P10Days: 0, P90Days: 80}
	out := applySlip(w, stats, cfg)

	assert.Equal(t, start.AddDate(0, 0, 75-14), out.start)
	assert.Equal(t, end.AddDate(0, 0, 75+14), out.end)
}

func TestApplySlip_NegativeShiftClampedAtFloor(t *testing.T) {
	cfg := DefaultWeights()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	w := window{start: start, end: end, weight: 0.8}

	stats := SlipStats{MeanSlipDays: -200, P10Days: 5, P90Days: 5}
	out := applySlip(w, stats, cfg)

	assert.Equal(t, start.AddDate(0, 0, -30), out.start)
	assert.Equal(t, end.AddDate(0, 0, -30), out.end)
}
