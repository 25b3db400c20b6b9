// Package runid generates the opaque run_id values that tag every
// persistable resolver and score decision (§6).
package runid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a run_id of the form "<prefix>-YYYYMMDDTHHMMSSZ" for the
// given instant, e.g. "resolver-20260101T000000Z".
func New(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, at.UTC().Format("20060102T150405Z"))
}

// NewOpaque returns a UUID-based run_id for callers that don't need the
// timestamped form. run_id is opaque to the core either way.
func NewOpaque(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
