package orchestrator

import (
	"context"
	"time"
)

// CursorStore persists the since-date watermark a batch resumes from,
// so a scheduled run only asks the registry for what changed since the
// last successful batch (§4.1, §5 idempotency).
type CursorStore interface {
	GetSince(ctx context.Context) (since string, ok bool, err error)
	SetSince(ctx context.Context, since string) error
}

// sinceLayout is the registry's date-filter format (§6:
// "RANGE[YYYY-MM-DD,MAX]").
const sinceLayout = "2006-01-02"

// AdvanceCursor persists the batch's completion time as the next run's
// since-date. Re-running a batch over an unchanged cursor is safe: the
// content-hash equality check in the Version Store is the idempotency
// guard (§5), not the cursor itself.
func AdvanceCursor(ctx context.Context, cs CursorStore, batchFinishedAt time.Time) error {
	return cs.SetSince(ctx, batchFinishedAt.UTC().Format(sinceLayout))
}

// CurrentSince reads the persisted cursor, or returns ok=false if no
// batch has ever completed (the caller should then run an unbounded
// first ingestion).
func CurrentSince(ctx context.Context, cs CursorStore) (string, bool, error) {
	return cs.GetSince(ctx)
}
