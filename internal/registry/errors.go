// Package registry implements the read-only, paginated study registry
// client (§4.1, §6).
package registry

import "github.com/daniyal-rahman/ncfd/internal/errkind"

// TransientFetch wraps a 5xx or network-level failure. Retried locally
// with exponential backoff before being surfaced.
func TransientFetch(entity, msg string, cause error) *errkind.Error {
	return errkind.New(errkind.TransientExternal, entity, msg, cause)
}

// PermanentFetch wraps a 4xx (other than 429) response. Never retried.
func PermanentFetch(entity, msg string, cause error) *errkind.Error {
	return errkind.New(errkind.PermanentExternal, entity, msg, cause)
}
