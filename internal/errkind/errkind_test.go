package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := New(TransientExternal, "NCT00000001", "fetch failed", cause)

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "NCT00000001")
	assert.Contains(t, e.Error(), "fetch failed")
}

func TestIs(t *testing.T) {
	e := New(IntegrityError, "trial-1", "fk violation", errors.New("pq: ..."))
	wrapped := fmt.Errorf("upsert: %w", e)

	assert.True(t, Is(wrapped, IntegrityError))
	assert.False(t, Is(wrapped, Fatal))
	assert.False(t, Is(errors.New("plain"), Fatal))
}

func TestKindPolicies(t *testing.T) {
	assert.True(t, TransientExternal.Retryable())
	assert.False(t, PermanentExternal.Retryable())
	assert.True(t, Fatal.HaltsProcess())
	assert.False(t, DataShape.HaltsProcess())
}
