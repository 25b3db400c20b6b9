package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_AdvanceClearsError(t *testing.T) {
	d := Document{Status: StatusError, ErrorMsg: "schema validation failed"}
	d.Advance(StatusParsed)
	assert.Equal(t, StatusParsed, d.Status)
	assert.Empty(t, d.ErrorMsg)
}

func TestDocument_Fail(t *testing.T) {
	d := Document{Status: StatusIndexed}
	d.Fail("missing evidence span")
	assert.Equal(t, StatusError, d.Status)
	assert.Equal(t, "missing evidence span", d.ErrorMsg)
}
