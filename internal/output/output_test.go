package output

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/faultline/internal/report"
)

type nopRenderer struct{}

func (nopRenderer) Render(io.Writer, *report.Report) error { return nil }

func TestRegistry(t *testing.T) {
	Register("nop", func() Renderer { return nopRenderer{} })

	ctor, err := Get("nop")
	require.NoError(t, err)
	assert.NotNil(t, ctor())

	_, err = Get("missing")
	assert.ErrorContains(t, err, "unknown output format")

	assert.Contains(t, Formats(), "nop")
}
