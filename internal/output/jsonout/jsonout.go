// Package jsonout renders the full report as indented JSON, suitable
// for piping into jq or archiving alongside the trace.
package jsonout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/crimson-sun/faultline/internal/output"
	"github.com/crimson-sun/faultline/internal/report"
)

func init() {
	output.Register("json", func() output.Renderer { return &Renderer{} })
}

// Renderer writes the report as a single indented JSON document.
type Renderer struct{}

func (r *Renderer) Render(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("json output: %w", err)
	}
	return nil
}
