package faultline

import (
	"fmt"
	"io"

	"github.com/crimson-sun/faultline/internal/engine"
	"github.com/crimson-sun/faultline/internal/trace"
)

// Analyze makes one pass over a trace stream (NDJSON or a JSON array)
// and returns the report.
func Analyze(src io.Reader, opts ...Option) (*Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r, err := trace.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("faultline: %w", err)
	}
	return assemble(r, o)
}

// AnalyzeFile opens and analyzes the trace file at path.
func AnalyzeFile(path string, opts ...Option) (*Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r, err := trace.Open(path)
	if err != nil {
		return nil, fmt.Errorf("faultline: %w", err)
	}
	defer r.Close()
	return assemble(r, o)
}

func assemble(r *trace.Reader, o options) (*Report, error) {
	asm := engine.New(engine.Config{MaxIssues: o.maxIssues}, o.log)
	rep, err := asm.Assemble(r)
	if err != nil {
		return nil, fmt.Errorf("faultline: %w", err)
	}
	return fromInternal(rep), nil
}
