// Package output defines the report renderer interface and the format
// registry renderers register themselves into.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/crimson-sun/faultline/internal/report"
)

// Renderer writes one report to w in a specific format.
type Renderer interface {
	Render(w io.Writer, rep *report.Report) error
}

// Constructor is a function that creates a new Renderer instance.
type Constructor func() Renderer

var registry = map[string]Constructor{}

// Register adds a renderer constructor under the given format name.
func Register(format string, ctor Constructor) {
	registry[format] = ctor
}

// Get returns the renderer constructor for the given format name.
func Get(format string) (Constructor, error) {
	ctor, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
	return ctor, nil
}

// Formats returns the names of all registered formats, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
