// Package report defines the immutable result of analyzing one trace
// log. Every collection is sorted at assembly time so any renderer can
// produce byte-identical output for identical inputs without
// re-deriving aggregates.
package report

import (
	"github.com/crimson-sun/faultline/internal/engine/interval"
	"github.com/crimson-sun/faultline/internal/engine/topology"
)

// Meta is the run-level metadata recovered from the stream. Seed stays
// empty and durations stay zero when the corresponding events are absent.
type Meta struct {
	Seed           string  `json:"seed,omitempty"`
	SimTime        float64 `json:"sim_time_seconds,omitempty"`
	RealTime       float64 `json:"real_time_seconds,omitempty"`
	FirstTimestamp float64 `json:"first_timestamp"`
	LastTimestamp  float64 `json:"last_timestamp"`
	Events         int     `json:"events"`
}

// StatRow is one category's streaming statistics.
type StatRow struct {
	Group string  `json:"group"`
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
}

// CounterRow is one count-only category.
type CounterRow struct {
	Group string `json:"group"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Issue is one retained record-level parse failure, for diagnostics.
type Issue struct {
	Record int    `json:"record"`
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

// Diagnostics tallies everything anomalous that was absorbed rather
// than escalated during the run.
type Diagnostics struct {
	ParseErrors       int     `json:"parse_errors"`
	StaleBegins       int     `json:"stale_begins"`
	OrphanEnds        int     `json:"orphan_ends"`
	NegativeDurations int     `json:"negative_durations"`
	BackwardTime      int     `json:"backward_time"`
	Issues            []Issue `json:"issues,omitempty"` // first few parse errors, capped
}

// Report is the complete, immutable snapshot of one analyzed run.
type Report struct {
	Meta         Meta              `json:"meta"`
	Topology     topology.Snapshot `json:"topology"`
	Stats        []StatRow         `json:"stats,omitempty"`
	Counters     []CounterRow      `json:"counters,omitempty"`
	Unterminated []interval.Open   `json:"unterminated,omitempty"`
	Diagnostics  Diagnostics       `json:"diagnostics"`
}
