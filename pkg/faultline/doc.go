// Package faultline analyzes simulation trace logs: it reconstructs the
// simulated cluster topology, pairs clog begin/end events into measured
// durations, and aggregates per-category statistics for the run.
//
// Quick start:
//
//	rep, err := faultline.AnalyzeFile("trace.0.0.0.0.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rep.Meta.Seed, rep.Topology.Machines)
//
// Each call makes a single pass over the trace; record-level parse
// failures are absorbed into the report's diagnostics rather than
// aborting the run.
package faultline
