// Package summary renders the human-readable report: run header,
// topology tree, clog statistics, event counters, and diagnostics.
// Empty sections are skipped.
package summary

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/crimson-sun/faultline/internal/engine/interval"
	"github.com/crimson-sun/faultline/internal/engine/topology"
	"github.com/crimson-sun/faultline/internal/output"
	"github.com/crimson-sun/faultline/internal/report"
)

func init() {
	output.Register("summary", func() output.Renderer { return &Renderer{} })
}

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	dead    = color.New(color.FgRed).SprintFunc()
)

// Renderer writes the plain-text summary.
type Renderer struct{}

func (r *Renderer) Render(w io.Writer, rep *report.Report) error {
	renderHeader(w, &rep.Meta)
	renderTopology(w, &rep.Topology)
	renderStats(w, rep.Stats)
	renderCounters(w, rep.Counters)
	renderUnterminated(w, rep.Unterminated)
	renderDiagnostics(w, &rep.Diagnostics)
	return nil
}

func renderHeader(w io.Writer, meta *report.Meta) {
	fmt.Fprintln(w, heading("Run"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if meta.Seed != "" {
		fmt.Fprintf(tw, "  %s\t%s\n", dim("seed"), meta.Seed)
	}
	fmt.Fprintf(tw, "  %s\t%d\n", dim("events"), meta.Events)
	if meta.SimTime > 0 {
		fmt.Fprintf(tw, "  %s\t%s\n", dim("sim time"), seconds(meta.SimTime))
	}
	if meta.RealTime > 0 {
		fmt.Fprintf(tw, "  %s\t%s\n", dim("real time"), seconds(meta.RealTime))
	}
	fmt.Fprintf(tw, "  %s\t%.6f .. %.6f\n", dim("timestamps"),
		meta.FirstTimestamp, meta.LastTimestamp)
	tw.Flush()
	fmt.Fprintln(w)
}

func renderTopology(w io.Writer, snap *topology.Snapshot) {
	if snap.Machines == 0 && snap.Processes == 0 {
		return
	}
	fmt.Fprintln(w, heading("Topology"))
	fmt.Fprintf(w, "  %d machines, %d processes (%d live)\n",
		snap.Machines, snap.Processes, snap.LiveProcesses)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, dc := range snap.Datacenters {
		name := dc.ID
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(tw, "  %s %s\t%d machines\t%s\n",
			dim("dc"), name, dc.Machines, classList(dc.Classes))
	}
	tw.Flush()

	if len(snap.LiveRoles) > 0 {
		fmt.Fprintf(w, "  %s %s\n", dim("live roles"), classList(snap.LiveRoles))
	}
	fmt.Fprintln(w)
}

func classList(counts []topology.RoleCount) string {
	out := ""
	for i, rc := range counts {
		if i > 0 {
			out += ", "
		}
		name := rc.Name
		if name == "" {
			name = "(unclassed)"
		}
		out += fmt.Sprintf("%d %s", rc.Count, name)
	}
	return out
}

func renderStats(w io.Writer, rows []report.StatRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, heading("Statistics"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
		dim("category"), dim("count"), dim("min"), dim("mean"), dim("max"))
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s/%s\t%d\t%.6f\t%.6f\t%.6f\n",
			row.Group, row.Name, row.Count, row.Min, row.Mean, row.Max)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func renderCounters(w io.Writer, rows []report.CounterRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, heading("Counters"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s/%s\t%d\n", row.Group, row.Name, row.Count)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func renderUnterminated(w io.Writer, opens []interval.Open) {
	if len(opens) == 0 {
		return
	}
	fmt.Fprintln(w, heading("Unterminated intervals"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range opens {
		fmt.Fprintf(tw, "  %s\t%s %.6f\n", warn(o.Key.String()), dim("since"), o.Start)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func renderDiagnostics(w io.Writer, d *report.Diagnostics) {
	total := d.ParseErrors + d.StaleBegins + d.OrphanEnds + d.NegativeDurations + d.BackwardTime
	if total == 0 {
		return
	}
	fmt.Fprintln(w, heading("Diagnostics"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	diagRow(tw, "parse errors", d.ParseErrors)
	diagRow(tw, "stale begins", d.StaleBegins)
	diagRow(tw, "orphan ends", d.OrphanEnds)
	diagRow(tw, "negative durations", d.NegativeDurations)
	diagRow(tw, "backward timestamps", d.BackwardTime)
	tw.Flush()
	for _, issue := range d.Issues {
		fmt.Fprintf(w, "  %s record %d: %s\n", dead("!"), issue.Record, issue.Reason)
	}
	fmt.Fprintln(w)
}

func diagRow(w io.Writer, name string, n int) {
	if n > 0 {
		fmt.Fprintf(w, "  %s\t%d\n", dim(name), n)
	}
}

func seconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond).String()
}
