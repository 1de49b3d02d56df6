package faultline

import (
	"github.com/crimson-sun/faultline/internal/engine/topology"
	"github.com/crimson-sun/faultline/internal/report"
)

// Meta is the run-level metadata recovered from the trace.
type Meta struct {
	Seed           string
	SimTime        float64 // simulated seconds, from the last ElapsedTime event
	RealTime       float64 // wall-clock seconds, from the last ElapsedTime event
	FirstTimestamp float64
	LastTimestamp  float64
	Events         int
}

// Process is one simulated process.
type Process struct {
	Address string
	Class   string
	TLS     bool
	Alive   bool
}

// Machine is one simulated machine with its processes.
type Machine struct {
	ID        string
	Class     string
	Processes []Process
}

// DataHall groups machines under one hall ID.
type DataHall struct {
	ID       string
	Machines []Machine
}

// RoleCount is one (name, count) row of a role or class breakdown.
type RoleCount struct {
	Name  string
	Count int
}

// Datacenter is one simulated datacenter.
type Datacenter struct {
	ID       string
	Halls    []DataHall
	Machines int
	Classes  []RoleCount
}

// Topology is the reconstructed cluster tree, fully sorted.
type Topology struct {
	Datacenters   []Datacenter
	Machines      int
	Processes     int
	LiveProcesses int
	LiveRoles     []RoleCount
}

// StatRow is one category's streaming statistics.
type StatRow struct {
	Group string
	Name  string
	Count int
	Min   float64
	Mean  float64
	Max   float64
}

// CounterRow is one count-only category.
type CounterRow struct {
	Group string
	Name  string
	Count int
}

// OpenInterval is a clog that began but never ended before the trace
// ran out.
type OpenInterval struct {
	Name  string  // rendered key, e.g. "A->B/All"
	Start float64 // begin timestamp in simulated seconds
}

// Issue is one retained record-level parse failure.
type Issue struct {
	Record int
	Reason string
	Raw    string
}

// Diagnostics tallies anomalies absorbed during the run.
type Diagnostics struct {
	ParseErrors       int
	StaleBegins       int
	OrphanEnds        int
	NegativeDurations int
	BackwardTime      int
	Issues            []Issue
}

// Report is the complete result of analyzing one trace.
type Report struct {
	Meta         Meta
	Topology     Topology
	Stats        []StatRow
	Counters     []CounterRow
	Unterminated []OpenInterval
	Diagnostics  Diagnostics
}

// fromInternal converts the internal report to the public Report type.
func fromInternal(rep *report.Report) *Report {
	out := &Report{
		Meta: Meta{
			Seed:           rep.Meta.Seed,
			SimTime:        rep.Meta.SimTime,
			RealTime:       rep.Meta.RealTime,
			FirstTimestamp: rep.Meta.FirstTimestamp,
			LastTimestamp:  rep.Meta.LastTimestamp,
			Events:         rep.Meta.Events,
		},
		Topology: topologyFromSnapshot(rep.Topology),
		Diagnostics: Diagnostics{
			ParseErrors:       rep.Diagnostics.ParseErrors,
			StaleBegins:       rep.Diagnostics.StaleBegins,
			OrphanEnds:        rep.Diagnostics.OrphanEnds,
			NegativeDurations: rep.Diagnostics.NegativeDurations,
			BackwardTime:      rep.Diagnostics.BackwardTime,
		},
	}
	for _, row := range rep.Stats {
		out.Stats = append(out.Stats, StatRow(row))
	}
	for _, row := range rep.Counters {
		out.Counters = append(out.Counters, CounterRow(row))
	}
	for _, o := range rep.Unterminated {
		out.Unterminated = append(out.Unterminated, OpenInterval{
			Name:  o.Key.String(),
			Start: o.Start,
		})
	}
	for _, issue := range rep.Diagnostics.Issues {
		out.Diagnostics.Issues = append(out.Diagnostics.Issues, Issue(issue))
	}
	return out
}

func topologyFromSnapshot(snap topology.Snapshot) Topology {
	out := Topology{
		Machines:      snap.Machines,
		Processes:     snap.Processes,
		LiveProcesses: snap.LiveProcesses,
	}
	for _, rc := range snap.LiveRoles {
		out.LiveRoles = append(out.LiveRoles, RoleCount(rc))
	}
	for _, dc := range snap.Datacenters {
		pub := Datacenter{ID: dc.ID, Machines: dc.Machines}
		for _, rc := range dc.Classes {
			pub.Classes = append(pub.Classes, RoleCount(rc))
		}
		for _, hall := range dc.Halls {
			pubHall := DataHall{ID: hall.ID}
			for _, m := range hall.Machines {
				pubM := Machine{ID: m.ID, Class: m.Class}
				for _, p := range m.Processes {
					pubM.Processes = append(pubM.Processes, Process(p))
				}
				pubHall.Machines = append(pubHall.Machines, pubM)
			}
			pub.Halls = append(pub.Halls, pubHall)
		}
		out.Datacenters = append(out.Datacenters, pub)
	}
	return out
}
