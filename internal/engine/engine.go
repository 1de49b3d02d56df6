// Package engine runs the single-pass analysis: it routes each parsed
// event to the topology builder, interval matcher, and category
// aggregator, and assembles the final report.
package engine

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/crimson-sun/faultline/internal/engine/interval"
	"github.com/crimson-sun/faultline/internal/engine/stats"
	"github.com/crimson-sun/faultline/internal/engine/topology"
	"github.com/crimson-sun/faultline/internal/model"
	"github.com/crimson-sun/faultline/internal/report"
	"github.com/crimson-sun/faultline/internal/trace"
)

// Stat and counter groups the assembler feeds.
const (
	GroupClogging          = "clogging"
	GroupCloggingInterface = "clogging.interface"
	GroupKills             = "kills"
	GroupDisk              = "disk"
	GroupCluster           = "cluster"
	GroupErrors            = "errors"
)

// CatchAllQueue aggregates across queue-level sub-categories. Samples
// whose own queue is already CatchAllQueue are not double-counted.
const CatchAllQueue = "All"

// Config controls assembly behavior.
type Config struct {
	MaxIssues int // parse issues retained verbatim for the report; 0 keeps none
}

// Assembler consumes one event stream and produces one Report.
// Not reusable across streams.
type Assembler struct {
	cfg   Config
	log   *zap.Logger
	topo  *topology.Builder
	ivals *interval.Matcher
	agg   *stats.Aggregator

	seed     string
	simTime  float64
	realTime float64

	firstTS, lastTS float64
	events          int
	parseErrors     int
	backwardTime    int
	issues          []report.Issue
}

// New creates an Assembler. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		cfg:   cfg,
		log:   log,
		topo:  topology.NewBuilder(log),
		ivals: interval.NewMatcher(log),
		agg:   stats.NewAggregator(),
	}
}

// Assemble drains the reader and returns the report. Only source-level
// read errors escape; record-level failures become diagnostics.
func (a *Assembler) Assemble(r *trace.Reader) (*report.Report, error) {
	for {
		res, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		if res.Issue != nil {
			a.recordIssue(res.Issue)
			continue
		}
		a.Apply(res.Event)
	}
	return a.Finish(), nil
}

// Apply routes one event through every component that recognizes it.
func (a *Assembler) Apply(ev model.Event) {
	if a.events == 0 {
		a.firstTS = ev.Timestamp
	} else if ev.Timestamp < a.lastTS {
		a.backwardTime++
		a.log.Debug("timestamp moved backward",
			zap.String("kind", ev.Kind),
			zap.Float64("timestamp", ev.Timestamp),
			zap.Float64("previous", a.lastTS))
	}
	if ev.Timestamp > a.lastTS {
		a.lastTS = ev.Timestamp
	}
	a.events++

	if ev.Severity >= model.SeverityError {
		a.agg.Increment(stats.Key{Group: GroupErrors, Name: ev.Kind})
	}

	a.topo.Apply(ev)

	switch ev.Kind {
	case model.KindProgramStart:
		if a.seed == "" {
			if seed, ok := ev.Str("RandomSeed"); ok {
				a.seed = seed
			}
		}
	case model.KindElapsedTime:
		if sim, ok := ev.Num("SimTime"); ok {
			a.simTime = sim
		}
		if real, ok := ev.Num("RealTime"); ok {
			a.realTime = real
		}

	case model.KindCloggingPair:
		// Instant record carrying its own duration.
		if secs, ok := ev.Num("Seconds"); ok {
			a.addPairSample(interval.PairKey(ev), secs)
		}
	case model.KindClogInterface:
		// With a Delay this is an instant sample; without one it is
		// the begin of a matched interval.
		if delay, ok := ev.Num("Delay"); ok {
			a.addQueueSample(ev, delay)
		} else {
			a.observeInterval(ev)
		}
	case model.KindClogging, model.KindUnclogging, model.KindUnclogInterface:
		a.observeInterval(ev)

	case model.KindCoordinatorsChange, model.KindCoordinatorsChanged:
		a.agg.Increment(stats.Key{Group: GroupCluster, Name: "coordinator_changes"})

	case model.KindAssassination, model.KindKillMachineProcess:
		name := "Unknown"
		if kt, ok := model.KillTypeOf(ev); ok {
			name = kt.String()
		}
		a.agg.Increment(stats.Key{Group: GroupKills, Name: name})

	case model.KindDiskSwap:
		a.agg.Increment(stats.Key{Group: GroupDisk, Name: "swaps"})
	case model.KindSetDiskFailure:
		a.agg.Increment(stats.Key{Group: GroupDisk, Name: "failures"})
	case model.KindCorruptedBlock:
		a.agg.Increment(stats.Key{Group: GroupDisk, Name: "corrupted_blocks"})
	}
}

func (a *Assembler) observeInterval(ev model.Event) {
	iv, ok := a.ivals.Observe(ev)
	if !ok {
		return
	}
	switch iv.Key.Scope {
	case interval.ScopeInterface:
		a.addQueueBucketSample(iv.Key.Queue, iv.Duration())
	default:
		a.addPairSample(iv.Key, iv.Duration())
	}
}

// addPairSample feeds an endpoint-pair clog duration into its own key's
// bucket and, when the queue is specific, the catch-all queue's bucket.
func (a *Assembler) addPairSample(key interval.Key, secs float64) {
	a.agg.AddSample(stats.Key{Group: GroupClogging, Name: key.String()}, secs)
	if key.Queue != CatchAllQueue {
		all := key
		all.Queue = CatchAllQueue
		a.agg.AddSample(stats.Key{Group: GroupClogging, Name: all.String()}, secs)
	}
}

func (a *Assembler) addQueueSample(ev model.Event, secs float64) {
	a.addQueueBucketSample(interval.InterfaceKey(ev).Queue, secs)
}

// addQueueBucketSample groups interface clog delays by queue name,
// plus the catch-all queue.
func (a *Assembler) addQueueBucketSample(queue string, secs float64) {
	a.agg.AddSample(stats.Key{Group: GroupCloggingInterface, Name: queue}, secs)
	if queue != CatchAllQueue {
		a.agg.AddSample(stats.Key{Group: GroupCloggingInterface, Name: CatchAllQueue}, secs)
	}
}

func (a *Assembler) recordIssue(issue *trace.ParseIssue) {
	a.parseErrors++
	if len(a.issues) < a.cfg.MaxIssues {
		a.issues = append(a.issues, report.Issue{
			Record: issue.Record,
			Reason: issue.Reason,
			Raw:    issue.Raw,
		})
	}
}

// Finish freezes the accumulated state into the report.
func (a *Assembler) Finish() *report.Report {
	rep := &report.Report{
		Meta: report.Meta{
			Seed:           a.seed,
			SimTime:        a.simTime,
			RealTime:       a.realTime,
			FirstTimestamp: a.firstTS,
			LastTimestamp:  a.lastTS,
			Events:         a.events,
		},
		Topology:     a.topo.Snapshot(),
		Unterminated: a.ivals.OpenIntervals(),
		Diagnostics: report.Diagnostics{
			ParseErrors:       a.parseErrors,
			StaleBegins:       a.ivals.StaleBegins(),
			OrphanEnds:        a.ivals.OrphanEnds(),
			NegativeDurations: a.ivals.NegativeDurations(),
			BackwardTime:      a.backwardTime,
			Issues:            a.issues,
		},
	}

	for _, kb := range a.agg.Buckets() {
		rep.Stats = append(rep.Stats, report.StatRow{
			Group: kb.Key.Group,
			Name:  kb.Key.Name,
			Count: kb.Bucket.Count,
			Min:   kb.Bucket.Min,
			Mean:  kb.Bucket.Mean(),
			Max:   kb.Bucket.Max,
		})
	}
	for _, kc := range a.agg.Counters() {
		rep.Counters = append(rep.Counters, report.CounterRow{
			Group: kc.Key.Group,
			Name:  kc.Key.Name,
			Count: kc.Count,
		})
	}
	return rep
}
