// Package interval pairs begin/end trace events sharing a correlation
// key into closed intervals, with defined policies for the anomalies a
// lossy event stream produces (duplicate begins, orphan ends, time
// moving backward).
package interval

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/crimson-sun/faultline/internal/model"
)

// Key scopes: endpoint-pair clogs vs single-interface clogs.
const (
	ScopePair      = "pair"
	ScopeInterface = "interface"
)

// Key is the correlation tuple two events must share to pair up.
type Key struct {
	Scope string `json:"scope"`        // ScopePair or ScopeInterface
	From  string `json:"from"`         // source endpoint, or the IP for interface clogs
	To    string `json:"to,omitempty"` // destination endpoint; empty for interface clogs
	Queue string `json:"queue"`        // queue name; "All" when the event names none
}

// String renders the key for report rows, e.g. "2.0.1.0:1->3.4.3.1:1/All".
func (k Key) String() string {
	if k.To == "" {
		return fmt.Sprintf("%s/%s", k.From, k.Queue)
	}
	return fmt.Sprintf("%s->%s/%s", k.From, k.To, k.Queue)
}

// Interval is a closed span; Duration is always ≥ 0.
type Interval struct {
	Key   Key     `json:"key"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start in simulated seconds.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Open is an interval that never saw its end event.
type Open struct {
	Key   Key     `json:"key"`
	Start float64 `json:"start"`
}

// Matcher holds at most one open interval per key.
type Matcher struct {
	log  *zap.Logger
	open map[Key]float64

	staleBegins       int
	orphanEnds        int
	negativeDurations int
}

// NewMatcher creates a Matcher. A nil logger disables logging.
func NewMatcher(log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{log: log, open: make(map[Key]float64)}
}

// Observe routes one event. It returns a closed interval and true when
// the event completed one; begin events and unrecognized kinds return
// false. A duplicate begin closes the stale interval at zero duration
// and reopens — the emitted interval is the stale one.
func (m *Matcher) Observe(ev model.Event) (Interval, bool) {
	key, isBegin, ok := classify(ev)
	if !ok {
		return Interval{}, false
	}
	if isBegin {
		return m.begin(key, ev.Timestamp)
	}
	return m.end(key, ev.Timestamp)
}

func (m *Matcher) begin(key Key, ts float64) (Interval, bool) {
	stale, wasOpen := m.open[key]
	m.open[key] = ts
	if !wasOpen {
		return Interval{}, false
	}
	m.staleBegins++
	m.log.Warn("duplicate begin for open interval, closing stale at zero duration",
		zap.String("key", key.String()),
		zap.Float64("stale_start", stale),
		zap.Float64("new_start", ts))
	return Interval{Key: key, Start: stale, End: stale}, true
}

func (m *Matcher) end(key Key, ts float64) (Interval, bool) {
	start, wasOpen := m.open[key]
	if !wasOpen {
		m.orphanEnds++
		return Interval{}, false
	}
	delete(m.open, key)
	if ts < start {
		m.negativeDurations++
		m.log.Warn("interval ends before it starts, clamping to zero",
			zap.String("key", key.String()),
			zap.Float64("start", start),
			zap.Float64("end", ts))
		ts = start
	}
	return Interval{Key: key, Start: start, End: ts}, true
}

// OpenIntervals returns the still-open intervals, sorted by start time
// then key, for unterminated reporting at end of stream.
func (m *Matcher) OpenIntervals() []Open {
	out := make([]Open, 0, len(m.open))
	for key, start := range m.open {
		out = append(out, Open{Key: key, Start: start})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// StaleBegins counts duplicate begins resolved by close-and-reopen.
func (m *Matcher) StaleBegins() int { return m.staleBegins }

// OrphanEnds counts end events that matched no open interval.
func (m *Matcher) OrphanEnds() int { return m.orphanEnds }

// NegativeDurations counts intervals clamped to zero duration.
func (m *Matcher) NegativeDurations() int { return m.negativeDurations }

// classify derives the correlation key and begin/end direction for the
// clogging kinds. Events of other kinds do not participate.
func classify(ev model.Event) (Key, bool, bool) {
	switch ev.Kind {
	case model.KindClogging, model.KindUnclogging:
		return PairKey(ev), ev.Kind == model.KindClogging, true
	case model.KindClogInterface, model.KindUnclogInterface:
		return InterfaceKey(ev), ev.Kind == model.KindClogInterface, true
	default:
		return Key{}, false, false
	}
}

// PairKey derives the {From, To, Queue} key of an endpoint-pair clog.
func PairKey(ev model.Event) Key {
	from, _ := ev.Str("From")
	to, _ := ev.Str("To")
	return Key{Scope: ScopePair, From: from, To: to, Queue: queueOf(ev)}
}

// InterfaceKey derives the {IP, Queue} key of a single-interface clog.
func InterfaceKey(ev model.Event) Key {
	ip, _ := ev.Str("IP")
	return Key{Scope: ScopeInterface, From: ip, Queue: queueOf(ev)}
}

func queueOf(ev model.Event) string {
	if q, ok := ev.Str("Queue"); ok && q != "" {
		return q
	}
	return "All"
}
