package interval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crimson-sun/faultline/internal/model"
)

func clogEvent(kind string, ts float64, from, to string) model.Event {
	return model.Event{
		Timestamp: ts,
		Kind:      kind,
		Attrs: map[string]model.Value{
			"From": model.StringValue(from),
			"To":   model.StringValue(to),
		},
	}
}

func TestAlternatingBeginEndPairsExactly(t *testing.T) {
	m := NewMatcher(zaptest.NewLogger(t))

	const n = 5
	closed := 0
	for i := 0; i < n; i++ {
		start := float64(i * 10)
		_, ok := m.Observe(clogEvent(model.KindClogging, start, "A", "B"))
		require.False(t, ok, "begin must not emit")

		iv, ok := m.Observe(clogEvent(model.KindUnclogging, start+2.5, "A", "B"))
		require.True(t, ok)
		assert.InDelta(t, 2.5, iv.Duration(), 1e-9)
		assert.InDelta(t, start, iv.Start, 1e-9)
		closed++
	}
	assert.Equal(t, n, closed)
	assert.Empty(t, m.OpenIntervals())
	assert.Zero(t, m.StaleBegins())
	assert.Zero(t, m.OrphanEnds())
}

func TestUnterminatedIntervalReported(t *testing.T) {
	m := NewMatcher(nil)
	_, ok := m.Observe(clogEvent(model.KindClogging, 7.0, "A", "B"))
	require.False(t, ok)

	open := m.OpenIntervals()
	require.Len(t, open, 1)
	assert.InDelta(t, 7.0, open[0].Start, 1e-9)
	assert.Equal(t, "A->B/All", open[0].Key.String())
}

func TestStaleBeginClosesAtZeroAndReopens(t *testing.T) {
	m := NewMatcher(zaptest.NewLogger(t))

	_, ok := m.Observe(clogEvent(model.KindClogging, 1.0, "A", "B"))
	require.False(t, ok)

	iv, ok := m.Observe(clogEvent(model.KindClogging, 3.0, "A", "B"))
	require.True(t, ok, "duplicate begin must emit the stale interval")
	assert.InDelta(t, 0, iv.Duration(), 1e-9)
	assert.InDelta(t, 1.0, iv.Start, 1e-9)
	assert.Equal(t, 1, m.StaleBegins())

	// The fresh interval closes normally.
	iv, ok = m.Observe(clogEvent(model.KindUnclogging, 4.0, "A", "B"))
	require.True(t, ok)
	assert.InDelta(t, 1.0, iv.Duration(), 1e-9)
	assert.Empty(t, m.OpenIntervals())
}

func TestOrphanEndCountedNotEmitted(t *testing.T) {
	m := NewMatcher(nil)
	_, ok := m.Observe(clogEvent(model.KindUnclogging, 5.0, "A", "B"))
	assert.False(t, ok)
	assert.Equal(t, 1, m.OrphanEnds())
}

func TestNegativeDurationClampedToZero(t *testing.T) {
	m := NewMatcher(zaptest.NewLogger(t))
	m.Observe(clogEvent(model.KindClogging, 10.0, "A", "B"))

	iv, ok := m.Observe(clogEvent(model.KindUnclogging, 9.0, "A", "B"))
	require.True(t, ok)
	assert.InDelta(t, 0, iv.Duration(), 1e-9)
	assert.Equal(t, 1, m.NegativeDurations())
}

func TestKeysDoNotCrossMatch(t *testing.T) {
	m := NewMatcher(nil)
	m.Observe(clogEvent(model.KindClogging, 1.0, "A", "B"))

	_, ok := m.Observe(clogEvent(model.KindUnclogging, 2.0, "A", "C"))
	assert.False(t, ok, "end for a different key is an orphan")
	assert.Equal(t, 1, m.OrphanEnds())
	assert.Len(t, m.OpenIntervals(), 1)
}

func TestInterfaceClogKeyedByIPAndQueue(t *testing.T) {
	m := NewMatcher(nil)
	begin := model.Event{
		Timestamp: 1.0,
		Kind:      model.KindClogInterface,
		Attrs: map[string]model.Value{
			"IP":    model.StringValue("2.0.1.0"),
			"Queue": model.StringValue("Send"),
		},
	}
	end := begin
	end.Kind = model.KindUnclogInterface
	end.Timestamp = 1.25

	_, ok := m.Observe(begin)
	require.False(t, ok)
	iv, ok := m.Observe(end)
	require.True(t, ok)
	assert.InDelta(t, 0.25, iv.Duration(), 1e-9)
	assert.Equal(t, "2.0.1.0/Send", iv.Key.String())
}

func TestOpenIntervalsSorted(t *testing.T) {
	m := NewMatcher(nil)
	for i := 4; i >= 0; i-- {
		m.Observe(clogEvent(model.KindClogging, float64(i), fmt.Sprintf("h%d", i), "B"))
	}
	open := m.OpenIntervals()
	require.Len(t, open, 5)
	for i := 1; i < len(open); i++ {
		assert.Less(t, open[i-1].Start, open[i].Start)
	}
}

func TestNonCloggingKindsIgnored(t *testing.T) {
	m := NewMatcher(nil)
	_, ok := m.Observe(model.Event{Kind: "Assassination", Timestamp: 1})
	assert.False(t, ok)
	assert.Empty(t, m.OpenIntervals())
}
