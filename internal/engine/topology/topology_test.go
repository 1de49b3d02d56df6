package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crimson-sun/faultline/internal/model"
)

func ev(kind string, attrs map[string]string) model.Event {
	e := model.Event{Kind: kind, Attrs: make(map[string]model.Value, len(attrs))}
	for k, v := range attrs {
		e.Attrs[k] = model.StringValue(v)
	}
	return e
}

func machineStart(machineID, zoneID, dc, class string) model.Event {
	return ev(model.KindSimulatedMachineStart, map[string]string{
		"ProcessClass": class,
		"DataHall":     dc,
		"Locality":     "zoneid=" + zoneID + " processid=[unset] machineid=" + machineID + " dcid=" + dc,
	})
}

func processEvent(addr, zoneID, hall string) model.Event {
	return ev(model.KindSimulatedMachineProcess, map[string]string{
		"Address":  addr,
		"ZoneId":   zoneID,
		"DataHall": hall,
	})
}

func TestMachineAndProcessAnnouncement(t *testing.T) {
	b := NewBuilder(zaptest.NewLogger(t))
	b.Apply(machineStart("m1", "z1", "0", "storage"))
	b.Apply(processEvent("2.0.1.0:1:tls", "z1", "0"))

	snap := b.Snapshot()
	require.Len(t, snap.Datacenters, 1)
	assert.Equal(t, "0", snap.Datacenters[0].ID)
	assert.Equal(t, 1, snap.Machines)
	assert.Equal(t, 1, snap.Processes)
	assert.Equal(t, 1, snap.LiveProcesses)

	require.Len(t, snap.Datacenters[0].Halls, 1)
	m := snap.Datacenters[0].Halls[0].Machines[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "storage", m.Class)
	require.Len(t, m.Processes, 1)
	assert.Equal(t, "2.0.1.0:1", m.Processes[0].Address)
	assert.True(t, m.Processes[0].TLS)
	assert.True(t, m.Processes[0].Alive)
}

func TestAnnouncementIdempotence(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "0", "storage"))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))

	snap := b.Snapshot()
	assert.Equal(t, 1, snap.Processes, "re-announcement must update, not duplicate")
	assert.Equal(t, 1, snap.Machines)
}

func TestRoleUpdateInPlace(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "0", "unset"))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))
	b.Apply(ev(model.KindRole, map[string]string{"Address": "2.0.1.0:1", "As": "storage"}))

	snap := b.Snapshot()
	require.Len(t, snap.LiveRoles, 1)
	assert.Equal(t, RoleCount{Name: "storage", Count: 1}, snap.LiveRoles[0])
}

func TestRoleForUnknownAddressSynthesizesProcess(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(ev(model.KindRole, map[string]string{"Address": "9.9.9.9:4500", "As": "coordinator"}))

	snap := b.Snapshot()
	assert.Equal(t, 1, snap.Processes)
	require.Len(t, snap.LiveRoles, 1)
	assert.Equal(t, "coordinator", snap.LiveRoles[0].Name)
}

func TestKillMarksDeadButKeepsProcess(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "0", "storage"))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))
	b.Apply(ev(model.KindRole, map[string]string{"Address": "2.0.1.0:1", "As": "storage"}))
	b.Apply(ev(model.KindKillMachineProcess, map[string]string{"Machine": "2.0.1.0:1"}))

	snap := b.Snapshot()
	assert.Equal(t, 1, snap.Processes, "dead process stays in the tree")
	assert.Equal(t, 0, snap.LiveProcesses)
	assert.Empty(t, snap.LiveRoles)
}

func TestRebindAfterKillRevives(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "0", "storage"))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))
	b.Apply(ev(model.KindKillMachineProcess, map[string]string{"Machine": "2.0.1.0:1"}))
	b.Apply(processEvent("2.0.1.0:1", "z1", "0"))

	snap := b.Snapshot()
	assert.Equal(t, 1, snap.Processes)
	assert.Equal(t, 1, snap.LiveProcesses)
}

func TestAssassinationMarksMachineProcessesDead(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "1", "storage"))
	b.Apply(processEvent("3.4.3.1:1", "z1", "1"))
	b.Apply(processEvent("3.4.3.1:2", "z1", "1"))
	b.Apply(ev(model.KindAssassination, map[string]string{
		"TargetMachine": "zoneid=z1 processid=[unset] machineid=m1 dcid=1",
	}))

	snap := b.Snapshot()
	assert.Equal(t, 2, snap.Processes)
	assert.Equal(t, 0, snap.LiveProcesses)
}

func TestTestClassMachinesExcluded(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(machineStart("m1", "z1", "0", "test"))
	snap := b.Snapshot()
	assert.Equal(t, 0, snap.Machines)
}

func TestSnapshotOrderingIsDeterministic(t *testing.T) {
	build := func() Snapshot {
		b := NewBuilder(nil)
		for _, id := range []string{"m3", "m1", "m2"} {
			b.Apply(machineStart(id, "z-"+id, "2", "storage"))
		}
		b.Apply(machineStart("m9", "z9", "1", "transaction"))
		return b.Snapshot()
	}

	first := build()
	second := build()
	require.Equal(t, first, second)

	require.Len(t, first.Datacenters, 2)
	assert.Equal(t, "1", first.Datacenters[0].ID)
	assert.Equal(t, "2", first.Datacenters[1].ID)
	dc2 := first.Datacenters[1]
	require.Len(t, dc2.Halls, 1)
	var ids []string
	for _, m := range dc2.Halls[0].Machines {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
}

func TestLocalityParsing(t *testing.T) {
	loc := parseLocality("zoneid=a2da processid=[unset] machineid=b50a dcid=0 data_hall=0")
	assert.Equal(t, "b50a", loc["machineid"])
	assert.Equal(t, "0", loc["dcid"])
	assert.Equal(t, "[unset]", loc["processid"])
}
