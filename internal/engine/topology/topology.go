// Package topology reconstructs the simulated cluster tree
// (datacenter → data hall → machine → process) from announcement, role,
// and kill events, applied strictly in stream order.
package topology

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/crimson-sun/faultline/internal/model"
)

// Process is one simulated process, identified by its address. The same
// address re-announced after a kill+restart updates this entry in place.
type Process struct {
	Address string `json:"address"`
	Class   string `json:"class,omitempty"`
	TLS     bool   `json:"tls,omitempty"`
	Alive   bool   `json:"alive"`
}

type machineNode struct {
	id    string
	dc    string
	hall  string
	class string
	procs map[string]*Process
}

// Builder consumes topology-relevant events and owns the mutable tree.
// Events of any other kind are a no-op.
type Builder struct {
	log      *zap.Logger
	machines map[string]*machineNode
	procs    map[string]*Process // address index across all machines
	procHome map[string]string   // address → machine id
	zones    map[string]string   // zone id → machine id
}

// NewBuilder creates an empty Builder. A nil logger disables logging.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		log:      log,
		machines: make(map[string]*machineNode),
		procs:    make(map[string]*Process),
		procHome: make(map[string]string),
		zones:    make(map[string]string),
	}
}

// Apply routes one event into the tree. Later events for the same
// address always win over earlier ones.
func (b *Builder) Apply(ev model.Event) {
	switch ev.Kind {
	case model.KindSimulatedMachineStart:
		b.applyMachineStart(ev)
	case model.KindSimulatedMachineProcess:
		b.applyProcess(ev)
	case model.KindRole:
		b.applyRole(ev)
	case model.KindKillMachineProcess:
		b.applyKill(ev)
	case model.KindAssassination:
		b.applyAssassination(ev)
	}
}

func (b *Builder) applyMachineStart(ev model.Event) {
	class, _ := ev.Str("ProcessClass")
	if class == "test" {
		return // harness machines are not part of the cluster
	}

	locality, _ := ev.Str("Locality")
	loc := parseLocality(locality)

	id := loc["machineid"]
	if id == "" {
		id = loc["zoneid"]
	}
	if id == "" {
		if ips, ok := ev.Str("MachineIPs"); ok && ips != "" {
			id = strings.Fields(ips)[0]
		}
	}
	if id == "" {
		b.log.Debug("machine start without identity, skipping")
		return
	}

	hall, _ := ev.Str("DataHall")
	m := b.ensureMachine(id)
	m.class = class
	if dc := loc["dcid"]; dc != "" {
		m.dc = dc
	}
	if hall != "" {
		m.hall = hall
	}
	if zone := loc["zoneid"]; zone != "" {
		b.zones[zone] = id
	}
}

func (b *Builder) applyProcess(ev model.Event) {
	rawAddr, ok := ev.Str("Address")
	if !ok || rawAddr == "" {
		return
	}
	addr, tls := splitTLS(rawAddr)

	machineID := ""
	if zone, ok := ev.Str("ZoneId"); ok {
		if id, ok := b.zones[zone]; ok {
			machineID = id
		} else if zone != "" {
			machineID = zone // machine not announced yet; key by zone
		}
	}
	if machineID == "" {
		machineID = hostOf(addr)
	}

	m := b.ensureMachine(machineID)
	if hall, ok := ev.Str("DataHall"); ok && hall != "" {
		m.hall = hall
	}
	b.placeProcess(m, addr, tls)
}

func (b *Builder) applyRole(ev model.Event) {
	addr, ok := ev.Str("Address")
	if !ok {
		addr, _ = ev.Str("Machine")
	}
	if addr == "" {
		return
	}
	addr, tls := splitTLS(addr)

	role, ok := ev.Str("As")
	if !ok {
		role, _ = ev.Str("Roles")
	}

	p, known := b.procs[addr]
	if !known {
		// Best-effort completeness: synthesize a minimal entry
		// rather than discarding the role assignment.
		m := b.ensureMachine(hostOf(addr))
		p = b.placeProcess(m, addr, tls)
	}
	if role != "" {
		p.Class = role
	}
}

func (b *Builder) applyKill(ev model.Event) {
	addr, ok := ev.Str("Address")
	if !ok {
		addr, _ = ev.Str("Machine")
	}
	if addr == "" {
		return
	}
	addr, _ = splitTLS(addr)
	if p, ok := b.procs[addr]; ok {
		p.Alive = false
	}
}

func (b *Builder) applyAssassination(ev model.Event) {
	target, ok := ev.Str("TargetMachine")
	if !ok || target == "" {
		return // datacenter-level kills carry no machine to mark
	}
	loc := parseLocality(target)
	id := loc["machineid"]
	if id == "" {
		id = loc["zoneid"]
	}
	if id == "" {
		return
	}
	if zoneOwner, ok := b.zones[id]; ok {
		id = zoneOwner
	}
	m, ok := b.machines[id]
	if !ok {
		return
	}
	for _, p := range m.procs {
		p.Alive = false
	}
}

func (b *Builder) ensureMachine(id string) *machineNode {
	m, ok := b.machines[id]
	if !ok {
		m = &machineNode{id: id, procs: make(map[string]*Process)}
		b.machines[id] = m
	}
	return m
}

// placeProcess inserts or updates the process at addr under machine m.
// A re-announcement revives the process and may move it between machines.
func (b *Builder) placeProcess(m *machineNode, addr string, tls bool) *Process {
	p, ok := b.procs[addr]
	if !ok {
		p = &Process{Address: addr, TLS: tls, Alive: true}
		b.procs[addr] = p
	} else {
		p.TLS = tls
		p.Alive = true
		if home := b.procHome[addr]; home != m.id {
			if old, ok := b.machines[home]; ok {
				delete(old.procs, addr)
			}
		}
	}
	m.procs[addr] = p
	b.procHome[addr] = m.id
	return p
}

func splitTLS(addr string) (string, bool) {
	if rest, ok := strings.CutSuffix(addr, ":tls"); ok {
		return rest, true
	}
	return addr, false
}

func hostOf(addr string) string {
	if i := strings.LastIndexByte(addr, ':'); i > 0 {
		return addr[:i]
	}
	return addr
}

// --- Snapshot ---

// RoleCount is one (name, count) row of a role or class breakdown.
type RoleCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProcessInfo mirrors Process in the immutable snapshot.
type ProcessInfo struct {
	Address string `json:"address"`
	Class   string `json:"class,omitempty"`
	TLS     bool   `json:"tls,omitempty"`
	Alive   bool   `json:"alive"`
}

// MachineInfo is one machine with its processes, sorted by address.
type MachineInfo struct {
	ID        string        `json:"id"`
	Class     string        `json:"class,omitempty"`
	Processes []ProcessInfo `json:"processes,omitempty"`
}

// DataHall groups machines under one hall ID ("" for flat topologies).
type DataHall struct {
	ID       string        `json:"id,omitempty"`
	Machines []MachineInfo `json:"machines"`
}

// Datacenter is one datacenter with its halls and a machine-class
// breakdown for summary rendering.
type Datacenter struct {
	ID       string      `json:"id,omitempty"`
	Halls    []DataHall  `json:"halls"`
	Machines int         `json:"machines"`
	Classes  []RoleCount `json:"classes,omitempty"`
}

// Snapshot is the final, immutable topology: everything sorted so that
// identical inputs render byte-identical output.
type Snapshot struct {
	Datacenters   []Datacenter `json:"datacenters"`
	Machines      int          `json:"machines"`
	Processes     int          `json:"processes"`
	LiveProcesses int          `json:"live_processes"`
	LiveRoles     []RoleCount  `json:"live_roles,omitempty"`
}

// Snapshot freezes the current tree. Dead processes stay in the tree
// but are excluded from live role counts.
func (b *Builder) Snapshot() Snapshot {
	byDC := make(map[string]map[string][]*machineNode) // dc → hall → machines
	for _, m := range b.machines {
		halls, ok := byDC[m.dc]
		if !ok {
			halls = make(map[string][]*machineNode)
			byDC[m.dc] = halls
		}
		halls[m.hall] = append(halls[m.hall], m)
	}

	snap := Snapshot{Machines: len(b.machines), Processes: len(b.procs)}

	liveRoles := make(map[string]int)
	for _, p := range b.procs {
		if p.Alive {
			snap.LiveProcesses++
			liveRoles[p.Class]++
		}
	}
	snap.LiveRoles = sortedCounts(liveRoles)

	for _, dcID := range sortedKeys(byDC) {
		halls := byDC[dcID]
		dc := Datacenter{ID: dcID}
		classes := make(map[string]int)

		for _, hallID := range sortedKeys(halls) {
			hall := DataHall{ID: hallID}
			machines := halls[hallID]
			sort.Slice(machines, func(i, j int) bool { return machines[i].id < machines[j].id })
			for _, m := range machines {
				classes[m.class]++
				dc.Machines++
				hall.Machines = append(hall.Machines, freezeMachine(m))
			}
			dc.Halls = append(dc.Halls, hall)
		}

		dc.Classes = sortedCounts(classes)
		snap.Datacenters = append(snap.Datacenters, dc)
	}
	return snap
}

func freezeMachine(m *machineNode) MachineInfo {
	info := MachineInfo{ID: m.id, Class: m.class}
	addrs := make([]string, 0, len(m.procs))
	for addr := range m.procs {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		p := m.procs[addr]
		info.Processes = append(info.Processes, ProcessInfo{
			Address: p.Address,
			Class:   p.Class,
			TLS:     p.TLS,
			Alive:   p.Alive,
		})
	}
	return info
}

func sortedCounts(counts map[string]int) []RoleCount {
	out := make([]RoleCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, RoleCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
