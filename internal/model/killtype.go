package model

import "fmt"

// KillType is the simulator's kill-method ordinal carried on
// Assassination and KillMachineProcess events.
type KillType int64

const (
	KillReboot KillType = iota
	KillRebootAndDelete
	KillInstantly
	KillInjectFaults
	KillFailDisk
	KillRebootProcessAndSwitch
)

var killTypeNames = map[KillType]string{
	KillReboot:                 "Reboot",
	KillRebootAndDelete:        "RebootAndDelete",
	KillInstantly:              "KillInstantly",
	KillInjectFaults:           "InjectFaults",
	KillFailDisk:               "FailDisk",
	KillRebootProcessAndSwitch: "RebootProcessAndSwitch",
}

// String returns the kill method name, or "Unknown(n)" for ordinals the
// simulator may add later.
func (k KillType) String() string {
	if name, ok := killTypeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int64(k))
}

// KillTypeOf reads the KillType attribute of an event. The second
// return is false when the attribute is absent or non-numeric.
func KillTypeOf(ev Event) (KillType, bool) {
	n, ok := ev.Num("KillType")
	if !ok {
		return 0, false
	}
	return KillType(int64(n)), true
}
