package model

// Event kinds the engine recognizes. The set is open: kinds not listed
// here still parse and count, they just don't feed any aggregate.
const (
	KindProgramStart            = "ProgramStart"
	KindElapsedTime             = "ElapsedTime"
	KindSimulatedMachineStart   = "SimulatedMachineStart"
	KindSimulatedMachineProcess = "SimulatedMachineProcess"
	KindRole                    = "Role"

	KindClogging        = "Clogging"
	KindUnclogging      = "Unclogging"
	KindCloggingPair    = "CloggingPair"
	KindClogInterface   = "ClogInterface"
	KindUnclogInterface = "UnclogInterface"

	KindCoordinatorsChange  = "CoordinatorsChangeBeforeCommit"
	KindCoordinatorsChanged = "CoordinatorsChanged"

	KindAssassination      = "Assassination"
	KindKillMachineProcess = "KillMachineProcess"

	KindDiskSwap       = "DiskSwap"
	KindSetDiskFailure = "SetDiskFailure"
	KindCorruptedBlock = "CorruptedBlock"
)
