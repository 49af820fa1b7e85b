// Package regmap defines the host-visible AXI-Lite register layout (§6.1):
// byte-addressed, 32-bit data, little-endian, behind the top-level demux's
// three address regions. It is pure layout — constants and decode/encode
// helpers — with no transport or state of its own, the same separation the
// teacher draws between `instr`'s ISA tables and the core that executes
// against them.
package regmap

// Controller region offsets (low addresses).
const (
	OffState      = 0x0000 // idle=0, running=1, frozen=2, error=3
	OffCycleLo    = 0x0004
	OffCycleHi    = 0x0008
	OffDesignID   = 0x000C
	OffVersion    = 0x0010
	OffDPICount   = 0x0014
	OffMaxArgs    = 0x0018
	OffFinishCode = 0x001C
	OffControl    = 0x0020 // bit0=run, bit1=stop, bit2=reset
	OffPending    = 0x0024 // pending mask — one bit per DPI function
	OffStepCount  = 0x0028 // cycles to run before auto-stop; 0 = run free
)

// Controller state register values.
const (
	StateIdle = iota
	StateRunning
	StateFrozen
	StateError
)

// Control register bits.
const (
	CtrlRun   = 1 << 0
	CtrlStop  = 1 << 1
	CtrlReset = 1 << 2
)

// DPI region layout. Each function occupies a fixed 64-byte block starting
// at DPIBase, addressed DPIBase + id*FuncBlockSize.
const (
	DPIBase      = 0x00100
	FuncBlockSize = 64

	// Offsets within a function's block.
	FuncOffStatus       = 0x00 // bit0=pending, bit1=done
	FuncOffPendingClear = 0x04 // write (any value) clears the pending bit
	FuncOffArgsBase     = 0x08 // args[i] at FuncOffArgsBase + i*4

	// MaxArgsPerBlock is how many 32-bit argument registers fit before the
	// trailing return registers, given FuncBlockSize: (64 - 8 - 8) / 4.
	MaxArgsPerBlock = 12
)

// FuncOffRetLo and FuncOffRetHi are the two-word return value, placed
// immediately after the maximum argument count so every function's block
// has the same fixed layout regardless of its own argument count.
const (
	FuncOffRetLo = FuncOffArgsBase + MaxArgsPerBlock*4
	FuncOffRetHi = FuncOffRetLo + 4
)

// Status word bits. StatusError is distinct from StatusDone so a host
// polling a function's block can tell a recovered error (§7: "unknown
// function" case) apart from a real completion instead of seeing a bare
// done bit either way.
const (
	StatusPending = 1 << 0
	StatusDone    = 1 << 1
	StatusError   = 1 << 2
)

// Scan region layout (the third AXI-Lite segment of §4.6's demux; §6.1
// names only the controller and DPI regions explicitly, so the scan
// region's own register layout is this package's decision: a control
// word (capture/restore/busy) plus one 32-bit data register per chain
// word, addressed the same way the DPI region addresses per-function
// blocks).
const (
	ScanBase        = 0x00200
	ScanOffControl  = 0x0000 // bit0=capture, bit1=restore, bit2=busy (RO)
	ScanOffDataBase = 0x0004
)

// Scan control register bits.
const (
	ScanCtrlCapture = 1 << 0
	ScanCtrlRestore = 1 << 1
	ScanCtrlBusy    = 1 << 2
)

// ScanControlOffset is the scan region's control register address.
func ScanControlOffset() int { return ScanBase + ScanOffControl }

// ScanDataOffset is the address of the wordIndex-th 32-bit word of the
// scan chain image.
func ScanDataOffset(wordIndex int) int { return ScanBase + ScanOffDataBase + wordIndex*4 }

// FuncBase returns the byte address of function id's block.
func FuncBase(id int) int {
	return DPIBase + id*FuncBlockSize
}

// ArgOffset returns the byte address of argument i of function id.
func ArgOffset(id, i int) int {
	return FuncBase(id) + FuncOffArgsBase + i*4
}

// StatusOffset, PendingClearOffset, RetLoOffset, RetHiOffset return the
// byte address of the corresponding field of function id's block.
func StatusOffset(id int) int       { return FuncBase(id) + FuncOffStatus }
func PendingClearOffset(id int) int { return FuncBase(id) + FuncOffPendingClear }
func RetLoOffset(id int) int        { return FuncBase(id) + FuncOffRetLo }
func RetHiOffset(id int) int        { return FuncBase(id) + FuncOffRetHi }
