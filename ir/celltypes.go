package ir

// CellType identifies a primitive cell kind, or an instantiated submodule
// (in which case Type holds the submodule's name). Primitive types use the
// leading '$' sigil, matching the naming convention for compiler-internal
// identifiers.
type CellType string

// Flip-flop family. Every variant has CLK, D, Q ports and a WIDTH
// parameter; EN is always 1 bit regardless of WIDTH.
const (
	CellDFF    CellType = "$dff"    // plain
	CellDFFE   CellType = "$dffe"   // with enable
	CellADFF   CellType = "$adff"   // with async reset
	CellADFFE  CellType = "$adffe"  // with enable + async reset
	CellSDFF   CellType = "$sdff"   // with sync reset
	CellSDFFE  CellType = "$sdffe"  // with enable + sync reset
	CellDFFSR  CellType = "$dffsr"  // with set/clear
	CellDFFSRE CellType = "$dffsre" // with enable + set/clear
	CellALDFF  CellType = "$aldff"  // with async load
	CellALDFFE CellType = "$aldffe" // with enable + async load
)

// Memory and combinational primitives.
const (
	CellMem      CellType = "$mem"
	CellAnd      CellType = "$and"
	CellOr       CellType = "$or"
	CellNot      CellType = "$not"
	CellMux      CellType = "$mux"  // 2:1
	CellPmux     CellType = "$pmux" // N-way priority mux
	CellReduceOr CellType = "$reduce_or"
	CellEq       CellType = "$eq"
	CellSub      CellType = "$sub"
	CellExtend   CellType = "$extend" // zero/sign extension; SIGNED param selects which
)

// Opaque call cells created by the front end.
const (
	CellDPICall CellType = "$__loom_dpi_call"
	CellFinish  CellType = "$__loom_finish"
	CellPrint   CellType = "$print"
)

// IsFlipFlop reports whether t is one of the flip-flop family.
func IsFlipFlop(t CellType) bool {
	switch t {
	case CellDFF, CellDFFE, CellADFF, CellADFFE, CellSDFF, CellSDFFE,
		CellDFFSR, CellDFFSRE, CellALDFF, CellALDFFE:
		return true
	}
	return false
}

// HasEnable reports whether t already has an EN port.
func HasEnable(t CellType) bool {
	switch t {
	case CellDFFE, CellADFFE, CellSDFFE, CellDFFSRE, CellALDFFE:
		return true
	}
	return false
}

// HasReset reports whether t carries an async or sync reset port (ARST or
// SRST). Set/clear and async-load variants are a distinct mechanism and do
// not count, matching the taxonomy in §3.
func HasReset(t CellType) bool {
	switch t {
	case CellADFF, CellADFFE, CellSDFF, CellSDFFE:
		return true
	}
	return false
}

// IsAsyncReset reports whether t's reset (if any) is asynchronous.
func IsAsyncReset(t CellType) bool {
	return t == CellADFF || t == CellADFFE
}

// EnableVariant returns the enable-bearing equivalent of t, e.g.
// CellDFF -> CellDFFE, CellADFF -> CellADFFE. Panics if t already has an
// enable or is not a flip-flop.
func EnableVariant(t CellType) CellType {
	switch t {
	case CellDFF:
		return CellDFFE
	case CellADFF:
		return CellADFFE
	case CellSDFF:
		return CellSDFFE
	case CellDFFSR:
		return CellDFFSRE
	case CellALDFF:
		return CellALDFFE
	}
	panic("ir: " + string(t) + " has no distinct enable variant")
}

// NoResetVariant returns the reset-free equivalent of t, e.g.
// CellADFF -> CellDFF, CellSDFFE -> CellDFFE. Panics if t has no reset.
func NoResetVariant(t CellType) CellType {
	switch t {
	case CellADFF, CellSDFF:
		return CellDFF
	case CellADFFE, CellSDFFE:
		return CellDFFE
	}
	panic("ir: " + string(t) + " has no reset to strip")
}

// IsMemoryOutputWire reports whether a Q-wire name carries the marker
// substring mem_shadow leaves on memory read-data wires, so
// loom_instrument's flip-flop walk can skip memory output registers (§4.4.4).
func IsMemoryOutputWire(name string) bool {
	return containsSubstr(name, "loom_shadow_") || containsSubstr(name, "_memrd_")
}

func containsSubstr(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
