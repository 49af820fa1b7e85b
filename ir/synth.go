package ir

// synth.go holds small combinational-logic builders shared by the passes
// that synthesize new logic from scratch (mem_shadow's address decode and
// mux tree, loom_instrument's priority cascade, emu_top's tie-offs). Each
// helper creates one cell plus its output wire and returns the output as a
// Signal, so callers can chain them like an expression builder instead of
// hand-rolling cell/wire bookkeeping at every call site.

func newGateOutput(m *Module, prefix string, width int) (*Wire, Signal) {
	name := m.Fresh(prefix)
	w := m.AddWire(name, width)
	return w, WireSignal(w)
}

// And returns a AND b, bitwise, widened to the wider operand's width.
func And(m *Module, a, b Signal) Signal {
	w := maxInt(a.Width(), b.Width())
	a = a.ZeroExtend(w)
	b = b.ZeroExtend(w)
	c := m.AddCell(m.Fresh("loom_and"), CellAnd)
	c.Params["WIDTH"] = itoa(w)
	c.Ports["A"] = a
	c.Ports["B"] = b
	_, y := newGateOutput(m, "loom_and_y", w)
	c.Ports["Y"] = y
	return y
}

// Or returns a OR b, bitwise, widened to the wider operand's width.
func Or(m *Module, a, b Signal) Signal {
	w := maxInt(a.Width(), b.Width())
	a = a.ZeroExtend(w)
	b = b.ZeroExtend(w)
	c := m.AddCell(m.Fresh("loom_or"), CellOr)
	c.Params["WIDTH"] = itoa(w)
	c.Ports["A"] = a
	c.Ports["B"] = b
	_, y := newGateOutput(m, "loom_or_y", w)
	c.Ports["Y"] = y
	return y
}

// OrAll reduces a list of same-width signals with repeated Or, returning a
// constant-0 signal of the given width if parts is empty.
func OrAll(m *Module, width int, parts ...Signal) Signal {
	if len(parts) == 0 {
		return ConstSignal("0").ZeroExtend(width)
	}
	acc := parts[0]
	for _, p := range parts[1:] {
		acc = Or(m, acc, p)
	}
	return acc
}

// Not returns the bitwise complement of a.
func Not(m *Module, a Signal) Signal {
	c := m.AddCell(m.Fresh("loom_not"), CellNot)
	c.Params["WIDTH"] = itoa(a.Width())
	c.Ports["A"] = a
	_, y := newGateOutput(m, "loom_not_y", a.Width())
	c.Ports["Y"] = y
	return y
}

// Mux2 selects b when sel is 1, else a. Both operands are widened to the
// wider operand's width.
func Mux2(m *Module, sel Signal, a, b Signal) Signal {
	w := maxInt(a.Width(), b.Width())
	a = a.ZeroExtend(w)
	b = b.ZeroExtend(w)
	c := m.AddCell(m.Fresh("loom_mux"), CellMux)
	c.Ports["A"] = a
	c.Ports["B"] = b
	c.Ports["S"] = sel
	_, y := newGateOutput(m, "loom_mux_y", w)
	c.Ports["Y"] = y
	return y
}

// PriorityCascade builds a chain of Mux2 cells implementing "earliest
// entry whose select is 1 wins", with deflt as the value when no select
// fires. Entries are evaluated last-to-first so that entries[0]'s select
// has final priority once the cascade collapses.
func PriorityCascade(m *Module, selects []Signal, values []Signal, deflt Signal) Signal {
	if len(selects) != len(values) {
		panic("ir: PriorityCascade requires equal-length selects and values")
	}
	acc := deflt
	for i := len(selects) - 1; i >= 0; i-- {
		acc = Mux2(m, selects[i], acc, values[i])
	}
	return acc
}

// ReduceOr returns the 1-bit OR-reduction of a.
func ReduceOr(m *Module, a Signal) Signal {
	c := m.AddCell(m.Fresh("loom_rdor"), CellReduceOr)
	c.Ports["A"] = a
	_, y := newGateOutput(m, "loom_rdor_y", 1)
	c.Ports["Y"] = y
	return y
}

// Eq returns the 1-bit equality of a and b, widened to the wider operand.
func Eq(m *Module, a, b Signal) Signal {
	w := maxInt(a.Width(), b.Width())
	a = a.ZeroExtend(w)
	b = b.ZeroExtend(w)
	c := m.AddCell(m.Fresh("loom_eq"), CellEq)
	c.Ports["A"] = a
	c.Ports["B"] = b
	_, y := newGateOutput(m, "loom_eq_y", 1)
	c.Ports["Y"] = y
	return y
}

// Sub returns a-b computed at the given result width (both operands
// zero-extended to that width first), in two's complement — with a guard
// bit above both operands, the result's top bit is the borrow used by
// Ge/Lt below.
func Sub(m *Module, a, b Signal, width int) Signal {
	a = a.ZeroExtend(width)
	b = b.ZeroExtend(width)
	c := m.AddCell(m.Fresh("loom_sub"), CellSub)
	c.Ports["A"] = a
	c.Ports["B"] = b
	_, y := newGateOutput(m, "loom_sub_y", width)
	c.Ports["Y"] = y
	return y
}

// Ge returns the 1-bit unsigned "a >= b" comparison, built from Sub: zero
// extend both operands by one extra guard bit, subtract, and test that the
// guard bit of the result is clear (no borrow occurred).
func Ge(m *Module, a, b Signal, width int) Signal {
	guard := width + 1
	diff := Sub(m, a, b, guard)
	borrow := diff.Slice(width, guard)
	return Not(m, borrow)
}

// Lt returns the 1-bit unsigned "a < b" comparison.
func Lt(m *Module, a, b Signal, width int) Signal {
	return Not(m, Ge(m, a, b, width))
}

// DriveWire makes dst (typically an output port wire already created by
// AddPort) carry src's value, by building a buffering $or-with-zero cell
// whose Y targets dst's bits directly — the one gate builder in this file
// that writes into a caller-supplied wire instead of allocating a fresh
// one, used whenever a synthesized signal must end up on a named port.
func DriveWire(m *Module, dst *Wire, src Signal) {
	w := dst.Width()
	src = src.ZeroExtend(w)
	zero := ConstSignal("0").ZeroExtend(w)
	c := m.AddCell(m.Fresh("loom_buf"), CellOr)
	c.Params["WIDTH"] = itoa(w)
	c.Ports["A"] = src
	c.Ports["B"] = zero
	c.Ports["Y"] = WireSignal(dst)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
