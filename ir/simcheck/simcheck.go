// Package simcheck is a functional, register-level cycle model used to
// check the round-trip and scan-disabled-equivalence properties of §8
// against a transformed design without needing a real HDL simulator. It
// is built as a github.com/sarchlab/akita/v4/sim TickingComponent,
// grounded on core.Builder.Build/core.Core in the teacher package (a
// struct embedding *sim.TickingComponent, driven by an engine's periodic
// tick schedule) — the one place in this repository an akita DES engine
// fits: everywhere else is a one-shot compiler pass or a host process
// talking over a socket, neither of which has anything to schedule.
package simcheck

import (
	"github.com/sarchlab/akita/v4/sim"
)

// NextStateFunc computes the combinational next state of the scan chain
// from its current value, the way a transformed module's D-inputs would
// be driven by its own Q outputs and primary inputs. simcheck does not
// interpret the netlist itself (that is what HDL simulation is for); it
// takes the next-state function as given, so tests can supply a small
// closure capturing the specific fixture's logic.
type NextStateFunc func(bits []byte) []byte

// Model is a single synchronous register bank plus its scan chain,
// advanced one clock edge per Tick: scan shift when ScanEnable is set,
// the supplied NextStateFunc when LoomEnable is set (and scan is not),
// hold otherwise — exactly the enable priority instrumentFlipFlops
// wires into every non-memory flip-flop's EN port (§4.4.4).
type Model struct {
	*sim.TickingComponent

	Bits    []byte // one byte per scan-chain bit, '0' or '1'
	NextFn  NextStateFunc

	ScanEnable bool
	ScanIn     byte
	ScanOut    byte
	LoomEnable bool

	Cycles int
}

// NewModel creates a Model with chainLen scan bits, all initially '0',
// driven by engine at freq.
func NewModel(name string, engine sim.Engine, freq sim.Freq, chainLen int, next NextStateFunc) *Model {
	m := &Model{
		Bits:   make([]byte, chainLen),
		NextFn: next,
	}
	for i := range m.Bits {
		m.Bits[i] = '0'
	}
	m.TickingComponent = sim.NewTickingComponent(name, engine, freq, m)
	return m
}

// Tick implements sim.Ticker: shift, update, or hold the scan chain
// according to the current enable lines, and report whether state
// changed so the engine knows whether to keep scheduling ticks.
func (m *Model) Tick(now sim.VTimeInSec) (madeProgress bool) {
	before := string(m.Bits)

	switch {
	case m.ScanEnable:
		m.ScanOut = m.Bits[len(m.Bits)-1]
		copy(m.Bits[1:], m.Bits[:len(m.Bits)-1])
		m.Bits[0] = m.ScanIn
	case m.LoomEnable:
		m.Bits = m.NextFn(m.Bits)
	}
	m.Cycles++

	return string(m.Bits) != before
}

// Capture returns a copy of the chain's current bits, for comparing
// against a later Restore (§8's scan-capture/scan-restore round-trip
// law).
func (m *Model) Capture() []byte {
	return append([]byte(nil), m.Bits...)
}

// Restore overwrites the chain's bits directly (modeling an instantaneous
// host write through the scan region rather than shifting it in bit by
// bit, since the round-trip law is about the resulting state, not the
// shift mechanics already covered by Tick's ScanEnable branch).
func (m *Model) Restore(bits []byte) {
	copy(m.Bits, bits)
}

// RunCycles drives exactly n clock edges with the given enable/
// scan-enable lines held constant. Each edge is a direct Tick call at the
// next period boundary (sim.VTimeInSec is the engine's native time unit,
// per freq's Period()); engine.Run() is invoked afterward so any events
// the component itself scheduled along the way (as driver.Run() does in
// the teacher's "TickNow() then Engine.Run()" pattern) still drain before
// the caller inspects the resulting state.
func RunCycles(m *Model, engine sim.Engine, freq sim.Freq, n int, loomEnable, scanEnable bool, scanIn byte) {
	m.LoomEnable = loomEnable
	m.ScanEnable = scanEnable
	m.ScanIn = scanIn

	period := freq.Period()
	var now sim.VTimeInSec
	for i := 0; i < n; i++ {
		now += period
		m.Tick(now)
	}
	engine.Run()
}
