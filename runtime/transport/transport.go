// Package transport defines the host's view of the simulation transport
// (§5, §6.2): a narrow interface the DPI service loop and shell drive
// against, with a unixsocket implementation of the exact 12-byte framed
// protocol and a pcie stub for real hardware. Modeling "simulation
// binary" as an opaque collaborator behind this interface (per
// SPEC_FULL.md §2) is what lets the runtime's own tests substitute a fake
// instead of a real Verilator/Vivado process.
package transport

import "context"

// Transport is the narrow seam between the host runtime and whatever is
// driving the emulation: a UNIX socket to a simulation process today, a
// PCIe device tomorrow.
type Transport interface {
	// ReadReg performs a blocking register read at the given byte address.
	ReadReg(addr uint32) (uint32, error)
	// WriteReg performs a blocking register write.
	WriteReg(addr, data uint32) error
	// WaitIRQ blocks until an IRQ edge arrives or ctx is cancelled,
	// returning the rising-edge bitmask.
	WaitIRQ(ctx context.Context) (uint32, error)
	// Poll returns immediately, without blocking, with the next queued
	// IRQ bitmask and pending=true, or pending=false if none is queued,
	// for polling-mode service loops.
	Poll() (irq uint32, pending bool, err error)
	// Close sends the shutdown message (if still connected) and releases
	// the underlying connection.
	Close() error
}
