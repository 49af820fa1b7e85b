// Package dpi is the host side of the DPI bridge: a user-registered
// callback table, the dispatch table loaded from the compiler's DPI
// metadata artifact, and the service loop that drains pending calls each
// round. Grounded on instr.ISA's nameToBehavior map shape (a flat
// name-to-behavior registry populated once at startup, looked up by
// name at call time) adapted from instruction decode to DPI dispatch.
package dpi

import "fmt"

// CallResult is what a DPI callback hands back to the service loop: the
// return value (ignored if the function has none) and, in argument order,
// the values of any output-direction arguments the function declares.
// Keeping both in one struct makes the write-back order a property of
// ServiceLoop.serviceOne alone, not of the callback signature.
type CallResult struct {
	Return  uint64
	OutArgs []uint64
}

// Callback is a user-registered DPI function implementation. args is the
// ordered list of this call's input-readable register values (§6.3
// order, output-direction registers included since the host must read a
// register before it can overwrite it).
type Callback func(args []uint64) (CallResult, error)

// Callbacks is the registry of user-provided DPI implementations, keyed
// by function name exactly as it appears in the DPI metadata document.
type Callbacks struct {
	byName map[string]Callback
}

// NewCallbacks returns an empty registry.
func NewCallbacks() *Callbacks {
	return &Callbacks{byName: make(map[string]Callback)}
}

// Register binds name to fn, overwriting any previous binding — mirrors
// instr.ISA.registerNewInst's last-registration-wins semantics.
func (c *Callbacks) Register(name string, fn Callback) {
	c.byName[name] = fn
}

// Lookup returns the callback bound to name, if any.
func (c *Callbacks) Lookup(name string) (Callback, bool) {
	fn, ok := c.byName[name]
	return fn, ok
}

// RegisterPrint installs a built-in callback for a lowered $print/$display
// call: it receives the pre-formatted argument values and writes directly
// to stdout via format, matching the "stdout receives val=<x>" behavior
// of the $display round-trip scenario (§8).
func (c *Callbacks) RegisterPrint(name, format string) {
	c.Register(name, func(args []uint64) (CallResult, error) {
		vals := make([]interface{}, len(args))
		for i, a := range args {
			vals[i] = a
		}
		fmt.Printf(format, vals...)
		return CallResult{}, nil
	})
}
