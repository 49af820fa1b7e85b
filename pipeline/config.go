// Package pipeline drives the five ordered netlist passes (§4.1) over a
// Design loaded from source, and writes the resulting artifacts. The
// ordered pass list, not scattered call sites, is the single place the
// "fixed pass order" contract of §4.1 lives.
package pipeline

import "github.com/sarchlab/loom/ir"

// Config is a fluent builder for a pipeline run, grounded on the
// teacher's config.DeviceBuilder/confignew builder shape: value-receiver
// With* methods that return a new Config rather than mutating in place.
type Config struct {
	top       string
	sources   []string
	clock     string
	reset     string
	outDir    string
	verbose   bool
	irqWidth  int
	frontEnd  ir.FrontEnd
}

// NewConfig returns a Config with the spec's defaults: clock clk_i, reset
// rst_ni, IRQ bus width 16.
func NewConfig() Config {
	return Config{
		clock:    "clk_i",
		reset:    "rst_ni",
		irqWidth: 16,
		frontEnd: ir.NoFrontEnd{},
	}
}

func (c Config) WithTop(name string) Config       { c.top = name; return c }
func (c Config) WithSources(s ...string) Config   { c.sources = append(append([]string(nil), c.sources...), s...); return c }
func (c Config) WithClock(name string) Config     { c.clock = name; return c }
func (c Config) WithReset(name string) Config     { c.reset = name; return c }
func (c Config) WithOutDir(dir string) Config     { c.outDir = dir; return c }
func (c Config) WithVerbose(v bool) Config        { c.verbose = v; return c }
func (c Config) WithIRQWidth(w int) Config        { c.irqWidth = w; return c }
func (c Config) WithFrontEnd(fe ir.FrontEnd) Config { c.frontEnd = fe; return c }

func (c Config) Top() string     { return c.top }
func (c Config) Sources() []string { return append([]string(nil), c.sources...) }
func (c Config) Clock() string   { return c.clock }
func (c Config) Reset() string   { return c.reset }
func (c Config) OutDir() string  { return c.outDir }
func (c Config) Verbose() bool   { return c.verbose }
func (c Config) IRQWidth() int   { return c.irqWidth }
func (c Config) FrontEnd() ir.FrontEnd { return c.frontEnd }
