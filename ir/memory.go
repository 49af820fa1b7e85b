package ir

import "fmt"

// Memory is a typed view over a $mem primitive cell: a backing storage
// cell plus its read and write ports. Passes other than mem_shadow treat
// memories as opaque primitive cells; mem_shadow is the only pass that
// needs the structured read/write-port view below.
type Memory struct {
	Cell *Cell
}

// NewMemory creates a $mem cell with the given name, width, depth and
// address width, and wraps it as a Memory.
func NewMemory(m *Module, name string, width, depth, addrWidth int) Memory {
	c := m.AddCell(name, CellMem)
	c.Params["WIDTH"] = fmt.Sprintf("%d", width)
	c.Params["SIZE"] = fmt.Sprintf("%d", depth)
	c.Params["ABITS"] = fmt.Sprintf("%d", addrWidth)
	c.Params["RD_PORTS"] = "0"
	c.Params["WR_PORTS"] = "0"
	return Memory{Cell: c}
}

// AsMemory views an existing $mem cell as a Memory. Panics if the cell is
// not a memory.
func AsMemory(c *Cell) Memory {
	if c.Type != CellMem {
		panic("ir: cell " + c.Name + " is not a $mem")
	}
	return Memory{Cell: c}
}

func (m Memory) Width() int     { return parseIntParam(m.Cell.Params["WIDTH"]) }
func (m Memory) Depth() int     { return parseIntParam(m.Cell.Params["SIZE"]) }
func (m Memory) AddrWidth() int { return parseIntParam(m.Cell.Params["ABITS"]) }
func (m Memory) Name() string   { return m.Cell.Name }

func (m Memory) NumReadPorts() int  { return parseIntParam(m.Cell.Params["RD_PORTS"]) }
func (m Memory) NumWritePorts() int { return parseIntParam(m.Cell.Params["WR_PORTS"]) }

// MemReadPort is the per-port view of a memory read port: a clock, an
// address, the data output, and an optional enable (nil Enable means
// always-enabled, e.g. the DUT's original functional read port before
// mem_shadow adds the shadow port).
type MemReadPort struct {
	Clk    Signal
	Addr   Signal
	Data   Signal
	Enable Signal
}

// MemWritePort is the per-port view of a memory write port.
type MemWritePort struct {
	Clk    Signal
	Addr   Signal
	Data   Signal
	Enable Signal
}

func rdPrefix(i int) string { return fmt.Sprintf("RD%d_", i) }
func wrPrefix(i int) string { return fmt.Sprintf("WR%d_", i) }

// ReadPort returns the i-th read port.
func (m Memory) ReadPort(i int) MemReadPort {
	p := rdPrefix(i)
	return MemReadPort{
		Clk:    m.Cell.Ports[p+"CLK"],
		Addr:   m.Cell.Ports[p+"ADDR"],
		Data:   m.Cell.Ports[p+"DATA"],
		Enable: m.Cell.Ports[p+"EN"],
	}
}

// WritePort returns the i-th write port.
func (m Memory) WritePort(i int) MemWritePort {
	p := wrPrefix(i)
	return MemWritePort{
		Clk:    m.Cell.Ports[p+"CLK"],
		Addr:   m.Cell.Ports[p+"ADDR"],
		Data:   m.Cell.Ports[p+"DATA"],
		Enable: m.Cell.Ports[p+"EN"],
	}
}

// AddReadPort appends a new read port and returns its index. This is how
// mem_shadow adds the shadow read port required by §4.2.
func (m Memory) AddReadPort(port MemReadPort) int {
	idx := m.NumReadPorts()
	p := rdPrefix(idx)
	m.Cell.Ports[p+"CLK"] = port.Clk
	m.Cell.Ports[p+"ADDR"] = port.Addr
	m.Cell.Ports[p+"DATA"] = port.Data
	m.Cell.Ports[p+"EN"] = port.Enable
	m.Cell.Params["RD_PORTS"] = fmt.Sprintf("%d", idx+1)
	return idx
}

// AddWritePort appends a new write port and returns its index.
func (m Memory) AddWritePort(port MemWritePort) int {
	idx := m.NumWritePorts()
	p := wrPrefix(idx)
	m.Cell.Ports[p+"CLK"] = port.Clk
	m.Cell.Ports[p+"ADDR"] = port.Addr
	m.Cell.Ports[p+"DATA"] = port.Data
	m.Cell.Ports[p+"EN"] = port.Enable
	m.Cell.Params["WR_PORTS"] = fmt.Sprintf("%d", idx+1)
	return idx
}

// InitBits returns the memory's constant initial-content bitstring (one
// MSB-first vector of Width-bit groups, address 0 in the last Width
// characters) and whether one is set.
func (m Memory) InitBits() (string, bool) {
	bits, ok := m.Cell.Params["INIT"]
	return bits, ok && bits != ""
}

// SetInitBits sets the constant initial-content bitstring.
func (m Memory) SetInitBits(bits string) {
	m.Cell.Params["INIT"] = bits
}

// ClearInit removes the initial-content parameter, so emitted HDL has no
// `initial` block (mem_shadow does this after extracting a byte array, per
// §4.2, since `initial` blocks are not FPGA-synthesizable).
func (m Memory) ClearInit() {
	delete(m.Cell.Params, "INIT")
}

// InitFile returns a front-end-supplied $readmemh/$readmemb reference, if
// any.
func (m Memory) InitFile() (file string, isHex bool, ok bool) {
	file, ok = m.Cell.Params["INIT_FILE"]
	isHex = m.Cell.Params["INIT_FILE_HEX"] == "1"
	return file, isHex, ok
}

// SetInitFile records a front-end-supplied init-file reference.
func (m Memory) SetInitFile(file string, isHex bool) {
	m.Cell.Params["INIT_FILE"] = file
	if isHex {
		m.Cell.Params["INIT_FILE_HEX"] = "1"
	} else {
		delete(m.Cell.Params, "INIT_FILE_HEX")
	}
}

// AllMemories returns every $mem cell in the module, in deterministic
// (cell-name-sorted) order — the "pass order" mem_shadow's base_addr
// computation depends on.
func AllMemories(m *Module) []Memory {
	names := make([]string, 0)
	for name, c := range m.Cells {
		if c.Type == CellMem {
			names = append(names, name)
		}
	}
	sortStrings(names)
	out := make([]Memory, len(names))
	for i, name := range names {
		out[i] = AsMemory(m.Cells[name])
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
