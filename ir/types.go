package ir

import "fmt"

// Design is the root IR container: a set of modules, unique by name.
type Design struct {
	names   *InternTable
	Modules map[string]*Module
	// order preserves module insertion order so HDL emission is
	// deterministic across runs on the same input.
	order []string
}

// NewDesign creates an empty Design.
func NewDesign() *Design {
	return &Design{
		names:   NewInternTable(),
		Modules: make(map[string]*Module),
	}
}

// AddModule creates and registers a new, empty module. Panics if a module
// with this name already exists — the front end and passes never redefine
// a module, they only mutate existing ones or add distinctly-named ones.
func (d *Design) AddModule(name string) *Module {
	if _, ok := d.Modules[name]; ok {
		panic(fmt.Sprintf("ir: module %q already exists", name))
	}
	d.names.Intern(name)
	m := &Module{
		Name:      name,
		Wires:     make(map[string]*Wire),
		Cells:     make(map[string]*Cell),
		StrAttrs:  make(map[string]string),
		BoolAttrs: make(map[string]bool),
		design:    d,
		gensym:    newGensym(),
	}
	d.Modules[name] = m
	d.order = append(d.order, name)
	return m
}

// Module looks up a module by name.
func (d *Design) Module(name string) (*Module, bool) {
	m, ok := d.Modules[name]
	return m, ok
}

// MustModule looks up a module by name, panicking if absent. Used by
// passes that rely on a prior pass having created a module (e.g. emu_top
// requiring the instrumented top module to exist).
func (d *Design) MustModule(name string) *Module {
	m, ok := d.Modules[name]
	if !ok {
		panic(fmt.Sprintf("ir: module %q not found", name))
	}
	return m
}

// ModuleNames returns module names in insertion order, for deterministic
// iteration (emission, tests).
func (d *Design) ModuleNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Module is a hardware module: an ordered port list, a set of wires, a set
// of cells, plus string- and bool-valued attribute maps.
type Module struct {
	Name string

	// Ports is the ordered, canonical port list, rebuilt by FixupPorts
	// from each Wire's PortInput/PortOutput flags.
	Ports []string

	Wires map[string]*Wire
	Cells map[string]*Cell

	StrAttrs  map[string]string
	BoolAttrs map[string]bool

	design *Design
	gensym *gensym
}

// Fresh returns an auto-generated name, unique within this module: prefix
// followed by "_" and a counter value. The prefix is used as given; no
// "loom_" sigil is added to it.
func (m *Module) Fresh(prefix string) string {
	for {
		name := m.gensym.fresh(prefix)
		if _, wireTaken := m.Wires[name]; wireTaken {
			continue
		}
		if _, cellTaken := m.Cells[name]; cellTaken {
			continue
		}
		return name
	}
}

// AddWire creates and registers a new internal (non-port) wire of the
// given width.
func (m *Module) AddWire(name string, width int) *Wire {
	if width < 1 {
		panic(fmt.Sprintf("ir: wire %q in module %q has non-positive width %d", name, m.Name, width))
	}
	if _, ok := m.Wires[name]; ok {
		panic(fmt.Sprintf("ir: wire %q already exists in module %q", name, m.Name))
	}
	w := &Wire{
		Name:      name,
		Width:     width,
		StrAttrs:  make(map[string]string),
		BoolAttrs: make(map[string]bool),
		owner:     m,
	}
	m.Wires[name] = w
	return w
}

// Wire looks up a wire by name.
func (m *Module) Wire(name string) *Wire {
	return m.Wires[name]
}

// AddPort is a convenience for AddWire followed by marking the port
// direction and running FixupPorts.
func (m *Module) AddPort(name string, width int, input, output bool) *Wire {
	w := m.AddWire(name, width)
	w.PortInput = input
	w.PortOutput = output
	m.FixupPorts()
	return w
}

// FixupPorts re-canonicalizes the module's port list from the
// PortInput/PortOutput flags of its wires: ports already listed keep their
// relative order, and newly flagged ports are appended in name order, so
// the result is deterministic. This is the "fixup_ports" invariant in §3:
// every pass that flips a wire's port flags must call this before the
// module is considered well-formed again.
func (m *Module) FixupPorts() {
	seen := make(map[string]bool, len(m.Ports))
	next := make([]string, 0, len(m.Ports))
	for _, name := range m.Ports {
		w, ok := m.Wires[name]
		if !ok || !(w.PortInput || w.PortOutput) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		next = append(next, name)
	}
	var added []string
	for name, w := range m.Wires {
		if !(w.PortInput || w.PortOutput) || seen[name] {
			continue
		}
		seen[name] = true
		added = append(added, name)
	}
	sortStrings(added)
	m.Ports = append(next, added...)
}

// AddCell creates and registers a new cell of the given type.
func (m *Module) AddCell(name string, typ CellType) *Cell {
	if _, ok := m.Cells[name]; ok {
		panic(fmt.Sprintf("ir: cell %q already exists in module %q", name, m.Name))
	}
	c := &Cell{
		Name:   name,
		Type:   typ,
		Params: make(map[string]string),
		Ports:  make(map[string]Signal),
		owner:  m,
	}
	m.Cells[name] = c
	return c
}

// RemoveCell deletes a cell from the module.
func (m *Module) RemoveCell(name string) {
	delete(m.Cells, name)
}

// Wire is a named bit vector owned by exactly one module.
type Wire struct {
	Name  string
	Width int

	PortInput  bool
	PortOutput bool

	StrAttrs  map[string]string
	BoolAttrs map[string]bool

	owner *Module
}

// Owner returns the module that owns this wire.
func (w *Wire) Owner() *Module { return w.owner }

// Cell is a primitive or submodule instance: a unique name, a type, a
// parameter map, and a port map from port name to the Signal driving or
// driven by that port.
type Cell struct {
	Name   string
	Type   CellType
	Params map[string]string
	Ports  map[string]Signal

	// Opaque carries structured, cell-kind-specific data that does not fit
	// the string-parameter/signal-port shape of ordinary primitives — used
	// by the three front-end opaque call-cell kinds ($__loom_dpi_call,
	// $__loom_finish, $print) to hold typed argument/format descriptors
	// instead of attribute-bag strings (see DPICallData/PrintData in
	// opaque.go and the design note on opaque cells as sum types).
	Opaque interface{}

	owner *Module
}

// Owner returns the module that owns this cell.
func (c *Cell) Owner() *Module { return c.owner }

// WidthParam returns the cell's WIDTH parameter as an int, or 0 if unset.
func (c *Cell) WidthParam() int {
	return parseIntParam(c.Params["WIDTH"])
}

func parseIntParam(s string) int {
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
