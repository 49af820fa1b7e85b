// Package scaninsert implements the scan_insert pass: it threads a serial
// scan chain through every non-memory flip-flop so the host can capture or
// restore register state, and emits the scan map (§6.3) describing the
// chain's layout.
package scaninsert

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/loom/ir"
)

// Variable is one entry of the scan map: a named register captured at a
// given bit offset in the chain.
type Variable struct {
	Name        string
	Width       int
	Offset      int
	EnumMembers []EnumMember
}

// EnumMember is a symbolic name for one value of a scan variable, copied
// from the front end's loom_enum_members wire attribute.
type EnumMember struct {
	Name  string
	Value int
}

// ModuleResult is the scan map contribution of a single module.
type ModuleResult struct {
	Module      string
	ChainLength int
	Variables   []Variable
}

// Result aggregates the scan map across the whole design.
type Result struct {
	Modules []ModuleResult
}

// Run applies scan_insert to every module of d, in module order.
func Run(d *ir.Design) (Result, error) {
	var res Result
	for _, name := range d.ModuleNames() {
		m := d.MustModule(name)
		mr, err := runModule(m)
		if err != nil {
			return res, err
		}
		if mr != nil {
			res.Modules = append(res.Modules, *mr)
		}
	}
	return res, nil
}

func runModule(m *ir.Module) (*ModuleResult, error) {
	names := nonMemoryFFNames(m)
	if len(names) == 0 {
		return nil, nil
	}

	scanEnable := m.AddPort("loom_scan_enable", 1, true, false)
	scanIn := m.AddPort("loom_scan_in", 1, true, false)

	prevQ := ir.WireSignal(scanIn)
	offset := 0
	var vars []Variable
	var lastQ ir.Signal

	for _, name := range names {
		c := m.Cells[name]
		width := c.WidthParam()
		if width < 1 {
			width = 1
		}
		d := c.Ports["D"]
		q := c.Ports["Q"]

		scanData := make(ir.Signal, width)
		scanData[0] = prevQ[len(prevQ)-1]
		for i := 1; i < width; i++ {
			scanData[i] = q[i-1]
		}

		muxed := ir.Mux2(m, ir.WireSignal(scanEnable), d, scanData)
		c.Ports["D"] = muxed

		vars = append(vars, Variable{
			Name:        scanVarName(q, name),
			Width:       width,
			Offset:      offset,
			EnumMembers: scanEnumMembers(q),
		})
		offset += width

		prevQ = q
		lastQ = q
	}

	scanOut := m.AddPort("loom_scan_out", 1, false, true)
	if len(lastQ) > 0 {
		ir.DriveWire(m, scanOut, ir.Signal{lastQ[len(lastQ)-1]})
	}

	m.FixupPorts()
	m.StrAttrs["loom_scan_chain_length"] = strconv.Itoa(offset)

	return &ModuleResult{Module: m.Name, ChainLength: offset, Variables: vars}, nil
}

func nonMemoryFFNames(m *ir.Module) []string {
	var names []string
	for name, c := range m.Cells {
		if !ir.IsFlipFlop(c.Type) {
			continue
		}
		if q, ok := c.Ports["Q"]; ok && len(q) > 0 && q[0].Wire != nil && ir.IsMemoryOutputWire(q[0].Wire.Name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scanVarName prefers the Q wire's hdlname attribute (the source-level
// hierarchical name), falling back to the cell name when absent.
func scanVarName(q ir.Signal, cellName string) string {
	if len(q) > 0 && q[0].Wire != nil {
		if name, ok := q[0].Wire.StrAttrs["hdlname"]; ok && name != "" {
			return name
		}
	}
	return cellName
}

// scanEnumMembers parses a comma-separated "Name:Value" loom_enum_members
// attribute, if present on the Q wire, into symbolic entries for the scan
// map.
func scanEnumMembers(q ir.Signal) []EnumMember {
	if len(q) == 0 || q[0].Wire == nil {
		return nil
	}
	raw, ok := q[0].Wire.StrAttrs["loom_enum_members"]
	if !ok || raw == "" {
		return nil
	}
	var out []EnumMember
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		out = append(out, EnumMember{Name: strings.TrimSpace(parts[0]), Value: v})
	}
	return out
}
