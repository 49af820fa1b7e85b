package ir

import (
	"fmt"
	"sort"
)

// ValidationError collects every invariant violation found by Validate, so
// a single run reports everything wrong with a design rather than just the
// first problem — useful when a pass has a systemic bug that corrupts many
// cells the same way.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return fmt.Sprintf("%d IR invariant violations, first: %s", len(e.Problems), e.Problems[0])
}

// Validate checks the §3 structural invariants that every pass must leave
// intact: every signal bit referencing a wire must reference a wire owned
// by the enclosing module, every port in Module.Ports must correspond to a
// wire actually flagged as a port, and primitive cells must not have
// dangling (nil) ports where the cell kind requires one.
func Validate(d *Design) error {
	var problems []string

	for _, mname := range d.ModuleNames() {
		m := d.MustModule(mname)

		for _, pname := range m.Ports {
			w, ok := m.Wires[pname]
			if !ok {
				problems = append(problems, fmt.Sprintf("module %s: port %q has no backing wire", mname, pname))
				continue
			}
			if !w.PortInput && !w.PortOutput {
				problems = append(problems, fmt.Sprintf("module %s: port %q wire is not flagged as input or output", mname, pname))
			}
		}

		cellNames := make([]string, 0, len(m.Cells))
		for cn := range m.Cells {
			cellNames = append(cellNames, cn)
		}
		sort.Strings(cellNames)

		for _, cn := range cellNames {
			c := m.Cells[cn]
			for portName, sig := range c.Ports {
				for i, bit := range sig {
					if bit.IsConst() {
						continue
					}
					if bit.Wire == nil {
						problems = append(problems, fmt.Sprintf("module %s cell %s port %s: bit %d has neither constant nor wire", mname, cn, portName, i))
						continue
					}
					if bit.Wire.Owner() != m {
						problems = append(problems, fmt.Sprintf("module %s cell %s port %s: bit %d references wire %q owned by module %q", mname, cn, portName, i, bit.Wire.Name, bit.Wire.Owner().Name))
					}
					if bit.Bit < 0 || bit.Bit >= bit.Wire.Width {
						problems = append(problems, fmt.Sprintf("module %s cell %s port %s: bit %d indexes out-of-range bit %d of wire %q (width %d)", mname, cn, portName, i, bit.Bit, bit.Wire.Name, bit.Wire.Width))
					}
				}
			}
			problems = append(problems, checkCellShape(mname, c)...)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// checkCellShape enforces that primitive cells required by a CellType have
// the ports that type demands, un-dangling. Submodule instances (CellType
// values that aren't one of the known primitives) are not checked: their
// ports are not compared against the instantiated module's port list.
func checkCellShape(mname string, c *Cell) []string {
	var problems []string
	require := func(ports ...string) {
		for _, p := range ports {
			sig, ok := c.Ports[p]
			if !ok || len(sig) == 0 {
				problems = append(problems, fmt.Sprintf("module %s cell %s (%s): missing required port %q", mname, c.Name, c.Type, p))
			}
		}
	}

	switch {
	case IsFlipFlop(c.Type):
		require("CLK", "D", "Q")
		if HasEnable(c.Type) {
			require("EN")
		}
		if HasReset(c.Type) {
			if IsAsyncReset(c.Type) {
				require("ARST")
			} else {
				require("SRST")
			}
		}
	case c.Type == CellAnd, c.Type == CellOr:
		require("A", "B", "Y")
	case c.Type == CellNot:
		require("A", "Y")
	case c.Type == CellMux:
		require("A", "B", "S", "Y")
	case c.Type == CellEq, c.Type == CellSub:
		require("A", "B", "Y")
	case c.Type == CellReduceOr:
		require("A", "Y")
	case c.Type == CellExtend:
		require("A", "Y")
	case c.Type == CellMem:
		// Port shape for $mem is index-prefixed (RD<i>_*/WR<i>_*) and
		// is not checked here.
	}
	return problems
}
