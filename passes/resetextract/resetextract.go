// Package resetextract implements the reset_extract pass: it strips
// hardware reset from every flip-flop so initial state can instead be
// scanned in from the host, recording each register's reset value as the
// loom_reset_value attribute on its Q wire. No later pass reads that
// attribute; the scan map does not include reset values.
package resetextract

import (
	"github.com/sarchlab/loom/internal/diag"
	"github.com/sarchlab/loom/ir"
)

// Run applies reset_extract to every module of d, in module order.
func Run(d *ir.Design) error {
	for _, name := range d.ModuleNames() {
		if err := runModule(d.MustModule(name)); err != nil {
			return err
		}
	}
	return nil
}

func runModule(m *ir.Module) error {
	cellNames := make([]string, 0, len(m.Cells))
	for name := range m.Cells {
		cellNames = append(cellNames, name)
	}

	for _, name := range cellNames {
		c := m.Cells[name]
		if !ir.IsFlipFlop(c.Type) || !ir.HasReset(c.Type) {
			continue
		}

		resetValue, ok := c.Params["RESET_VALUE"]
		if !ok {
			return diag.New(diag.Unsupported, "flip-flop has a reset port but no constant RESET_VALUE parameter").On(c.Name)
		}
		if !isConstBitstring(resetValue) {
			return diag.Newf(diag.Unsupported, "flip-flop reset value %q is not a constant bitstring", resetValue).On(c.Name)
		}

		q, ok := c.Ports["Q"]
		if !ok {
			return diag.New(diag.MalformedInput, "flip-flop has no Q port").On(c.Name)
		}
		stampResetValue(q, resetValue)

		delete(c.Ports, "ARST")
		delete(c.Ports, "SRST")
		delete(c.Params, "ARST_POLARITY")
		delete(c.Params, "SRST_POLARITY")
		delete(c.Params, "RESET_VALUE")
		c.Type = ir.NoResetVariant(c.Type)
	}

	m.BoolAttrs["loom_resets_extracted"] = true
	return nil
}

// isConstBitstring reports whether s consists solely of '0'/'1'/'x'/'z'
// characters — the shape a genuinely constant reset value must take.
func isConstBitstring(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0', '1', 'x', 'z':
		default:
			return false
		}
	}
	return true
}

// stampResetValue records a register's reset value on every non-constant
// bit's wire of its Q signal, as loom_reset_value, so the value survives
// the flip-flop's conversion to a no-reset variant.
func stampResetValue(q ir.Signal, resetValue string) {
	for _, bit := range q {
		if bit.IsConst() {
			continue
		}
		bit.Wire.StrAttrs["loom_reset_value"] = resetValue
	}
}
