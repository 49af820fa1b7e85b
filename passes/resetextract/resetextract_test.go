package resetextract

import (
	"testing"

	"github.com/sarchlab/loom/ir"
)

func buildADFF(d *ir.Design) (*ir.Module, *ir.Cell) {
	m := d.AddModule("top")
	clk := ir.NewClock(m, "clk")
	din := m.AddPort("d", 4, true, false)
	qout := m.AddPort("q", 4, false, true)
	arst := m.AddPort("rst", 1, true, false)

	c := m.AddCell("ff0", ir.CellADFF)
	c.Params["WIDTH"] = "4"
	c.Params["RESET_VALUE"] = "0000"
	c.Params["ARST_POLARITY"] = "0"
	ir.ConnectFF(c, ir.WireSignal(clk), ir.WireSignal(din), ir.WireSignal(qout))
	c.Ports["ARST"] = ir.WireSignal(arst)
	return m, c
}

func TestRunStripsResetAndConvertsType(t *testing.T) {
	d := ir.NewDesign()
	buildADFF(d)

	if err := Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}

	m := d.MustModule("top")
	c := m.Cells["ff0"]
	if c.Type != ir.CellDFF {
		t.Fatalf("type = %s, want %s", c.Type, ir.CellDFF)
	}
	if _, ok := c.Ports["ARST"]; ok {
		t.Fatal("ARST port still present")
	}
	if _, ok := c.Params["RESET_VALUE"]; ok {
		t.Fatal("RESET_VALUE param still present")
	}

	qWire := m.Wires["q"]
	if qWire.StrAttrs["loom_reset_value"] != "0000" {
		t.Fatalf("loom_reset_value = %q, want 0000", qWire.StrAttrs["loom_reset_value"])
	}
	if !m.BoolAttrs["loom_resets_extracted"] {
		t.Fatal("loom_resets_extracted not stamped")
	}
}

func TestRunFailsOnNonConstantReset(t *testing.T) {
	d := ir.NewDesign()
	m, c := buildADFF(d)
	_ = m
	c.Params["RESET_VALUE"] = "" // simulate a missing/non-constant reset value

	if err := Run(d); err == nil {
		t.Fatal("expected error for non-constant reset value")
	}
}

func TestRunLeavesPlainFFUntouched(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "top", 2)
	if err := Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	c := d.MustModule("top").Cells["ff0"]
	if c.Type != ir.CellDFF {
		t.Fatalf("plain DFF type changed to %s", c.Type)
	}
}
