package emutop

import (
	"testing"

	"github.com/sarchlab/loom/ir"
)

func TestRunSynthesizesTopWithDefaultOptions(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "dut", 4)

	if err := Run(d, "dut", Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	top := d.MustModule(TopModuleName)
	if _, ok := top.Wires["clk_i"]; !ok {
		t.Fatal("default clock port clk_i not created")
	}
	if _, ok := top.Wires["rst_ni"]; !ok {
		t.Fatal("default reset port rst_ni not created")
	}
	irq, ok := top.Wires["irq_o"]
	if !ok || irq.Width != 16 {
		t.Fatalf("irq_o = %+v, want width 16", irq)
	}
	if _, ok := top.Cells["dut_inst"]; !ok {
		t.Fatal("dut_inst not instantiated")
	}
}

func TestRunHonorsCustomClockResetIRQWidth(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "dut", 2)

	opts := Options{ClockName: "clock", ResetName: "reset_n", IRQWidth: 4}
	if err := Run(d, "dut", opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top := d.MustModule(TopModuleName)
	if _, ok := top.Wires["clock"]; !ok {
		t.Fatal("custom clock port not created")
	}
	if irq := top.Wires["irq_o"]; irq.Width != 4 {
		t.Fatalf("irq_o width = %d, want 4", irq.Width)
	}
}

func TestRunErrorsOnMissingTopModule(t *testing.T) {
	d := ir.NewDesign()
	if err := Run(d, "nope", Options{}); err == nil {
		t.Fatal("expected error for missing top module")
	}
}

func TestRunTiesOffUnconnectedDUTPorts(t *testing.T) {
	d := ir.NewDesign()
	m := d.AddModule("dut")
	extra := m.AddPort("unrelated_input", 3, true, false)
	_ = extra
	m.AddPort("unrelated_output", 2, false, true)

	if err := Run(d, "dut", Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top := d.MustModule(TopModuleName)
	dutInst := top.Cells["dut_inst"]
	if _, ok := dutInst.Ports["unrelated_input"]; !ok {
		t.Fatal("unrelated_input not tied off")
	}
	if _, ok := dutInst.Ports["unrelated_output"]; !ok {
		t.Fatal("unrelated_output not wired to an unused net")
	}
}
