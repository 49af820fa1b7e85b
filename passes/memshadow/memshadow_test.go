package memshadow

import (
	"testing"

	"github.com/sarchlab/loom/ir"
)

func buildMemModule(d *ir.Design) *ir.Module {
	m := d.AddModule("dut")
	ir.NewClock(m, "clk_i")
	mem := ir.NewMemory(m, "ram0", 8, 16, 4)
	mem.SetInitBits(initBits16x8())
	return m
}

func initBits16x8() string {
	bits := make([]byte, 16*8)
	for i := range bits {
		bits[i] = '0'
	}
	return string(bits)
}

func TestRunSkipsModulesWithoutMemories(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "top", 4)

	res, err := Run(d, Options{ClockName: "clk"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Memories) != 0 {
		t.Fatalf("Memories = %+v, want none", res.Memories)
	}
}

func TestRunAddsShadowPortsAndController(t *testing.T) {
	d := ir.NewDesign()
	buildMemModule(d)

	res, err := Run(d, Options{ClockName: "clk_i"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Memories) != 1 {
		t.Fatalf("Memories = %+v, want 1 entry", res.Memories)
	}
	if res.Memories[0].Name != "ram0" {
		t.Fatalf("Memories[0].Name = %q, want ram0", res.Memories[0].Name)
	}

	dut := d.MustModule("dut")
	if _, ok := dut.Wires["loom_mem_addr_i"]; !ok {
		t.Fatal("unified address bus port not created")
	}
	if _, ok := dut.Wires["loom_mem_rdata_o"]; !ok {
		t.Fatal("unified read-data bus port not created")
	}

	if _, ok := d.Module(ctrlModuleName); !ok {
		t.Fatal("loom_mem_ctrl controller module not synthesized")
	}
}

func TestRunErrorsOnMissingClockWire(t *testing.T) {
	d := ir.NewDesign()
	buildMemModule(d)

	if _, err := Run(d, Options{ClockName: "no_such_clock"}); err == nil {
		t.Fatal("expected error for missing clock wire")
	}
}

func TestRunClearsInitAfterExtraction(t *testing.T) {
	d := ir.NewDesign()
	m := buildMemModule(d)

	if _, err := Run(d, Options{ClockName: "clk_i"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	mem := ir.AsMemory(m.Cells["ram0"])
	if _, ok := mem.InitBits(); ok {
		t.Fatal("INIT parameter should be cleared after extraction")
	}
}
