package loominstrument

import (
	"testing"

	"github.com/sarchlab/loom/ir"
)

func TestRunLowersPrintToBuiltinDPICall(t *testing.T) {
	d := ir.NewDesign()
	m := d.AddModule("top")
	ir.NewClock(m, "clk")
	en := m.AddPort("en", 1, true, false)

	ir.NewPrint(m, "p0", ir.PrintData{
		Spans: []ir.PrintSpan{{Kind: ir.SpanLiteral, Literal: "hello\n"}},
		EN:    ir.WireSignal(en),
	})

	res, err := Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Funcs) != 1 {
		t.Fatalf("len(Funcs) = %d, want 1", len(res.Funcs))
	}
	f := res.Funcs[0]
	if !f.Builtin {
		t.Fatal("lowered print was not marked builtin")
	}
	if f.Name != "__loom_display_0" {
		t.Fatalf("Name = %q, want __loom_display_0", f.Name)
	}
	if len(f.Args) != 1 || !f.Args[0].IsString || f.Args[0].ConstStr != "hello\n" {
		t.Fatalf("Args = %+v, want a single format-string arg", f.Args)
	}
	if _, ok := m.Cells["p0"]; ok {
		t.Fatal("$print cell not removed")
	}
}

func TestRunTransformsSingleDPICallIntoHandshakeBus(t *testing.T) {
	d := ir.NewDesign()
	m := d.AddModule("top")
	ir.NewClock(m, "clk")
	en := m.AddPort("en", 1, true, false)
	argW := m.AddPort("argw", 8, true, false)

	call := ir.NewDPICall(m, "c0", ir.DPICallData{
		FuncName: "user_func",
		Args: []ir.DPIArg{
			{Name: "x", Dir: ir.ArgIn, Type: "int", Width: 8, Signal: ir.WireSignal(argW)},
		},
		EN: ir.WireSignal(en),
	})
	_ = call

	res, err := Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Funcs) != 1 || res.Funcs[0].Name != "user_func" {
		t.Fatalf("Funcs = %+v", res.Funcs)
	}
	if _, ok := m.Wires["loom_dpi_valid"]; !ok {
		t.Fatal("loom_dpi_valid port not created")
	}
	if _, ok := m.Wires["loom_dpi_func_id"]; !ok {
		t.Fatal("loom_dpi_func_id port not created")
	}
	if _, ok := m.Wires["loom_dpi_args"]; !ok {
		t.Fatal("loom_dpi_args port not created")
	}
	if _, ok := m.Cells["c0"]; ok {
		t.Fatal("dpi call cell not removed")
	}
}

func TestRunLowersFinishToOutputPort(t *testing.T) {
	d := ir.NewDesign()
	m := d.AddModule("top")
	ir.NewClock(m, "clk")
	en := m.AddPort("en", 1, true, false)
	ir.NewFinish(m, "f0", ir.FinishData{ExitCode: 0, EN: ir.WireSignal(en)})

	if _, err := Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := m.Wires["loom_finish_o"]; !ok {
		t.Fatal("loom_finish_o port not created")
	}
	if _, ok := m.Cells["f0"]; ok {
		t.Fatal("$finish cell not removed")
	}
}

func TestRunInstrumentsFlipFlopsWithEnable(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "top", 4)

	if _, err := Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := d.MustModule("top")
	if _, ok := m.Wires["loom_en"]; !ok {
		t.Fatal("loom_en port not created")
	}
	c := m.Cells["ff0"]
	if !ir.HasEnable(c.Type) {
		t.Fatalf("ff0 type %s has no enable variant applied", c.Type)
	}
	if _, ok := c.Ports["EN"]; !ok {
		t.Fatal("EN port not wired")
	}
}
