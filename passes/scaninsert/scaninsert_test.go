package scaninsert

import (
	"testing"

	"github.com/sarchlab/loom/ir"
)

func TestRunThreadsScanChainThroughFlipFlops(t *testing.T) {
	d := ir.NewDesign()
	ir.BuildSimpleRegister(d, "top", 4)

	res, err := Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Modules) != 1 {
		t.Fatalf("len(Modules) = %d, want 1", len(res.Modules))
	}
	mr := res.Modules[0]
	if mr.ChainLength != 4 {
		t.Fatalf("ChainLength = %d, want 4", mr.ChainLength)
	}
	if len(mr.Variables) != 1 || mr.Variables[0].Width != 4 {
		t.Fatalf("Variables = %+v", mr.Variables)
	}

	m := d.MustModule("top")
	if _, ok := m.Wires["loom_scan_enable"]; !ok {
		t.Fatal("loom_scan_enable port not created")
	}
	if _, ok := m.Wires["loom_scan_in"]; !ok {
		t.Fatal("loom_scan_in port not created")
	}
	if _, ok := m.Wires["loom_scan_out"]; !ok {
		t.Fatal("loom_scan_out port not created")
	}
}

func TestRunSkipsModuleWithNoFlipFlops(t *testing.T) {
	d := ir.NewDesign()
	m := d.AddModule("comb_only")
	a := m.AddPort("a", 1, true, false)
	y := m.AddPort("y", 1, false, true)
	ir.DriveWire(m, y, ir.Not(m, ir.WireSignal(a)))

	res, err := Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Modules) != 0 {
		t.Fatalf("len(Modules) = %d, want 0", len(res.Modules))
	}
}

func TestRunRecordsEnumMembersFromWireAttribute(t *testing.T) {
	d := ir.NewDesign()
	m := ir.BuildSimpleRegister(d, "top", 2)
	q := m.Wires["q"]
	q.StrAttrs["loom_enum_members"] = "IDLE:0, RUN:1"

	res, err := Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	members := res.Modules[0].Variables[0].EnumMembers
	if len(members) != 2 || members[0].Name != "IDLE" || members[1].Value != 1 {
		t.Fatalf("EnumMembers = %+v", members)
	}
}
