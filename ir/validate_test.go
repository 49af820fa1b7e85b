package ir

import "testing"

func TestValidateCleanDesign(t *testing.T) {
	d := NewDesign()
	BuildSimpleRegister(d, "top", 4)
	if err := Validate(d); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateCatchesCrossModuleWireReference(t *testing.T) {
	d := NewDesign()
	m1 := d.AddModule("m1")
	m2 := d.AddModule("m2")
	foreign := m2.AddWire("foreign", 1)

	c := m1.AddCell("c0", CellNot)
	c.Ports["A"] = WireSignal(foreign)
	y := m1.AddWire("y", 1)
	c.Ports["Y"] = WireSignal(y)

	err := Validate(d)
	if err == nil {
		t.Fatal("expected validation error for cross-module wire reference")
	}
}

func TestValidateCatchesMissingRequiredPort(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	m.AddCell("c0", CellAnd) // no A/B/Y ports set

	err := Validate(d)
	if err == nil {
		t.Fatal("expected validation error for missing required ports")
	}
}

func TestValidateCatchesOutOfRangeBit(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	w := m.AddWire("w", 2)
	c := m.AddCell("c0", CellNot)
	c.Ports["A"] = Signal{WireBit(w, 0)}
	c.Ports["Y"] = Signal{{Wire: w, Bit: 9}} // constructed directly to bypass WireBit's own check
	err := Validate(d)
	if err == nil {
		t.Fatal("expected validation error for out-of-range bit index")
	}
}
