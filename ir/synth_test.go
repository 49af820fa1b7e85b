package ir

import "testing"

func TestGeBuildsValidCircuit(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	a := m.AddPort("a", 4, true, false)
	b := m.AddPort("b", 4, true, false)
	ge := Ge(m, WireSignal(a), WireSignal(b), 4)
	if ge.Width() != 1 {
		t.Fatalf("Ge width = %d, want 1", ge.Width())
	}
	if err := Validate(d); err != nil {
		t.Fatalf("validation failed on synthesized comparator: %v", err)
	}
}

func TestPriorityCascade(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	s0 := m.AddPort("s0", 1, true, false)
	s1 := m.AddPort("s1", 1, true, false)
	v0 := m.AddPort("v0", 8, true, false)
	v1 := m.AddPort("v1", 8, true, false)

	out := PriorityCascade(m, []Signal{WireSignal(s0), WireSignal(s1)}, []Signal{WireSignal(v0), WireSignal(v1)}, ConstSignal("00000000"))
	if out.Width() != 8 {
		t.Fatalf("cascade width = %d, want 8", out.Width())
	}
	if err := Validate(d); err != nil {
		t.Fatalf("validation failed: %v", err)
	}
}

func TestOrAllEmpty(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	sig := OrAll(m, 4)
	if !sig.AllZero() {
		t.Fatal("OrAll with no parts should be all-zero")
	}
}
