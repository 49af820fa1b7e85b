package ir

import "testing"

func TestInternDeduplicates(t *testing.T) {
	tbl := NewInternTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	if a != b {
		t.Fatalf("Intern(foo) gave distinct idents %d, %d", a, b)
	}
	c := tbl.Intern("bar")
	if c == a {
		t.Fatal("distinct names interned to the same ident")
	}
}

func TestInternStringRoundTrip(t *testing.T) {
	tbl := NewInternTable()
	id := tbl.Intern("wire_x")
	if got := tbl.String(id); got != "wire_x" {
		t.Fatalf("String() = %q, want wire_x", got)
	}
}

func TestInternStringOutOfRange(t *testing.T) {
	tbl := NewInternTable()
	got := tbl.String(Ident(99))
	if got != "<bad-ident-99>" {
		t.Fatalf("String() = %q, want bad-ident marker", got)
	}
}
