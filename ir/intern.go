// Package ir defines the Netlist IR that the loom pipeline passes operate
// on: Design, Module, Wire, Cell, Signal and Memory, plus an identifier
// interning table. A Design interns its module names; wires and cells are
// keyed and compared by their string names, not by interned identifiers.
package ir

import "fmt"

// Ident is an interned identifier. Two Idents compare equal iff they name
// the same string; this is what the spec's "equality is by identity" means
// in practice, since a *Design owns exactly one Ident per distinct name.
type Ident int

// InternTable binds names to small integer handles and back, the same
// name<->ID binding shape the teacher uses for register/port name binding.
// Every *Design owns one InternTable.
type InternTable struct {
	nameToID map[string]Ident
	idToName []string
}

// NewInternTable creates an empty interning table.
func NewInternTable() *InternTable {
	return &InternTable{
		nameToID: make(map[string]Ident),
	}
}

// Intern returns the Ident for name, creating one if this is the first use.
func (t *InternTable) Intern(name string) Ident {
	if id, ok := t.nameToID[name]; ok {
		return id
	}
	id := Ident(len(t.idToName))
	t.idToName = append(t.idToName, name)
	t.nameToID[name] = id
	return id
}

// String returns the interned name for id.
func (t *InternTable) String(id Ident) string {
	if int(id) < 0 || int(id) >= len(t.idToName) {
		return fmt.Sprintf("<bad-ident-%d>", id)
	}
	return t.idToName[id]
}
