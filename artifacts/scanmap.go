package artifacts

import "github.com/sarchlab/loom/passes/scaninsert"

// ScanEnumMember names one symbolic value of a scan Variable.
type ScanEnumMember struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

// ScanVariable is one entry of the scan map (§6.3).
type ScanVariable struct {
	Name        string           `yaml:"name"`
	Width       int              `yaml:"width"`
	Offset      int              `yaml:"offset"`
	EnumMembers []ScanEnumMember `yaml:"enum_members,omitempty"`
}

// ScanMap is the scan map document. The spec describes a single chain, but
// a design can synthesize one scan-insert chain per module; Modules lists
// each module's chain separately while ChainLength totals them, matching
// how §6.3 is read off the single-DUT-module case (len(Modules) == 1).
type ScanMap struct {
	ChainLength int                `yaml:"chain_length"`
	Modules     []ScanModule       `yaml:"modules"`
}

// ScanModule is one module's contribution to the scan map.
type ScanModule struct {
	Module    string         `yaml:"module"`
	Variables []ScanVariable `yaml:"variables"`
}

// BuildScanMap converts scan_insert's result into the document form.
func BuildScanMap(res scaninsert.Result) ScanMap {
	var doc ScanMap
	for _, mr := range res.Modules {
		doc.ChainLength += mr.ChainLength
		sm := ScanModule{Module: mr.Module}
		for _, v := range mr.Variables {
			sv := ScanVariable{Name: v.Name, Width: v.Width, Offset: v.Offset}
			for _, e := range v.EnumMembers {
				sv.EnumMembers = append(sv.EnumMembers, ScanEnumMember{Name: e.Name, Value: e.Value})
			}
			sm.Variables = append(sm.Variables, sv)
		}
		doc.Modules = append(doc.Modules, sm)
	}
	return doc
}
