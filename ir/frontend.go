package ir

import "strings"

// FrontEnd parses real SystemVerilog source into a Design. The actual
// front end (yosys-slang) is out of scope for this repository; FrontEnd
// is the narrow seam the pipeline driver depends on instead of a
// concrete parser, so tests can substitute a fake and `loomc` can be
// built today against a stub that will be swapped for a real binding
// later without touching any pass.
type FrontEnd interface {
	// Parse elaborates the given source files (already resolved from a
	// -f filelist) into a Design rooted at top.
	Parse(top string, sources []string) (*Design, error)
}

// LoadSources builds a Design from a source list, resolving each file by
// extension: ".loomir.yaml" files are decoded directly via Decode (the
// fixture format §3 EXPANSION describes), anything else is handed to fe.
// Mixing fixture and real sources in one run is supported because tests
// commonly lay a YAML fixture for the DUT body next to real SystemVerilog
// infrastructure files that fe simply ignores.
func LoadSources(fe FrontEnd, top string, sources []string) (*Design, error) {
	var yamlSources, otherSources []string
	for _, s := range sources {
		if strings.HasSuffix(s, ".loomir.yaml") {
			yamlSources = append(yamlSources, s)
		} else {
			otherSources = append(otherSources, s)
		}
	}

	if len(yamlSources) == 0 {
		return fe.Parse(top, otherSources)
	}

	d := NewDesign()
	for _, path := range yamlSources {
		sub, err := Load(path)
		if err != nil {
			return nil, err
		}
		mergeInto(d, sub)
	}
	if len(otherSources) > 0 && fe != nil {
		feDesign, err := fe.Parse(top, otherSources)
		if err != nil {
			return nil, err
		}
		mergeInto(d, feDesign)
	}
	return d, nil
}

// mergeInto copies every module of src into dst, skipping modules dst
// already has (the fixture is authoritative for any name collision).
// Wire and cell ownership is re-pointed at the destination module, since
// Wire.Owner()/Cell.Owner() must agree with whichever Design's module map
// actually holds them (the §3 wire-ownership invariant Validate checks).
func mergeInto(dst, src *Design) {
	for _, name := range src.ModuleNames() {
		if _, exists := dst.Module(name); exists {
			continue
		}
		sm := src.MustModule(name)
		dm := dst.AddModule(name)
		dm.StrAttrs = sm.StrAttrs
		dm.BoolAttrs = sm.BoolAttrs
		dm.Ports = sm.Ports
		dm.Wires = sm.Wires
		dm.Cells = sm.Cells
		for _, w := range dm.Wires {
			w.owner = dm
		}
		for _, c := range dm.Cells {
			c.owner = dm
		}
	}
}

// NoFrontEnd is a FrontEnd that always fails, useful as a default when a
// caller only ever supplies YAML fixture sources and wants a loud error
// if a real .sv file slips in.
type NoFrontEnd struct{}

func (NoFrontEnd) Parse(top string, sources []string) (*Design, error) {
	return nil, &noFrontEndError{sources: sources}
}

type noFrontEndError struct{ sources []string }

func (e *noFrontEndError) Error() string {
	return "ir: no front end configured to parse " + strings.Join(e.sources, ", ")
}
