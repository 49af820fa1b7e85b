package dpi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FuncEntry is the runtime's view of one DPI function, parsed from the
// compiler's DPI metadata artifact (§6.3) — just enough to drive the
// register reads/writes of one service round, not the full document
// shape artifacts.DPIMetadata carries for the compiler side.
type FuncEntry struct {
	ID        int
	Name      string
	NumArgs   int
	HasReturn bool
	Builtin   bool
	Format    string // the format string, for a builtin print/display function

	// OutArgs lists, in ascending order, the register indices (0-based,
	// within NumArgs) of output- and inout-direction arguments. The
	// service loop writes these registers back from the callback's
	// CallResult.OutArgs before it writes the return register (§9's
	// Open Question #2).
	OutArgs []int
}

// DispatchTable is the ordered set of DPI functions a compiled design
// exposes, indexed by ID for O(1) lookup during a service round.
type DispatchTable struct {
	Funcs []FuncEntry
}

// dpiMetadataDoc mirrors artifacts.DPIMetadata's YAML shape without
// importing the artifacts package (which pulls in the pipeline's pass
// dependencies the runtime binary has no reason to link).
type dpiMetadataDoc struct {
	Functions []struct {
		ID     int    `yaml:"id"`
		Name   string `yaml:"name"`
		Return *struct {
			Type  string `yaml:"type"`
			Width int    `yaml:"width"`
		} `yaml:"return"`
		Args []struct {
			Name      string `yaml:"name"`
			Direction string `yaml:"direction"`
			Value     string `yaml:"value"`
		} `yaml:"args"`
		Builtin bool `yaml:"builtin"`
	} `yaml:"functions"`
}

// LoadDispatchTable reads the DPI metadata YAML artifact at path and
// builds the runtime dispatch table from it.
func LoadDispatchTable(path string) (*DispatchTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dpi: reading dispatch metadata: %w", err)
	}
	var doc dpiMetadataDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dpi: parsing dispatch metadata: %w", err)
	}
	dt := &DispatchTable{}
	for _, f := range doc.Functions {
		entry := FuncEntry{
			ID:        f.ID,
			Name:      f.Name,
			HasReturn: f.Return != nil,
			Builtin:   f.Builtin,
		}
		regIdx := 0
		for i, a := range f.Args {
			if f.Builtin && i == 0 {
				// The format string occupies args[0] as a compile-time
				// constant; it is never a hardware register.
				entry.Format = a.Value
				continue
			}
			if a.Direction == "out" || a.Direction == "inout" {
				entry.OutArgs = append(entry.OutArgs, regIdx)
			}
			regIdx++
		}
		entry.NumArgs = regIdx
		dt.Funcs = append(dt.Funcs, entry)
	}
	return dt, nil
}

// ByID returns the function with the given ID, if any.
func (dt *DispatchTable) ByID(id int) (FuncEntry, bool) {
	for _, f := range dt.Funcs {
		if f.ID == id {
			return f, true
		}
	}
	return FuncEntry{}, false
}
