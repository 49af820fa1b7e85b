// Package artifacts renders the pipeline's pass results into the
// machine-readable documents of §6.3 — DPI metadata, scan map, memory map,
// and the dispatch-table C source — plus the synthesizable HDL emission of
// §4.1. Every document type is a plain yaml.v3-tagged struct; building one
// from a pass Result is pure data transformation, with no file I/O of its
// own (the pipeline driver owns where these are written).
package artifacts

import (
	"fmt"

	"github.com/sarchlab/loom/passes/loominstrument"
	"github.com/sarchlab/loom/runtime/regmap"
)

// DPIArg is one argument entry of a DPIFunc record.
type DPIArg struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
	Type      string `yaml:"type"`
	Width     int    `yaml:"width"`
	Value     string `yaml:"value,omitempty"`
}

// DPIReturn is a function's return descriptor, omitted entirely when the
// function has no return value.
type DPIReturn struct {
	Type  string `yaml:"type"`
	Width int    `yaml:"width"`
}

// DPIFunc is one record of the DPI metadata document.
type DPIFunc struct {
	ID       int        `yaml:"id"`
	Name     string     `yaml:"name"`
	BaseAddr string     `yaml:"base_addr"` // hex, e.g. "0x00100"
	Return   *DPIReturn `yaml:"return,omitempty"`
	Args     []DPIArg   `yaml:"args"`
	Builtin  bool       `yaml:"builtin,omitempty"`
}

// DPIMetadata is the full DPI metadata document (§6.3), including the
// global constants the host runtime needs to locate the pending mask and
// decode each function's register block without recomputing the layout.
type DPIMetadata struct {
	MailboxBase   string    `yaml:"mailbox_base"`
	DPIBase       string    `yaml:"dpi_base"`
	FuncBlockSize int       `yaml:"func_block_size"`
	Functions     []DPIFunc `yaml:"functions"`
}

// BuildDPIMetadata converts loom_instrument's discovery-order result into
// the document the host runtime loads at startup.
func BuildDPIMetadata(res loominstrument.Result) DPIMetadata {
	doc := DPIMetadata{
		MailboxBase:   hex32(regmap.OffPending),
		DPIBase:       hex32(regmap.DPIBase),
		FuncBlockSize: regmap.FuncBlockSize,
	}
	for _, f := range res.Funcs {
		rec := DPIFunc{
			ID:       f.ID,
			Name:     f.Name,
			BaseAddr: hex32(regmap.FuncBase(f.ID)),
			Builtin:  f.Builtin,
		}
		if f.HasReturn {
			rec.Return = &DPIReturn{Type: f.RetType, Width: f.RetWidth}
		}
		for _, a := range f.Args {
			arg := DPIArg{
				Name:      a.Name,
				Direction: string(a.Dir),
				Type:      a.Type,
				Width:     a.Width,
			}
			if a.IsString {
				arg.Value = a.ConstStr
			}
			rec.Args = append(rec.Args, arg)
		}
		doc.Functions = append(doc.Functions, rec)
	}
	return doc
}

func hex32(v int) string {
	return fmt.Sprintf("0x%05x", v)
}
