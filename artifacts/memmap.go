package artifacts

import (
	"encoding/hex"

	"github.com/sarchlab/loom/passes/memshadow"
)

// MemEntry is one memory's record in the memory map document (§6.3).
type MemEntry struct {
	Name           string `yaml:"name"`
	Depth          int    `yaml:"depth"`
	Width          int    `yaml:"width"`
	AddrBits       int    `yaml:"addr_bits"`
	BaseAddr       int    `yaml:"base_addr"`
	EndAddr        int    `yaml:"end_addr"`
	InitialContent string `yaml:"initial_content,omitempty"` // hex-encoded
	InitFile       string `yaml:"init_file,omitempty"`
	InitFileHex    bool   `yaml:"init_file_hex,omitempty"`
}

// MemoryMap is the memory map document.
type MemoryMap struct {
	TotalBytes  int        `yaml:"total_bytes"`
	AddrBits    int        `yaml:"addr_bits"`
	DataBits    int        `yaml:"data_bits"`
	NumMemories int        `yaml:"num_memories"`
	Memories    []MemEntry `yaml:"memories"`
}

// BuildMemoryMap converts mem_shadow's result into the document form.
func BuildMemoryMap(res memshadow.Result) MemoryMap {
	doc := MemoryMap{
		TotalBytes:  res.TotalBytes,
		AddrBits:    res.AddrBits,
		DataBits:    res.DataBits,
		NumMemories: len(res.Memories),
	}
	for _, m := range res.Memories {
		entry := MemEntry{
			Name:        m.Name,
			Depth:       m.Depth,
			Width:       m.Width,
			AddrBits:    m.AddrBits,
			BaseAddr:    m.BaseAddr,
			EndAddr:     m.EndAddr,
			InitFile:    m.InitFile,
			InitFileHex: m.InitFileHex,
		}
		if len(m.InitialContent) > 0 {
			entry.InitialContent = hex.EncodeToString(m.InitialContent)
		}
		doc.Memories = append(doc.Memories, entry)
	}
	return doc
}
