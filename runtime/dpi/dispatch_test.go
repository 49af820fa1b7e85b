package dpi

import (
	"os"
	"path/filepath"
	"testing"
)

const testMetadataYAML = `
functions:
  - id: 0
    name: add_one
    return:
      type: int
      width: 32
    args:
      - name: x
  - id: 1
    name: __loom_display_0
    builtin: true
    args:
      - name: fmt
        value: "val=%0d\n"
  - id: 2
    name: swap
    return:
      type: int
      width: 32
    args:
      - name: a
        direction: in
      - name: b
        direction: out
`

func writeTestMetadata(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dpi_metadata.yaml")
	if err := os.WriteFile(path, []byte(testMetadataYAML), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadDispatchTableParsesFunctionsAndBuiltins(t *testing.T) {
	path := writeTestMetadata(t)

	dt, err := LoadDispatchTable(path)
	if err != nil {
		t.Fatalf("LoadDispatchTable: %v", err)
	}
	if len(dt.Funcs) != 3 {
		t.Fatalf("len(Funcs) = %d, want 3", len(dt.Funcs))
	}

	f0 := dt.Funcs[0]
	if f0.Name != "add_one" || f0.NumArgs != 1 || !f0.HasReturn || f0.Builtin {
		t.Fatalf("add_one entry = %+v", f0)
	}

	f1 := dt.Funcs[1]
	if !f1.Builtin || f1.NumArgs != 0 || f1.Format != "val=%0d\n" {
		t.Fatalf("builtin entry = %+v", f1)
	}

	f2 := dt.Funcs[2]
	if f2.Name != "swap" || f2.NumArgs != 2 || len(f2.OutArgs) != 1 || f2.OutArgs[0] != 1 {
		t.Fatalf("swap entry = %+v", f2)
	}
}

func TestByIDFindsAndMissesEntries(t *testing.T) {
	path := writeTestMetadata(t)
	dt, err := LoadDispatchTable(path)
	if err != nil {
		t.Fatalf("LoadDispatchTable: %v", err)
	}

	if f, ok := dt.ByID(1); !ok || f.Name != "__loom_display_0" {
		t.Fatalf("ByID(1) = %+v, %v", f, ok)
	}
	if _, ok := dt.ByID(99); ok {
		t.Fatal("ByID(99) should miss")
	}
}

func TestLoadDispatchTableErrorsOnMissingFile(t *testing.T) {
	if _, err := LoadDispatchTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
