package artifacts

import (
	"testing"

	"github.com/sarchlab/loom/passes/scaninsert"
)

func TestBuildScanMapTotalsChainLengthAcrossModules(t *testing.T) {
	res := scaninsert.Result{
		Modules: []scaninsert.ModuleResult{
			{
				Module:      "top",
				ChainLength: 12,
				Variables: []scaninsert.Variable{
					{Name: "state", Width: 4, Offset: 0, EnumMembers: []scaninsert.EnumMember{
						{Name: "IDLE", Value: 0}, {Name: "RUN", Value: 1},
					}},
					{Name: "counter", Width: 8, Offset: 4},
				},
			},
		},
	}

	doc := BuildScanMap(res)
	if doc.ChainLength != 12 {
		t.Fatalf("ChainLength = %d, want 12", doc.ChainLength)
	}
	if len(doc.Modules) != 1 || doc.Modules[0].Module != "top" {
		t.Fatalf("Modules = %+v", doc.Modules)
	}
	vars := doc.Modules[0].Variables
	if len(vars) != 2 || vars[0].Name != "state" || len(vars[0].EnumMembers) != 2 {
		t.Fatalf("Variables = %+v", vars)
	}
	if vars[1].Offset != 4 {
		t.Fatalf("counter offset = %d, want 4", vars[1].Offset)
	}
}
