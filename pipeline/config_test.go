package pipeline

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.Clock() != "clk_i" || c.Reset() != "rst_ni" || c.IRQWidth() != 16 {
		t.Fatalf("defaults = clock=%q reset=%q irq=%d", c.Clock(), c.Reset(), c.IRQWidth())
	}
}

func TestWithMethodsDoNotMutateReceiver(t *testing.T) {
	base := NewConfig()
	derived := base.WithTop("dut").WithClock("clk").WithReset("rst_n").WithOutDir("/tmp/out").WithVerbose(true).WithIRQWidth(8)

	if base.Top() != "" || base.Clock() != "clk_i" || base.Verbose() {
		t.Fatalf("base was mutated: %+v", base)
	}
	if derived.Top() != "dut" || derived.Clock() != "clk" || derived.Reset() != "rst_n" || derived.OutDir() != "/tmp/out" || !derived.Verbose() || derived.IRQWidth() != 8 {
		t.Fatalf("derived = %+v", derived)
	}
}

func TestWithSourcesAccumulates(t *testing.T) {
	c := NewConfig().WithSources("a.sv").WithSources("b.sv", "c.sv")
	got := c.Sources()
	if len(got) != 3 || got[0] != "a.sv" || got[2] != "c.sv" {
		t.Fatalf("Sources() = %v", got)
	}
}
