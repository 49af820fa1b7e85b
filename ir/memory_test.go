package ir

import "testing"

func newTestMemModule(d *Design) (*Module, Memory) {
	m := d.AddModule("top")
	mem := NewMemory(m, "mem0", 8, 256, 8)
	return m, mem
}

func TestMemoryAddReadWritePort(t *testing.T) {
	d := NewDesign()
	m, mem := newTestMemModule(d)
	clk := NewClock(m, "clk")
	addr := m.AddWire("addr", 8)
	data := m.AddWire("data", 8)

	idx := mem.AddReadPort(MemReadPort{
		Clk:  WireSignal(clk),
		Addr: WireSignal(addr),
		Data: WireSignal(data),
	})
	if idx != 0 {
		t.Fatalf("first read port index = %d, want 0", idx)
	}
	if mem.NumReadPorts() != 1 {
		t.Fatalf("NumReadPorts() = %d, want 1", mem.NumReadPorts())
	}

	idx2 := mem.AddReadPort(MemReadPort{Clk: WireSignal(clk), Addr: WireSignal(addr), Data: WireSignal(data)})
	if idx2 != 1 {
		t.Fatalf("second read port index = %d, want 1", idx2)
	}
	if mem.NumReadPorts() != 2 {
		t.Fatalf("NumReadPorts() = %d, want 2", mem.NumReadPorts())
	}

	wIdx := mem.AddWritePort(MemWritePort{Clk: WireSignal(clk), Addr: WireSignal(addr), Data: WireSignal(data)})
	if wIdx != 0 || mem.NumWritePorts() != 1 {
		t.Fatalf("write port bookkeeping wrong: idx=%d count=%d", wIdx, mem.NumWritePorts())
	}

	rp := mem.ReadPort(0)
	if rp.Addr.Width() != 8 {
		t.Fatalf("read port addr width = %d, want 8", rp.Addr.Width())
	}
}

func TestMemoryInitLifecycle(t *testing.T) {
	d := NewDesign()
	_, mem := newTestMemModule(d)
	if _, ok := mem.InitBits(); ok {
		t.Fatal("fresh memory should have no INIT")
	}
	mem.SetInitBits("00001111")
	bits, ok := mem.InitBits()
	if !ok || bits != "00001111" {
		t.Fatalf("InitBits() = %q,%v, want 00001111,true", bits, ok)
	}
	mem.ClearInit()
	if _, ok := mem.InitBits(); ok {
		t.Fatal("InitBits still set after ClearInit")
	}
}

func TestAsMemoryPanicsOnNonMemCell(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	c := m.AddCell("c0", CellAnd)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	AsMemory(c)
}

func TestAllMemoriesSortedByName(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	NewMemory(m, "mem_b", 8, 16, 4)
	NewMemory(m, "mem_a", 8, 16, 4)
	mems := AllMemories(m)
	if len(mems) != 2 || mems[0].Name() != "mem_a" || mems[1].Name() != "mem_b" {
		t.Fatalf("AllMemories order wrong: %v", mems)
	}
}

func TestMemoryDimensions(t *testing.T) {
	d := NewDesign()
	_, mem := newTestMemModule(d)
	if mem.Width() != 8 || mem.Depth() != 256 || mem.AddrWidth() != 8 {
		t.Fatalf("dimensions wrong: width=%d depth=%d addr=%d", mem.Width(), mem.Depth(), mem.AddrWidth())
	}
}
