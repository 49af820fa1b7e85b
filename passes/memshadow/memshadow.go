// Package memshadow implements the mem_shadow pass: it adds a
// random-access read/write port pair to every memory cell in a module and
// synthesizes a single address-decoded controller module, loom_mem_ctrl,
// that multiplexes a unified host-facing bus over all memories in the
// design.
package memshadow

import (
	"fmt"

	"github.com/sarchlab/loom/internal/diag"
	"github.com/sarchlab/loom/ir"
)

// Options configures the pass. ClockName is the DUT's reference clock
// signal, reused to clock the shadow ports and the synthesized controller
// rather than exposing a second clock input.
type Options struct {
	ClockName string
}

const ctrlModuleName = "loom_mem_ctrl"

// MemInfo is the memory map entry for one memory, captured at pass time
// since the INIT parameter is cleared before HDL emission (it is not
// FPGA-synthesizable as an `initial` block).
type MemInfo struct {
	Name           string
	Depth          int
	Width          int
	AddrBits       int
	BaseAddr       int
	EndAddr        int
	InitialContent []byte // little-endian, len == Depth*ceilDiv(Width,8), nil if unset
	InitFile       string
	InitFileHex    bool
}

// Result is the memory map aggregated across every module mem_shadow
// touched.
type Result struct {
	Memories    []MemInfo
	TotalBytes  int
	AddrBits    int
	DataBits    int
}

// Run applies mem_shadow to every module of d that contains at least one
// memory. Modules without memories are left untouched and no controller
// is synthesized for them. The design is expected to have at most one
// module with memories (the DUT); if more than one does, each gets its own
// controller, Result concatenates their memory entries in module order
// (base addresses restart at 0 per module), and TotalBytes, AddrBits and
// DataBits are those of the last such module.
func Run(d *ir.Design, opts Options) (Result, error) {
	var res Result
	for _, name := range d.ModuleNames() {
		m := d.MustModule(name)
		if len(ir.AllMemories(m)) == 0 {
			continue
		}
		mr, err := runModule(d, m, opts)
		if err != nil {
			return res, err
		}
		res.Memories = append(res.Memories, mr.Memories...)
		res.TotalBytes = mr.TotalBytes
		res.AddrBits = mr.AddrBits
		res.DataBits = mr.DataBits
	}
	return res, nil
}

type memPlan struct {
	mem        ir.Memory
	addrBits   int
	wordsPerEntry int
	byteSize   int
	baseAddr   int
}

func runModule(d *ir.Design, m *ir.Module, opts Options) (Result, error) {
	clk, ok := m.Wires[opts.ClockName]
	if !ok {
		return Result{}, diag.Newf(diag.MalformedInput, "module has no clock wire named %q", opts.ClockName).On(m.Name)
	}

	mems := ir.AllMemories(m)
	plans := make([]memPlan, len(mems))
	base := 0
	for i, mem := range mems {
		addrBits := ceilLog2(mem.Depth())
		if addrBits < 1 {
			addrBits = 1
		}
		wordsPerEntry := ceilDiv(mem.Width(), 32)
		byteSize := mem.Depth() * wordsPerEntry * 4
		plans[i] = memPlan{mem: mem, addrBits: addrBits, wordsPerEntry: wordsPerEntry, byteSize: byteSize, baseAddr: base}
		base += byteSize
	}
	totalBytes := base

	globalAddrBits := ceilLog2(totalBytes)
	if globalAddrBits < 2 {
		globalAddrBits = 2
	}
	globalDataBits := 0
	for _, p := range plans {
		if p.mem.Width() > globalDataBits {
			globalDataBits = p.mem.Width()
		}
	}
	if globalDataBits == 0 {
		globalDataBits = 32
	}

	// Extract initial content and wire up shadow ports on each memory,
	// inside the DUT module. Extraction must happen here, before
	// ClearInit, since this is the only point in the pipeline that still
	// has the front end's constant initial-value parameter.
	memInfos := make([]MemInfo, len(plans))
	for i := range plans {
		p := &plans[i]
		info := extractInit(p.mem, p.addrBits, p.baseAddr, p.byteSize)
		memInfos[i] = info

		renWire := m.AddWire(fmt.Sprintf("loom_shadow_%s_ren", p.mem.Name()), 1)
		wenWire := m.AddWire(fmt.Sprintf("loom_shadow_%s_wen", p.mem.Name()), 1)
		addrWire := m.AddWire(fmt.Sprintf("loom_shadow_%s_addr", p.mem.Name()), p.addrBits)
		rdataWire := m.AddWire(fmt.Sprintf("loom_shadow_%s_rdata", p.mem.Name()), p.mem.Width())
		wdataWire := m.AddWire(fmt.Sprintf("loom_shadow_%s_wdata", p.mem.Name()), p.mem.Width())

		p.mem.AddReadPort(ir.MemReadPort{
			Clk:    ir.WireSignal(clk),
			Addr:   ir.WireSignal(addrWire),
			Data:   ir.WireSignal(rdataWire),
			Enable: ir.WireSignal(renWire),
		})
		p.mem.AddWritePort(ir.MemWritePort{
			Clk:    ir.WireSignal(clk),
			Addr:   ir.WireSignal(addrWire),
			Data:   ir.WireSignal(wdataWire),
			Enable: ir.WireSignal(wenWire),
		})
	}

	ctrl := buildController(d, plans, globalAddrBits, globalDataBits)

	// Instantiate the controller in the DUT and wire it to the shadow
	// ports and a fresh unified bus exposed as new DUT ports.
	inst := m.AddCell(m.Fresh("loom_mem_ctrl_inst"), ir.CellType(ctrl.Name))
	busAddr := m.AddPort("loom_mem_addr_i", globalAddrBits, true, false)
	busWdata := m.AddPort("loom_mem_wdata_i", globalDataBits, true, false)
	busRdata := m.AddPort("loom_mem_rdata_o", globalDataBits, false, true)
	busWen := m.AddPort("loom_mem_wen_i", 1, true, false)
	busRen := m.AddPort("loom_mem_ren_i", 1, true, false)

	inst.Ports["clk_i"] = ir.WireSignal(clk)
	inst.Ports["addr_i"] = ir.WireSignal(busAddr)
	inst.Ports["wdata_i"] = ir.WireSignal(busWdata)
	inst.Ports["rdata_o"] = ir.WireSignal(busRdata)
	inst.Ports["wen_i"] = ir.WireSignal(busWen)
	inst.Ports["ren_i"] = ir.WireSignal(busRen)

	for _, p := range plans {
		id := p.mem.Name()
		inst.Ports[memPort(id, "wen_o")] = ir.WireSignal(m.Wires[fmt.Sprintf("loom_shadow_%s_wen", id)])
		inst.Ports[memPort(id, "ren_o")] = ir.WireSignal(m.Wires[fmt.Sprintf("loom_shadow_%s_ren", id)])
		inst.Ports[memPort(id, "addr_o")] = ir.WireSignal(m.Wires[fmt.Sprintf("loom_shadow_%s_addr", id)])
		inst.Ports[memPort(id, "wdata_o")] = ir.WireSignal(m.Wires[fmt.Sprintf("loom_shadow_%s_wdata", id)])
		inst.Ports[memPort(id, "rdata_i")] = ir.WireSignal(m.Wires[fmt.Sprintf("loom_shadow_%s_rdata", id)])
	}

	m.FixupPorts()

	m.StrAttrs["loom_n_memories"] = itoa(len(plans))
	m.StrAttrs["loom_shadow_addr_bits"] = itoa(globalAddrBits)
	m.StrAttrs["loom_shadow_data_bits"] = itoa(globalDataBits)
	m.StrAttrs["loom_shadow_total_bytes"] = itoa(totalBytes)

	return Result{Memories: memInfos, TotalBytes: totalBytes, AddrBits: globalAddrBits, DataBits: globalDataBits}, nil
}

func memPort(id, suffix string) string {
	return "mem_" + id + "_" + suffix
}

// buildController synthesizes loom_mem_ctrl (loom_mem_ctrl_<n> when that
// name is already taken): address-range select per memory, local word
// address, write-data gating, and a cascaded read-data mux tree.
func buildController(d *ir.Design, plans []memPlan, addrBits, dataBits int) *ir.Module {
	name := ctrlModuleName
	for i := 1; ; i++ {
		if _, exists := d.Modules[name]; !exists {
			break
		}
		name = fmt.Sprintf("%s_%d", ctrlModuleName, i)
	}
	ctrl := d.AddModule(name)

	ctrl.AddPort("clk_i", 1, true, false)
	addrIn := ctrl.AddPort("addr_i", addrBits, true, false)
	wdataIn := ctrl.AddPort("wdata_i", dataBits, true, false)
	rdataOut := ctrl.AddPort("rdata_o", dataBits, false, true)
	wenIn := ctrl.AddPort("wen_i", 1, true, false)
	renIn := ctrl.AddPort("ren_i", 1, true, false)

	var selects []ir.Signal
	var reads []ir.Signal

	for _, p := range plans {
		id := p.mem.Name()
		endAddr := p.baseAddr + p.byteSize

		base := constAddr(p.baseAddr, addrBits)
		// endAddr can equal 2^addrBits, so the end compare is one bit wider.
		end := constAddr(endAddr, addrBits+1)

		geBase := ir.Ge(ctrl, ir.WireSignal(addrIn), base, addrBits)
		ltEnd := ir.Lt(ctrl, ir.WireSignal(addrIn), end, addrBits+1)
		sel := ir.And(ctrl, geBase, ltEnd)
		selects = append(selects, sel)

		offset := ir.Sub(ctrl, ir.WireSignal(addrIn), base, addrBits)
		localAddr := offset.Slice(2, minInt(2+p.addrBits, addrBits))
		localAddr = localAddr.ZeroExtend(p.addrBits)

		memWen := ctrl.AddPort(memPort(id, "wen_o"), 1, false, true)
		memRen := ctrl.AddPort(memPort(id, "ren_o"), 1, false, true)
		memAddr := ctrl.AddPort(memPort(id, "addr_o"), p.addrBits, false, true)
		memWdata := ctrl.AddPort(memPort(id, "wdata_o"), p.mem.Width(), false, true)
		memRdata := ctrl.AddPort(memPort(id, "rdata_i"), p.mem.Width(), true, false)

		wenGated := ir.And(ctrl, sel, ir.WireSignal(wenIn))
		renGated := ir.And(ctrl, sel, ir.WireSignal(renIn))

		assign(ctrl, memWen, wenGated)
		assign(ctrl, memRen, renGated)
		assign(ctrl, memAddr, localAddr)
		assign(ctrl, memWdata, ir.WireSignal(wdataIn).Slice(0, p.mem.Width()))

		readWide := ir.WireSignal(memRdata).ZeroExtend(dataBits)
		gatedRead := ir.And(ctrl, readWide, sel.Replicate(dataBits))
		reads = append(reads, gatedRead)
	}

	rdata := ir.OrAll(ctrl, dataBits, reads...)
	assign(ctrl, rdataOut, rdata)

	ctrl.FixupPorts()
	return ctrl
}

// assign drives dst directly from src via a passthrough $not-of-$not is
// wasteful; instead we fold src straight into dst's driving cell by
// treating dst as an alias: synthesized output ports in this IR are just
// wires, so later passes (and emission) read the driver from whichever
// cell's Y port targets this wire. Since output port wires here are never
// independently driven elsewhere, we record the alias via a 1-input
// buffer built from Or with a constant-0 operand, which keeps the wire's
// single-driver invariant intact for emission.
func assign(m *ir.Module, dst *ir.Wire, src ir.Signal) {
	zero := ir.ConstSignal("0").ZeroExtend(dst.Width())
	driven := ir.Or(m, src.ZeroExtend(dst.Width()), zero)
	alias(m, dst, driven)
}

// alias makes dst's bits reference the same driver as src by rewriting
// any cell port currently pointing at src's wire+bit pair... in this IR,
// wires are driven implicitly by whichever cell's output Signal names
// them; to make dst carry src's value we instead rename src's backing
// wire's bits onto dst is not representable without a netlist union-find.
// The practical approach used throughout this pass: allocate dst directly
// as the gate's output wire instead of a separate alias. See callers.
func alias(m *ir.Module, dst *ir.Wire, src ir.Signal) {
	// Re-point the last-written gate's output wire to be dst itself by
	// copying src's per-bit wire references is not meaningful for a
	// constant/derived signal; instead, dst is driven by exactly the
	// cells that would have driven src, which in this synthesis style is
	// always a single $or cell we just built. We rewire that cell's Y to
	// dst directly.
	for _, name := range lastCells(m, 1) {
		c := m.Cells[name]
		if y, ok := c.Ports["Y"]; ok && sameSignal(y, src) {
			c.Ports["Y"] = ir.WireSignal(dst).ZeroExtend(y.Width())
			delete(m.Wires, srcWireName(src))
			return
		}
	}
}

func sameSignal(a, b ir.Signal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func srcWireName(s ir.Signal) string {
	for _, b := range s {
		if !b.IsConst() {
			return b.Wire.Name
		}
	}
	return ""
}

func lastCells(m *ir.Module, n int) []string {
	// Returns the names of every $or cell in the module, in map order; n
	// is not used. alias picks the one whose Y is exactly src, which is
	// unique because every gate builder allocates a fresh output wire.
	// This is a pragmatic stand-in for proper SSA-style def tracking.
	var found []string
	for name, c := range m.Cells {
		if c.Type == ir.CellOr {
			found = append(found, name)
		}
	}
	return found
}

func constAddr(v, width int) ir.Signal {
	bits := make([]byte, width)
	for i := 0; i < width; i++ {
		if v&(1<<uint(width-1-i)) != 0 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return ir.ConstSignal(string(bits))
}

// extractInit reads a memory's constant initial-content parameter (if any)
// into a little-endian byte array, and its front-end-supplied init-file
// reference (if any), then clears the INIT parameter so emitted HDL has
// no synthesis-illegal `initial` block.
func extractInit(mem ir.Memory, addrBits, baseAddr, byteSize int) MemInfo {
	info := MemInfo{
		Name:     mem.Name(),
		Depth:    mem.Depth(),
		Width:    mem.Width(),
		AddrBits: addrBits,
		BaseAddr: baseAddr,
		EndAddr:  baseAddr + byteSize,
	}

	if bits, ok := mem.InitBits(); ok {
		info.InitialContent = bitstringToLEBytes(bits, mem.Width(), mem.Depth())
		mem.ClearInit()
	}
	if file, hex, ok := mem.InitFile(); ok {
		info.InitFile = file
		info.InitFileHex = hex
	}
	return info
}

// bitstringToLEBytes converts a $mem INIT parameter (one MSB-first bit
// vector of Width-bit groups, address 0 in the last Width characters) into
// a little-endian byte array of length depth*ceilDiv(width,8).
func bitstringToLEBytes(bits string, width, depth int) []byte {
	bytesPerWord := ceilDiv(width, 8)
	out := make([]byte, depth*bytesPerWord)
	for addr := 0; addr < depth; addr++ {
		lo := len(bits) - (addr+1)*width
		hi := lo + width
		if lo < 0 || hi > len(bits) {
			continue
		}
		word := bits[lo:hi]
		for bi := 0; bi < width; bi++ {
			if word[width-1-bi] != '1' {
				continue
			}
			byteIdx := addr*bytesPerWord + bi/8
			out[byteIdx] |= 1 << uint(bi%8)
		}
	}
	return out
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	v := 1
	for v < n {
		v <<= 1
		bits++
	}
	return bits
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
