// Package emutop implements the emu_top pass: it synthesizes
// loom_emu_top, the deterministic wrapper that instantiates the
// instrumented DUT alongside the (externally delivered) controller,
// register file, scan controller and AXI-Lite demux, sized from the
// attributes earlier passes stamped on the DUT.
package emutop

import (
	"strconv"

	"github.com/sarchlab/loom/internal/diag"
	"github.com/sarchlab/loom/ir"
)

// Options configures the pass.
type Options struct {
	ClockName string // default "clk_i"
	ResetName string // default "rst_ni"
	IRQWidth  int    // default 16
}

func (o Options) withDefaults() Options {
	if o.ClockName == "" {
		o.ClockName = "clk_i"
	}
	if o.ResetName == "" {
		o.ResetName = "rst_ni"
	}
	if o.IRQWidth == 0 {
		o.IRQWidth = 16
	}
	return o
}

const TopModuleName = "loom_emu_top"

// Run synthesizes loom_emu_top wiring dutName's module as the DUT instance.
// Runs last in the pipeline. It reads loom_n_dpi_funcs and
// loom_scan_chain_length from the DUT's attributes and the widths of its
// loom_dpi_args/loom_dpi_result ports; the shadow-memory attributes
// stamped by mem_shadow are not read and no shadow-memory bus is wired.
func Run(d *ir.Design, dutName string, opts Options) error {
	opts = opts.withDefaults()
	dut, ok := d.Module(dutName)
	if !ok {
		return diag.Newf(diag.MalformedInput, "top module %q not found", dutName).On(dutName)
	}

	nDPI := attrInt(dut.StrAttrs, "loom_n_dpi_funcs", 0)
	scanLen := attrInt(dut.StrAttrs, "loom_scan_chain_length", 0)
	argsWidth := portWidth(dut, "loom_dpi_args")
	retWidth := portWidth(dut, "loom_dpi_result")

	top := d.AddModule(TopModuleName)

	top.AddPort(opts.ClockName, 1, true, false)
	topRst := top.AddPort(opts.ResetName, 1, true, false)
	irqOut := top.AddPort("irq_o", opts.IRQWidth, false, true)
	finishOut := top.AddPort("finish_o", 1, false, true)

	slave := addAXISlavePorts(top, "s")
	ctrlSeg := addAXIInternalBus(top, "m0_ctrl")
	regfileSeg := addAXIInternalBus(top, "m1_dpi")
	scanSeg := addAXIInternalBus(top, "m2_scan")

	demux := top.AddCell(top.Fresh("loom_axi_demux_inst"), ir.CellType("loom_axi_demux"))
	wireAXISlave(demux, "s", slave)
	wireAXIMaster(demux, "m0", ctrlSeg)
	wireAXIMaster(demux, "m1", regfileSeg)
	wireAXIMaster(demux, "m2", scanSeg)

	ctrl := top.AddCell(top.Fresh("loom_emu_ctrl_inst"), ir.CellType("loom_emu_ctrl"))
	ctrl.Params["DPI_COUNT"] = strconv.Itoa(nDPI)
	ctrl.Params["SCAN_LEN"] = strconv.Itoa(scanLen)
	ctrl.Params["DPI_ARG_WIDTH"] = strconv.Itoa(argsWidth)
	ctrl.Params["DPI_RET_WIDTH"] = strconv.Itoa(retWidth)
	ctrl.Ports[opts.ClockName] = ir.WireSignal(top.Wires[opts.ClockName])
	ctrl.Ports[opts.ResetName] = ir.WireSignal(topRst)
	wireAXISlave(ctrl, "s", ctrlSeg)

	loomEnWire := top.AddWire(top.Fresh("loom_en"), 1)
	dutRstWire := top.AddWire(top.Fresh("dut_rst_n"), 1)
	emuFinishWire := top.AddWire(top.Fresh("emu_finish"), 1)
	stateChangeWire := top.AddWire(top.Fresh("state_change"), 1)
	ctrl.Ports["loom_en_o"] = ir.WireSignal(loomEnWire)
	ctrl.Ports["dut_rst_no"] = ir.WireSignal(dutRstWire)
	ctrl.Ports["finish_o"] = ir.WireSignal(emuFinishWire)
	ctrl.Ports["state_change_o"] = ir.WireSignal(stateChangeWire)

	regfile := top.AddCell(top.Fresh("loom_dpi_regfile_inst"), ir.CellType("loom_dpi_regfile"))
	regfile.Params["DPI_COUNT"] = strconv.Itoa(nDPI)
	regfile.Params["ARG_WIDTH"] = strconv.Itoa(argsWidth)
	regfile.Params["RET_WIDTH"] = strconv.Itoa(retWidth)
	regfile.Ports[opts.ClockName] = ir.WireSignal(top.Wires[opts.ClockName])
	regfile.Ports[opts.ResetName] = ir.WireSignal(topRst)
	wireAXISlave(regfile, "s", regfileSeg)

	pendingMaskWidth := nDPI
	if pendingMaskWidth < 1 {
		pendingMaskWidth = 1
	}
	pendingMaskWire := top.AddWire(top.Fresh("loom_pending_mask"), pendingMaskWidth)
	regfile.Ports["pending_mask_o"] = ir.WireSignal(pendingMaskWire)

	dpiValidWire := top.AddWire(top.Fresh("loom_dpi_valid"), 1)
	dpiFuncIDWire := top.AddWire(top.Fresh("loom_dpi_func_id"), 8)
	argsW := argsWidth
	if argsW < 1 {
		argsW = 1
	}
	retW := retWidth
	if retW < 1 {
		retW = 1
	}
	dpiArgsWire := top.AddWire(top.Fresh("loom_dpi_args"), argsW)
	dpiResultWire := top.AddWire(top.Fresh("loom_dpi_result"), retW)
	regfile.Ports["dpi_valid_i"] = ir.WireSignal(dpiValidWire)
	regfile.Ports["dpi_func_id_i"] = ir.WireSignal(dpiFuncIDWire)
	regfile.Ports["dpi_args_i"] = ir.WireSignal(dpiArgsWire)
	regfile.Ports["dpi_result_o"] = ir.WireSignal(dpiResultWire)

	scanCtrl := top.AddCell(top.Fresh("loom_scan_ctrl_inst"), ir.CellType("loom_scan_ctrl"))
	scanCtrl.Params["SCAN_LEN"] = strconv.Itoa(scanLen)
	scanCtrl.Ports[opts.ClockName] = ir.WireSignal(top.Wires[opts.ClockName])
	scanCtrl.Ports[opts.ResetName] = ir.WireSignal(topRst)
	wireAXISlave(scanCtrl, "s", scanSeg)

	scanEnableWire := top.AddWire(top.Fresh("loom_scan_enable"), 1)
	scanInWire := top.AddWire(top.Fresh("loom_scan_in"), 1)
	scanOutWire := top.AddWire(top.Fresh("loom_scan_out"), 1)
	scanBusyWire := top.AddWire(top.Fresh("loom_scan_busy"), 1)
	scanCtrl.Ports["scan_enable_o"] = ir.WireSignal(scanEnableWire)
	scanCtrl.Ports["scan_in_o"] = ir.WireSignal(scanInWire)
	scanCtrl.Ports["scan_out_i"] = ir.WireSignal(scanOutWire)
	scanCtrl.Ports["scan_busy_o"] = ir.WireSignal(scanBusyWire)

	dutInst := top.AddCell(top.Fresh("dut_inst"), ir.CellType(dutName))
	dutFinishWire := top.AddWire(top.Fresh("dut_finish"), 1)

	matched := map[string]bool{}
	wireDUTPort := func(dutPort string, sig ir.Signal) {
		dutInst.Ports[dutPort] = sig
		matched[dutPort] = true
	}

	if _, ok := dut.Wires[opts.ClockName]; ok {
		wireDUTPort(opts.ClockName, ir.WireSignal(top.Wires[opts.ClockName]))
	}
	if _, ok := dut.Wires[opts.ResetName]; ok {
		wireDUTPort(opts.ResetName, ir.WireSignal(dutRstWire))
	}
	if _, ok := dut.Wires["loom_en"]; ok {
		wireDUTPort("loom_en", ir.WireSignal(loomEnWire))
	}
	if _, ok := dut.Wires["loom_dpi_valid"]; ok {
		wireDUTPort("loom_dpi_valid", ir.WireSignal(dpiValidWire))
	}
	if _, ok := dut.Wires["loom_dpi_func_id"]; ok {
		wireDUTPort("loom_dpi_func_id", ir.WireSignal(dpiFuncIDWire))
	}
	if _, ok := dut.Wires["loom_dpi_args"]; ok {
		wireDUTPort("loom_dpi_args", ir.WireSignal(dpiArgsWire))
	}
	if _, ok := dut.Wires["loom_dpi_result"]; ok {
		wireDUTPort("loom_dpi_result", ir.WireSignal(dpiResultWire))
	}
	if _, ok := dut.Wires["loom_scan_enable"]; ok {
		wireDUTPort("loom_scan_enable", ir.WireSignal(scanEnableWire))
	}
	if _, ok := dut.Wires["loom_scan_in"]; ok {
		wireDUTPort("loom_scan_in", ir.WireSignal(scanInWire))
	}
	if _, ok := dut.Wires["loom_scan_out"]; ok {
		wireDUTPort("loom_scan_out", ir.WireSignal(scanOutWire))
	}
	haveDUTFinish := false
	if _, ok := dut.Wires["loom_finish_o"]; ok {
		wireDUTPort("loom_finish_o", ir.WireSignal(dutFinishWire))
		haveDUTFinish = true
	}

	// Every remaining DUT port, in deterministic order: inputs tied to 0,
	// outputs driven into a fresh unused wire (§4.6).
	for _, pname := range dut.Ports {
		if matched[pname] {
			continue
		}
		w := dut.Wires[pname]
		if w.PortInput {
			dutInst.Ports[pname] = ir.ConstSignal("0").ZeroExtend(w.Width)
		} else {
			unused := top.AddWire(top.Fresh("loom_unused"), w.Width)
			dutInst.Ports[pname] = ir.WireSignal(unused)
		}
	}

	// IRQ aggregation: bit 0 is the OR of the per-function pending mask,
	// bit 1 is the controller's state-change signal, higher bits are 0.
	pendingAny := ir.ReduceOr(top, ir.WireSignal(pendingMaskWire))
	irqBits := make(ir.Signal, opts.IRQWidth)
	for i := range irqBits {
		irqBits[i] = ir.ConstBit('0')
	}
	irqBits[0] = pendingAny[0]
	if opts.IRQWidth > 1 {
		irqBits[1] = ir.WireSignal(stateChangeWire)[0]
	}
	ir.DriveWire(top, irqOut, irqBits)

	// Finish aggregation: emu_finish OR (dut_finish AND NOT scan_busy).
	// Prevents spurious finish while a scan shift is in progress.
	var dutFinish ir.Signal
	if haveDUTFinish {
		dutFinish = ir.WireSignal(dutFinishWire)
	} else {
		dutFinish = ir.ConstSignal("0")
	}
	gatedDUTFinish := ir.And(top, dutFinish, ir.Not(top, ir.WireSignal(scanBusyWire)))
	finish := ir.Or(top, ir.WireSignal(emuFinishWire), gatedDUTFinish)
	ir.DriveWire(top, finishOut, finish)

	top.FixupPorts()
	return nil
}

// axiBus is the five-channel AXI-Lite signal set, as either top-level
// ports (addAXISlavePorts) or a set of module-internal wires representing
// one demux master segment (addAXIInternalBus).
type axiBus struct {
	AWAddr, AWValid, AWReady *ir.Wire
	WData, WStrb, WValid, WReady *ir.Wire
	BResp, BValid, BReady *ir.Wire
	ARAddr, ARValid, ARReady *ir.Wire
	RData, RResp, RValid, RReady *ir.Wire
}

func addAXISlavePorts(m *ir.Module, prefix string) axiBus {
	return axiBus{
		AWAddr:  m.AddPort(prefix+"_awaddr", 32, true, false),
		AWValid: m.AddPort(prefix+"_awvalid", 1, true, false),
		AWReady: m.AddPort(prefix+"_awready", 1, false, true),
		WData:   m.AddPort(prefix+"_wdata", 32, true, false),
		WStrb:   m.AddPort(prefix+"_wstrb", 4, true, false),
		WValid:  m.AddPort(prefix+"_wvalid", 1, true, false),
		WReady:  m.AddPort(prefix+"_wready", 1, false, true),
		BResp:   m.AddPort(prefix+"_bresp", 2, false, true),
		BValid:  m.AddPort(prefix+"_bvalid", 1, false, true),
		BReady:  m.AddPort(prefix+"_bready", 1, true, false),
		ARAddr:  m.AddPort(prefix+"_araddr", 32, true, false),
		ARValid: m.AddPort(prefix+"_arvalid", 1, true, false),
		ARReady: m.AddPort(prefix+"_arready", 1, false, true),
		RData:   m.AddPort(prefix+"_rdata", 32, false, true),
		RResp:   m.AddPort(prefix+"_rresp", 2, false, true),
		RValid:  m.AddPort(prefix+"_rvalid", 1, false, true),
		RReady:  m.AddPort(prefix+"_rready", 1, true, false),
	}
}

func addAXIInternalBus(m *ir.Module, prefix string) axiBus {
	w := func(suffix string, width int) *ir.Wire {
		return m.AddWire(m.Fresh(prefix+"_"+suffix), width)
	}
	return axiBus{
		AWAddr: w("awaddr", 32), AWValid: w("awvalid", 1), AWReady: w("awready", 1),
		WData: w("wdata", 32), WStrb: w("wstrb", 4), WValid: w("wvalid", 1), WReady: w("wready", 1),
		BResp: w("bresp", 2), BValid: w("bvalid", 1), BReady: w("bready", 1),
		ARAddr: w("araddr", 32), ARValid: w("arvalid", 1), ARReady: w("arready", 1),
		RData: w("rdata", 32), RResp: w("rresp", 2), RValid: w("rvalid", 1), RReady: w("rready", 1),
	}
}

// wireAXISlave connects cell c's slave-side ports (prefixed by prefix) to
// the given bus, matching the direction each channel flows as a slave.
func wireAXISlave(c *ir.Cell, prefix string, b axiBus) {
	c.Ports[prefix+"_awaddr"] = ir.WireSignal(b.AWAddr)
	c.Ports[prefix+"_awvalid"] = ir.WireSignal(b.AWValid)
	c.Ports[prefix+"_awready"] = ir.WireSignal(b.AWReady)
	c.Ports[prefix+"_wdata"] = ir.WireSignal(b.WData)
	c.Ports[prefix+"_wstrb"] = ir.WireSignal(b.WStrb)
	c.Ports[prefix+"_wvalid"] = ir.WireSignal(b.WValid)
	c.Ports[prefix+"_wready"] = ir.WireSignal(b.WReady)
	c.Ports[prefix+"_bresp"] = ir.WireSignal(b.BResp)
	c.Ports[prefix+"_bvalid"] = ir.WireSignal(b.BValid)
	c.Ports[prefix+"_bready"] = ir.WireSignal(b.BReady)
	c.Ports[prefix+"_araddr"] = ir.WireSignal(b.ARAddr)
	c.Ports[prefix+"_arvalid"] = ir.WireSignal(b.ARValid)
	c.Ports[prefix+"_arready"] = ir.WireSignal(b.ARReady)
	c.Ports[prefix+"_rdata"] = ir.WireSignal(b.RData)
	c.Ports[prefix+"_rresp"] = ir.WireSignal(b.RResp)
	c.Ports[prefix+"_rvalid"] = ir.WireSignal(b.RValid)
	c.Ports[prefix+"_rready"] = ir.WireSignal(b.RReady)
}

// wireAXIMaster connects the demux's master-side ports to the same bus
// wires, with the same port names, that wireAXISlave connects to the
// segment's slave instance.
func wireAXIMaster(c *ir.Cell, prefix string, b axiBus) {
	wireAXISlave(c, prefix, b)
}

func attrInt(attrs map[string]string, key string, deflt int) int {
	v, ok := attrs[key]
	if !ok {
		return deflt
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return deflt
	}
	return n
}

func portWidth(m *ir.Module, name string) int {
	if w, ok := m.Wires[name]; ok {
		return w.Width
	}
	return 0
}
