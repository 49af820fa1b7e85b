// Package loominstrument implements the loom_instrument pass: it lowers
// $print cells into synthesized DPI calls, transforms every DPI call site
// into a host-facing handshake bus, lowers $finish into a dedicated output
// port, and instruments every non-memory flip-flop with a clock enable so
// the host can freeze and single-step the design. These four jobs run in
// that order per module, matching §4.4.
package loominstrument

import (
	"fmt"
	"sort"

	"github.com/sarchlab/loom/internal/diag"
	"github.com/sarchlab/loom/ir"
)

// FuncInfo is the discovery-order record of one DPI function's shape,
// surfaced by Run so the pipeline driver and artifacts package can emit
// the DPI metadata document (§6.3) without re-deriving it from a netlist
// that no longer has the opaque call cells.
type FuncInfo struct {
	ID        int
	Name      string
	Module    string
	Args      []ir.DPIArg
	HasReturn bool
	RetType   string
	RetWidth  int
	Builtin   bool
}

// Result is everything Run discovers across the design.
type Result struct {
	Funcs    []FuncInfo
	Warnings []diag.Warning
}

// Run applies loom_instrument to every module of d, in module order.
func Run(d *ir.Design) (Result, error) {
	var res Result
	for _, name := range d.ModuleNames() {
		m := d.MustModule(name)
		if err := runModule(m, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func runModule(m *ir.Module, res *Result) error {
	if err := lowerPrints(m); err != nil {
		return err
	}
	if err := transformDPICalls(m, res); err != nil {
		return err
	}
	if err := lowerFinish(m); err != nil {
		return err
	}
	instrumentFlipFlops(m)
	return nil
}

// ---- 4.4.1 $print lowering ----

func lowerPrints(m *ir.Module) error {
	names := sortedCellNames(m, ir.CellPrint)
	n := 0
	for _, name := range names {
		c := m.Cells[name]
		data := ir.Print(c)

		format := ir.FormatString(data)
		argSigs := ir.SignalArgs(data)

		args := make([]ir.DPIArg, 0, len(argSigs)+1)
		args = append(args, ir.DPIArg{
			Name:     "fmt",
			Dir:      ir.ArgIn,
			Type:     "string",
			IsString: true,
			ConstStr: format,
		})
		for i, sig := range argSigs {
			args = append(args, ir.DPIArg{
				Name:   fmt.Sprintf("arg%d", i),
				Dir:    ir.ArgIn,
				Type:   "int",
				Width:  sig.Width(),
				Signal: sig,
			})
		}

		callName := m.Fresh("loom_display")
		dispName := fmt.Sprintf("__loom_display_%d", n)
		n++

		call := ir.NewDPICall(m, callName, ir.DPICallData{
			FuncName: dispName,
			Args:     args,
			EN:       data.EN,
		})
		call.Params["loom_dpi_builtin"] = "1"

		m.RemoveCell(name)
	}
	return nil
}

// ---- 4.4.2 DPI call transformation ----

func transformDPICalls(m *ir.Module, res *Result) error {
	names := sortedCellNames(m, ir.CellDPICall)
	if len(names) == 0 {
		m.StrAttrs["loom_n_dpi_funcs"] = "0"
		return nil
	}

	idx := buildMuxIndex(m)

	type call struct {
		name string
		data ir.DPICallData
		cond ir.Signal
	}
	calls := make([]call, len(names))

	maxArgWidth := 0
	maxRetWidth := 0
	for i, name := range names {
		c := m.Cells[name]
		data := ir.DPICall(c)
		data.FuncID = i
		ir.SetDPICall(c, data)

		cond, warn := deriveCondition(m, c, data, idx)
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
		}

		calls[i] = call{name: name, data: data, cond: cond}

		w := hardwareArgsWidth(data.Args)
		if w > maxArgWidth {
			maxArgWidth = w
		}
		if data.HasReturn && data.RetWidth > maxRetWidth {
			maxRetWidth = data.RetWidth
		}

		res.Funcs = append(res.Funcs, FuncInfo{
			ID:        i,
			Name:      data.FuncName,
			Module:    m.Name,
			Args:      data.Args,
			HasReturn: data.HasReturn,
			RetType:   data.RetType,
			RetWidth:  data.RetWidth,
			Builtin:   c.Params["loom_dpi_builtin"] == "1",
		})
	}

	if maxArgWidth < 1 {
		maxArgWidth = 1
	}
	if maxRetWidth < 1 {
		maxRetWidth = 1
	}

	valid := m.AddPort("loom_dpi_valid", 1, false, true)
	funcID := m.AddPort("loom_dpi_func_id", 8, false, true)
	argsOut := m.AddPort("loom_dpi_args", maxArgWidth, false, true)
	result := m.AddPort("loom_dpi_result", maxRetWidth, true, false)

	if len(calls) == 1 {
		c := calls[0]
		ir.DriveWire(m, valid, reduce1(m, c.cond))
		ir.DriveWire(m, funcID, constInt(0, 8))
		ir.DriveWire(m, argsOut, hardwareArgsSignal(c.data.Args).ZeroExtend(maxArgWidth))
		driveResult(m, c.data.Result, ir.WireSignal(result).Slice(0, widthOrZero(c.data)))
	} else {
		conds := make([]ir.Signal, len(calls))
		idConsts := make([]ir.Signal, len(calls))
		argSigs := make([]ir.Signal, len(calls))
		for i, c := range calls {
			conds[i] = reduce1(m, c.cond)
			idConsts[i] = constInt(i, 8)
			argSigs[i] = hardwareArgsSignal(c.data.Args).ZeroExtend(maxArgWidth)
			driveResult(m, c.data.Result, ir.WireSignal(result).Slice(0, widthOrZero(c.data)))
		}
		ir.DriveWire(m, valid, ir.OrAll(m, 1, conds...))
		ir.DriveWire(m, funcID, ir.PriorityCascade(m, conds, idConsts, constInt(0, 8)))
		ir.DriveWire(m, argsOut, ir.PriorityCascade(m, conds, argSigs, ir.ConstSignal("0").ZeroExtend(maxArgWidth)))
	}

	for _, name := range names {
		m.RemoveCell(name)
	}

	m.FixupPorts()
	m.StrAttrs["loom_n_dpi_funcs"] = itoa(len(calls))
	return nil
}

func widthOrZero(d ir.DPICallData) int {
	if !d.HasReturn {
		return 0
	}
	return d.RetWidth
}

// driveResult drives the wire backing a call's result signal from src. A
// call result is always a whole wire in this IR (the front end never
// hands back a sub-slice as a call's result), so the single backing wire
// of the first bit identifies the driver target.
func driveResult(m *ir.Module, result ir.Signal, src ir.Signal) {
	if len(result) == 0 {
		return
	}
	w := result[0].Wire
	if w == nil {
		return
	}
	ir.DriveWire(m, w, src)
}

func hardwareArgsWidth(args []ir.DPIArg) int {
	w := 0
	for _, a := range args {
		if a.IsString {
			continue
		}
		w += a.Width
	}
	return w
}

func hardwareArgsSignal(args []ir.DPIArg) ir.Signal {
	var parts []ir.Signal
	for _, a := range args {
		if a.IsString {
			continue
		}
		parts = append(parts, a.Signal)
	}
	return ir.Concat(parts...)
}

func reduce1(m *ir.Module, sig ir.Signal) ir.Signal {
	if sig.Width() == 1 {
		return sig
	}
	return ir.ReduceOr(m, sig)
}

// deriveCondition implements the three-step + fallback valid-condition
// derivation of §4.4.2.
func deriveCondition(m *ir.Module, c *ir.Cell, data ir.DPICallData, idx muxIndex) (ir.Signal, *diag.Warning) {
	if data.EN != nil {
		return data.EN, nil
	}
	if !data.HasReturn {
		// No result signal to trace and no front-end EN: nothing to
		// derive from. Fall through to the constant-1 last resort.
		return ir.ConstSignal("1"), &diag.Warning{
			Kind:   diag.Unsupported,
			Entity: c.Name,
			Msg:    "dpi call has no EN and no return value to trace; defaulting valid to constant 1",
		}
	}
	if sel, ok := idx.lookup(data.Result); ok {
		return sel, nil
	}
	return ir.ConstSignal("1"), &diag.Warning{
		Kind:   diag.Unsupported,
		Entity: c.Name,
		Msg:    "could not trace dpi call result through any mux; defaulting valid to constant 1",
	}
}

// muxIndex maps a result signal (by key) to the 1-bit select signal that
// chooses it, built once per module so deriveCondition does not rescan
// every cell for every function (the design note's "small, explicit
// sig-to-mux index").
type muxIndex map[string]ir.Signal

func (idx muxIndex) lookup(result ir.Signal) (ir.Signal, bool) {
	sel, ok := idx[sigKey(result)]
	return sel, ok
}

func buildMuxIndex(m *ir.Module) muxIndex {
	idx := make(muxIndex)
	names := make([]string, 0, len(m.Cells))
	for name := range m.Cells {
		names = append(names, name)
	}
	sort.Strings(names)

	// §4.4.2 step 2 (trace through a pmux case) must win over step 3 (the
	// 2:1 mux fallback) whenever both exist for the same result signal.
	// Indexing every pmux cell before any mux cell — rather than
	// interleaving both in one name-sorted pass — makes that priority
	// hold regardless of which cell's name happens to sort first.
	for _, name := range names {
		c := m.Cells[name]
		if c.Type != ir.CellPmux {
			continue
		}
		y := c.Ports["Y"]
		s := c.Ports["S"]
		b := c.Ports["B"]
		w := y.Width()
		n := s.Width()
		for i := 0; i < n; i++ {
			lo, hi := i*w, (i+1)*w
			if hi > b.Width() {
				break
			}
			caseData := b.Slice(lo, hi)
			key := sigKey(caseData)
			if _, exists := idx[key]; !exists {
				idx[key] = ir.Signal{s[i]}
			}
		}
	}

	for _, name := range names {
		c := m.Cells[name]
		if c.Type != ir.CellMux {
			continue
		}
		bSig := c.Ports["B"]
		sSig := c.Ports["S"]
		key := sigKey(bSig)
		if _, exists := idx[key]; !exists {
			idx[key] = sSig
		}
	}
	return idx
}

// sigKey renders a Signal as an exact, bit-precise identity key — unlike
// Signal.String() (a diagnostics-oriented rendering), this never conflates
// distinct bits of the same wire.
func sigKey(sig ir.Signal) string {
	buf := make([]byte, 0, len(sig)*8)
	for _, b := range sig {
		if b.IsConst() {
			buf = append(buf, '#', b.Const)
			continue
		}
		buf = append(buf, fmt.Sprintf("@%p:%d", b.Wire, b.Bit)...)
	}
	return string(buf)
}

// ---- 4.4.3 $finish lowering ----

func lowerFinish(m *ir.Module) error {
	names := sortedCellNames(m, ir.CellFinish)
	if len(names) == 0 {
		return nil
	}

	finishO := m.AddPort("loom_finish_o", 1, false, true)

	conds := make([]ir.Signal, 0, len(names))
	for _, name := range names {
		c := m.Cells[name]
		data := ir.Finish(c)
		en := data.EN
		if en == nil {
			en = ir.ConstSignal("1")
		}
		conds = append(conds, reduce1(m, en))
		m.RemoveCell(name)
	}

	ir.DriveWire(m, finishO, ir.OrAll(m, 1, conds...))
	m.FixupPorts()
	return nil
}

// ---- 4.4.4 Flip-flop enable instrumentation ----

func instrumentFlipFlops(m *ir.Module) {
	names := make([]string, 0, len(m.Cells))
	for name, c := range m.Cells {
		if !ir.IsFlipFlop(c.Type) {
			continue
		}
		if isMemoryOutputFF(c) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	loomEn, ok := m.Wires["loom_en"]
	if !ok {
		loomEn = m.AddPort("loom_en", 1, true, false)
	}
	scanEnable, hasScan := m.Wires["loom_scan_enable"]

	for _, name := range names {
		c := m.Cells[name]
		if !ir.HasEnable(c.Type) {
			c.Type = ir.EnableVariant(c.Type)
			en := ir.WireSignal(loomEn)
			if hasScan {
				en = ir.Or(m, en, ir.WireSignal(scanEnable))
			}
			c.Ports["EN"] = en
			c.Params["EN_POLARITY"] = "1"
			continue
		}

		existing := c.Ports["EN"]
		activeEn := existing
		if c.Params["EN_POLARITY"] != "1" {
			activeEn = ir.Not(m, existing)
		}
		andEn := ir.And(m, activeEn, ir.WireSignal(loomEn))
		newEn := andEn
		if hasScan {
			newEn = ir.Or(m, andEn, ir.WireSignal(scanEnable))
		}
		c.Ports["EN"] = newEn
		c.Params["EN_POLARITY"] = "1"
	}

	m.FixupPorts()
}

func isMemoryOutputFF(c *ir.Cell) bool {
	q, ok := c.Ports["Q"]
	if !ok || len(q) == 0 || q[0].Wire == nil {
		return false
	}
	return ir.IsMemoryOutputWire(q[0].Wire.Name)
}

// ---- shared helpers ----

func sortedCellNames(m *ir.Module, t ir.CellType) []string {
	var names []string
	for name, c := range m.Cells {
		if c.Type == t {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func constInt(v, width int) ir.Signal {
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

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
