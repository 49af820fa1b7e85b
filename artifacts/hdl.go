package artifacts

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/sarchlab/loom/ir"
)

// RenderHDL renders every module of d as synthesizable SystemVerilog,
// module-by-module in design order. The module frame (ports, wires, cell
// bodies) is one text/template — grounded on the text/template-based
// firmware generator pattern in the reference pack, adapted here from
// TCL/Verilog source generation to netlist-to-HDL lowering — and each
// cell body is formatted by a per-family Go function. Combinational
// primitives ($and, $mux, …) expand to assign statements, $pmux to an
// always_comb block and flip-flops to always_ff blocks; cell types not found among the primitives
// are emitted as plain module instantiations (submodules synthesized by
// earlier passes, e.g. loom_mem_ctrl, or external IP such as
// loom_axi_demux).
func RenderHDL(d *ir.Design) (string, error) {
	var sb strings.Builder
	for _, name := range d.ModuleNames() {
		m := d.MustModule(name)
		out, err := renderModule(m)
		if err != nil {
			return "", fmt.Errorf("artifacts: rendering module %q: %w", name, err)
		}
		sb.WriteString(out)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

var moduleTmpl = template.Must(template.New("module").Parse(
	`module {{.Name}} (
{{- range $i, $p := .Ports}}
  {{$p.Dir}} logic {{$p.Range}}{{$p.Name}}{{if not $p.Last}},{{end}}
{{- end}}
);
{{range .Wires}}  logic {{.Range}}{{.Name}};
{{end -}}
{{range .Bodies}}{{.}}
{{end -}}
endmodule
`))

type tmplPort struct {
	Dir   string
	Range string
	Name  string
	Last  bool
}

type tmplWire struct {
	Name  string
	Range string
}

func renderModule(m *ir.Module) (string, error) {
	ports := make([]tmplPort, 0, len(m.Ports))
	for i, name := range m.Ports {
		w := m.Wires[name]
		dir := "output"
		if w.PortInput {
			dir = "input"
		}
		ports = append(ports, tmplPort{
			Dir:   dir,
			Range: rangeStr(w.Width),
			Name:  name,
			Last:  i == len(m.Ports)-1,
		})
	}

	var wires []tmplWire
	for _, name := range sortedWireNames(m) {
		w := m.Wires[name]
		if w.PortInput || w.PortOutput {
			continue
		}
		wires = append(wires, tmplWire{Name: name, Range: rangeStr(w.Width)})
	}

	var bodies []string
	for _, name := range sortedCellNames(m) {
		c := m.Cells[name]
		body, err := renderCell(m, c)
		if err != nil {
			return "", err
		}
		if body != "" {
			bodies = append(bodies, body)
		}
	}

	var sb strings.Builder
	err := moduleTmpl.Execute(&sb, struct {
		Name   string
		Ports  []tmplPort
		Wires  []tmplWire
		Bodies []string
	}{m.Name, ports, wires, bodies})
	return sb.String(), err
}

func renderCell(m *ir.Module, c *ir.Cell) (string, error) {
	switch c.Type {
	case ir.CellDPICall, ir.CellFinish:
		// Lowered away by loom_instrument before HDL emission ever runs;
		// surviving one here means a pass ordering bug upstream.
		return "", fmt.Errorf("unlowered opaque cell %q (%s) reached HDL emission", c.Name, c.Type)
	case ir.CellMem:
		return renderMemory(ir.AsMemory(c)), nil
	case ir.CellAnd, ir.CellOr:
		op := "&"
		if c.Type == ir.CellOr {
			op = "|"
		}
		return fmt.Sprintf("  assign %s = %s %s %s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"]), op, sigExpr(c.Ports["B"])), nil
	case ir.CellNot:
		return fmt.Sprintf("  assign %s = ~%s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"])), nil
	case ir.CellMux:
		return fmt.Sprintf("  assign %s = %s ? %s : %s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["S"]), sigExpr(c.Ports["B"]), sigExpr(c.Ports["A"])), nil
	case ir.CellPmux:
		return renderPmux(c), nil
	case ir.CellReduceOr:
		return fmt.Sprintf("  assign %s = |%s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"])), nil
	case ir.CellEq:
		return fmt.Sprintf("  assign %s = (%s == %s);", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"]), sigExpr(c.Ports["B"])), nil
	case ir.CellSub:
		return fmt.Sprintf("  assign %s = %s - %s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"]), sigExpr(c.Ports["B"])), nil
	case ir.CellExtend:
		return fmt.Sprintf("  assign %s = %s;", sigExpr(c.Ports["Y"]), sigExpr(c.Ports["A"])), nil
	}
	if ir.IsFlipFlop(c.Type) {
		return renderFlipFlop(c), nil
	}
	return renderInstance(c), nil
}

func renderMemory(mem ir.Memory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  logic [%d:0] %s_mem [0:%d];", mem.Width()-1, mem.Name(), mem.Depth()-1)
	for i := 0; i < mem.NumWritePorts(); i++ {
		p := mem.WritePort(i)
		fmt.Fprintf(&sb, "\n  always_ff @(posedge %s) if (%s) %s_mem[%s] <= %s;",
			sigExpr(p.Clk), sigExpr(p.Enable), mem.Name(), sigExpr(p.Addr), sigExpr(p.Data))
	}
	for i := 0; i < mem.NumReadPorts(); i++ {
		p := mem.ReadPort(i)
		fmt.Fprintf(&sb, "\n  assign %s = %s_mem[%s];", sigExpr(p.Data), mem.Name(), sigExpr(p.Addr))
	}
	return sb.String()
}

func renderFlipFlop(c *ir.Cell) string {
	clk := sigExpr(c.Ports["CLK"])
	d := sigExpr(c.Ports["D"])
	q := sigExpr(c.Ports["Q"])

	sensitivity := "@(posedge " + clk + ")"
	body := q + " <= " + d + ";"

	switch {
	case ir.HasReset(c.Type) && ir.IsAsyncReset(c.Type):
		arst := sigExpr(c.Ports["ARST"])
		sensitivity = fmt.Sprintf("@(posedge %s or posedge %s)", clk, arst)
		body = fmt.Sprintf("if (%s) %s <= %s; else %s <= %s;", arst, q, c.Params["ARST_VALUE"], q, d)
	case ir.HasReset(c.Type):
		srst := sigExpr(c.Ports["SRST"])
		body = fmt.Sprintf("if (%s) %s <= %s; else %s <= %s;", srst, q, c.Params["SRST_VALUE"], q, d)
	}

	if ir.HasEnable(c.Type) {
		en := sigExpr(c.Ports["EN"])
		body = fmt.Sprintf("if (%s) begin %s end", en, body)
	}

	return fmt.Sprintf("  always_ff %s %s", sensitivity, body)
}

func renderPmux(c *ir.Cell) string {
	y := sigExpr(c.Ports["Y"])
	a := c.Ports["A"]
	s := c.Ports["S"]
	width := len(y)
	var sb strings.Builder
	fmt.Fprintf(&sb, "  always_comb begin\n    %s = %s;", y, sigExpr(a))
	for i := range s {
		lo := i * width
		hi := lo + width
		if hi > len(a) {
			break
		}
		fmt.Fprintf(&sb, "\n    if (%s) %s = %s;", sigExpr(Signal1(s, i)), y, sigExpr(a[lo:hi]))
	}
	sb.WriteString("\n  end")
	return sb.String()
}

// Signal1 returns the i-th bit of s as a 1-bit Signal.
func Signal1(s ir.Signal, i int) ir.Signal { return s[i : i+1] }

func renderInstance(c *ir.Cell) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s (", c.Type, c.Name)
	names := make([]string, 0, len(c.Ports))
	for p := range c.Ports {
		names = append(names, p)
	}
	sort.Strings(names)
	for i, p := range names {
		fmt.Fprintf(&sb, "\n    .%s(%s)%s", p, sigExpr(c.Ports[p]), commaUnless(i == len(names)-1))
	}
	sb.WriteString("\n  );")
	return sb.String()
}

func commaUnless(last bool) string {
	if last {
		return ""
	}
	return ","
}

// sigExpr renders a Signal as a Verilog concatenation of per-bit
// references, MSB first. Deliberately simple (no contiguous-run
// collapsing): every bit is its own concat element, which is always
// correct regardless of how the signal was assembled by gate builders.
func sigExpr(s ir.Signal) string {
	if len(s) == 0 {
		return "1'b0"
	}
	if len(s) == 1 {
		return bitExpr(s[0])
	}
	parts := make([]string, len(s))
	for i := range s {
		parts[len(s)-1-i] = bitExpr(s[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func bitExpr(b ir.SigBit) string {
	if b.IsConst() {
		return "1'b" + string(b.Const)
	}
	return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Bit)
}

func rangeStr(width int) string {
	if width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", width-1)
}

func sortedWireNames(m *ir.Module) []string {
	names := make([]string, 0, len(m.Wires))
	for n := range m.Wires {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedCellNames(m *ir.Module) []string {
	names := make([]string, 0, len(m.Cells))
	for n := range m.Cells {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
