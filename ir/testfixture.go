package ir

// Helpers below exist only to make pass unit tests read like the netlists
// they describe, without going through the YAML fixture format for every
// small case. Grounded on the teacher's habit of small builder-style test
// helpers (core_suite_test.go's kernel-building helpers) rather than
// hand-constructing structs field by field in every test.

// ConnectFF wires up a flip-flop's clock, data and output in one call; the
// caller still sets EN/ARST ports directly when the variant needs them,
// since those differ per-variant.
func ConnectFF(c *Cell, clk, d, q Signal) {
	c.Ports["CLK"] = clk
	c.Ports["D"] = d
	c.Ports["Q"] = q
}

// NewClock adds a 1-bit clock input port to m, named "clk" unless name is
// given.
func NewClock(m *Module, name string) *Wire {
	if name == "" {
		name = "clk"
	}
	return m.AddPort(name, 1, true, false)
}

// Const1 returns the 1-bit constant-true signal, handy as a stand-in EN
// when a test does not care about gating.
func Const1() Signal {
	return ConstSignal("1")
}

// Const0 returns the 1-bit constant-false signal.
func Const0() Signal {
	return ConstSignal("0")
}

// BuildSimpleRegister constructs a minimal module with a single plain DFF
// — clk input, d input, q output — used as the smallest fixture several
// pass tests start from before layering on the feature under test.
func BuildSimpleRegister(d *Design, moduleName string, width int) *Module {
	m := d.AddModule(moduleName)
	clk := NewClock(m, "clk")
	din := m.AddPort("d", width, true, false)
	qout := m.AddPort("q", width, false, true)

	c := m.AddCell("ff0", CellDFF)
	c.Params["WIDTH"] = itoa(width)
	ConnectFF(c, WireSignal(clk), WireSignal(din), WireSignal(qout))
	return m
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
