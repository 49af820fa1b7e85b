package ir

// The front end emits three opaque call-cell kinds. Rather than stuff
// their payload into attribute-bag strings (the source of "missing
// attribute" bugs per the design notes), each gets a typed data struct
// carried in Cell.Opaque, and a pair of constructor/accessor functions
// that are the only legal way to build or read one. This is the "sum
// type" the design notes call for, modeled in Go as a closed set of
// structs rather than an interface, since passes always know which kind
// of opaque cell they are looking at from the Cell.Type tag.

// DPIArgDir is the direction of a DPI function argument.
type DPIArgDir string

const (
	ArgIn    DPIArgDir = "in"
	ArgOut   DPIArgDir = "out"
	ArgInOut DPIArgDir = "inout"
)

// DPIArg describes one argument of a DPI import.
type DPIArg struct {
	Name      string
	Dir       DPIArgDir
	Type      string // e.g. "int", "shortreal", "string", "bit[31:0]"
	Width     int
	Signal    Signal // the hardware signal carrying this argument
	IsString  bool
	ConstStr  string // compile-time constant value, only set when IsString
}

// DPICallData is the structured payload of a $__loom_dpi_call cell.
type DPICallData struct {
	FuncName  string
	Args      []DPIArg
	HasReturn bool
	RetType   string
	RetWidth  int
	Result    Signal // the signal the call's result drives, if HasReturn

	// EN, if non-nil, is the front-end-supplied activation condition
	// (§4.4.2 step 1). When nil, loom_instrument must derive the valid
	// condition by dataflow tracing.
	EN Signal

	// FuncID is assigned by loom_instrument (monotonically increasing
	// from 0, in discovery order) and is -1 until then.
	FuncID int
}

// NewDPICall creates a $__loom_dpi_call cell carrying data.
func NewDPICall(m *Module, name string, data DPICallData) *Cell {
	data.FuncID = -1
	c := m.AddCell(name, CellDPICall)
	c.Opaque = data
	return c
}

// DPICall reads the structured data of a $__loom_dpi_call cell.
func DPICall(c *Cell) DPICallData {
	if c.Type != CellDPICall {
		panic("ir: cell " + c.Name + " is not a $__loom_dpi_call")
	}
	return c.Opaque.(DPICallData)
}

// SetDPICall overwrites the structured data of a $__loom_dpi_call cell
// (used to assign FuncID during loom_instrument's discovery pass).
func SetDPICall(c *Cell, data DPICallData) {
	if c.Type != CellDPICall {
		panic("ir: cell " + c.Name + " is not a $__loom_dpi_call")
	}
	c.Opaque = data
}

// FinishData is the structured payload of a $__loom_finish cell.
type FinishData struct {
	ExitCode int
	EN       Signal // nil means "always", i.e. treated as constant 1
}

// NewFinish creates a $__loom_finish cell.
func NewFinish(m *Module, name string, data FinishData) *Cell {
	c := m.AddCell(name, CellFinish)
	c.Opaque = data
	return c
}

// Finish reads the structured data of a $__loom_finish cell.
func Finish(c *Cell) FinishData {
	if c.Type != CellFinish {
		panic("ir: cell " + c.Name + " is not a $__loom_finish")
	}
	return c.Opaque.(FinishData)
}

// PrintSpanKind distinguishes the three span kinds of a $print format
// descriptor.
type PrintSpanKind int

const (
	SpanLiteral PrintSpanKind = iota
	SpanInteger
	SpanSignal
)

// PrintSpan is one element of a $print cell's structured format
// descriptor.
type PrintSpan struct {
	Kind PrintSpanKind

	// SpanLiteral
	Literal string

	// SpanInteger: base (10/16/8/2), signed-ness and letter case for hex.
	Base      int
	Signed    bool
	UpperCase bool

	// SpanSignal / SpanInteger (when backed by a signal rather than a
	// literal constant)
	Value Signal
}

// PrintData is the structured payload of a $print cell.
type PrintData struct {
	Spans []PrintSpan
	EN    Signal // the condition under which this $print fires
}

// NewPrint creates a $print cell.
func NewPrint(m *Module, name string, data PrintData) *Cell {
	c := m.AddCell(name, CellPrint)
	c.Opaque = data
	return c
}

// Print reads the structured data of a $print cell.
func Print(c *Cell) PrintData {
	if c.Type != CellPrint {
		panic("ir: cell " + c.Name + " is not a $print")
	}
	return c.Opaque.(PrintData)
}

// FormatString renders the printf-style format string implied by a
// $print cell's spans — the literal spans and the conversion specifiers
// for integer/signal spans, in order. Used by loom_instrument when it
// lowers a $print into a synthesized DPI call (§4.4.1): the result is
// stored as a compile-time-constant first argument, never routed through
// hardware.
func FormatString(d PrintData) string {
	var out []byte
	for _, sp := range d.Spans {
		switch sp.Kind {
		case SpanLiteral:
			out = append(out, sp.Literal...)
		case SpanInteger, SpanSignal:
			out = append(out, formatSpec(sp)...)
		}
	}
	return string(out)
}

func formatSpec(sp PrintSpan) string {
	conv := byte('d')
	switch sp.Base {
	case 16:
		conv = 'x'
		if sp.UpperCase {
			conv = 'X'
		}
	case 8:
		conv = 'o'
	case 2:
		conv = 'b'
	case 10:
		if sp.Signed {
			conv = 'd'
		} else {
			conv = 'u'
		}
	}
	return "%0" + string(conv)
}

// SignalArgs returns the non-literal spans' signals, in order — the
// varying arguments concatenated in order that §4.4.1 requires as the
// remaining arguments of the synthesized display call.
func SignalArgs(d PrintData) []Signal {
	var out []Signal
	for _, sp := range d.Spans {
		if sp.Kind == SpanInteger || sp.Kind == SpanSignal {
			out = append(out, sp.Value)
		}
	}
	return out
}
