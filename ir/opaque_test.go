package ir

import "testing"

func TestDPICallRoundTrip(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	data := DPICallData{
		FuncName: "dpi_adder",
		Args: []DPIArg{
			{Name: "a", Dir: ArgIn, Type: "int", Width: 32, Signal: ConstSignal("0")},
		},
		HasReturn: true,
		RetType:   "int",
		RetWidth:  32,
	}
	c := NewDPICall(m, "call0", data)
	if c.Type != CellDPICall {
		t.Fatalf("type = %s, want %s", c.Type, CellDPICall)
	}
	got := DPICall(c)
	if got.FuncName != "dpi_adder" || got.FuncID != -1 {
		t.Fatalf("got = %+v", got)
	}

	got.FuncID = 3
	SetDPICall(c, got)
	if DPICall(c).FuncID != 3 {
		t.Fatal("SetDPICall did not persist FuncID")
	}
}

func TestDPICallWrongTypePanics(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	c := m.AddCell("c0", CellAnd)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	DPICall(c)
}

func TestFinishRoundTrip(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	c := NewFinish(m, "fin0", FinishData{ExitCode: 1})
	got := Finish(c)
	if got.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", got.ExitCode)
	}
}

func TestFormatStringAndSignalArgs(t *testing.T) {
	data := PrintData{
		Spans: []PrintSpan{
			{Kind: SpanLiteral, Literal: "x="},
			{Kind: SpanInteger, Base: 10, Signed: true, Value: ConstSignal("0101")},
			{Kind: SpanLiteral, Literal: " y="},
			{Kind: SpanInteger, Base: 16, UpperCase: true, Value: ConstSignal("1111")},
		},
	}
	got := FormatString(data)
	want := "x=%0d y=%0X"
	if got != want {
		t.Fatalf("FormatString() = %q, want %q", got, want)
	}
	args := SignalArgs(data)
	if len(args) != 2 {
		t.Fatalf("SignalArgs() len = %d, want 2", len(args))
	}
}

func TestPrintRoundTrip(t *testing.T) {
	d := NewDesign()
	m := d.AddModule("top")
	data := PrintData{Spans: []PrintSpan{{Kind: SpanLiteral, Literal: "hi"}}}
	c := NewPrint(m, "p0", data)
	if Print(c).Spans[0].Literal != "hi" {
		t.Fatal("round trip lost literal span")
	}
}
