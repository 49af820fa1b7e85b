package diag

import (
	"errors"
	"testing"
)

func TestWarningStringWithAndWithoutEntity(t *testing.T) {
	w := Warning{Kind: Unsupported, Entity: "p0", Msg: "unhandled cell type"}
	if got := w.String(); got != "unsupported: unhandled cell type (p0)" {
		t.Fatalf("String() = %q", got)
	}

	w.Entity = ""
	if got := w.String(); got != "unsupported: unhandled cell type" {
		t.Fatalf("String() without entity = %q", got)
	}
}

func TestErrorFormattingVariants(t *testing.T) {
	cause := errors.New("boom")

	plain := New(MalformedInput, "bad netlist")
	if got := plain.Error(); got != "malformed_input: bad netlist" {
		t.Fatalf("plain.Error() = %q", got)
	}

	withEntity := New(MalformedInput, "bad netlist").On("mod0")
	if got := withEntity.Error(); got != "malformed_input: bad netlist (mod0)" {
		t.Fatalf("withEntity.Error() = %q", got)
	}

	wrapped := Wrap(IOFailure, "reading artifact", cause)
	if got := wrapped.Error(); got != "io_failure: reading artifact: boom" {
		t.Fatalf("wrapped.Error() = %q", got)
	}

	wrappedWithEntity := Wrap(IOFailure, "reading artifact", cause).On("dpi_metadata.yaml")
	if got := wrappedWithEntity.Error(); got != "io_failure: reading artifact (dpi_metadata.yaml): boom" {
		t.Fatalf("wrappedWithEntity.Error() = %q", got)
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	e := Newf(TransportIO, "writing %s at %#x", "reg", 0x20)
	if got := e.Error(); got != "transport_io: writing reg at 0x20" {
		t.Fatalf("Newf formatted wrong: %q", got)
	}
}

func TestUnwrapExposesCauseToErrorsIs(t *testing.T) {
	sentinel := errors.New("underlying")
	wrapped := Wrap(TransportIO, "failed", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("errors.Is should see through Unwrap to the sentinel cause")
	}
}

func TestIsMatchesKindThroughWrappedChain(t *testing.T) {
	inner := New(MissingCallback, "no callback for foo")
	outer := Wrap(TransportIO, "service round failed", inner)

	if !Is(outer, MissingCallback) {
		t.Fatal("Is should find MissingCallback through the wrapped chain")
	}
	if Is(outer, ProtocolFraming) {
		t.Fatal("Is should not match an unrelated kind")
	}
}

func TestIsReturnsFalseForNonDiagError(t *testing.T) {
	if Is(errors.New("plain"), MalformedInput) {
		t.Fatal("Is should return false for a non-diag error")
	}
}
