package transport

import (
	"context"
	"testing"
)

func TestOpenPCIeReportsUnavailableBackend(t *testing.T) {
	if _, err := OpenPCIe("/dev/loom0"); err == nil {
		t.Fatal("expected an error since no hardware backend is available in this build")
	}
}

func TestPCIeMethodsAllReportNotImplemented(t *testing.T) {
	p := &PCIe{devicePath: "/dev/loom0"}

	if _, err := p.ReadReg(0); err == nil {
		t.Fatal("ReadReg should error")
	}
	if err := p.WriteReg(0, 0); err == nil {
		t.Fatal("WriteReg should error")
	}
	if _, err := p.WaitIRQ(context.Background()); err == nil {
		t.Fatal("WaitIRQ should error")
	}
	if _, _, err := p.Poll(); err == nil {
		t.Fatal("Poll should error")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close should be a no-op, got %v", err)
	}
}
