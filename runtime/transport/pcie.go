package transport

import (
	"context"
	"fmt"
)

// PCIe is a Transport over a memory-mapped PCIe device file descriptor.
// Real hardware register access (mmap'd BARs, interrupt eventfd) is
// external to this repository — PCIe is a stub satisfying the same
// interface as UnixSocket; every register method returns an error, and
// cmd/loom does not select it (it always dials the UNIX socket).
type PCIe struct {
	devicePath string
}

// OpenPCIe always returns an error naming devicePath: no hardware backend
// is built in.
func OpenPCIe(devicePath string) (*PCIe, error) {
	return nil, fmt.Errorf("transport: pcie device %q: hardware backend not available in this build", devicePath)
}

func (p *PCIe) ReadReg(addr uint32) (uint32, error) {
	return 0, fmt.Errorf("transport: pcie ReadReg not implemented")
}

func (p *PCIe) WriteReg(addr, data uint32) error {
	return fmt.Errorf("transport: pcie WriteReg not implemented")
}

func (p *PCIe) WaitIRQ(ctx context.Context) (uint32, error) {
	return 0, fmt.Errorf("transport: pcie WaitIRQ not implemented")
}

func (p *PCIe) Poll() (uint32, bool, error) {
	return 0, false, fmt.Errorf("transport: pcie Poll not implemented")
}

func (p *PCIe) Close() error {
	return nil
}
