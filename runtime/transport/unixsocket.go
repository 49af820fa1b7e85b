package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Frame types (§6.2).
const (
	reqRead  = 0
	reqWrite = 1

	respReadAck  = 0
	respWriteAck = 1
	respIRQEdge  = 2
	respShutdown = 3
)

const frameSize = 12

// UnixSocket implements Transport over a framed UNIX-domain-socket
// connection to a simulation process, grounded on the connect-with-retry
// and read-loop shape of the reference pack's Unix-socket IPC client
// (dial, deadline, single reader goroutine demultiplexing responses from
// asynchronous events).
type UnixSocket struct {
	conn net.Conn
	log  *slog.Logger

	mu       sync.Mutex
	ackCh    chan ackFrame
	irqCh    chan uint32
	closed   chan struct{}
	closeErr error
}

type ackFrame struct {
	kind  byte
	rdata uint32
}

// DialUnixSocket connects to path, retrying for up to 5 seconds if the
// simulation hasn't accepted yet (§6.2: "waits for the simulation to
// accept, with 5-second retry").
func DialUnixSocket(path string, log *slog.Logger) (*UnixSocket, error) {
	if log == nil {
		log = slog.Default()
	}
	deadline := time.Now().Add(5 * time.Second)
	var conn net.Conn
	var err error
	for {
		conn, err = net.DialTimeout("unix", path, time.Second)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("transport: connecting to %s: %w", path, err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	u := &UnixSocket{
		conn:   conn,
		log:    log,
		ackCh:  make(chan ackFrame),
		irqCh:  make(chan uint32, 16),
		closed: make(chan struct{}),
	}
	go u.readLoop()
	return u, nil
}

func (u *UnixSocket) readLoop() {
	buf := make([]byte, frameSize)
	for {
		if _, err := readFull(u.conn, buf); err != nil {
			u.log.Debug("transport read loop exiting", "error", err)
			close(u.closed)
			return
		}
		kind := buf[0]
		switch kind {
		case respReadAck, respWriteAck:
			rdata := binary.LittleEndian.Uint32(buf[4:8])
			u.ackCh <- ackFrame{kind: kind, rdata: rdata}
		case respIRQEdge:
			irq := binary.LittleEndian.Uint32(buf[8:12])
			select {
			case u.irqCh <- irq:
			default:
				u.log.Warn("transport dropped IRQ event, channel full")
			}
		case respShutdown:
			close(u.closed)
			return
		default:
			u.log.Warn("transport saw unknown frame kind", "kind", kind)
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (u *UnixSocket) send(kind byte, offset, wdata uint32) (ackFrame, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var buf [frameSize]byte
	buf[0] = kind
	binary.LittleEndian.PutUint32(buf[4:8], offset)
	binary.LittleEndian.PutUint32(buf[8:12], wdata)
	if _, err := u.conn.Write(buf[:]); err != nil {
		return ackFrame{}, fmt.Errorf("transport: write request: %w", err)
	}

	select {
	case ack := <-u.ackCh:
		return ack, nil
	case <-u.closed:
		return ackFrame{}, fmt.Errorf("transport: connection closed waiting for ack")
	}
}

// ReadReg implements Transport.
func (u *UnixSocket) ReadReg(addr uint32) (uint32, error) {
	ack, err := u.send(reqRead, addr, 0)
	if err != nil {
		return 0, err
	}
	return ack.rdata, nil
}

// WriteReg implements Transport.
func (u *UnixSocket) WriteReg(addr, data uint32) error {
	_, err := u.send(reqWrite, addr, data)
	return err
}

// WaitIRQ implements Transport.
func (u *UnixSocket) WaitIRQ(ctx context.Context) (uint32, error) {
	select {
	case irq := <-u.irqCh:
		return irq, nil
	case <-u.closed:
		return 0, fmt.Errorf("transport: connection closed waiting for IRQ")
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Poll implements Transport: a non-blocking check of the IRQ channel.
func (u *UnixSocket) Poll() (uint32, bool, error) {
	select {
	case irq := <-u.irqCh:
		return irq, true, nil
	case <-u.closed:
		return 0, false, fmt.Errorf("transport: connection closed")
	default:
		return 0, false, nil
	}
}

// Close sends the shutdown message and closes the connection.
func (u *UnixSocket) Close() error {
	var buf [frameSize]byte
	buf[0] = respShutdown
	_, _ = u.conn.Write(buf[:]) // best-effort; the simulation may already be gone
	return u.conn.Close()
}
