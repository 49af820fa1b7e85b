package dpi

import (
	"context"
	"log/slog"
	"math/bits"
	"time"

	"github.com/sarchlab/loom/internal/diag"
	"github.com/sarchlab/loom/runtime/regmap"
	"github.com/sarchlab/loom/runtime/transport"
)

// pollInterval is how long a polling-mode round sleeps between pending
// mask checks (§9: "polling mode sleeps 1 ms between checks").
const pollInterval = time.Millisecond

// ServiceLoop drains pending DPI calls each round, in function-ID order,
// calling back into user code and writing args before the return register
// (§9's Open Question #2 resolution: any other order races the DUT
// observing a stale return alongside fresh args). Polling and interrupt
// modes both converge on ServiceRound, the single "service one round"
// routine the design notes require (§9).
type ServiceLoop struct {
	Transport transport.Transport
	Table     *DispatchTable
	Callbacks *Callbacks
	Log       *slog.Logger
}

// NewServiceLoop constructs a ServiceLoop with a default logger if log is
// nil.
func NewServiceLoop(t transport.Transport, table *DispatchTable, cb *Callbacks, log *slog.Logger) *ServiceLoop {
	if log == nil {
		log = slog.Default()
	}
	return &ServiceLoop{Transport: t, Table: table, Callbacks: cb, Log: log}
}

// Drive runs the service loop until ctx is cancelled or the transport
// reports shutdown. interrupt selects between blocking on WaitIRQ (true)
// and sleeping pollInterval between pending-mask reads (false) — both
// converge on ServiceRound.
func (l *ServiceLoop) Drive(ctx context.Context, interrupt bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if interrupt {
			if _, err := l.Transport.WaitIRQ(ctx); err != nil {
				return err
			}
		} else {
			time.Sleep(pollInterval)
		}

		if err := l.ServiceRound(); err != nil {
			return err
		}
	}
}

// ServiceRound drains every currently-pending function once, in
// ascending function-ID order.
func (l *ServiceLoop) ServiceRound() error {
	mask, err := l.Transport.ReadReg(uint32(regmap.OffPending))
	if err != nil {
		return diag.Newf(diag.TransportIO, "reading pending mask: %v", err)
	}

	for mask != 0 {
		id := bits.TrailingZeros32(mask)
		mask &^= 1 << uint(id)
		if err := l.serviceOne(id); err != nil {
			return err
		}
	}
	return nil
}

func (l *ServiceLoop) serviceOne(id int) error {
	entry, ok := l.Table.ByID(id)
	if !ok {
		l.Log.Warn("dpi: unknown function id in pending mask, marking error and continuing", "id", id)
		if err := l.Transport.WriteReg(uint32(regmap.StatusOffset(id)), regmap.StatusError); err != nil {
			return diag.Newf(diag.TransportIO, "writing error status for unknown function id %d: %v", id, err)
		}
		return l.Transport.WriteReg(uint32(regmap.PendingClearOffset(id)), 1)
	}

	args := make([]uint64, entry.NumArgs)
	for i := range args {
		v, err := l.Transport.ReadReg(uint32(regmap.ArgOffset(id, i)))
		if err != nil {
			return diag.Newf(diag.TransportIO, "reading arg %d of %s: %v", i, entry.Name, err)
		}
		args[i] = uint64(v)
	}

	cb, ok := l.Callbacks.Lookup(entry.Name)
	if !ok {
		return diag.New(diag.MissingCallback, "no callback registered for "+entry.Name).On(entry.Name)
	}

	result, err := cb(args)
	if err != nil {
		return err
	}

	// Output-direction argument registers are written back first, then
	// the return register, then the done bit — so a host-side observer
	// never sees "done" before the return value and output args it is
	// about to read are current (§9's Open Question #2: any other order
	// races the DUT observing a stale return alongside fresh args).
	for i, regIdx := range entry.OutArgs {
		if i >= len(result.OutArgs) {
			break
		}
		if err := l.Transport.WriteReg(uint32(regmap.ArgOffset(id, regIdx)), uint32(result.OutArgs[i])); err != nil {
			return diag.Newf(diag.TransportIO, "writing out-arg %d of %s: %v", regIdx, entry.Name, err)
		}
	}

	if entry.HasReturn {
		if err := l.Transport.WriteReg(uint32(regmap.RetLoOffset(id)), uint32(result.Return)); err != nil {
			return diag.Newf(diag.TransportIO, "writing return value of %s: %v", entry.Name, err)
		}
		if err := l.Transport.WriteReg(uint32(regmap.RetHiOffset(id)), uint32(result.Return>>32)); err != nil {
			return diag.Newf(diag.TransportIO, "writing return value of %s: %v", entry.Name, err)
		}
	}

	if err := l.Transport.WriteReg(uint32(regmap.StatusOffset(id)), regmap.StatusDone); err != nil {
		return diag.Newf(diag.TransportIO, "writing done status of %s: %v", entry.Name, err)
	}
	return l.Transport.WriteReg(uint32(regmap.PendingClearOffset(id)), 1)
}
