package dpi_test

import (
	"log/slog"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/loom/runtime/dpi"
	"github.com/sarchlab/loom/runtime/regmap"
)

var _ = Describe("ServiceLoop", func() {
	var (
		ctrl  *gomock.Controller
		xport *MockTransport
		table *dpi.DispatchTable
		cbs   *dpi.Callbacks
		loop  *dpi.ServiceLoop
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		xport = NewMockTransport(ctrl)
		table = &dpi.DispatchTable{Funcs: []dpi.FuncEntry{
			{ID: 0, Name: "add_one", NumArgs: 1, HasReturn: true},
		}}
		cbs = dpi.NewCallbacks()
		loop = dpi.NewServiceLoop(xport, table, cbs, slog.Default())
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("reads args, invokes the callback, then writes return, done, and pending-clear in that order", func() {
		var seen uint64
		cbs.Register("add_one", func(args []uint64) (dpi.CallResult, error) {
			seen = args[0]
			return dpi.CallResult{Return: args[0] + 1}, nil
		})

		xport.EXPECT().ReadReg(uint32(regmap.OffPending)).Return(uint32(1), nil)

		argCall := xport.EXPECT().ReadReg(uint32(regmap.ArgOffset(0, 0))).Return(uint32(41), nil)
		retLoCall := xport.EXPECT().WriteReg(uint32(regmap.RetLoOffset(0)), uint32(42)).Return(nil)
		retHiCall := xport.EXPECT().WriteReg(uint32(regmap.RetHiOffset(0)), uint32(0)).Return(nil)
		doneCall := xport.EXPECT().WriteReg(uint32(regmap.StatusOffset(0)), regmap.StatusDone).Return(nil)
		clearCall := xport.EXPECT().WriteReg(uint32(regmap.PendingClearOffset(0)), uint32(1)).Return(nil)

		gomock.InOrder(argCall, retLoCall, retHiCall, doneCall, clearCall)

		Expect(loop.ServiceRound()).To(Succeed())
		Expect(seen).To(Equal(uint64(41)))
	})

	It("marks an unknown function id as errored, clears its pending bit, and continues", func() {
		xport.EXPECT().ReadReg(uint32(regmap.OffPending)).Return(uint32(1), nil)
		xport.EXPECT().WriteReg(uint32(regmap.StatusOffset(0)), regmap.StatusError).Return(nil)
		xport.EXPECT().WriteReg(uint32(regmap.PendingClearOffset(0)), uint32(1)).Return(nil)

		table.Funcs = nil // no entry registered for id 0

		Expect(loop.ServiceRound()).To(Succeed())
	})

	It("errors when no callback is registered for a known function", func() {
		xport.EXPECT().ReadReg(uint32(regmap.OffPending)).Return(uint32(1), nil)
		xport.EXPECT().ReadReg(uint32(regmap.ArgOffset(0, 0))).Return(uint32(1), nil)

		Expect(loop.ServiceRound()).NotTo(Succeed())
	})

	It("writes output-direction argument registers before the return register", func() {
		table.Funcs = []dpi.FuncEntry{
			{ID: 0, Name: "swap", NumArgs: 2, HasReturn: true, OutArgs: []int{1}},
		}
		cbs.Register("swap", func(args []uint64) (dpi.CallResult, error) {
			return dpi.CallResult{Return: 1, OutArgs: []uint64{args[0]}}, nil
		})

		xport.EXPECT().ReadReg(uint32(regmap.OffPending)).Return(uint32(1), nil)
		xport.EXPECT().ReadReg(uint32(regmap.ArgOffset(0, 0))).Return(uint32(7), nil)
		xport.EXPECT().ReadReg(uint32(regmap.ArgOffset(0, 1))).Return(uint32(9), nil)

		outArgCall := xport.EXPECT().WriteReg(uint32(regmap.ArgOffset(0, 1)), uint32(7)).Return(nil)
		retLoCall := xport.EXPECT().WriteReg(uint32(regmap.RetLoOffset(0)), uint32(1)).Return(nil)
		retHiCall := xport.EXPECT().WriteReg(uint32(regmap.RetHiOffset(0)), uint32(0)).Return(nil)
		doneCall := xport.EXPECT().WriteReg(uint32(regmap.StatusOffset(0)), regmap.StatusDone).Return(nil)
		clearCall := xport.EXPECT().WriteReg(uint32(regmap.PendingClearOffset(0)), uint32(1)).Return(nil)

		gomock.InOrder(outArgCall, retLoCall, retHiCall, doneCall, clearCall)

		Expect(loop.ServiceRound()).To(Succeed())
	})
})
