// Package trafficgen provides an agent that exercises a DRAM controller
// with randomized memory traffic.
package trafficgen

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/dramsim/protocol"
)

// An Agent generates random memory requests against a DRAM controller and
// tracks which of them were answered. It also plays the role of the
// request-object owner: flushed prefetches and retired write-backs come
// back through Release.
type Agent struct {
	*sim.TickingComponent

	MemCtrl sim.Port

	maxAddress uint64
	lineSize   uint64
	reqLeft    int
	gpuShare   float64
	rng        *rand.Rand

	pending map[string]*protocol.MemReq

	memPort sim.Port

	// Issued counts all requests sent, Delivered the responses received,
	// and Released the requests handed back without a response.
	Issued    int
	Delivered int
	Released  int
}

// Tick issues at most one new request per cycle and drains responses.
func (a *Agent) Tick() bool {
	madeProgress := a.processRsp()

	if a.reqLeft > 0 {
		madeProgress = a.issue() || madeProgress
	}

	return madeProgress
}

// Release takes back a request the controller will not respond to.
func (a *Agent) Release(req *protocol.MemReq) {
	if _, ok := a.pending[req.ID]; !ok {
		log.Panicf("released request %s is not pending", req.ID)
	}

	delete(a.pending, req.ID)
	a.Released++
}

// Done tells whether the agent issued everything and got every request
// back.
func (a *Agent) Done() bool {
	return a.reqLeft == 0 && len(a.pending) == 0
}

// Pending returns the number of requests awaiting a response or release.
func (a *Agent) Pending() int {
	return len(a.pending)
}

func (a *Agent) processRsp() bool {
	msg := a.memPort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	rsp, ok := msg.(*protocol.MemRsp)
	if !ok {
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	req, found := a.pending[rsp.RespondTo]
	if !found {
		log.Panicf("response to unknown request %s", rsp.RespondTo)
	}

	if req.Type.IsWriteBack() {
		log.Panicf("write-back 0x%X must not be answered", req.Address)
	}

	delete(a.pending, rsp.RespondTo)
	a.Delivered++

	return true
}

func (a *Agent) issue() bool {
	req := a.randomReq()

	err := a.memPort.Send(req)
	if err != nil {
		return false
	}

	a.pending[req.ID] = req
	a.Issued++
	a.reqLeft--

	return true
}

var issuedTypes = []protocol.ReqType{
	protocol.ReqTypeIFetch,
	protocol.ReqTypeDFetch,
	protocol.ReqTypeDStore,
	protocol.ReqTypeDPrefetch,
	protocol.ReqTypeSWPrefetchT0,
	protocol.ReqTypeWriteBack,
}

func (a *Agent) randomReq() *protocol.MemReq {
	address := a.rng.Uint64() % (a.maxAddress / a.lineSize) * a.lineSize
	reqType := issuedTypes[a.rng.Intn(len(issuedTypes))]

	builder := protocol.MemReqBuilder{}.
		WithSrc(a.memPort.AsRemote()).
		WithDst(a.MemCtrl.AsRemote()).
		WithAddress(address).
		WithByteSize(a.lineSize).
		WithType(reqType).
		WithCoreID(a.rng.Intn(4)).
		WithThreadID(a.rng.Intn(8))

	if a.rng.Float64() < a.gpuShare {
		builder = builder.FromGPU()
	}

	return builder.Build()
}
