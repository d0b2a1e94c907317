// Package dram provides a cycle-level DRAM memory-controller timing model.
// The controller tracks per-bank row-buffer state, arbitrates command and
// data buses per channel, and reorders requests with a pluggable
// scheduling policy.
package dram

import (
	"log"
	"os"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/tracing"

	"github.com/sarchlab/dramsim/dram/internal/addressmapping"
	"github.com/sarchlab/dramsim/dram/internal/drb"
	"github.com/sarchlab/dramsim/dram/internal/org"
	"github.com/sarchlab/dramsim/dram/internal/sched"
	"github.com/sarchlab/dramsim/protocol"
)

// Comp is a DRAM memory controller. It accepts protocol.MemReq messages on
// its top port, models the bank and bus timing of servicing them, and
// responds with protocol.MemRsp messages when the data transfer completes.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	mapper   addressmapping.Mapper
	policy   sched.Scheduler
	banks    []*org.Bank
	channels []*org.Channel

	latencies    org.Latencies
	mergeEnabled bool

	releaser   protocol.Releaser
	slotMapper protocol.SlotPortMapper

	inflight           int
	completedThisCycle int
	starvationCycles   uint64
	starvationThresh   uint64
	diagPath           string

	totalBytes uint64
}

// Tick advances the controller by one cycle.
func (c *Comp) Tick() bool {
	now := c.Freq.Cycle(c.CurrentTime())
	c.completedThisCycle = 0

	madeProgress := false

	madeProgress = c.scheduleChannels(now) || madeProgress
	madeProgress = c.admitRequests(now) || madeProgress
	madeProgress = c.completeTransfers(now) || madeProgress
	madeProgress = c.assignBanks(now) || madeProgress

	c.checkProgress(now)

	return madeProgress || c.inflight > 0
}

// scheduleChannels runs command arbitration and data-bus arbitration for
// every channel.
func (c *Comp) scheduleChannels(now uint64) bool {
	madeProgress := false

	for _, ch := range c.channels {
		if b := ch.OldestCommandBank(); b != nil {
			c.issueCommand(now, ch, b)
			madeProgress = true
		}

		madeProgress = c.drainData(now, ch) || madeProgress
	}

	return madeProgress
}

func (c *Comp) issueCommand(now uint64, ch *org.Channel, b *org.Bank) {
	e := b.Current()
	kind := b.AdvanceCommand(now, c.latencies)
	e.Req.State = protocol.DRAMStateCmd

	pos := HookPosBankPrecharge
	switch kind {
	case org.CmdActivate:
		pos = HookPosBankActivate
	case org.CmdColumn:
		pos = HookPosBankColumn
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item: &CommandEvent{
			Cycle:   now,
			Channel: ch.ID,
			Bank:    b.ID(),
			Row:     e.Row,
			Address: e.Address,
		},
	})
}

func (c *Comp) drainData(now uint64, ch *org.Channel) bool {
	if !ch.BusFree(now) {
		if ch.AnyDataEligible(now) {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosBusSaturated,
			})
		}
		return false
	}

	madeProgress := false

	for ch.BusFree(now) {
		b := ch.OldestDataBank(now)
		if b == nil {
			break
		}

		e := b.Current()
		readyAt := ch.AcquireBus(now, e.Size, e.Req.FromGPU)
		b.GrantData(readyAt)
		e.Req.State = protocol.DRAMStateData
		c.totalBytes += e.Size

		madeProgress = true
	}

	return madeProgress
}

// admitRequests pulls requests off the top port into bank request buffers.
// When the target bank is full, its pending prefetches are flushed once;
// admission stops for the cycle if the bank is still full.
func (c *Comp) admitRequests(now uint64) bool {
	madeProgress := false

	for {
		item := c.topPort.PeekIncoming()
		if item == nil {
			break
		}

		req, ok := item.(*protocol.MemReq)
		if !ok {
			log.Panicf("cannot handle message %s", reflect.TypeOf(item))
		}

		if !c.admit(req, now) {
			break
		}

		c.topPort.RetrieveIncoming()
		tracing.TraceReqReceive(req, c)
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) admit(req *protocol.MemReq, now uint64) bool {
	loc := c.mapper.Map(req.Address)
	b := c.banks[loc.Bank]

	if !b.HasFreeSlot() {
		flushed := b.FlushPrefetches(func(r *protocol.MemReq) {
			c.release(r)
			c.inflight--
			tracing.TraceReqComplete(r, c)
		})

		if flushed > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosPrefetchFlushed,
				Item: &FlushEvent{
					Cycle:   now,
					Bank:    b.ID(),
					Flushed: flushed,
				},
			})
		}

		if !b.HasFreeSlot() {
			return false
		}
	}

	req.State = protocol.DRAMStateStart
	b.Admit(req, loc.Row, loc.Col, now)
	c.inflight++

	return true
}

// completeTransfers retires entries whose data transfer has finished,
// together with any pending entries at the same address when merging is
// on. A response that cannot be sent leaves the entry in place to retry.
func (c *Comp) completeTransfers(now uint64) bool {
	madeProgress := false

	for _, b := range c.banks {
		if !b.TransferDone(now) {
			continue
		}

		e := b.Current()

		if c.mergeEnabled && !c.mergeMatches(now, b, e) {
			continue
		}

		if !c.retire(e) {
			continue
		}

		req := e.Req
		event := &CompletionEvent{
			Cycle:   now,
			Bank:    b.ID(),
			Address: e.Address,
			Latency: now - e.InsertedAt,
		}

		b.CompleteCurrent()
		c.inflight--
		c.completedThisCycle++

		req.State = protocol.DRAMStateDone
		tracing.TraceReqComplete(req, c)
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosReqCompleted,
			Item:   event,
		})

		madeProgress = true
	}

	return madeProgress
}

// mergeMatches retires pending entries at the completing entry's address.
// It reports whether all matches retired. A send failure skips only that
// entry; the remaining matches still retire this cycle, and the failed one
// holds the completion for the next.
func (c *Comp) mergeMatches(now uint64, b *org.Bank, done *drb.Entry) bool {
	allRetired := true
	pending := b.Pending()

	for i := 0; i < len(pending); {
		e := pending[i]
		if e.Address != done.Address {
			i++
			continue
		}

		if !c.retire(e) {
			allRetired = false
			i++
			continue
		}

		req := e.Req
		addr := e.Address

		b.RetirePending(e)
		c.inflight--
		c.completedThisCycle++

		req.State = protocol.DRAMStateDone
		tracing.TraceReqComplete(req, c)
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosReqMerged,
			Item: &MergeEvent{
				Cycle:   now,
				Bank:    b.ID(),
				Address: addr,
			},
		})

		pending = b.Pending()
	}

	return allRetired
}

// retire hands the finished request back to its originator. Write-backs
// are released without a response. It reports whether the request left the
// controller.
func (c *Comp) retire(e *drb.Entry) bool {
	req := e.Req

	if req.Type.IsWriteBack() {
		c.release(req)
		return true
	}

	dst := req.Src
	if c.slotMapper != nil {
		dst = c.slotMapper.Find(req.CacheSlot)
	}

	rsp := protocol.MemRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(dst).
		WithRspTo(req.ID).
		WithAddress(req.Address).
		WithByteSize(req.ByteSize).
		Build()

	err := c.topPort.Send(rsp)

	return err == nil
}

func (c *Comp) release(req *protocol.MemReq) {
	if c.releaser != nil {
		c.releaser.Release(req)
	}
}

// assignBanks pulls the next pending entry into each idle bank's service
// slot and re-arms banks whose command latency has elapsed.
func (c *Comp) assignBanks(now uint64) bool {
	madeProgress := false

	for _, b := range c.banks {
		if b.Current() == nil {
			pending := b.Pending()
			if len(pending) == 0 {
				continue
			}

			e := c.policy.Select(pending, b.OpenRow())
			b.MakeCurrent(e, now)
			madeProgress = true
			continue
		}

		madeProgress = b.RearmCommand(now) || madeProgress
	}

	return madeProgress
}

// checkProgress counts consecutive cycles with work in flight but nothing
// completed, and aborts the simulation with a state dump once the count
// reaches the configured threshold.
func (c *Comp) checkProgress(now uint64) {
	if c.inflight > 0 && c.completedThisCycle == 0 {
		c.starvationCycles++
	} else {
		c.starvationCycles = 0
	}

	if c.starvationCycles < c.starvationThresh {
		return
	}

	c.dumpDiagnostic(now)
	log.Panicf(
		"dram controller %s made no progress for %d cycles with %d requests in flight",
		c.Name(), c.starvationCycles, c.inflight)
}

func (c *Comp) dumpDiagnostic(now uint64) {
	f, err := os.Create(c.diagPath)
	if err != nil {
		log.Printf("cannot write dram diagnostic: %v", err)
		return
	}
	defer f.Close()

	c.writeDiagnostic(f, now)
}

// TopPort returns the port requests arrive on.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// Inflight returns the number of requests currently buffered or in
// service.
func (c *Comp) Inflight() int {
	return c.inflight
}

// TotalBytes returns the number of bytes moved over the data buses so far.
func (c *Comp) TotalBytes() uint64 {
	return c.totalBytes
}
