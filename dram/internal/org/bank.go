// Package org models the physical organization of the DRAM device: banks
// with their request-buffer arenas and channels with their shared data bus.
package org

import (
	"fmt"
	"math"

	"github.com/sarchlab/dramsim/dram/internal/drb"
	"github.com/sarchlab/dramsim/protocol"
)

// FutureCycle is a readiness value that never arrives on its own.
const FutureCycle = math.MaxUint64

// A CmdKind identifies the DRAM command a bank issues in a command phase.
type CmdKind int

// The commands a bank can issue.
const (
	CmdActivate CmdKind = iota
	CmdColumn
	CmdPrecharge
)

// Latencies carries the command latencies precomputed in controller cycles,
// one set per originating clock domain.
type Latencies struct {
	ActivateCPU  uint64
	PrechargeCPU uint64
	ColumnCPU    uint64
	ActivateGPU  uint64
	PrechargeGPU uint64
	ColumnGPU    uint64
}

func (l Latencies) activate(fromGPU bool) uint64 {
	if fromGPU {
		return l.ActivateGPU
	}
	return l.ActivateCPU
}

func (l Latencies) precharge(fromGPU bool) uint64 {
	if fromGPU {
		return l.PrechargeGPU
	}
	return l.PrechargeCPU
}

func (l Latencies) column(fromGPU bool) uint64 {
	if fromGPU {
		return l.ColumnGPU
	}
	return l.ColumnCPU
}

// NoOpenRow is the open-row value of a precharged bank.
const NoOpenRow int64 = -1

// A Bank owns a bounded arena of request-buffer entries and services at
// most one of them at a time through the command and data phases.
type Bank struct {
	id    int
	depth int

	free    []*drb.Entry
	pending []*drb.Entry
	current *drb.Entry

	openRow int64

	// ReadyAt is the cycle the bank can take its next command, DataAvailAt
	// the cycle column data becomes available, and DataReadyAt the cycle a
	// granted bus transfer finishes.
	ReadyAt     uint64
	DataAvailAt uint64
	DataReadyAt uint64

	// LastScheduled orders banks that share a channel when the arbiter
	// breaks ties.
	LastScheduled uint64
}

// NewBank creates a bank with the given request-buffer depth.
func NewBank(id, depth int) *Bank {
	if depth <= 0 {
		panic("bank buffer depth must be positive")
	}

	b := &Bank{
		id:          id,
		depth:       depth,
		openRow:     NoOpenRow,
		ReadyAt:     FutureCycle,
		DataAvailAt: FutureCycle,
		DataReadyAt: FutureCycle,
	}

	for i := 0; i < depth; i++ {
		e := &drb.Entry{}
		e.Reset()
		b.free = append(b.free, e)
	}

	return b
}

// ID returns the global index of the bank.
func (b *Bank) ID() int {
	return b.id
}

// Depth returns the configured request-buffer depth.
func (b *Bank) Depth() int {
	return b.depth
}

// FreeCount returns the number of unused entries.
func (b *Bank) FreeCount() int {
	return len(b.free)
}

// QueueDepth returns the number of pending, not-yet-serviced entries.
func (b *Bank) QueueDepth() int {
	return len(b.pending)
}

// HasFreeSlot tells whether the bank can admit another request.
func (b *Bank) HasFreeSlot() bool {
	return len(b.free) > 0
}

// Current returns the entry being serviced, or nil.
func (b *Bank) Current() *drb.Entry {
	return b.current
}

// OpenRow returns the row currently held in the bank's row buffer, or
// NoOpenRow if the bank is precharged.
func (b *Bank) OpenRow() int64 {
	return b.openRow
}

// Pending returns the bank's pending queue. Schedulers may reorder it in
// place.
func (b *Bank) Pending() []*drb.Entry {
	return b.pending
}

// Admit pulls a free entry, fills it from the request, and queues it. The
// caller must have checked HasFreeSlot.
func (b *Bank) Admit(
	req *protocol.MemReq,
	row int64,
	col int,
	now uint64,
) *drb.Entry {
	if len(b.free) == 0 {
		panic("admitting into a bank with no free slot")
	}

	e := b.free[len(b.free)-1]
	b.free = b.free[:len(b.free)-1]

	e.Populate(req, b.id, row, col, now)
	b.pending = append(b.pending, e)

	return e
}

// FlushPrefetches drops every prefetch-type entry from the pending queue,
// releasing the underlying requests. It returns the number of entries
// flushed. The current entry is never flushed.
func (b *Bank) FlushPrefetches(release func(req *protocol.MemReq)) int {
	kept := b.pending[:0]
	flushed := 0

	for _, e := range b.pending {
		if e.Req.Type.IsPrefetch() {
			release(e.Req)
			e.Reset()
			b.free = append(b.free, e)
			flushed++
			continue
		}
		kept = append(kept, e)
	}

	b.pending = kept

	return flushed
}

// MakeCurrent removes the entry from the pending queue and starts servicing
// it.
func (b *Bank) MakeCurrent(e *drb.Entry, now uint64) {
	b.removePending(e)

	e.State = drb.StateCmd
	e.ScheduledAt = now

	b.current = e
	b.ReadyAt = FutureCycle
	b.LastScheduled = now
}

// RearmCommand re-enters the command phase once the previous command's
// latency has elapsed. It reports whether the bank advanced.
func (b *Bank) RearmCommand(now uint64) bool {
	if b.current == nil || b.current.State != drb.StateCmdWait {
		return false
	}
	if b.ReadyAt > now {
		return false
	}

	b.ReadyAt = FutureCycle
	b.current.State = drb.StateCmd
	b.LastScheduled = now

	return true
}

// CommandReady tells whether the bank wants the channel's command bus.
func (b *Bank) CommandReady() bool {
	return b.current != nil && b.current.State == drb.StateCmd
}

// AdvanceCommand issues the next DRAM command for the current entry:
// activate when the bank is precharged, a column access when the open row
// matches, and a precharge otherwise.
func (b *Bank) AdvanceCommand(now uint64, lat Latencies) CmdKind {
	if !b.CommandReady() {
		panic(fmt.Sprintf("bank %d advanced without a command-ready entry", b.id))
	}

	e := b.current

	switch {
	case b.openRow == NoOpenRow:
		b.openRow = e.Row
		b.ReadyAt = now + lat.activate(e.Req.FromGPU)
		b.DataAvailAt = FutureCycle
		e.State = drb.StateCmdWait
		return CmdActivate

	case b.openRow == e.Row:
		b.ReadyAt = now + lat.column(e.Req.FromGPU)
		b.DataAvailAt = b.ReadyAt
		e.State = drb.StateData
		return CmdColumn

	default:
		b.openRow = NoOpenRow
		b.ReadyAt = now + lat.precharge(e.Req.FromGPU)
		b.DataAvailAt = FutureCycle
		e.State = drb.StateCmdWait
		return CmdPrecharge
	}
}

// DataEligible tells whether the current entry's column data is available
// and awaits a data-bus grant.
func (b *Bank) DataEligible(now uint64) bool {
	return b.current != nil &&
		b.current.State == drb.StateData &&
		b.DataAvailAt <= now
}

// GrantData fixes the transfer completion cycle after the channel granted
// the data bus.
func (b *Bank) GrantData(readyAt uint64) {
	if b.current == nil || b.current.State != drb.StateData {
		panic(fmt.Sprintf("bank %d granted data without an eligible entry", b.id))
	}

	b.DataReadyAt = readyAt
	b.DataAvailAt = FutureCycle
	b.current.State = drb.StateDataWait
}

// TransferDone tells whether the current entry's data transfer finished.
func (b *Bank) TransferDone(now uint64) bool {
	if b.current == nil || b.DataReadyAt > now {
		return false
	}

	if b.current.State != drb.StateDataWait {
		panic(fmt.Sprintf(
			"bank %d reached its data-ready cycle in state %s",
			b.id, b.current.State))
	}

	return true
}

// RetirePending removes a merged entry from the pending queue and returns
// it to the free list.
func (b *Bank) RetirePending(e *drb.Entry) {
	b.removePending(e)
	e.Reset()
	b.free = append(b.free, e)
}

// CompleteCurrent returns the serviced entry to the free list and clears
// the service slot.
func (b *Bank) CompleteCurrent() {
	if b.current == nil {
		panic(fmt.Sprintf("bank %d completed without a current entry", b.id))
	}

	b.current.Reset()
	b.free = append(b.free, b.current)
	b.current = nil
	b.DataReadyAt = FutureCycle
}

func (b *Bank) removePending(e *drb.Entry) {
	for i, p := range b.pending {
		if p == e {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}

	panic(fmt.Sprintf("entry %d is not pending in bank %d", e.ID, b.id))
}
