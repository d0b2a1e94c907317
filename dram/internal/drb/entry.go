// Package drb defines the DRAM request buffer entries that track in-flight
// requests inside a bank.
package drb

import (
	"sync/atomic"

	"github.com/sarchlab/dramsim/protocol"
)

// A State tells which service phase a request-buffer entry is in.
type State int

// The states an entry passes through while being serviced.
const (
	StateInit State = iota
	StateCmd
	StateCmdWait
	StateData
	StateDataWait
	numState
)

var stateNames = [numState]string{
	"INIT",
	"CMD",
	"CMD_WAIT",
	"DATA",
	"DATA_WAIT",
}

func (s State) String() string {
	return stateNames[s]
}

var entryID int64

// An Entry tracks one in-flight request admitted to a bank. At any instant
// it belongs to exactly one of its bank's free list, its bank's pending
// queue, or its bank's current slot.
type Entry struct {
	ID    int64
	State State

	Address uint64
	Bank    int
	Row     int64
	Col     int

	CoreID   int
	ThreadID int
	ApplID   int

	Read     bool
	Size     uint64
	Priority int

	// InsertedAt is the cycle the entry was admitted, ScheduledAt the
	// cycle it last became the bank's current entry.
	InsertedAt  uint64
	ScheduledAt uint64

	// Req references the originating request. The entry never owns it; the
	// reference is dropped when the entry is reset.
	Req *protocol.MemReq
}

// Reset returns the entry to its free-list state.
func (e *Entry) Reset() {
	e.ID = -1
	e.State = StateInit
	e.Address = 0
	e.Bank = -1
	e.Row = -1
	e.Col = -1
	e.CoreID = -1
	e.ThreadID = -1
	e.ApplID = -1
	e.Read = false
	e.Size = 0
	e.Priority = 0
	e.InsertedAt = 0
	e.ScheduledAt = 0
	e.Req = nil
}

// Populate fills the entry from an admitted request and stamps it with a
// fresh process-wide unique ID.
func (e *Entry) Populate(
	req *protocol.MemReq,
	bank int,
	row int64,
	col int,
	now uint64,
) {
	if row < 0 {
		panic("populating an entry with a negative row id")
	}

	e.ID = atomic.AddInt64(&entryID, 1)
	e.State = StateInit
	e.Address = req.Address
	e.Bank = bank
	e.Row = row
	e.Col = col
	e.CoreID = req.CoreID
	e.ThreadID = req.ThreadID
	e.ApplID = req.ApplID
	e.Read = req.Type.IsRead()
	e.Size = req.ByteSize
	e.Priority = req.Type.Priority()
	e.InsertedAt = now
	e.ScheduledAt = 0
	e.Req = req
}
