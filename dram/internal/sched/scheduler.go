// Package sched provides the bank scheduling policies that decide which
// pending request a bank services next.
package sched

import "github.com/sarchlab/dramsim/dram/internal/drb"

// A Scheduler picks the next entry of a bank's pending queue to service.
// The queue must not be empty. A scheduler may reorder the queue, but only
// as far as its policy requires.
type Scheduler interface {
	Select(pending []*drb.Entry, openRow int64) *drb.Entry
}

func queueMustNotBeEmpty(pending []*drb.Entry) {
	if len(pending) == 0 {
		panic("scheduling an empty pending queue")
	}
}
