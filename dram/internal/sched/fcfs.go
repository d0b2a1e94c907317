package sched

import "github.com/sarchlab/dramsim/dram/internal/drb"

// FCFS services requests strictly in arrival order.
type FCFS struct{}

// Select returns the head of the pending queue.
func (FCFS) Select(pending []*drb.Entry, _ int64) *drb.Entry {
	queueMustNotBeEmpty(pending)

	return pending[0]
}
