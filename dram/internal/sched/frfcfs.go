package sched

import (
	"sort"

	"github.com/sarchlab/dramsim/dram/internal/drb"
)

// FRFCFS reorders a bank's pending queue so that demand requests go before
// prefetches, open-row hits go before row misses, and age breaks ties.
type FRFCFS struct{}

// Select stable-sorts the pending queue by the policy's composite key and
// returns the new head.
func (FRFCFS) Select(pending []*drb.Entry, openRow int64) *drb.Entry {
	queueMustNotBeEmpty(pending)

	sort.SliceStable(pending, func(i, j int) bool {
		return frfcfsLess(pending[i], pending[j], openRow)
	})

	return pending[0]
}

func frfcfsLess(a, b *drb.Entry, openRow int64) bool {
	aPrefetch := a.Req.Type.IsPrefetch()
	bPrefetch := b.Req.Type.IsPrefetch()

	if !aPrefetch && bPrefetch {
		return true
	}
	if aPrefetch && !bPrefetch {
		return false
	}

	aHit := a.Row == openRow
	bHit := b.Row == openRow

	if aHit && !bHit {
		return true
	}
	if !aHit && bHit {
		return false
	}

	return a.InsertedAt < b.InsertedAt
}
