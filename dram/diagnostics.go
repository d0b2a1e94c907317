package dram

import (
	"fmt"
	"io"

	"github.com/sarchlab/dramsim/dram/internal/org"
)

// writeDiagnostic renders the controller's full bank and bus state, used
// when the controller aborts for lack of progress.
func (c *Comp) writeDiagnostic(w io.Writer, now uint64) {
	fmt.Fprintf(w, "controller: %s\n", c.Name())
	fmt.Fprintf(w, "cycle: %d\n", now)
	fmt.Fprintf(w, "in flight: %d\n", c.inflight)
	fmt.Fprintf(w, "starved cycles: %d\n", c.starvationCycles)

	for _, ch := range c.channels {
		fmt.Fprintf(w, "channel %d: bus ready at %s, byte budget %d\n",
			ch.ID, cycleString(ch.BusReadyAt), ch.ByteBudget)
	}

	for _, b := range c.banks {
		cur := b.Current()

		state := "NULL"
		if cur != nil {
			state = cur.State.String()
		}

		fmt.Fprintf(w,
			"bank %d: state %s, open row %d, queued %d, free %d, "+
				"last scheduled %d, ready %s, data avail %s, data ready %s\n",
			b.ID(), state, b.OpenRow(), b.QueueDepth(), b.FreeCount(),
			b.LastScheduled,
			cycleString(b.ReadyAt),
			cycleString(b.DataAvailAt),
			cycleString(b.DataReadyAt))

		if cur != nil {
			fmt.Fprintf(w,
				"  current: entry %d, addr 0x%x, row %d, scheduled %d\n",
				cur.ID, cur.Address, cur.Row, cur.ScheduledAt)
		}
	}
}

func cycleString(cycle uint64) string {
	if cycle == org.FutureCycle {
		return "never"
	}

	return fmt.Sprintf("%d", cycle)
}
