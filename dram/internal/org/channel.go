package org

// A Channel arbitrates its banks' access to a shared command path and a
// shared data bus with byte-granular accounting.
type Channel struct {
	ID    int
	Banks []*Bank

	// BusWidth is the number of bytes the data bus moves per DRAM cycle,
	// already scaled by the data-rate multiplier.
	BusWidth uint64

	// ByteBudget is the number of bytes left in the cycle the bus was last
	// granted. A transfer that fits in the budget costs no extra cycles.
	ByteBudget uint64

	// BusReadyAt is the controller cycle the data bus becomes free.
	BusReadyAt uint64

	cpuCyclePerDRAM float64
	gpuCyclePerDRAM float64
}

// NewChannel creates a channel over the given banks. The cycle ratios
// convert DRAM bus cycles into controller cycles per clock domain.
func NewChannel(
	id int,
	banks []*Bank,
	busWidth uint64,
	cpuCyclePerDRAM, gpuCyclePerDRAM float64,
) *Channel {
	if busWidth == 0 {
		panic("channel bus width must be positive")
	}

	return &Channel{
		ID:              id,
		Banks:           banks,
		BusWidth:        busWidth,
		ByteBudget:      busWidth,
		cpuCyclePerDRAM: cpuCyclePerDRAM,
		gpuCyclePerDRAM: gpuCyclePerDRAM,
	}
}

// BusFree tells whether the data bus can take another transfer.
func (c *Channel) BusFree(now uint64) bool {
	return c.BusReadyAt <= now
}

// AcquireBus books a transfer of size bytes on the data bus and returns the
// cycle the transfer completes. A transfer that fits in the remaining byte
// budget completes immediately; otherwise the excess bytes occupy the bus
// for whole DRAM cycles and the budget restarts from what the last of
// those cycles leaves over.
func (c *Channel) AcquireBus(now, size uint64, fromGPU bool) uint64 {
	if size < c.ByteBudget {
		c.ByteBudget -= size
		c.BusReadyAt = now
		return now
	}

	excess := size - c.ByteBudget
	busCycles := excess/c.BusWidth + 1

	ratio := c.cpuCyclePerDRAM
	if fromGPU {
		ratio = c.gpuCyclePerDRAM
	}
	readyAt := now + uint64(float64(busCycles)*ratio+0.5)

	c.ByteBudget = c.BusWidth - excess%c.BusWidth
	c.BusReadyAt = readyAt

	return readyAt
}

// OldestCommandBank returns the command-ready bank least recently
// scheduled, or nil if no bank wants the command path.
func (c *Channel) OldestCommandBank() *Bank {
	var oldest *Bank

	for _, b := range c.Banks {
		if !b.CommandReady() {
			continue
		}
		if oldest == nil || b.LastScheduled < oldest.LastScheduled {
			oldest = b
		}
	}

	return oldest
}

// OldestDataBank returns the data-eligible bank least recently scheduled,
// or nil if no bank awaits the data bus.
func (c *Channel) OldestDataBank(now uint64) *Bank {
	var oldest *Bank

	for _, b := range c.Banks {
		if !b.DataEligible(now) {
			continue
		}
		if oldest == nil || b.LastScheduled < oldest.LastScheduled {
			oldest = b
		}
	}

	return oldest
}

// AnyDataEligible tells whether at least one bank awaits the data bus.
func (c *Channel) AnyDataEligible(now uint64) bool {
	for _, b := range c.Banks {
		if b.DataEligible(now) {
			return true
		}
	}

	return false
}
