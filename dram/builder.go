package dram

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/dramsim/dram/internal/addressmapping"
	"github.com/sarchlab/dramsim/dram/internal/org"
	"github.com/sarchlab/dramsim/dram/internal/sched"
	"github.com/sarchlab/dramsim/protocol"
)

// A SchedulingPolicy selects the order pending requests are serviced in.
type SchedulingPolicy int

// The scheduling policies the controller supports.
const (
	// SchedulingFCFS services requests strictly in arrival order.
	SchedulingFCFS SchedulingPolicy = iota

	// SchedulingFRFCFS prefers demand requests over prefetches and
	// row-buffer hits over misses, then falls back to arrival order.
	SchedulingFRFCFS
)

// Builder can build DRAM controllers.
type Builder struct {
	engine  sim.Engine
	cpuFreq sim.Freq
	gpuFreq sim.Freq

	numBank    int
	numChannel int
	busWidth   uint64
	ddrMult    uint64
	rowBufSize uint64
	lineSize   uint64
	bufDepth   int

	tActivate  uint64
	tPrecharge uint64
	tColumn    uint64
	dramFreq   sim.Freq

	interleaving bool
	merge        bool
	policy       SchedulingPolicy

	starvationThresh uint64
	diagPath         string

	releaser   protocol.Releaser
	slotMapper protocol.SlotPortMapper
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		cpuFreq:          3 * sim.GHz,
		gpuFreq:          1 * sim.GHz,
		numBank:          16,
		numChannel:       2,
		busWidth:         4,
		ddrMult:          2,
		rowBufSize:       2048,
		lineSize:         64,
		bufDepth:         32,
		tActivate:        14,
		tPrecharge:       14,
		tColumn:          11,
		dramFreq:         800 * sim.MHz,
		policy:           SchedulingFRFCFS,
		starvationThresh: 5000,
		diagPath:         "dram_starvation.out",
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithCPUFreq sets the controller clock. The controller ticks at this
// frequency and converts DRAM timings into it.
func (b Builder) WithCPUFreq(freq sim.Freq) Builder {
	b.cpuFreq = freq
	return b
}

// WithGPUFreq sets the clock used to time requests marked as coming from a
// GPU context.
func (b Builder) WithGPUFreq(freq sim.Freq) Builder {
	b.gpuFreq = freq
	return b
}

// WithDRAMFreq sets the DRAM device clock.
func (b Builder) WithDRAMFreq(freq sim.Freq) Builder {
	b.dramFreq = freq
	return b
}

// WithNumBank sets the total number of banks across all channels.
func (b Builder) WithNumBank(n int) Builder {
	b.numBank = n
	return b
}

// WithNumChannel sets the number of channels the banks split into.
func (b Builder) WithNumChannel(n int) Builder {
	b.numChannel = n
	return b
}

// WithBusWidth sets the data-bus width in bytes per edge.
func (b Builder) WithBusWidth(width uint64) Builder {
	b.busWidth = width
	return b
}

// WithDataRateMultiplier sets how many transfers the bus makes per DRAM
// cycle. Use 2 for double data rate.
func (b Builder) WithDataRateMultiplier(m uint64) Builder {
	b.ddrMult = m
	return b
}

// WithRowBufSize sets the row-buffer size in bytes.
func (b Builder) WithRowBufSize(size uint64) Builder {
	b.rowBufSize = size
	return b
}

// WithLineSize sets the cache-line size requests are aligned to.
func (b Builder) WithLineSize(size uint64) Builder {
	b.lineSize = size
	return b
}

// WithBufferDepth sets the request-buffer depth per bank.
func (b Builder) WithBufferDepth(depth int) Builder {
	b.bufDepth = depth
	return b
}

// WithTimings sets the activate, precharge, and column latencies in DRAM
// cycles.
func (b Builder) WithTimings(tActivate, tPrecharge, tColumn uint64) Builder {
	b.tActivate = tActivate
	b.tPrecharge = tPrecharge
	b.tColumn = tColumn
	return b
}

// WithBankInterleaving enables XOR permutation of the bank index so that
// strided streams spread across banks.
func (b Builder) WithBankInterleaving() Builder {
	b.interleaving = true
	return b
}

// WithMerging enables retiring same-address pending requests together with
// a completing one.
func (b Builder) WithMerging() Builder {
	b.merge = true
	return b
}

// WithSchedulingPolicy sets the request scheduling policy.
func (b Builder) WithSchedulingPolicy(p SchedulingPolicy) Builder {
	b.policy = p
	return b
}

// WithStarvationThreshold sets how many consecutive no-completion cycles
// the controller tolerates before aborting.
func (b Builder) WithStarvationThreshold(cycles uint64) Builder {
	b.starvationThresh = cycles
	return b
}

// WithDiagnosticPath sets the file the controller dumps its state to when
// it aborts for lack of progress.
func (b Builder) WithDiagnosticPath(path string) Builder {
	b.diagPath = path
	return b
}

// WithReleaser sets the object that takes back flushed prefetches and
// retired write-backs.
func (b Builder) WithReleaser(r protocol.Releaser) Builder {
	b.releaser = r
	return b
}

// WithSlotPortMapper sets the mapper that resolves response destinations
// from cache slots. Without one, responses go back to the request source.
func (b Builder) WithSlotPortMapper(m protocol.SlotPortMapper) Builder {
	b.slotMapper = m
	return b
}

// Build creates a DRAM controller with the given name.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	c := &Comp{
		mergeEnabled:     b.merge,
		releaser:         b.releaser,
		slotMapper:       b.slotMapper,
		starvationThresh: b.starvationThresh,
		diagPath:         b.diagPath,
		latencies:        b.latencies(),
	}
	c.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.cpuFreq, c)

	c.topPort = sim.NewPort(c, 16, 16, name+".TopPort")
	c.AddPort("Top", c.topPort)

	c.mapper = addressmapping.MakeBuilder().
		WithRowBufSize(b.rowBufSize).
		WithNumBank(uint64(b.numBank)).
		WithLineSize(b.lineSize).
		WithBankPermutation(b.interleaving).
		Build()

	switch b.policy {
	case SchedulingFCFS:
		c.policy = sched.FCFS{}
	case SchedulingFRFCFS:
		c.policy = sched.FRFCFS{}
	default:
		panic(fmt.Sprintf("unknown scheduling policy %d", b.policy))
	}

	c.banks = make([]*org.Bank, b.numBank)
	for i := range c.banks {
		c.banks[i] = org.NewBank(i, b.bufDepth)
	}

	banksPerChannel := b.numBank / b.numChannel
	cpuRatio := float64(b.cpuFreq) / float64(b.dramFreq)
	gpuRatio := float64(b.gpuFreq) / float64(b.dramFreq)

	c.channels = make([]*org.Channel, b.numChannel)
	for i := range c.channels {
		c.channels[i] = org.NewChannel(
			i,
			c.banks[i*banksPerChannel:(i+1)*banksPerChannel],
			b.busWidth*b.ddrMult,
			cpuRatio, gpuRatio,
		)
	}

	return c
}

func (b Builder) mustBeValid() {
	if b.engine == nil {
		panic("dram controller requires an engine")
	}
	if b.numChannel <= 0 || b.numBank <= 0 {
		panic("bank and channel counts must be positive")
	}
	if b.numBank%b.numChannel != 0 {
		panic(fmt.Sprintf(
			"%d banks cannot split evenly over %d channels",
			b.numBank, b.numChannel))
	}
	if b.busWidth == 0 || b.ddrMult == 0 {
		panic("bus width and data-rate multiplier must be positive")
	}
	if b.dramFreq == 0 || b.cpuFreq == 0 || b.gpuFreq == 0 {
		panic("clock frequencies must be positive")
	}
	if b.starvationThresh == 0 {
		panic("starvation threshold must be positive")
	}
}

// latencies converts the DRAM-cycle timings into controller cycles for
// both clock domains, rounding to the nearest cycle.
func (b Builder) latencies() org.Latencies {
	cpuRatio := float64(b.cpuFreq) / float64(b.dramFreq)
	gpuRatio := float64(b.gpuFreq) / float64(b.dramFreq)

	conv := func(t uint64, ratio float64) uint64 {
		return uint64(float64(t)*ratio + 0.5)
	}

	return org.Latencies{
		ActivateCPU:  conv(b.tActivate, cpuRatio),
		PrechargeCPU: conv(b.tPrecharge, cpuRatio),
		ColumnCPU:    conv(b.tColumn, cpuRatio),
		ActivateGPU:  conv(b.tActivate, gpuRatio),
		PrechargeGPU: conv(b.tPrecharge, gpuRatio),
		ColumnGPU:    conv(b.tColumn, gpuRatio),
	}
}
