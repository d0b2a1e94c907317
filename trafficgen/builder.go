package trafficgen

import (
	"math/rand"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/dramsim/protocol"
)

// Builder can build traffic agents.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	maxAddress uint64
	lineSize   uint64
	numReq     int
	gpuShare   float64
	seed       int64
	memCtrl    sim.Port
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       3 * sim.GHz,
		maxAddress: 1024 * 1024,
		lineSize:   64,
		numReq:     1000,
		gpuShare:   0.25,
		seed:       1,
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the agent issues requests at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMaxAddress sets the upper bound of generated addresses.
func (b Builder) WithMaxAddress(addr uint64) Builder {
	b.maxAddress = addr
	return b
}

// WithLineSize sets the alignment and size of generated requests.
func (b Builder) WithLineSize(size uint64) Builder {
	b.lineSize = size
	return b
}

// WithNumReq sets how many requests the agent issues in total.
func (b Builder) WithNumReq(n int) Builder {
	b.numReq = n
	return b
}

// WithGPUShare sets the fraction of requests marked as GPU traffic.
func (b Builder) WithGPUShare(share float64) Builder {
	b.gpuShare = share
	return b
}

// WithSeed sets the random seed so that runs reproduce.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithMemCtrl sets the controller port the agent sends requests to.
func (b Builder) WithMemCtrl(port sim.Port) Builder {
	b.memCtrl = port
	return b
}

// Build creates a traffic agent with the given name.
func (b Builder) Build(name string) *Agent {
	a := &Agent{
		MemCtrl:    b.memCtrl,
		maxAddress: b.maxAddress,
		lineSize:   b.lineSize,
		reqLeft:    b.numReq,
		gpuShare:   b.gpuShare,
		rng:        rand.New(rand.NewSource(b.seed)),
		pending:    make(map[string]*protocol.MemReq),
	}
	a.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, a)

	a.memPort = sim.NewPort(a, 4, 4, name+".Mem")
	a.AddPort("Mem", a.memPort)

	return a
}

// MemPort returns the port the agent talks to the controller through.
func (a *Agent) MemPort() sim.Port {
	return a.memPort
}

var _ protocol.Releaser = (*Agent)(nil)
