package dram_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/trafficgen"
)

var _ = Describe("Controller with random traffic", func() {
	run := func(policy dram.SchedulingPolicy, seed int64) {
		engine := sim.NewSerialEngine()

		agent := trafficgen.MakeBuilder().
			WithEngine(engine).
			WithNumReq(2000).
			WithMaxAddress(1 << 20).
			WithSeed(seed).
			Build("Agent")

		memCtrl := dram.MakeBuilder().
			WithEngine(engine).
			WithSchedulingPolicy(policy).
			WithMerging().
			WithBankInterleaving().
			WithReleaser(agent).
			Build("MemCtrl")
		agent.MemCtrl = memCtrl.TopPort()

		conn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(3 * sim.GHz).
			Build("Conn")
		conn.PlugIn(agent.MemPort())
		conn.PlugIn(memCtrl.TopPort())

		agent.TickLater()

		Expect(engine.Run()).To(Succeed())

		Expect(agent.Issued).To(Equal(2000))
		Expect(agent.Done()).To(BeTrue())
		Expect(agent.Delivered + agent.Released).To(Equal(agent.Issued))
		Expect(memCtrl.Inflight()).To(Equal(0))
	}

	for _, policy := range []dram.SchedulingPolicy{
		dram.SchedulingFCFS,
		dram.SchedulingFRFCFS,
	} {
		policy := policy
		name := "FCFS"
		if policy == dram.SchedulingFRFCFS {
			name = "FR-FCFS"
		}

		for seed := int64(1); seed <= 3; seed++ {
			seed := seed
			It(fmt.Sprintf(
				"should answer every request under %s with seed %d",
				name, seed),
				func() {
					run(policy, seed)
				})
		}
	}
})
