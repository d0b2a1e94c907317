// dramsim runs randomized traffic through the DRAM timing model and
// reports what the run achieved.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/trafficgen"
)

var rootCmd = &cobra.Command{
	Use:   "dramsim",
	Short: "dramsim replays random memory traffic through a cycle-level DRAM controller model.",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("num-requests", 100000, "number of requests to generate")
	flags.Uint64("max-address", 1048576, "address range to cover")
	flags.Int("banks", 16, "total number of banks")
	flags.Int("channels", 2, "number of channels")
	flags.Uint64("bus-width", 4, "data bus width in bytes per edge")
	flags.String("policy", "frfcfs", "scheduling policy, fcfs or frfcfs")
	flags.Int64("seed", 1, "random seed")
	flags.Bool("merge", true, "retire same-address requests together")
	flags.Bool("interleave", true, "permute bank indices")
	flags.Float64("gpu-share", 0.25, "fraction of requests timed on the GPU clock")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) {
	runID := xid.New().String()
	fmt.Printf("run %s\n", runID)

	engine := sim.NewSerialEngine()
	agent, memCtrl := buildPlatform(cmd, engine)
	agent.TickLater()

	if err := engine.Run(); err != nil {
		log.Fatal(err)
	}

	report(engine, agent, memCtrl)
	atexit.Exit(0)
}

func buildPlatform(
	cmd *cobra.Command,
	engine sim.Engine,
) (*trafficgen.Agent, *dram.Comp) {
	flags := cmd.Flags()

	numReq, _ := flags.GetInt("num-requests")
	maxAddr, _ := flags.GetUint64("max-address")
	banks, _ := flags.GetInt("banks")
	channels, _ := flags.GetInt("channels")
	busWidth, _ := flags.GetUint64("bus-width")
	policyName, _ := flags.GetString("policy")
	seed, _ := flags.GetInt64("seed")
	merge, _ := flags.GetBool("merge")
	interleave, _ := flags.GetBool("interleave")
	gpuShare, _ := flags.GetFloat64("gpu-share")

	policy := dram.SchedulingFRFCFS
	switch policyName {
	case "frfcfs":
	case "fcfs":
		policy = dram.SchedulingFCFS
	default:
		log.Fatalf("unknown scheduling policy %q", policyName)
	}

	agent := trafficgen.MakeBuilder().
		WithEngine(engine).
		WithNumReq(numReq).
		WithMaxAddress(maxAddr).
		WithSeed(seed).
		WithGPUShare(gpuShare).
		Build("Agent")

	ctrlBuilder := dram.MakeBuilder().
		WithEngine(engine).
		WithNumBank(banks).
		WithNumChannel(channels).
		WithBusWidth(busWidth).
		WithSchedulingPolicy(policy).
		WithReleaser(agent)
	if merge {
		ctrlBuilder = ctrlBuilder.WithMerging()
	}
	if interleave {
		ctrlBuilder = ctrlBuilder.WithBankInterleaving()
	}
	memCtrl := ctrlBuilder.Build("MemCtrl")

	agent.MemCtrl = memCtrl.TopPort()

	conn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(3 * sim.GHz).
		Build("Conn")
	conn.PlugIn(agent.MemPort())
	conn.PlugIn(memCtrl.TopPort())

	return agent, memCtrl
}

func report(engine sim.Engine, agent *trafficgen.Agent, memCtrl *dram.Comp) {
	fmt.Printf("simulated time: %.9fs\n", float64(engine.CurrentTime()))
	fmt.Printf("requests issued: %d\n", agent.Issued)
	fmt.Printf("responses delivered: %d\n", agent.Delivered)
	fmt.Printf("requests released: %d\n", agent.Released)
	fmt.Printf("bytes transferred: %d\n", memCtrl.TotalBytes())

	if !agent.Done() {
		color.Red("FAILED: %d requests never came back", agent.Pending())
		atexit.Exit(1)
	}

	color.Green("all requests accounted for")
}
