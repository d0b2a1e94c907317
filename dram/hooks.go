package dram

import "github.com/sarchlab/akita/v4/sim"

// Hook positions the controller triggers while it runs. The hook item is a
// *CommandEvent for the bank-command positions, a *MergeEvent for
// HookPosReqMerged, a *FlushEvent for HookPosPrefetchFlushed, a
// *CompletionEvent for HookPosReqCompleted, and nil for
// HookPosBusSaturated.
var (
	HookPosBankActivate    = &sim.HookPos{Name: "BankActivate"}
	HookPosBankColumn      = &sim.HookPos{Name: "BankColumn"}
	HookPosBankPrecharge   = &sim.HookPos{Name: "BankPrecharge"}
	HookPosReqMerged       = &sim.HookPos{Name: "ReqMerged"}
	HookPosReqCompleted    = &sim.HookPos{Name: "ReqCompleted"}
	HookPosBusSaturated    = &sim.HookPos{Name: "BusSaturated"}
	HookPosPrefetchFlushed = &sim.HookPos{Name: "PrefetchFlushed"}
)

// A CommandEvent describes a DRAM command issued to a bank.
type CommandEvent struct {
	Cycle   uint64
	Channel int
	Bank    int
	Row     int64
	Address uint64
}

// A MergeEvent describes a pending entry retired by piggybacking on the
// completion of another entry at the same address.
type MergeEvent struct {
	Cycle   uint64
	Bank    int
	Address uint64
}

// A CompletionEvent describes a request leaving the controller, with the
// number of cycles it spent inside.
type CompletionEvent struct {
	Cycle   uint64
	Bank    int
	Address uint64
	Latency uint64
}

// A FlushEvent describes prefetches dropped from a bank to admit a demand
// request.
type FlushEvent struct {
	Cycle   uint64
	Bank    int
	Flushed int
}
