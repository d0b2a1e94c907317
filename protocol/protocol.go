// Package protocol defines the messages exchanged between the DRAM
// controller and the rest of the memory hierarchy.
package protocol

import "github.com/sarchlab/akita/v4/sim"

// A ReqType tells what kind of memory access a request performs.
type ReqType int

// All the request types the DRAM controller services.
const (
	ReqTypeIFetch ReqType = iota
	ReqTypeDFetch
	ReqTypeDStore
	ReqTypeIPrefetch
	ReqTypeDPrefetch
	ReqTypeWriteBack
	ReqTypeSWPrefetchNTA
	ReqTypeSWPrefetchT0
	ReqTypeSWPrefetchT1
	ReqTypeSWPrefetchT2
	numReqType
)

var reqTypeNames = [numReqType]string{
	"IFetch",
	"DFetch",
	"DStore",
	"IPrefetch",
	"DPrefetch",
	"WriteBack",
	"SWPrefetchNTA",
	"SWPrefetchT0",
	"SWPrefetchT1",
	"SWPrefetchT2",
}

// reqTypePriority is the scheduling priority per request type. All types
// currently share priority 0. The table stays so that priorities can be
// differentiated without touching the scheduler.
var reqTypePriority = [numReqType]int{}

func (t ReqType) String() string {
	return reqTypeNames[t]
}

// Priority returns the scheduling priority of the request type.
func (t ReqType) Priority() int {
	return reqTypePriority[t]
}

// IsPrefetch tells if the request is speculative and can be dropped under
// buffer pressure.
func (t ReqType) IsPrefetch() bool {
	switch t {
	case ReqTypeIPrefetch, ReqTypeDPrefetch,
		ReqTypeSWPrefetchNTA, ReqTypeSWPrefetchT0,
		ReqTypeSWPrefetchT1, ReqTypeSWPrefetchT2:
		return true
	}

	return false
}

// IsWriteBack tells if the request is a dirty-line eviction that retires
// without a response.
func (t ReqType) IsWriteBack() bool {
	return t == ReqTypeWriteBack
}

// IsRead tells if the request moves data from DRAM toward the requester.
// Every type except a write-back reads.
func (t ReqType) IsRead() bool {
	return !t.IsWriteBack()
}

// DRAMState records how far the controller has taken a request.
type DRAMState int

// The stages a request passes through inside the controller.
const (
	DRAMStateNone DRAMState = iota
	DRAMStateStart
	DRAMStateCmd
	DRAMStateData
	DRAMStateDone
)

// A MemReq asks the DRAM controller to service one memory access.
type MemReq struct {
	sim.MsgMeta

	Address  uint64
	ByteSize uint64
	Type     ReqType

	CoreID   int
	ThreadID int
	ApplID   int

	// CacheSlot identifies the cache entry awaiting this request, used to
	// look up the response destination in the memory hierarchy.
	CacheSlot int

	// FromGPU marks requests that originate from a GPU context. They are
	// timed with the GPU clock ratio instead of the CPU one.
	FromGPU bool

	State DRAMState
}

// Meta returns the meta data of the message.
func (r *MemReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the request with a different ID.
func (r *MemReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// MemReqBuilder can build memory requests.
type MemReqBuilder struct {
	src, dst  sim.RemotePort
	address   uint64
	byteSize  uint64
	reqType   ReqType
	coreID    int
	threadID  int
	applID    int
	cacheSlot int
	fromGPU   bool
}

// WithSrc sets the source of the request to build.
func (b MemReqBuilder) WithSrc(src sim.RemotePort) MemReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b MemReqBuilder) WithDst(dst sim.RemotePort) MemReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the physical address the request accesses.
func (b MemReqBuilder) WithAddress(address uint64) MemReqBuilder {
	b.address = address
	return b
}

// WithByteSize sets the number of bytes the request transfers.
func (b MemReqBuilder) WithByteSize(byteSize uint64) MemReqBuilder {
	b.byteSize = byteSize
	return b
}

// WithType sets the request type.
func (b MemReqBuilder) WithType(t ReqType) MemReqBuilder {
	b.reqType = t
	return b
}

// WithCoreID sets the originating core.
func (b MemReqBuilder) WithCoreID(coreID int) MemReqBuilder {
	b.coreID = coreID
	return b
}

// WithThreadID sets the originating thread.
func (b MemReqBuilder) WithThreadID(threadID int) MemReqBuilder {
	b.threadID = threadID
	return b
}

// WithApplID sets the originating application.
func (b MemReqBuilder) WithApplID(applID int) MemReqBuilder {
	b.applID = applID
	return b
}

// WithCacheSlot sets the cache entry that awaits the response.
func (b MemReqBuilder) WithCacheSlot(slot int) MemReqBuilder {
	b.cacheSlot = slot
	return b
}

// FromGPU marks the request as originating from a GPU context.
func (b MemReqBuilder) FromGPU() MemReqBuilder {
	b.fromGPU = true
	return b
}

// Build creates a new MemReq.
func (b MemReqBuilder) Build() *MemReq {
	r := &MemReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Address = b.address
	r.ByteSize = b.byteSize
	r.Type = b.reqType
	r.CoreID = b.coreID
	r.ThreadID = b.threadID
	r.ApplID = b.applID
	r.CacheSlot = b.cacheSlot
	r.FromGPU = b.fromGPU

	return r
}

// A MemRsp notifies the requester that a memory access has been serviced.
type MemRsp struct {
	sim.MsgMeta

	RespondTo string
	Address   uint64
	ByteSize  uint64
}

// Meta returns the meta data of the message.
func (r *MemRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the response with a different ID.
func (r *MemRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request this response answers.
func (r *MemRsp) GetRspTo() string {
	return r.RespondTo
}

// MemRspBuilder can build memory responses.
type MemRspBuilder struct {
	src, dst  sim.RemotePort
	rspTo     string
	address   uint64
	byteSize  uint64
}

// WithSrc sets the source of the response to build.
func (b MemRspBuilder) WithSrc(src sim.RemotePort) MemRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b MemRspBuilder) WithDst(dst sim.RemotePort) MemRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request being answered.
func (b MemRspBuilder) WithRspTo(id string) MemRspBuilder {
	b.rspTo = id
	return b
}

// WithAddress sets the address the serviced request accessed.
func (b MemRspBuilder) WithAddress(address uint64) MemRspBuilder {
	b.address = address
	return b
}

// WithByteSize sets the number of bytes the serviced request transferred.
func (b MemRspBuilder) WithByteSize(byteSize uint64) MemRspBuilder {
	b.byteSize = byteSize
	return b
}

// Build creates a new MemRsp.
func (b MemRspBuilder) Build() *MemRsp {
	r := &MemRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.RespondTo = b.rspTo
	r.Address = b.address
	r.ByteSize = b.byteSize

	return r
}

// A Releaser takes back ownership of request objects that the controller
// will never respond to, either because a prefetch was flushed or because a
// write-back retired silently.
type Releaser interface {
	Release(req *MemReq)
}

// A SlotPortMapper resolves the port that should receive the response for a
// serviced request, keyed by the cache slot carried on the request.
type SlotPortMapper interface {
	Find(slot int) sim.RemotePort
}

// SinglePortMapper is used when all responses go back to one port.
type SinglePortMapper struct {
	Port sim.RemotePort
}

// Find returns the solo port that the mapper holds.
func (m *SinglePortMapper) Find(_ int) sim.RemotePort {
	return m.Port
}
