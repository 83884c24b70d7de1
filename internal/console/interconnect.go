// Package console defines the narrow external contracts the CPU core is
// built against -- the memory/peripheral fan-out (Interconnect), the
// scheduler/IRQ bundle the CPU is handed per step (SharedState), the GPU
// register sink (Renderer), the debugger front-end (Debugger), and the
// Geometry Transform Engine routing target (GTE) -- plus a concrete
// SharedState, a flat-memory reference Interconnect (BasicInterconnect),
// and a terminal Debugger (TermDebugger) so the core is runnable end to
// end without a real PSX peripheral set. No Renderer or GTE
// implementation is included.
package console

// Width is the byte width of a memory access.
type Width int

const (
	Byte     Width = 1
	HalfWord Width = 2
	Word     Width = 4
)

// CacheControl exposes the bits of the PSX cache-control register the CPU
// core needs to decide I-cache behavior.
type CacheControl interface {
	// ICacheEnabled reports whether instruction fetches may be cached.
	ICacheEnabled() bool
	// TagTestMode reports whether a cache-isolated word store invalidates
	// a whole bucket instead of overwriting a single cached word.
	TagTestMode() bool
}

// Renderer is an opaque sink for GPU register writes threaded through the
// store path; this core never interprets GPU commands itself.
type Renderer interface {
	WriteGP0(value uint32)
	WriteGP1(value uint32)
}

// Interconnect fans CPU memory traffic out to the rest of the system: GPU,
// DMA, timers, SPU, CD-ROM, and pads. The CPU does not store an
// Interconnect; the caller passes one into every CPU.Step call.
// Peripherals never call back into the CPU.
type Interconnect interface {
	// LoadInstruction always reads a full word and must be side-effect
	// free enough to be called repeatedly during an I-cache fill.
	LoadInstruction(shared *SharedState, addr uint32) uint32
	Load(shared *SharedState, w Width, addr uint32) uint32
	Store(shared *SharedState, r Renderer, w Width, addr uint32, value uint32)
	CacheControl() CacheControl
	// Sync drains peripheral time-based work that has accumulated since
	// the last call.
	Sync(shared *SharedState)
}

// IRQState is a snapshot of which interrupt sources are currently active.
type IRQState interface {
	Active() bool
}

// Counters holds observability counters; Frame increments on video vblank.
type Counters struct {
	Frame uint64
}

// Timekeeper is the CPU's virtual-time clock.
type Timekeeper struct {
	cycles      uint64
	syncPending bool
}

// Tick advances virtual time by n cycles.
func (t *Timekeeper) Tick(n uint32) {
	t.cycles += uint64(n)
}

// Now returns the current virtual-time cycle count.
func (t *Timekeeper) Now() uint64 {
	return t.cycles
}

// SyncPending reports whether a peripheral sync is due.
func (t *Timekeeper) SyncPending() bool {
	return t.syncPending
}

// UpdateSyncPending sets or clears the pending-sync flag.
func (t *Timekeeper) UpdateSyncPending(pending bool) {
	t.syncPending = pending
}

// SharedState is the concrete bundle of timekeeper, IRQ snapshot, and
// counters the CPU is handed per step. It is concrete rather than an
// interface because its contract is about exposing state, not about
// swapping implementations.
type SharedState struct {
	tk       Timekeeper
	irq      IRQState
	counters Counters
}

// NewSharedState returns a SharedState with no IRQ source wired in yet.
func NewSharedState() *SharedState {
	return &SharedState{}
}

// Tk returns the timekeeper.
func (s *SharedState) Tk() *Timekeeper {
	return &s.tk
}

// IRQActive reports whether any wired IRQ source is currently pending.
func (s *SharedState) IRQActive() bool {
	if s.irq == nil {
		return false
	}
	return s.irq.Active()
}

// SetIRQState wires in the IRQ source this SharedState should sample.
func (s *SharedState) SetIRQState(irq IRQState) {
	s.irq = irq
}

// Counters returns the observability counters.
func (s *SharedState) Counters() *Counters {
	return &s.counters
}

// CPUView is the read-only slice of CPU state a Debugger is allowed to
// see. It is an interface so internal/console never has to import
// internal/cpu (the CPU type merely happens to implement it).
type CPUView interface {
	PC() uint32
	CurrentPC() uint32
	Registers() [32]uint32
}

// Debugger is the interactive front-end capability set: notification of
// PC changes and memory accesses, plus an explicit break trigger.
type Debugger interface {
	PCChange(cpu CPUView)
	MemoryRead(cpu CPUView, addr uint32)
	MemoryWrite(cpu CPUView, addr uint32)
	TriggerBreak()
}

// GTE is the Geometry Transform Engine routing target. This core never
// implements GTE arithmetic; it only forwards COP2 opcodes here.
type GTE interface {
	Command(op uint32)
	Data(reg uint32) uint32
	SetData(reg uint32, v uint32)
	Control(reg uint32) uint32
	SetControl(reg uint32, v uint32)
}
