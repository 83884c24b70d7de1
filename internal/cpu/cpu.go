// Package cpu implements the MIPS R3000A-compatible interpreter at the
// heart of the PSX core: its register file, program-counter triple,
// branch and load delay slots, instruction cache, and Cop0 integration.
package cpu

import (
	"log"

	"psxcore/internal/console"
)

// resetRegisterValue is the implementation-defined but serialization-
// stable reset value for every GPR but r0, and for HI/LO.
const resetRegisterValue = 0xdeadbeef

// ResetPC is the address the CPU fetches its first instruction from.
const ResetPC = 0xbfc00000

// Frequency is the PSX CPU clock rate in Hz.
const Frequency = 33_868_500

// CPU is the interpreter core. It exclusively owns its register file,
// I-cache, and Cop0 state, and holds the GTE passed to New; the
// Interconnect, SharedState, Renderer, and Debugger are borrowed by
// reference for the duration of a single Step call.
type CPU struct {
	regs [32]uint32
	hi   uint32
	lo   uint32

	pc        uint32
	nextPC    uint32
	currentPC uint32

	branch    bool
	delaySlot bool

	pendingLoad delayedLoad

	cop0  *Cop0
	icache ICache

	gte console.GTE
}

// New returns a CPU in its power-on reset state.
func New(gte console.GTE) *CPU {
	c := &CPU{
		pc:     ResetPC,
		nextPC: ResetPC + 4,
		cop0:   NewCop0(),
		gte:    gte,
	}
	for i := 1; i < 32; i++ {
		c.regs[i] = resetRegisterValue
	}
	c.hi = resetRegisterValue
	c.lo = resetRegisterValue
	return c
}

// PC returns the address the CPU will fetch from next. Implements
// console.CPUView.
func (c *CPU) PC() uint32 {
	return c.pc
}

// CurrentPC returns the address of the instruction currently executing.
// Implements console.CPUView.
func (c *CPU) CurrentPC() uint32 {
	return c.currentPC
}

// Registers returns a snapshot of the general-purpose register file.
// Implements console.CPUView.
func (c *CPU) Registers() [32]uint32 {
	return c.regs
}

// GetReg reads register index (0-31). Register 0 always reads as zero.
func (c *CPU) GetReg(index uint32) uint32 {
	return c.regs[index&0x1f]
}

// SetReg writes register index (0-31). Writes to register 0 are silently
// discarded -- this is the single choke point enforcing r0's hard-zero
// invariant for both ordinary instruction execution and delayed-load
// commit.
func (c *CPU) SetReg(index, value uint32) {
	index &= 0x1f
	if index == 0 {
		return
	}
	c.regs[index] = value
}

// fatalf reports an emulator-fatal condition: an incompleteness or a
// fuzzed/corrupt input that is not a guest-recoverable exception. It
// always includes the offending instruction word and current_pc.
func (c *CPU) fatalf(instr Instruction, format string, args ...any) {
	log.Fatalf("cpu: fatal at pc=0x%08x instr=0x%08x: "+format, append([]any{c.currentPC, uint32(instr)}, args...)...)
}

// warnf logs an illegal-but-recoverable guest condition.
func (c *CPU) warnf(format string, args ...any) {
	log.Printf("cpu: "+format, args...)
}

// raiseException performs Cop0 exception entry and redirects pc/next_pc
// to the handler vector. Exceptions never have their own delay slot.
func (c *CPU) raiseException(exc ExceptionCause) {
	vector := c.cop0.RaiseException(exc, c.currentPC, c.delaySlot)
	c.pc = vector
	c.nextPC = vector + 4
}

// Step executes exactly one instruction per spec section 4.4.
func (c *CPU) Step(shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	if shared.Tk().SyncPending() {
		interconnect.Sync(shared)
		shared.Tk().UpdateSyncPending(false)
	}

	c.currentPC = c.pc

	if debugger != nil {
		debugger.PCChange(c)
	}

	if c.currentPC%4 != 0 {
		c.raiseException(ExcLoadAddressError)
		return
	}

	word := c.icache.Fetch(shared, interconnect, c.currentPC)
	instr := Instruction(word)

	c.pc = c.nextPC
	c.nextPC = c.pc + 4

	c.delaySlot = c.branch
	c.branch = false

	if c.cop0.IRQPending(shared.IRQActive()) {
		if instr.IsGTEOp() {
			c.execute(instr, shared, interconnect, renderer, debugger)
		}
		shared.Tk().Tick(1)
		c.raiseException(ExcInterrupt)
		return
	}

	shared.Tk().Tick(1)
	c.execute(instr, shared, interconnect, renderer, debugger)
}
