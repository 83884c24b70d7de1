package cpu

import (
	"psxcore/internal/console"
	"psxcore/internal/utils"
)

// load implements LB/LBU/LH/LHU/LW: compute the effective address from the
// (possibly stale, pre-commit) source register, validate alignment,
// perform the read, then install it as the new pending delayed load.
func (c *CPU) load(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, debugger console.Debugger, w console.Width, unsigned bool) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()

	if w == console.HalfWord && addr%2 != 0 {
		c.delayedLoadNone()
		c.raiseException(ExcLoadAddressError)
		return
	}
	if w == console.Word && addr%4 != 0 {
		c.delayedLoadNone()
		c.raiseException(ExcLoadAddressError)
		return
	}

	if debugger != nil {
		debugger.MemoryRead(c, addr)
	}

	raw := interconnect.Load(shared, w, addr)

	var value uint32
	switch {
	case w == console.Byte && !unsigned:
		value = utils.SignExtend(raw, 8)
	case w == console.HalfWord && !unsigned:
		value = utils.SignExtend(raw, 16)
	default:
		value = raw
	}

	c.delayedLoadChain(instr.RT(), value)
}

// loadUnalignedLeft implements LWL: merges the high-order bytes of an
// aligned word read with the low-order bytes of the still-pending load (if
// any targets the same register) or the architectural register file.
func (c *CPU) loadUnalignedLeft(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	aligned := addr &^ 3

	cur, ok := c.pendingLoadValue(instr.RT())
	if !ok {
		cur = c.GetReg(instr.RT())
	}

	if debugger != nil {
		debugger.MemoryRead(c, aligned)
	}
	w := interconnect.Load(shared, console.Word, aligned)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = (cur & 0x00ffffff) | (w << 24)
	case 1:
		merged = (cur & 0x0000ffff) | (w << 16)
	case 2:
		merged = (cur & 0x000000ff) | (w << 8)
	case 3:
		merged = w
	}
	c.delayedLoadChain(instr.RT(), merged)
}

// loadUnalignedRight implements LWR, the mirror of loadUnalignedLeft.
func (c *CPU) loadUnalignedRight(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	aligned := addr &^ 3

	cur, ok := c.pendingLoadValue(instr.RT())
	if !ok {
		cur = c.GetReg(instr.RT())
	}

	if debugger != nil {
		debugger.MemoryRead(c, aligned)
	}
	w := interconnect.Load(shared, console.Word, aligned)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = w
	case 1:
		merged = (cur & 0xff000000) | (w >> 8)
	case 2:
		merged = (cur & 0xffff0000) | (w >> 16)
	case 3:
		merged = (cur & 0xffffff00) | (w >> 24)
	}
	c.delayedLoadChain(instr.RT(), merged)
}

// loadCop2 implements LWC2: the loaded word lands directly in a GTE data
// register rather than going through the GPR delayed-load path, since that
// path's single-slot target namespace is GPR indices only. This core does
// not model GTE load-delay timing, only routing.
func (c *CPU) loadCop2(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	if addr%4 != 0 {
		c.delayedLoadNone()
		c.raiseException(ExcLoadAddressError)
		return
	}
	if debugger != nil {
		debugger.MemoryRead(c, addr)
	}
	value := interconnect.Load(shared, console.Word, addr)
	c.delayedLoadNone()
	if c.gte != nil {
		c.gte.SetData(instr.RT(), value)
	}
}

// store performs the actual write, honoring Cop0's cache-isolation mode by
// redirecting the access into the I-cache rather than real memory.
func (c *CPU) store(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, w console.Width, addr, value uint32) {
	if c.cop0.IsCacheIsolated() {
		cc := interconnect.CacheControl()
		if !cc.ICacheEnabled() {
			c.fatalf(instr, "cache-isolated store issued with I-cache disabled")
			return
		}
		if w != console.Word || value != 0 {
			c.fatalf(instr, "cache-isolated store must be a zero word, got width=%d value=0x%x", w, value)
			return
		}
		bucket := (addr >> 4) & 0xff
		if cc.TagTestMode() {
			c.icache.InvalidateBucket(bucket)
		} else {
			pos := (addr >> 2) & 3
			c.icache.WriteWord(bucket, pos, value)
		}
		return
	}
	interconnect.Store(shared, renderer, w, addr, value)
}

// storeAligned implements SB/SH/SW: read the source register, commit any
// pending delayed load, validate alignment, then store.
func (c *CPU) storeAligned(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger, w console.Width, value uint32) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	c.delayedLoadNone()

	if w == console.HalfWord && addr%2 != 0 {
		c.raiseException(ExcStoreAddressError)
		return
	}
	if w == console.Word && addr%4 != 0 {
		c.raiseException(ExcStoreAddressError)
		return
	}

	if debugger != nil {
		debugger.MemoryWrite(c, addr)
	}
	c.store(instr, shared, interconnect, renderer, w, addr, value)
}

// storeUnalignedLeft implements SWL.
func (c *CPU) storeUnalignedLeft(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	aligned := addr &^ 3
	v := c.GetReg(instr.RT())
	c.delayedLoadNone()

	if debugger != nil {
		debugger.MemoryRead(c, aligned)
	}
	mem := interconnect.Load(shared, console.Word, aligned)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = (mem & 0xffffff00) | (v >> 24)
	case 1:
		merged = (mem & 0xffff0000) | (v >> 16)
	case 2:
		merged = (mem & 0xff000000) | (v >> 8)
	case 3:
		merged = v
	}

	if debugger != nil {
		debugger.MemoryWrite(c, aligned)
	}
	c.store(instr, shared, interconnect, renderer, console.Word, aligned, merged)
}

// storeUnalignedRight implements SWR, the mirror of storeUnalignedLeft.
func (c *CPU) storeUnalignedRight(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	aligned := addr &^ 3
	v := c.GetReg(instr.RT())
	c.delayedLoadNone()

	if debugger != nil {
		debugger.MemoryRead(c, aligned)
	}
	mem := interconnect.Load(shared, console.Word, aligned)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = v
	case 1:
		merged = (mem & 0x000000ff) | (v << 8)
	case 2:
		merged = (mem & 0x0000ffff) | (v << 16)
	case 3:
		merged = (mem & 0x00ffffff) | (v << 24)
	}

	if debugger != nil {
		debugger.MemoryWrite(c, aligned)
	}
	c.store(instr, shared, interconnect, renderer, console.Word, aligned, merged)
}

// storeCop2 implements SWC2: the stored value is read directly from the
// corresponding GTE data register, mirroring loadCop2's simplification.
func (c *CPU) storeCop2(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	base := c.GetReg(instr.RS())
	addr := base + instr.ImmSE()
	var value uint32
	if c.gte != nil {
		value = c.gte.Data(instr.RT())
	}
	c.delayedLoadNone()

	if addr%4 != 0 {
		c.raiseException(ExcStoreAddressError)
		return
	}
	if debugger != nil {
		debugger.MemoryWrite(c, addr)
	}
	c.store(instr, shared, interconnect, renderer, console.Word, addr, value)
}
