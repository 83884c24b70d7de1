package cpu

// delayedLoad is the single in-flight memory load the previous instruction
// may have queued. A target of 0 is the sentinel for "no pending load",
// since writes to r0 are always discarded anyway. Depth is always <= 1:
// this is deliberately not a queue.
type delayedLoad struct {
	target uint32
	value  uint32
}

// delayedLoadNone commits the pending delayed load to the register file,
// if any, without installing a new one. Every instruction that reads
// and/or writes GPRs must call this between reading its sources and
// writing its destination, so an in-flight load becomes visible to the
// next instruction rather than the current one.
func (c *CPU) delayedLoadNone() {
	c.SetReg(c.pendingLoad.target, c.pendingLoad.value)
	c.pendingLoad = delayedLoad{}
}

// delayedLoadChain commits the pending delayed load (unless it targets the
// same register as the new one, in which case it is discarded rather than
// ever becoming visible) and installs a new pending load for
// target/value. This is the "load to the same register cancels the
// previous one" rule.
func (c *CPU) delayedLoadChain(target, value uint32) {
	target &= 0x1f
	if c.pendingLoad.target != target {
		c.SetReg(c.pendingLoad.target, c.pendingLoad.value)
	}
	c.pendingLoad = delayedLoad{target: target, value: value}
}

// pendingLoadValue returns the in-flight value targeting reg, if any, and
// whether one is pending. LWL/LWR merge with these in-flight bytes rather
// than the architectural register file when the pending target matches.
func (c *CPU) pendingLoadValue(reg uint32) (uint32, bool) {
	reg &= 0x1f
	if c.pendingLoad.target != 0 && c.pendingLoad.target == reg {
		return c.pendingLoad.value, true
	}
	return 0, false
}
