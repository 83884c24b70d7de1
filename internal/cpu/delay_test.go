package cpu

import "testing"

func TestDelayedLoadNoneCommitsPendingLoad(t *testing.T) {
	c := &CPU{}
	c.pendingLoad = delayedLoad{target: 5, value: 0xabc}
	c.delayedLoadNone()

	if c.regs[5] != 0xabc {
		t.Errorf("r5 = 0x%x, want 0xabc", c.regs[5])
	}
	if c.pendingLoad != (delayedLoad{}) {
		t.Error("pendingLoad should be cleared after commit")
	}
}

func TestDelayedLoadNoneNeverWritesR0(t *testing.T) {
	c := &CPU{}
	c.pendingLoad = delayedLoad{target: 0, value: 0xabc}
	c.delayedLoadNone()

	if c.regs[0] != 0 {
		t.Errorf("r0 = 0x%x, want 0 (writes to r0 are always discarded)", c.regs[0])
	}
}

func TestDelayedLoadChainCommitsDifferentTarget(t *testing.T) {
	c := &CPU{}
	c.pendingLoad = delayedLoad{target: 5, value: 0xaaa}
	c.delayedLoadChain(6, 0xbbb)

	if c.regs[5] != 0xaaa {
		t.Errorf("r5 = 0x%x, want 0xaaa (old pending load committed)", c.regs[5])
	}
	if v, ok := c.pendingLoadValue(6); !ok || v != 0xbbb {
		t.Errorf("pendingLoadValue(6) = (0x%x, %v), want (0xbbb, true)", v, ok)
	}
}

func TestDelayedLoadChainSameTargetCancelsPrevious(t *testing.T) {
	c := &CPU{}
	c.pendingLoad = delayedLoad{target: 5, value: 0xaaa}
	c.delayedLoadChain(5, 0xbbb)

	if c.regs[5] != 0 {
		t.Errorf("r5 = 0x%x, want 0 (stale pending load must never become visible)", c.regs[5])
	}
	v, ok := c.pendingLoadValue(5)
	if !ok || v != 0xbbb {
		t.Errorf("pendingLoadValue(5) = (0x%x, %v), want (0xbbb, true)", v, ok)
	}
}

func TestPendingLoadValueTargetZeroIsNeverPending(t *testing.T) {
	c := &CPU{}
	c.pendingLoad = delayedLoad{target: 0, value: 0x123}

	if _, ok := c.pendingLoadValue(0); ok {
		t.Error("target 0 must never report a pending load, even if installed")
	}
}
