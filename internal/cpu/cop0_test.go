package cpu

import "testing"

func TestCop0ExceptionEntryAndReturn(t *testing.T) {
	c0 := NewCop0()
	c0.SetStatus(1) // kernel mode, interrupts enabled

	vector := c0.RaiseException(ExcOverflow, 0x1000, false)
	if vector != 0x80000080 {
		t.Fatalf("vector = 0x%08x, want 0x80000080", vector)
	}
	if c0.EPC() != 0x1000 {
		t.Errorf("EPC = 0x%08x, want 0x1000", c0.EPC())
	}
	if c0.Status()&1 != 0 {
		t.Errorf("IEc should be cleared on exception entry")
	}
	if cause := (c0.cause >> 2) & 0x1f; cause != uint32(ExcOverflow) {
		t.Errorf("cause code = %d, want %d", cause, ExcOverflow)
	}

	c0.ReturnFromException()
	if c0.Status()&1 != 1 {
		t.Errorf("IEc should be restored to 1 after RFE")
	}
}

func TestCop0ExceptionStackIsLIFO(t *testing.T) {
	c0 := NewCop0()
	c0.SetStatus(0x01) // IEc=1, everything else clear

	c0.RaiseException(ExcSysCall, 0x100, false) // sr -> 0b000100 (IEp=1)

	// the handler re-enables interrupts for nested exception handling
	c0.SetStatus(c0.Status() | 1) // sr -> 0b000101 (IEc=1, IEp=1)

	c0.RaiseException(ExcBreak, 0x200, false) // sr -> 0b010100 (IEp=1, IEo=1)

	c0.ReturnFromException()
	if got := c0.Status() & 0x3f; got != 0x05 {
		t.Fatalf("status after inner RFE = 0x%02x, want 0x05 (restores the handler's own IEc/IEp)", got)
	}

	c0.ReturnFromException()
	if got := c0.Status() & 0x3f; got != 0x01 {
		t.Fatalf("status after outer RFE = 0x%02x, want 0x01 (restores the original pre-exception state)", got)
	}
}

func TestCop0DelaySlotEPCIsBranchInstruction(t *testing.T) {
	c0 := NewCop0()
	c0.RaiseException(ExcOverflow, 0x1004, true)
	if c0.EPC() != 0x1000 {
		t.Errorf("EPC with delay slot = 0x%08x, want 0x1000 (one word back)", c0.EPC())
	}
	if c0.cause&(1<<31) == 0 {
		t.Error("BD bit should be set when the exception occurs in a delay slot")
	}
}

func TestCop0IRQPendingRequiresMaskAndEnable(t *testing.T) {
	c0 := NewCop0()
	if c0.IRQPending(true) {
		t.Error("IRQ should not be pending with IEc clear")
	}

	c0.SetStatus(1 | (1 << 10)) // IEc set, IM2 set
	if !c0.IRQPending(true) {
		t.Error("IRQ should be pending with IEc set, IM2 set, and irqActive true")
	}
	if c0.IRQPending(false) {
		t.Error("IRQ should not be pending when no source is active")
	}
}

func TestCop0ReadWriteReg(t *testing.T) {
	c0 := NewCop0()
	c0.SetStatus(0x12345678)

	if v, res := c0.readReg(12, false); res != cop0RegOK || v != 0x12345678 {
		t.Errorf("readReg(12) = (0x%x, %v), want (0x12345678, OK)", v, res)
	}
	if v, res := c0.readReg(15, false); res != cop0RegOK || v != ProcessorID {
		t.Errorf("readReg(15) = (0x%x, %v), want (ProcessorID, OK)", v, res)
	}
	if _, res := c0.readReg(6, false); res != cop0RegWarnZero {
		t.Errorf("readReg(6) result = %v, want cop0RegWarnZero", res)
	}
	if _, res := c0.readReg(2, false); res != cop0RegFatal {
		t.Errorf("readReg(2) result = %v, want cop0RegFatal", res)
	}

	if res := c0.writeReg(3, 0); res != cop0RegOK {
		t.Errorf("writeReg(3, 0) = %v, want OK", res)
	}
	if res := c0.writeReg(3, 1); res != cop0RegFatal {
		t.Errorf("writeReg(3, 1) = %v, want Fatal (BPC must stay zero)", res)
	}
}
