package cpu

import (
	"testing"

	"psxcore/internal/bios"
	"psxcore/internal/console"
)

// testSystem bundles a CPU with a writable RAM-backed interconnect whose
// reset vector has been redirected into RAM so programs can be built by
// poking words directly, without a real BIOS image.
type testSystem struct {
	cpu          *CPU
	shared       *console.SharedState
	interconnect *console.BasicInterconnect
}

func newTestSystem() *testSystem {
	ic := console.NewBasicInterconnect(bios.NewDummy())
	c := New(nil)
	c.pc = 0
	c.nextPC = 4
	return &testSystem{cpu: c, shared: console.NewSharedState(), interconnect: ic}
}

func (s *testSystem) load(addr uint32, words ...uint32) {
	for i, w := range words {
		s.interconnect.WriteRAMWord(addr+uint32(i*4), w)
	}
}

func (s *testSystem) step() {
	s.cpu.Step(s.shared, s.interconnect, nil, nil)
}

// encRType encodes an R-type SPECIAL instruction.
func encRType(funct, rs, rt, rd, shamt uint32) uint32 {
	return (rs&0x1f)<<21 | (rt&0x1f)<<16 | (rd&0x1f)<<11 | (shamt&0x1f)<<6 | (funct & 0x3f)
}

// encIType encodes a primary-opcode I-type instruction.
func encIType(op, rs, rt, imm uint32) uint32 {
	return (op&0x3f)<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | (imm & 0xffff)
}

func TestResetState(t *testing.T) {
	c := New(nil)
	if c.PC() != ResetPC {
		t.Errorf("PC() = 0x%08x, want 0x%08x", c.PC(), uint32(ResetPC))
	}
	if c.CurrentPC() != 0 {
		t.Errorf("CurrentPC() at reset = 0x%08x, want 0", c.CurrentPC())
	}
	regs := c.Registers()
	for i := 1; i < 32; i++ {
		if regs[i] != resetRegisterValue {
			t.Errorf("r%d at reset = 0x%08x, want 0x%08x", i, regs[i], uint32(resetRegisterValue))
		}
	}
}

func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	c := New(nil)
	c.SetReg(0, 0xffffffff)
	if got := c.GetReg(0); got != 0 {
		t.Errorf("GetReg(0) = 0x%08x, want 0", got)
	}
}

func TestStepAdvancesNextPCByFourWithoutBranch(t *testing.T) {
	s := newTestSystem()
	s.load(0, encRType(fnSLL, 0, 0, 0, 0)) // NOP
	s.step()

	if s.cpu.PC() != 4 {
		t.Errorf("PC() after one non-branching step = 0x%x, want 4", s.cpu.PC())
	}
	if s.cpu.nextPC != 8 {
		t.Errorf("nextPC after one non-branching step = 0x%x, want 8 (pc + 4)", s.cpu.nextPC)
	}
	if s.cpu.CurrentPC() != 0 {
		t.Errorf("CurrentPC() = 0x%x, want 0", s.cpu.CurrentPC())
	}
}

func TestBranchDelaySlotExecutesBeforeRetarget(t *testing.T) {
	s := newTestSystem()
	// beq $0, $0, 3 (always taken, target = pc_of_delay_slot + 12)
	s.load(0, encIType(0x04, 0, 0, 3))
	// delay slot: addiu $1, $0, 1
	s.load(4, encIType(0x09, 0, 1, 1))
	// fallthrough instruction the branch must skip over
	s.load(8, encIType(0x09, 0, 2, 1))
	// branch target
	s.load(16, encIType(0x09, 0, 3, 1))

	s.step() // executes BEQ, sets next_pc = 16, branch = true
	if s.cpu.PC() != 4 {
		t.Fatalf("PC() after branch dispatch = 0x%x, want 4 (delay slot not skipped)", s.cpu.PC())
	}

	s.step() // executes the delay slot (addiu $1), pc becomes the branch target
	if s.cpu.GetReg(1) != 1 {
		t.Errorf("r1 = %d, want 1 (delay slot must still execute)", s.cpu.GetReg(1))
	}
	if s.cpu.PC() != 16 {
		t.Fatalf("PC() after delay slot = 0x%x, want 16 (branch target)", s.cpu.PC())
	}

	s.step() // this must be the branch target, not the skipped fallthrough
	if s.cpu.GetReg(2) != resetRegisterValue {
		t.Errorf("r2 = 0x%x, want unchanged (fallthrough instruction must be skipped)", s.cpu.GetReg(2))
	}
	if s.cpu.GetReg(3) != 1 {
		t.Errorf("r3 = %d, want 1 (branch target must execute)", s.cpu.GetReg(3))
	}
}

func TestLoadDelaySlot(t *testing.T) {
	s := newTestSystem()
	s.interconnect.WriteRAMWord(100, 0x12345678)

	s.load(0,
		encIType(0x23, 0, 1, 100), // lw $1, 100($0)
		encIType(0x09, 1, 2, 0),   // addiu $2, $1, 0  (reads stale r1)
		encIType(0x09, 1, 3, 0),   // addiu $3, $1, 0  (reads committed r1)
	)

	s.step() // LW: installs a pending load, r1 untouched
	if got := s.cpu.GetReg(1); got != resetRegisterValue {
		t.Fatalf("r1 immediately after LW = 0x%x, want unchanged reset value", got)
	}

	s.step() // first ADDIU: must see the stale r1
	if got := s.cpu.GetReg(2); got != resetRegisterValue {
		t.Errorf("r2 = 0x%x, want 0x%x (load not yet visible)", got, uint32(resetRegisterValue))
	}
	if got := s.cpu.GetReg(1); got != 0x12345678 {
		t.Errorf("r1 after the following instruction = 0x%x, want 0x12345678 (load now committed)", got)
	}

	s.step() // second ADDIU: must see the committed load
	if got := s.cpu.GetReg(3); got != 0x12345678 {
		t.Errorf("r3 = 0x%x, want 0x12345678", got)
	}
}

func TestLoadToSameRegisterCancelsPrevious(t *testing.T) {
	s := newTestSystem()
	s.interconnect.WriteRAMWord(0, 0xaaaaaaaa)
	s.interconnect.WriteRAMWord(4, 0xbbbbbbbb)

	s.load(100,
		encIType(0x23, 0, 1, 0), // lw $1, 0($0)
		encIType(0x23, 0, 1, 4), // lw $1, 4($0)  (same target cancels the first)
		encRType(fnSLL, 0, 0, 0, 0),
	)
	s.cpu.pc = 100
	s.cpu.nextPC = 104

	s.step()
	s.step()
	s.step()

	if got := s.cpu.GetReg(1); got != 0xbbbbbbbb {
		t.Errorf("r1 = 0x%08x, want 0xbbbbbbbb (the second load must win, never the first)", got)
	}
}

func TestADDIOverflowRaisesException(t *testing.T) {
	s := newTestSystem()
	s.load(0,
		encIType(0x0f, 0, 1, 0x7fff),    // lui $1, 0x7fff
		encIType(0x0d, 1, 1, 0xffff),    // ori $1, $1, 0xffff  -> r1 = 0x7fffffff
		encIType(0x08, 1, 2, 1),         // addi $2, $1, 1      -> overflow
		encIType(0x09, 0, 3, 1),         // addiu $3, $0, 1     (should not execute)
	)

	s.step() // lui
	s.step() // ori
	if got := s.cpu.GetReg(1); got != 0x7fffffff {
		t.Fatalf("r1 = 0x%08x, want 0x7fffffff", got)
	}

	s.step() // addi overflows
	if got := s.cpu.GetReg(2); got != resetRegisterValue {
		t.Errorf("r2 = 0x%08x, want unchanged (destination must not be written on overflow)", got)
	}
	if s.cpu.PC() != 0x80000080 {
		t.Fatalf("PC() after exception = 0x%08x, want 0x80000080", s.cpu.PC())
	}
	if s.cpu.cop0.EPC() != 8 {
		t.Errorf("EPC = 0x%08x, want 8 (the ADDI instruction itself)", s.cpu.cop0.EPC())
	}
	if cause := (s.cpu.cop0.cause >> 2) & 0x1f; cause != uint32(ExcOverflow) {
		t.Errorf("cause = %d, want %d (Overflow)", cause, ExcOverflow)
	}
}

func TestUnalignedLoadRaisesAddressError(t *testing.T) {
	s := newTestSystem()
	s.load(0, encIType(0x09, 0, 1, 1)) // addiu $1, $0, 1  -> r1 = 1 (misaligned base)
	s.load(4, encIType(0x23, 1, 2, 0)) // lw $2, 0($1)     -> addr 1, misaligned

	s.step()
	s.step()

	if s.cpu.PC() != 0x80000080 {
		t.Fatalf("PC() after misaligned LW = 0x%08x, want exception vector", s.cpu.PC())
	}
	if cause := (s.cpu.cop0.cause >> 2) & 0x1f; cause != uint32(ExcLoadAddressError) {
		t.Errorf("cause = %d, want %d (LoadAddressError)", cause, ExcLoadAddressError)
	}
}

func TestCacheIsolatedStoreInvalidatesBucket(t *testing.T) {
	s := newTestSystem()
	s.cpu.cop0.SetStatus(1 << 16)                   // IsC
	s.interconnect.SetCacheControlRaw(1<<11 | 1<<2) // I-cache enabled, tag-test mode

	s.interconnect.WriteRAMWord(0x1000, 0x1234)
	s.load(0x1004, encIType(0x2b, 0, 0, 0)) // sw $0, 0($0) at pc=0x1004, value 0

	// Warm the bucket-0 cache line covering both address 0x1000 and the SW
	// instruction itself at 0x1004 so there is something to invalidate.
	// (Address 0 would hit the zeroed tag-0 line without filling it.)
	s.cpu.icache.Fetch(s.shared, s.interconnect, 0x1000)
	if s.cpu.icache.lines[0].tagValid&0x10 != 0 {
		t.Fatal("line should be valid before the isolated store")
	}

	s.cpu.pc = 0x1004
	s.cpu.nextPC = 0x1008
	s.step()

	if s.cpu.icache.lines[0].tagValid&0x10 == 0 {
		t.Error("cache-isolated store in tag-test mode must invalidate the target bucket")
	}
}

func TestJALLinksReturnAddress(t *testing.T) {
	s := newTestSystem()
	target := uint32(0x40)
	s.load(0, (0x03<<26)|(target>>2)) // jal 0x40
	s.load(4, encRType(fnSLL, 0, 0, 0, 0))

	s.step()
	if got := s.cpu.GetReg(31); got != 8 {
		t.Errorf("r31 = 0x%x, want 8 (address after the delay slot)", got)
	}
	s.step()
	if s.cpu.PC() != target {
		t.Errorf("PC() after delay slot = 0x%x, want 0x%x", s.cpu.PC(), target)
	}
}

func TestDivByZero(t *testing.T) {
	s := newTestSystem()
	s.load(0,
		encIType(0x09, 0, 1, 5),            // addiu $1, $0, 5
		encRType(fnDIV, 1, 0, 0, 0),         // div $1, $0
	)
	s.step()
	s.step()
	if s.cpu.lo != 0xffffffff {
		t.Errorf("lo after div-by-zero (positive dividend) = 0x%x, want 0xffffffff", s.cpu.lo)
	}
	if s.cpu.hi != 5 {
		t.Errorf("hi after div-by-zero = %d, want 5 (the dividend)", s.cpu.hi)
	}
}
