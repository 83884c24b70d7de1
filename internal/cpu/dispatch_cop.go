package cpu

import "psxcore/internal/console"

// Cop0 instruction sub-opcodes, found in the RS field of a COP0-class
// instruction.
const (
	cop0MF  = 0x00
	cop0MT  = 0x04
	cop0RFE = 0x10
)

// executeCop0 dispatches MFC0/MTC0/RFE per spec section 4.7.
func (c *CPU) executeCop0(instr Instruction, shared *console.SharedState) {
	switch instr.RS() {
	case cop0MF:
		val, res := c.cop0.readReg(instr.RD(), shared.IRQActive())
		if res == cop0RegFatal {
			c.delayedLoadNone()
			c.fatalf(instr, "read of unhandled cop0 register %d", instr.RD())
			return
		}
		if res == cop0RegWarnZero {
			c.warnf("read of unimplemented cop0 register %d returns zero", instr.RD())
		}
		c.delayedLoadChain(instr.RT(), val)

	case cop0MT:
		value := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if res := c.cop0.writeReg(instr.RD(), value); res == cop0RegFatal {
			c.fatalf(instr, "write of unhandled cop0 register %d = 0x%08x", instr.RD(), value)
		}

	case cop0RFE:
		if instr.Subfunction() != cop0RFE {
			c.delayedLoadNone()
			c.fatalf(instr, "malformed RFE instruction 0x%08x", uint32(instr))
			return
		}
		c.delayedLoadNone()
		c.cop0.ReturnFromException()

	default:
		c.delayedLoadNone()
		c.fatalf(instr, "unhandled cop0 instruction 0x%08x", uint32(instr))
	}
}

// Cop2 (GTE) instruction sub-opcodes, found in the RS field when bit 25 of
// the instruction (the CO bit) is clear.
const (
	cop2MF = 0x00
	cop2CF = 0x02
	cop2MT = 0x04
	cop2CT = 0x06
)

// executeCop2 routes GTE instructions without interpreting them: MFC2/CFC2
// read a data/control register into a GPR (through the ordinary delayed-
// load path, matching real hardware's coprocessor-move timing), MTC2/CTC2
// write a GPR into a data/control register, and any instruction with the
// CO bit set is a GTE command word handed to gte.Command verbatim.
func (c *CPU) executeCop2(instr Instruction) {
	if uint32(instr)&(1<<25) != 0 {
		c.delayedLoadNone()
		if c.gte != nil {
			c.gte.Command(uint32(instr) & 0x1ffffff)
		}
		return
	}

	switch instr.RS() {
	case cop2MF:
		var val uint32
		if c.gte != nil {
			val = c.gte.Data(instr.RD())
		}
		c.delayedLoadChain(instr.RT(), val)

	case cop2CF:
		var val uint32
		if c.gte != nil {
			val = c.gte.Control(instr.RD())
		}
		c.delayedLoadChain(instr.RT(), val)

	case cop2MT:
		value := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if c.gte != nil {
			c.gte.SetData(instr.RD(), value)
		}

	case cop2CT:
		value := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if c.gte != nil {
			c.gte.SetControl(instr.RD(), value)
		}

	default:
		c.delayedLoadNone()
		c.fatalf(instr, "unhandled cop2 instruction 0x%08x", uint32(instr))
	}
}
