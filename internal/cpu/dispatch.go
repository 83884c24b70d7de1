package cpu

import "psxcore/internal/console"

// Primary opcodes (instruction bits [31:26]).
const (
	opSPECIAL = 0x00
	opREGIMM  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0a
	opSLTIU   = 0x0b
	opANDI    = 0x0c
	opORI     = 0x0d
	opXORI    = 0x0e
	opLUI     = 0x0f
	opCOP0    = 0x10
	opCOP1    = 0x11
	opCOP2    = 0x12
	opCOP3    = 0x13
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2a
	opSW      = 0x2b
	opSWR     = 0x2e
	opLWC2    = 0x32
	opSWC2    = 0x3a
)

// execute dispatches a single decoded instruction. It is called exactly
// once per Step, after the program counter and delay-slot bookkeeping for
// this instruction have already been advanced.
func (c *CPU) execute(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	switch instr.Function() {
	case opSPECIAL:
		c.executeSpecial(instr, shared, interconnect, renderer, debugger)

	case opREGIMM:
		c.executeRegimm(instr)

	case opJ:
		target := (c.pc & 0xf0000000) | (instr.ImmJump() << 2)
		c.delayedLoadNone()
		c.nextPC = target
		c.branch = true

	case opJAL:
		target := (c.pc & 0xf0000000) | (instr.ImmJump() << 2)
		link := c.nextPC
		c.delayedLoadNone()
		c.SetReg(31, link)
		c.nextPC = target
		c.branch = true

	case opBEQ:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if rs == rt {
			c.branchTo(instr)
		}

	case opBNE:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if rs != rt {
			c.branchTo(instr)
		}

	case opBLEZ:
		rs := int32(c.GetReg(instr.RS()))
		c.delayedLoadNone()
		if rs <= 0 {
			c.branchTo(instr)
		}

	case opBGTZ:
		rs := int32(c.GetReg(instr.RS()))
		c.delayedLoadNone()
		if rs > 0 {
			c.branchTo(instr)
		}

	case opADDI:
		rs := int32(c.GetReg(instr.RS()))
		imm := int32(instr.ImmSE())
		sum := rs + imm
		c.delayedLoadNone()
		if checkAddOverflow(rs, imm, sum) {
			c.raiseException(ExcOverflow)
			return
		}
		c.SetReg(instr.RT(), uint32(sum))

	case opADDIU:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.SetReg(instr.RT(), rs+instr.ImmSE())

	case opSLTI:
		rs := int32(c.GetReg(instr.RS()))
		imm := int32(instr.ImmSE())
		c.delayedLoadNone()
		if rs < imm {
			c.SetReg(instr.RT(), 1)
		} else {
			c.SetReg(instr.RT(), 0)
		}

	case opSLTIU:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		if rs < instr.ImmSE() {
			c.SetReg(instr.RT(), 1)
		} else {
			c.SetReg(instr.RT(), 0)
		}

	case opANDI:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.SetReg(instr.RT(), rs&instr.Imm16())

	case opORI:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.SetReg(instr.RT(), rs|instr.Imm16())

	case opXORI:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.SetReg(instr.RT(), rs^instr.Imm16())

	case opLUI:
		c.delayedLoadNone()
		c.SetReg(instr.RT(), instr.Imm16()<<16)

	case opCOP0:
		c.executeCop0(instr, shared)

	case opCOP1, opCOP3:
		c.delayedLoadNone()
		c.raiseException(ExcCoprocessorError)

	case opCOP2:
		c.executeCop2(instr)

	case opLB:
		c.load(instr, shared, interconnect, debugger, console.Byte, false)
	case opLBU:
		c.load(instr, shared, interconnect, debugger, console.Byte, true)
	case opLH:
		c.load(instr, shared, interconnect, debugger, console.HalfWord, false)
	case opLHU:
		c.load(instr, shared, interconnect, debugger, console.HalfWord, true)
	case opLW:
		c.load(instr, shared, interconnect, debugger, console.Word, false)

	case opLWL:
		c.loadUnalignedLeft(instr, shared, interconnect, debugger)
	case opLWR:
		c.loadUnalignedRight(instr, shared, interconnect, debugger)

	case opLWC2:
		c.loadCop2(instr, shared, interconnect, debugger)

	case opSB:
		c.storeAligned(instr, shared, interconnect, renderer, debugger, console.Byte, c.GetReg(instr.RT())&0xff)
	case opSH:
		c.storeAligned(instr, shared, interconnect, renderer, debugger, console.HalfWord, c.GetReg(instr.RT())&0xffff)
	case opSW:
		c.storeAligned(instr, shared, interconnect, renderer, debugger, console.Word, c.GetReg(instr.RT()))

	case opSWL:
		c.storeUnalignedLeft(instr, shared, interconnect, renderer, debugger)
	case opSWR:
		c.storeUnalignedRight(instr, shared, interconnect, renderer, debugger)

	case opSWC2:
		c.storeCop2(instr, shared, interconnect, renderer, debugger)

	default:
		c.delayedLoadNone()
		c.warnf("illegal instruction 0x%08x at pc=0x%08x", uint32(instr), c.currentPC)
		c.raiseException(ExcIllegalInstruction)
	}
}

// branchTo resolves a PC-relative conditional branch target: the delay
// slot's own address (already sitting in c.pc) plus the sign-extended,
// word-shifted immediate.
func (c *CPU) branchTo(instr Instruction) {
	c.nextPC = c.pc + (instr.ImmSE() << 2)
	c.branch = true
}

// executeRegimm dispatches the REGIMM family (BLTZ/BGEZ/BLTZAL/BGEZAL):
// bit 0 of rt selects >=0 vs <0, and rt bits [4:1] == 0b1000 additionally
// links r31, matching real hardware's decoding of only those two bits.
func (c *CPU) executeRegimm(instr Instruction) {
	rs := int32(c.GetReg(instr.RS()))
	rt := instr.RT()
	isBgez := rt&1 != 0
	link := (rt>>1)&0xf == 0x8

	taken := (rs < 0) != isBgez

	if link {
		linkAddr := c.nextPC
		c.delayedLoadNone()
		c.SetReg(31, linkAddr)
	} else {
		c.delayedLoadNone()
	}

	if taken {
		c.nextPC = c.pc + (instr.ImmSE() << 2)
		c.branch = true
	}
}
