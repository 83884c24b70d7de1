package cpu

import (
	"psxcore/internal/console"
	"psxcore/internal/utils"
)

// SPECIAL (function == 0) subfunction codes: register-register ALU ops,
// shifts, and the HI/LO / jump-register family.
const (
	fnSLL     = 0x00
	fnSRL     = 0x02
	fnSRA     = 0x03
	fnSLLV    = 0x04
	fnSRLV    = 0x06
	fnSRAV    = 0x07
	fnJR      = 0x08
	fnJALR    = 0x09
	fnSYSCALL = 0x0c
	fnBREAK   = 0x0d
	fnMFHI    = 0x10
	fnMTHI    = 0x11
	fnMFLO    = 0x12
	fnMTLO    = 0x13
	fnMULT    = 0x18
	fnMULTU   = 0x19
	fnDIV     = 0x1a
	fnDIVU    = 0x1b
	fnADD     = 0x20
	fnADDU    = 0x21
	fnSUB     = 0x22
	fnSUBU    = 0x23
	fnAND     = 0x24
	fnOR      = 0x25
	fnXOR     = 0x26
	fnNOR     = 0x27
	fnSLT     = 0x2a
	fnSLTU    = 0x2b
)

// checkAddOverflow and checkSubOverflow specialize the generic overflow
// helpers to int32, the only width this core's ALU ever traps on.
func checkAddOverflow(a, b, sum int32) bool {
	return utils.CheckAdditionOverflow(a, b, sum)
}

func checkSubOverflow(a, b, diff int32) bool {
	return utils.CheckSubtractionOverflow(a, b, diff)
}

// executeSpecial dispatches a SPECIAL-class instruction.
func (c *CPU) executeSpecial(instr Instruction, shared *console.SharedState, interconnect console.Interconnect, renderer console.Renderer, debugger console.Debugger) {
	switch instr.Subfunction() {
	case fnSLL:
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rt<<instr.Shamt())

	case fnSRL:
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rt>>instr.Shamt())

	case fnSRA:
		rt := int32(c.GetReg(instr.RT()))
		c.delayedLoadNone()
		c.SetReg(instr.RD(), uint32(rt>>instr.Shamt()))

	case fnSLLV:
		rt := c.GetReg(instr.RT())
		shift := c.GetReg(instr.RS()) & 0x1f
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rt<<shift)

	case fnSRLV:
		rt := c.GetReg(instr.RT())
		shift := c.GetReg(instr.RS()) & 0x1f
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rt>>shift)

	case fnSRAV:
		rt := int32(c.GetReg(instr.RT()))
		shift := c.GetReg(instr.RS()) & 0x1f
		c.delayedLoadNone()
		c.SetReg(instr.RD(), uint32(rt>>shift))

	case fnJR:
		target := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.nextPC = target
		c.branch = true

	case fnJALR:
		target := c.GetReg(instr.RS())
		link := c.nextPC
		c.delayedLoadNone()
		c.SetReg(instr.RD(), link)
		c.nextPC = target
		c.branch = true

	case fnSYSCALL:
		c.delayedLoadNone()
		c.raiseException(ExcSysCall)

	case fnBREAK:
		c.delayedLoadNone()
		c.raiseException(ExcBreak)

	case fnMFHI:
		c.delayedLoadNone()
		c.SetReg(instr.RD(), c.hi)

	case fnMTHI:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.hi = rs

	case fnMFLO:
		c.delayedLoadNone()
		c.SetReg(instr.RD(), c.lo)

	case fnMTLO:
		rs := c.GetReg(instr.RS())
		c.delayedLoadNone()
		c.lo = rs

	case fnMULT:
		rs := int64(int32(c.GetReg(instr.RS())))
		rt := int64(int32(c.GetReg(instr.RT())))
		c.delayedLoadNone()
		prod := uint64(rs * rt)
		c.lo = uint32(prod)
		c.hi = uint32(prod >> 32)

	case fnMULTU:
		rs := uint64(c.GetReg(instr.RS()))
		rt := uint64(c.GetReg(instr.RT()))
		c.delayedLoadNone()
		prod := rs * rt
		c.lo = uint32(prod)
		c.hi = uint32(prod >> 32)

	case fnDIV:
		rs := int32(c.GetReg(instr.RS()))
		rt := int32(c.GetReg(instr.RT()))
		c.delayedLoadNone()
		switch {
		case rt == 0:
			c.hi = uint32(rs)
			if rs >= 0 {
				c.lo = 0xffffffff
			} else {
				c.lo = 1
			}
		case uint32(rs) == 0x80000000 && rt == -1:
			c.hi = 0
			c.lo = 0x80000000
		default:
			c.hi = uint32(rs % rt)
			c.lo = uint32(rs / rt)
		}

	case fnDIVU:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if rt == 0 {
			c.hi = rs
			c.lo = 0xffffffff
		} else {
			c.hi = rs % rt
			c.lo = rs / rt
		}

	case fnADD:
		rs := int32(c.GetReg(instr.RS()))
		rt := int32(c.GetReg(instr.RT()))
		sum := rs + rt
		c.delayedLoadNone()
		if checkAddOverflow(rs, rt, sum) {
			c.raiseException(ExcOverflow)
			return
		}
		c.SetReg(instr.RD(), uint32(sum))

	case fnADDU:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rs+rt)

	case fnSUB:
		rs := int32(c.GetReg(instr.RS()))
		rt := int32(c.GetReg(instr.RT()))
		diff := rs - rt
		c.delayedLoadNone()
		if checkSubOverflow(rs, rt, diff) {
			c.raiseException(ExcOverflow)
			return
		}
		c.SetReg(instr.RD(), uint32(diff))

	case fnSUBU:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rs-rt)

	case fnAND:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rs&rt)

	case fnOR:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rs|rt)

	case fnXOR:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), rs^rt)

	case fnNOR:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		c.SetReg(instr.RD(), ^(rs | rt))

	case fnSLT:
		rs := int32(c.GetReg(instr.RS()))
		rt := int32(c.GetReg(instr.RT()))
		c.delayedLoadNone()
		if rs < rt {
			c.SetReg(instr.RD(), 1)
		} else {
			c.SetReg(instr.RD(), 0)
		}

	case fnSLTU:
		rs := c.GetReg(instr.RS())
		rt := c.GetReg(instr.RT())
		c.delayedLoadNone()
		if rs < rt {
			c.SetReg(instr.RD(), 1)
		} else {
			c.SetReg(instr.RD(), 0)
		}

	default:
		c.delayedLoadNone()
		c.warnf("illegal SPECIAL instruction 0x%08x at pc=0x%08x", uint32(instr), c.currentPC)
		c.raiseException(ExcIllegalInstruction)
	}
}
