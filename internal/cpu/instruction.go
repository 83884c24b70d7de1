package cpu

// Instruction is a raw 32-bit MIPS-I opcode word. Unlike a decoded struct,
// every field is extracted on demand so a dispatch site only ever pays for
// the fields it actually needs.
type Instruction uint32

// Function returns bits [31:26], the primary opcode field.
func (i Instruction) Function() uint32 {
	return uint32(i) >> 26
}

// Subfunction returns bits [5:0], the SPECIAL/REGIMM funct field.
func (i Instruction) Subfunction() uint32 {
	return uint32(i) & 0x3F
}

// CopOpcode returns bits [25:21], used by MFC0/MTC0-style coprocessor ops
// to select move-from/move-to/control variants.
func (i Instruction) CopOpcode() uint32 {
	return (uint32(i) >> 21) & 0x1F
}

// RS returns bits [25:21] as a register index.
func (i Instruction) RS() uint32 {
	return (uint32(i) >> 21) & 0x1F
}

// RT returns bits [20:16] as a register index.
func (i Instruction) RT() uint32 {
	return (uint32(i) >> 16) & 0x1F
}

// RD returns bits [15:11] as a register index.
func (i Instruction) RD() uint32 {
	return (uint32(i) >> 11) & 0x1F
}

// Shamt returns bits [10:6], the shift amount field.
func (i Instruction) Shamt() uint32 {
	return (uint32(i) >> 6) & 0x1F
}

// Imm16 returns bits [15:0] unextended.
func (i Instruction) Imm16() uint32 {
	return uint32(i) & 0xFFFF
}

// ImmSE returns bits [15:0] sign-extended to 32 bits.
func (i Instruction) ImmSE() uint32 {
	v := int16(uint16(i))
	return uint32(int32(v))
}

// ImmJump returns bits [25:0], the J/JAL target field.
func (i Instruction) ImmJump() uint32 {
	return uint32(i) & 0x3FFFFFF
}

// IsGTEOp reports whether this is a COP2 instruction (function == 0b010010).
// GTE ops are allowed to execute even when an interrupt is pending, per the
// IRQ-delivery ordering rule: the pending interrupt is taken only after a
// COP2 op in flight has executed.
func (i Instruction) IsGTEOp() bool {
	return i.Function() == 0x12
}
