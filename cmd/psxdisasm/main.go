package main

import (
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"psxcore/internal/cpu"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: psxdisasm <psx_exe_or_raw_binary_file>")
		return
	}

	fileName := flag.Arg(0)
	file, err := os.Open(fileName)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Failed to close file: %v", err)
		}
	}()

	if elfFile, err := elf.Open(fileName); err == nil {
		defer func() {
			if err := elfFile.Close(); err != nil {
				log.Printf("Failed to close ELF file: %v", err)
			}
		}()
		disassembleELF(elfFile)
		return
	}

	fmt.Println("Not an ELF file, treating as a raw little-endian PSX binary")
	disassembleRaw(file)
}

func disassembleELF(elfFile *elf.File) {
	fmt.Printf("ELF File: %s\n", elfFile.Machine)
	fmt.Printf("Entry point: 0x%08X\n", elfFile.Entry)
	fmt.Println()

	textSection := elfFile.Section(".text")
	if textSection == nil {
		fmt.Println("Warning: No .text section found")
		for _, section := range elfFile.Sections {
			if section.Flags&elf.SHF_EXECINSTR != 0 {
				fmt.Printf("Found executable section: %s\n", section.Name)
				disassembleSection(section)
			}
		}
		return
	}

	fmt.Printf("Disassembling .text section (0x%08X - 0x%08X):\n", textSection.Addr, textSection.Addr+textSection.Size)
	fmt.Println("=======================================================================")
	disassembleSection(textSection)
}

func disassembleSection(section *elf.Section) {
	data, err := section.Data()
	if err != nil {
		log.Printf("Failed to read section %s: %v", section.Name, err)
		return
	}

	addr := section.Addr
	for i := 0; i+4 <= len(data); i += 4 {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		pc := uint32(addr) + uint32(i)
		fmt.Printf("%-7s 0x%08X: 0x%08X\t%s\n", regionName(pc), pc, word, disassemble(cpu.Instruction(word), pc))
	}
}

func disassembleRaw(file *os.File) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("Failed to seek file: %v", err)
	}

	var offset uint32
	for {
		var word uint32
		if err := binary.Read(file, binary.LittleEndian, &word); err != nil {
			break
		}
		fmt.Printf("%-7s 0x%08X: 0x%08X\t%s\n", regionName(offset), offset, word, disassemble(cpu.Instruction(word), offset))
		offset += 4
	}
}

// regionName annotates an address with the MIPS virtual-memory region it
// falls in, the same region split the interconnect masks against.
func regionName(addr uint32) string {
	switch addr >> 29 {
	case 0, 1, 2, 3:
		return "KUSEG"
	case 4:
		return "KSEG0"
	case 5:
		return "KSEG1"
	default:
		return "KSEG2"
	}
}

func disassemble(instr cpu.Instruction, pc uint32) string {
	switch instr.Function() {
	case 0x00:
		return disassembleSpecial(instr)
	case 0x01:
		return disassembleRegimm(instr, pc)
	case 0x02:
		target := ((pc + 4) & 0xf0000000) | (instr.ImmJump() << 2)
		return fmt.Sprintf("j 0x%08X", target)
	case 0x03:
		target := ((pc + 4) & 0xf0000000) | (instr.ImmJump() << 2)
		return fmt.Sprintf("jal 0x%08X", target)
	default:
		return disassembleI(instr, pc)
	}
}

func disassembleSpecial(instr cpu.Instruction) string {
	rs, rt, rd, shamt := instr.RS(), instr.RT(), instr.RD(), instr.Shamt()

	switch instr.Subfunction() {
	case 0x00:
		return fmt.Sprintf("sll $%d, $%d, %d", rd, rt, shamt)
	case 0x02:
		return fmt.Sprintf("srl $%d, $%d, %d", rd, rt, shamt)
	case 0x03:
		return fmt.Sprintf("sra $%d, $%d, %d", rd, rt, shamt)
	case 0x04:
		return fmt.Sprintf("sllv $%d, $%d, $%d", rd, rt, rs)
	case 0x06:
		return fmt.Sprintf("srlv $%d, $%d, $%d", rd, rt, rs)
	case 0x07:
		return fmt.Sprintf("srav $%d, $%d, $%d", rd, rt, rs)
	case 0x08:
		return fmt.Sprintf("jr $%d", rs)
	case 0x09:
		return fmt.Sprintf("jalr $%d, $%d", rd, rs)
	case 0x0c:
		return "syscall"
	case 0x0d:
		return "break"
	case 0x10:
		return fmt.Sprintf("mfhi $%d", rd)
	case 0x11:
		return fmt.Sprintf("mthi $%d", rs)
	case 0x12:
		return fmt.Sprintf("mflo $%d", rd)
	case 0x13:
		return fmt.Sprintf("mtlo $%d", rs)
	case 0x18:
		return fmt.Sprintf("mult $%d, $%d", rs, rt)
	case 0x19:
		return fmt.Sprintf("multu $%d, $%d", rs, rt)
	case 0x1a:
		return fmt.Sprintf("div $%d, $%d", rs, rt)
	case 0x1b:
		return fmt.Sprintf("divu $%d, $%d", rs, rt)
	case 0x20:
		return fmt.Sprintf("add $%d, $%d, $%d", rd, rs, rt)
	case 0x21:
		return fmt.Sprintf("addu $%d, $%d, $%d", rd, rs, rt)
	case 0x22:
		return fmt.Sprintf("sub $%d, $%d, $%d", rd, rs, rt)
	case 0x23:
		return fmt.Sprintf("subu $%d, $%d, $%d", rd, rs, rt)
	case 0x24:
		return fmt.Sprintf("and $%d, $%d, $%d", rd, rs, rt)
	case 0x25:
		return fmt.Sprintf("or $%d, $%d, $%d", rd, rs, rt)
	case 0x26:
		return fmt.Sprintf("xor $%d, $%d, $%d", rd, rs, rt)
	case 0x27:
		return fmt.Sprintf("nor $%d, $%d, $%d", rd, rs, rt)
	case 0x2a:
		return fmt.Sprintf("slt $%d, $%d, $%d", rd, rs, rt)
	case 0x2b:
		return fmt.Sprintf("sltu $%d, $%d, $%d", rd, rs, rt)
	default:
		return fmt.Sprintf("unknown special funct=0x%02X", instr.Subfunction())
	}
}

func disassembleRegimm(instr cpu.Instruction, pc uint32) string {
	rs := instr.RS()
	target := pc + 4 + (instr.ImmSE() << 2)

	switch instr.RT() {
	case 0x00:
		return fmt.Sprintf("bltz $%d, 0x%08X", rs, target)
	case 0x01:
		return fmt.Sprintf("bgez $%d, 0x%08X", rs, target)
	case 0x10:
		return fmt.Sprintf("bltzal $%d, 0x%08X", rs, target)
	case 0x11:
		return fmt.Sprintf("bgezal $%d, 0x%08X", rs, target)
	default:
		return fmt.Sprintf("unknown regimm rt=0x%02X", instr.RT())
	}
}

func disassembleI(instr cpu.Instruction, pc uint32) string {
	rs, rt := instr.RS(), instr.RT()
	imm := int16(instr.Imm16())

	switch instr.Function() {
	case 0x08:
		return fmt.Sprintf("addi $%d, $%d, %d", rt, rs, imm)
	case 0x09:
		return fmt.Sprintf("addiu $%d, $%d, %d", rt, rs, imm)
	case 0x0a:
		return fmt.Sprintf("slti $%d, $%d, %d", rt, rs, imm)
	case 0x0b:
		return fmt.Sprintf("sltiu $%d, $%d, %d", rt, rs, imm)
	case 0x0c:
		return fmt.Sprintf("andi $%d, $%d, 0x%04X", rt, rs, instr.Imm16())
	case 0x0d:
		return fmt.Sprintf("ori $%d, $%d, 0x%04X", rt, rs, instr.Imm16())
	case 0x0e:
		return fmt.Sprintf("xori $%d, $%d, 0x%04X", rt, rs, instr.Imm16())
	case 0x0f:
		return fmt.Sprintf("lui $%d, 0x%04X", rt, instr.Imm16())
	case 0x20:
		return fmt.Sprintf("lb $%d, %d($%d)", rt, imm, rs)
	case 0x21:
		return fmt.Sprintf("lh $%d, %d($%d)", rt, imm, rs)
	case 0x22:
		return fmt.Sprintf("lwl $%d, %d($%d)", rt, imm, rs)
	case 0x23:
		return fmt.Sprintf("lw $%d, %d($%d)", rt, imm, rs)
	case 0x24:
		return fmt.Sprintf("lbu $%d, %d($%d)", rt, imm, rs)
	case 0x25:
		return fmt.Sprintf("lhu $%d, %d($%d)", rt, imm, rs)
	case 0x26:
		return fmt.Sprintf("lwr $%d, %d($%d)", rt, imm, rs)
	case 0x28:
		return fmt.Sprintf("sb $%d, %d($%d)", rt, imm, rs)
	case 0x29:
		return fmt.Sprintf("sh $%d, %d($%d)", rt, imm, rs)
	case 0x2a:
		return fmt.Sprintf("swl $%d, %d($%d)", rt, imm, rs)
	case 0x2b:
		return fmt.Sprintf("sw $%d, %d($%d)", rt, imm, rs)
	case 0x2e:
		return fmt.Sprintf("swr $%d, %d($%d)", rt, imm, rs)
	case 0x32:
		return fmt.Sprintf("lwc2 $gte%d, %d($%d)", rt, imm, rs)
	case 0x3a:
		return fmt.Sprintf("swc2 $gte%d, %d($%d)", rt, imm, rs)
	case 0x04:
		return fmt.Sprintf("beq $%d, $%d, 0x%08X", rs, rt, pc+4+(instr.ImmSE()<<2))
	case 0x05:
		return fmt.Sprintf("bne $%d, $%d, 0x%08X", rs, rt, pc+4+(instr.ImmSE()<<2))
	case 0x06:
		return fmt.Sprintf("blez $%d, 0x%08X", rs, pc+4+(instr.ImmSE()<<2))
	case 0x07:
		return fmt.Sprintf("bgtz $%d, 0x%08X", rs, pc+4+(instr.ImmSE()<<2))
	case 0x10:
		return disassembleCop0(instr)
	case 0x11:
		return "cop1 (unusable on R3000A)"
	case 0x12:
		return disassembleCop2(instr)
	default:
		return fmt.Sprintf("unknown I-op 0x%02X", instr.Function())
	}
}

func disassembleCop0(instr cpu.Instruction) string {
	rt, rd := instr.RT(), instr.RD()
	switch instr.RS() {
	case 0x00:
		return fmt.Sprintf("mfc0 $%d, $%d", rt, rd)
	case 0x04:
		return fmt.Sprintf("mtc0 $%d, $%d", rt, rd)
	case 0x10:
		if instr.Subfunction() == 0x10 {
			return "rfe"
		}
		return fmt.Sprintf("cop0 funct=0x%02X", instr.Subfunction())
	default:
		return fmt.Sprintf("unknown cop0 rs=0x%02X", instr.RS())
	}
}

func disassembleCop2(instr cpu.Instruction) string {
	if uint32(instr)&(1<<25) != 0 {
		return fmt.Sprintf("cop2 0x%07X", uint32(instr)&0x1ffffff)
	}
	rt, rd := instr.RT(), instr.RD()
	switch instr.RS() {
	case 0x00:
		return fmt.Sprintf("mfc2 $%d, $gte%d", rt, rd)
	case 0x02:
		return fmt.Sprintf("cfc2 $%d, $gte%d", rt, rd)
	case 0x04:
		return fmt.Sprintf("mtc2 $%d, $gte%d", rt, rd)
	case 0x06:
		return fmt.Sprintf("ctc2 $%d, $gte%d", rt, rd)
	default:
		return fmt.Sprintf("unknown cop2 rs=0x%02X", instr.RS())
	}
}
