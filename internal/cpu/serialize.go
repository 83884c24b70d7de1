package cpu

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// cpuState is the plain, gob-friendly mirror of CPU's private fields.
// Kept separate from CPU itself so the live struct is free to carry
// unexported, non-serializable collaborators (gte) without touching the
// encoding. gob only walks exported fields, so every nested type here
// (delayedLoadState, icacheLineState) re-exports the fields their
// unexported counterparts (delayedLoad, ICacheLine) hide.
type cpuState struct {
	Regs [32]uint32
	Hi   uint32
	Lo   uint32

	PC        uint32
	NextPC    uint32
	CurrentPC uint32

	Branch    bool
	DelaySlot bool

	PendingLoad delayedLoadState

	Sr    uint32
	Cause uint32
	Epc   uint32

	ICache [icacheLines]icacheLineState
}

type delayedLoadState struct {
	Target uint32
	Value  uint32
}

type icacheLineState struct {
	TagValid     uint32
	Instructions [4]uint32
}

// SaveState encodes the full CPU state -- registers, HI/LO, the PC triple,
// delay-slot flags, the pending delayed load, Cop0, and the I-cache -- for
// later restoration via LoadState.
func (c *CPU) SaveState() []byte {
	s := cpuState{
		Regs:      c.regs,
		Hi:        c.hi,
		Lo:        c.lo,
		PC:        c.pc,
		NextPC:    c.nextPC,
		CurrentPC: c.currentPC,
		Branch:    c.branch,
		DelaySlot: c.delaySlot,
		PendingLoad: delayedLoadState{
			Target: c.pendingLoad.target,
			Value:  c.pendingLoad.value,
		},
		Sr:    c.cop0.sr,
		Cause: c.cop0.cause,
		Epc:   c.cop0.epc,
	}
	for i, line := range c.icache.lines {
		s.ICache[i] = icacheLineState{
			TagValid:     line.tagValid,
			Instructions: line.instructions,
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		// cpuState holds only fixed-size value types; encoding cannot fail.
		panic(fmt.Sprintf("cpu: state encode: %v", err))
	}
	return buf.Bytes()
}

// LoadState restores a CPU to a state previously produced by SaveState.
// The CPU's GTE collaborator is left untouched; callers that need GTE
// state restored must do so separately.
func (c *CPU) LoadState(data []byte) error {
	var s cpuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("cpu: state decode: %w", err)
	}

	c.regs = s.Regs
	c.hi = s.Hi
	c.lo = s.Lo
	c.pc = s.PC
	c.nextPC = s.NextPC
	c.currentPC = s.CurrentPC
	c.branch = s.Branch
	c.delaySlot = s.DelaySlot
	c.pendingLoad = delayedLoad{target: s.PendingLoad.Target, value: s.PendingLoad.Value}
	c.cop0.sr = s.Sr
	c.cop0.cause = s.Cause
	c.cop0.epc = s.Epc
	for i, line := range s.ICache {
		c.icache.lines[i] = ICacheLine{tagValid: line.TagValid, instructions: line.Instructions}
	}
	return nil
}
