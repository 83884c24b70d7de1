package console

import (
	"fmt"
	"log"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

// TermDebugger is an interactive Debugger front-end: it halts execution at
// breakpoints or in single-step mode, dumps the register file, and waits
// for a single keystroke command before letting the CPU continue.
type TermDebugger struct {
	breakpoints map[uint32]bool
	watches     map[uint32]bool
	stepping    bool
	raw         bool
	oldState    *term.State
}

// NewTermDebugger returns a TermDebugger with no breakpoints armed and
// single-stepping off.
func NewTermDebugger() *TermDebugger {
	return &TermDebugger{
		breakpoints: make(map[uint32]bool),
		watches:     make(map[uint32]bool),
	}
}

// Start puts the controlling terminal into raw mode so single keystrokes
// reach GetSingleKey without waiting on a newline. Safe to call on a
// non-terminal stdin (e.g. under a test harness or when piped); the error
// is logged and the terminal mode is left unchanged.
func (d *TermDebugger) Start() {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Printf("debugger: terminal raw mode unavailable: %v", err)
		return
	}
	d.oldState = oldState
	d.raw = true
}

// Stop restores the terminal to its prior mode, if Start succeeded.
func (d *TermDebugger) Stop() {
	if d.raw {
		_ = term.Restore(int(os.Stdin.Fd()), d.oldState)
		d.raw = false
	}
}

// AddBreakpoint arms a halt on execution reaching addr.
func (d *TermDebugger) AddBreakpoint(addr uint32) {
	d.breakpoints[addr] = true
}

// RemoveBreakpoint disarms a previously-armed breakpoint.
func (d *TermDebugger) RemoveBreakpoint(addr uint32) {
	delete(d.breakpoints, addr)
}

// Watch arms a halt on any load or store touching addr.
func (d *TermDebugger) Watch(addr uint32) {
	d.watches[addr] = true
}

// PCChange implements Debugger. It halts and opens a command prompt when
// the new PC hits an armed breakpoint, or every step while single-stepping
// is active.
func (d *TermDebugger) PCChange(cpu CPUView) {
	if !d.stepping && !d.breakpoints[cpu.PC()] {
		return
	}
	d.prompt(cpu, fmt.Sprintf("pc=0x%08x", cpu.PC()))
}

// MemoryRead implements Debugger, halting on an armed watchpoint.
func (d *TermDebugger) MemoryRead(cpu CPUView, addr uint32) {
	if d.watches[addr] {
		d.prompt(cpu, fmt.Sprintf("read  addr=0x%08x", addr))
	}
}

// MemoryWrite implements Debugger, halting on an armed watchpoint.
func (d *TermDebugger) MemoryWrite(cpu CPUView, addr uint32) {
	if d.watches[addr] {
		d.prompt(cpu, fmt.Sprintf("write addr=0x%08x", addr))
	}
}

// TriggerBreak implements Debugger: force a halt on the very next PCChange.
func (d *TermDebugger) TriggerBreak() {
	d.stepping = true
}

// prompt dumps the register file and blocks for a single command
// keystroke: n/space single-steps, c continues free-running, q quits the
// process outright.
func (d *TermDebugger) prompt(cpu CPUView, reason string) {
	regs := cpu.Registers()
	fmt.Printf("-- break (%s) --\n", reason)
	for i := 0; i < 32; i += 4 {
		fmt.Printf("r%-2d=%08x r%-2d=%08x r%-2d=%08x r%-2d=%08x\n",
			i, regs[i], i+1, regs[i+1], i+2, regs[i+2], i+3, regs[i+3])
	}

	for {
		ch, key, err := keyboard.GetSingleKey()
		if err != nil {
			log.Printf("debugger: could not read command key: %v", err)
			return
		}
		if key == keyboard.KeyCtrlC {
			d.Stop()
			log.Fatal("interrupt")
		}
		switch ch {
		case 'n', ' ':
			d.stepping = true
			return
		case 'c':
			d.stepping = false
			return
		case 'q':
			d.Stop()
			os.Exit(0)
		default:
			fmt.Println("commands: n=step c=continue q=quit")
		}
	}
}
