package console

import (
	"encoding/binary"

	"psxcore/internal/bios"
)

const ramSize = 2 * 1024 * 1024 // 2 MiB, the real PSX's main RAM size

// regionMask mirrors the MIPS virtual-address region an address's top 3
// bits select: KUSEG (0-3) is unmasked, KSEG0 (4) strips the top bit,
// KSEG1 (5) strips the top three bits (both are RAM/BIOS mirrors of
// KUSEG), KSEG2 (6-7) is left untouched since it holds only
// memory-mapped registers like the cache-control register.
var regionMask = [8]uint32{
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	0x7fffffff,
	0x1fffffff,
	0xffffffff, 0xffffffff,
}

func maskRegion(addr uint32) uint32 {
	return addr & regionMask[addr>>29]
}

const (
	biosBase = 0x1fc00000
	biosEnd  = biosBase + bios.Size

	cacheControlAddr = 0xfffe0130
)

// basicCacheControl is a trivial CacheControl backed by the raw register
// value BasicInterconnect stores at 0xfffe0130.
type basicCacheControl struct {
	raw uint32
}

func (c basicCacheControl) ICacheEnabled() bool {
	return c.raw&(1<<11) != 0
}

func (c basicCacheControl) TagTestMode() bool {
	return c.raw&(1<<2) != 0
}

// BasicInterconnect is a flat-memory reference Interconnect: RAM, a single
// mapped BIOS image, and the cache-control register, enough to run the
// reset/fetch and arithmetic seed scenarios without a full peripheral set.
// Unmapped regions read as zero and discard stores.
type BasicInterconnect struct {
	ram          [ramSize]byte
	bios         *bios.Image
	cacheControl uint32
}

// NewBasicInterconnect builds an interconnect with img mapped at the BIOS
// window and RAM zero-initialized.
func NewBasicInterconnect(img *bios.Image) *BasicInterconnect {
	return &BasicInterconnect{bios: img}
}

// SetCacheControlRaw sets the raw cache-control register value, primarily
// for tests that need to toggle I-cache enable / tag-test mode directly.
func (ic *BasicInterconnect) SetCacheControlRaw(v uint32) {
	ic.cacheControl = v
}

// WriteRAMWord pokes a word directly into RAM, bypassing the CPU's store
// path and its cache-isolation redirect. Intended for test setup that needs to load a
// program without going through the CPU.
func (ic *BasicInterconnect) WriteRAMWord(addr, value uint32) {
	storeLE(ic.ram[:], maskRegion(addr), Word, value)
}

func (ic *BasicInterconnect) CacheControl() CacheControl {
	return basicCacheControl{raw: ic.cacheControl}
}

func (ic *BasicInterconnect) Sync(shared *SharedState) {
	shared.Tk().UpdateSyncPending(false)
}

func (ic *BasicInterconnect) LoadInstruction(shared *SharedState, addr uint32) uint32 {
	return ic.Load(shared, Word, addr)
}

func (ic *BasicInterconnect) Load(shared *SharedState, w Width, addr uint32) uint32 {
	abs := maskRegion(addr)

	switch {
	case abs < ramSize:
		return loadLE(ic.ram[:], abs, w)
	case abs >= biosBase && abs < biosEnd:
		return ic.bios.LoadWidth(int(w), abs-biosBase)
	case abs == cacheControlAddr:
		return ic.cacheControl
	default:
		return 0
	}
}

func (ic *BasicInterconnect) Store(shared *SharedState, r Renderer, w Width, addr uint32, value uint32) {
	abs := maskRegion(addr)

	switch {
	case abs < ramSize:
		storeLE(ic.ram[:], abs, w, value)
	case abs == cacheControlAddr:
		ic.cacheControl = value
	case abs == 0x1f801810:
		if r != nil {
			r.WriteGP0(value)
		}
	case abs == 0x1f801814:
		if r != nil {
			r.WriteGP1(value)
		}
	default:
		// Unmapped region: discard, matching a real bus's behavior for
		// addresses with no device behind them.
	}
}

func loadLE(data []byte, addr uint32, w Width) uint32 {
	switch w {
	case Byte:
		return uint32(data[addr])
	case HalfWord:
		return uint32(binary.LittleEndian.Uint16(data[addr : addr+2]))
	case Word:
		return binary.LittleEndian.Uint32(data[addr : addr+4])
	default:
		panic("console: unsupported load width")
	}
}

func storeLE(data []byte, addr uint32, w Width, value uint32) {
	switch w {
	case Byte:
		data[addr] = byte(value)
	case HalfWord:
		binary.LittleEndian.PutUint16(data[addr:addr+2], uint16(value))
	case Word:
		binary.LittleEndian.PutUint32(data[addr:addr+4], value)
	default:
		panic("console: unsupported store width")
	}
}
