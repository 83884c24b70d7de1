package cpu

import "psxcore/internal/console"

// icacheLines is the direct-mapped cache's line count.
const icacheLines = 256

// ICacheLine is one 4-word cache line. tagValid packs the line's tag
// (bits [30:12] of the first contained address, stored in bits [30:12] of
// tagValid itself) together with the first-valid-word index in bits
// [4:2]: a fill sets that field to the index it started from, and
// invalidation ORs in bit 4, which forces the decoded index to read as 4
// or higher no matter what bits [3:2] hold.
type ICacheLine struct {
	tagValid     uint32
	instructions [4]uint32
}

func (l *ICacheLine) tag() uint32 {
	return l.tagValid & 0x7ffff000
}

func (l *ICacheLine) firstValidIndex() uint32 {
	return (l.tagValid >> 2) & 0x7
}

func (l *ICacheLine) invalidate() {
	l.tagValid |= 0x10
}

// ICache is the CPU's 256-line x 4-word direct-mapped instruction cache.
type ICache struct {
	lines [icacheLines]ICacheLine
}

// InvalidateAll clears every line, as if freshly reset. A cleared line
// carries tag 0 with every word valid, so fetches from addresses whose tag
// bits are zero still hit it.
func (ic *ICache) InvalidateAll() {
	ic.lines = [icacheLines]ICacheLine{}
}

// InvalidateBucket marks the line holding bucket invalid without touching
// its stored words, used by cache-isolated tag-test-mode stores.
func (ic *ICache) InvalidateBucket(bucket uint32) {
	ic.lines[bucket&0xff].invalidate()
}

// WriteWord overwrites a single cached instruction word in place, used by
// cache-isolated stores outside tag-test mode.
func (ic *ICache) WriteWord(bucket, pos, value uint32) {
	ic.lines[bucket&0xff].instructions[pos&3] = value
}

// Fetch returns the instruction word at pc, filling the cache on a miss
// and charging the appropriate tick cost to shared's timekeeper.
// Addresses at or above 0xa0000000 (KSEG1/KSEG2), or any address while the
// interconnect's I-cache is disabled, bypass the cache entirely.
func (ic *ICache) Fetch(shared *console.SharedState, interconnect console.Interconnect, pc uint32) uint32 {
	if pc >= 0xa0000000 || !interconnect.CacheControl().ICacheEnabled() {
		shared.Tk().Tick(4)
		return interconnect.LoadInstruction(shared, pc)
	}

	tag := pc & 0x7ffff000
	bucket := (pc >> 4) & 0xff
	index := (pc >> 2) & 3
	line := &ic.lines[bucket]

	if line.tag() != tag || index < line.firstValidIndex() {
		lineBase := pc &^ 0xf
		shared.Tk().Tick(3)
		for pos := index; pos <= 3; pos++ {
			line.instructions[pos] = interconnect.LoadInstruction(shared, lineBase+pos*4)
			shared.Tk().Tick(1)
		}
		line.tagValid = pc & 0x7ffff00c
	}

	return line.instructions[index]
}
