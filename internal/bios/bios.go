// Package bios models the PSX BIOS ROM: a fixed-size blob identified by
// its SHA-256 digest against a compiled-in metadata database, plus the
// handful of binary patches real front-ends apply to it (skip the boot
// animation, redirect the animation-jump hook, turn on the debug UART).
package bios

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Size is the fixed length of a PSX BIOS ROM.
const Size = 524288

// Region identifies the TV standard a BIOS image was built for.
type Region int

const (
	RegionUnknown Region = iota
	RegionNTSCU
	RegionNTSCJ
	RegionPAL
)

// Metadata describes a known BIOS digest: its version, region, whether the
// reference considers it a known-bad dump, and the offsets/hooks its
// optional patches need.
type Metadata struct {
	MajorVersion            byte
	MinorVersion            byte
	Region                  Region
	KnownBad                bool
	BootAnimationOffset     *uint32
	AnimationJumpHookOffset *uint32
	PatchUART               func(*Image) bool
}

// Image is a loaded 512 KiB BIOS ROM paired with the Metadata row its
// digest matched in the compiled-in database.
type Image struct {
	data     [Size]byte
	digest   [32]byte
	Metadata *Metadata
}

// database maps a BIOS SHA-256 digest to its known metadata. Production
// deployments extend this table with the digests of real dumps; this core
// ships only the dummy-BIOS entry used by tests and by NewDummy's
// placeholder image.
var database = map[[32]byte]Metadata{}

func registerKnown(data []byte, meta Metadata) [32]byte {
	digest := sha256.Sum256(data)
	database[digest] = meta
	return digest
}

func init() {
	registerKnown(dummyData(), Metadata{KnownBad: true})
}

// New hashes blob, looks it up in the compiled-in database, and returns the
// matching Image, or an error if the digest is not recognized.
func New(blob []byte) (*Image, error) {
	if len(blob) != Size {
		return nil, fmt.Errorf("bios: expected %d bytes, got %d", Size, len(blob))
	}

	digest := sha256.Sum256(blob)
	meta, ok := database[digest]
	if !ok {
		return nil, fmt.Errorf("bios: unknown BIOS")
	}

	img := &Image{digest: digest, Metadata: &meta}
	copy(img.data[:], blob)
	return img, nil
}

// dummyData fills 512 KiB with the fixed invalid-instruction pattern
// derived from 0x7badb105, used for unit tests and as the empty
// deserialized placeholder's backing store.
func dummyData() []byte {
	const pattern uint32 = 0x7badb105
	data := make([]byte, Size)
	for i := range data {
		data[i] = byte((pattern >> ((uint(i) % 4) * 2)) & 0xff)
	}
	return data
}

// NewDummy returns an Image filled entirely with the dummy pattern,
// registered in the database as a known-bad placeholder.
func NewDummy() *Image {
	img, err := New(dummyData())
	if err != nil {
		// The dummy pattern is registered in init; this cannot fail.
		panic(err)
	}
	return img
}

// Digest returns the 32-byte SHA-256 identifying this image.
func (img *Image) Digest() [32]byte {
	return img.digest
}

// LoadWidth reads width (1, 2, or 4) bytes at offset, little-endian,
// zero-extended to 32 bits.
func (img *Image) LoadWidth(width int, offset uint32) uint32 {
	switch width {
	case 1:
		return uint32(img.data[offset])
	case 2:
		return uint32(binary.LittleEndian.Uint16(img.data[offset : offset+2]))
	case 4:
		return binary.LittleEndian.Uint32(img.data[offset : offset+4])
	default:
		panic(fmt.Sprintf("bios: unsupported load width %d", width))
	}
}

// PatchBootAnimation overwrites the 4 bytes at the metadata-supplied
// boot-animation offset with a NOP. Returns false if this image's
// metadata does not supply that offset.
func (img *Image) PatchBootAnimation() bool {
	if img.Metadata == nil || img.Metadata.BootAnimationOffset == nil {
		return false
	}
	off := *img.Metadata.BootAnimationOffset
	binary.LittleEndian.PutUint32(img.data[off:off+4], 0)
	return true
}

// PatchAnimationJumpHook writes the little-endian encoding of instr at the
// metadata-supplied animation-jump-hook offset. Returns false if this
// image's metadata does not supply that offset.
func (img *Image) PatchAnimationJumpHook(instr uint32) bool {
	if img.Metadata == nil || img.Metadata.AnimationJumpHookOffset == nil {
		return false
	}
	off := *img.Metadata.AnimationJumpHookOffset
	binary.LittleEndian.PutUint32(img.data[off:off+4], instr)
	return true
}

// EnableDebugUART invokes the metadata-supplied UART patch function.
// Returns false if this image's metadata does not supply one.
func (img *Image) EnableDebugUART() bool {
	if img.Metadata == nil || img.Metadata.PatchUART == nil {
		return false
	}
	return img.Metadata.PatchUART(img)
}

// SaveState returns the 32-byte digest identifying this image. The ROM
// contents are not embedded; the host re-supplies the blob at load time.
func (img *Image) SaveState() [32]byte {
	return img.digest
}

// LoadState returns a placeholder Image filled with the dummy pattern and
// carrying the metadata matching digest; the real ROM bytes are not
// restored. It fails if digest is not present in the database.
func LoadState(digest [32]byte) (*Image, error) {
	meta, ok := database[digest]
	if !ok {
		return nil, fmt.Errorf("bios: unknown BIOS checksum")
	}
	img := &Image{digest: digest, Metadata: &meta}
	copy(img.data[:], dummyData())
	return img, nil
}
