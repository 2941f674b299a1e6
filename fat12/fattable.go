package fat12

import (
	"github.com/boljen/go-bitmap"

	"github.com/go-fat/fat12img/errors"
)

// reservedEntries is the number of low FAT entries (0 and 1) that are never
// real clusters: entry 0 carries a copy of the media descriptor, entry 1 is
// reserved. Cluster numbering proper starts at 2.
const reservedEntries = 2

// FatTable holds the two mirrored copies of a FAT12 file allocation table and
// a bitmap cache of which entries are free. Every mutation is applied to both
// copies before this type reports success, so the two FATs can never drift
// apart on a saved image.
type FatTable struct {
	fat1, fat2 []byte
	entries    uint32
	free       bitmap.Bitmap
}

// NewFatTable wraps two equal-length raw FAT byte slices. The slices are not
// copied: mutating them outside of FatTable's methods will desync the free
// bitmap cache from the underlying bytes.
func NewFatTable(fat1, fat2 []byte) (*FatTable, error) {
	if len(fat1) != len(fat2) {
		return nil, errors.ErrFormat.WithMessage("mirrored FAT copies have different lengths")
	}

	table := &FatTable{
		fat1:    fat1,
		fat2:    fat2,
		entries: uint32(len(fat1)) * 8 / 12,
	}
	table.free = bitmap.New(int(table.entries))
	for n := uint32(0); n < table.entries; n++ {
		value, err := table.readPacked(n)
		if err != nil {
			return nil, err
		}
		table.free.Set(int(n), value == 0)
	}
	return table, nil
}

// EntryCount is the number of 12-bit entries the table holds.
func (table *FatTable) EntryCount() uint32 {
	return table.entries
}

func (table *FatTable) checkIndex(n uint32) error {
	if n >= table.entries {
		return errors.ErrBounds.WithMessage("FAT entry index out of range")
	}
	return nil
}

// readPacked decodes entry n directly from fat1, per the 12-bit packing rule:
// off = n*3/2; even n takes the low 12 bits of the 16-bit word at off, odd n
// takes the high 12 bits.
func (table *FatTable) readPacked(n uint32) (uint16, error) {
	off := int(n) * 3 / 2
	if off+1 >= len(table.fat1) {
		return 0, errors.ErrBounds.WithMessage("FAT entry offset out of range")
	}
	b1, b2 := table.fat1[off], table.fat1[off+1]
	if n%2 == 0 {
		return uint16(b1) | (uint16(b2&0x0F) << 8), nil
	}
	return (uint16(b1) >> 4) | (uint16(b2) << 4), nil
}

// ReadEntry returns the raw 12-bit value stored at entry n.
func (table *FatTable) ReadEntry(n uint32) (uint16, error) {
	if err := table.checkIndex(n); err != nil {
		return 0, err
	}
	return table.readPacked(n)
}

// WriteEntry packs value into entry n and writes it into both mirrored FAT
// copies, preserving the neighboring nibble each entry shares its byte pair
// with. The free bitmap cache is updated to match.
func (table *FatTable) WriteEntry(n uint32, value uint16) error {
	if err := table.checkIndex(n); err != nil {
		return err
	}
	if value&0xF000 != 0 {
		return errors.ErrFormat.WithMessage("FAT entry value does not fit in 12 bits")
	}

	off := int(n) * 3 / 2
	if off+1 >= len(table.fat1) {
		return errors.ErrBounds.WithMessage("FAT entry offset out of range")
	}

	for _, fat := range [][]byte{table.fat1, table.fat2} {
		if n%2 == 0 {
			fat[off] = byte(value & 0xFF)
			fat[off+1] = (fat[off+1] & 0xF0) | byte((value>>8)&0x0F)
		} else {
			fat[off] = (fat[off] & 0x0F) | byte((value&0x0F)<<4)
			fat[off+1] = byte(value >> 4)
		}
	}

	table.free.Set(int(n), value == 0)
	return nil
}

// FatEntry pairs a cluster index with its current FAT value, for iteration.
type FatEntry struct {
	Index uint32
	Value uint16
}

// Entries returns every entry in the table, cluster 0 through the last valid
// index, in order.
func (table *FatTable) Entries() ([]FatEntry, error) {
	out := make([]FatEntry, 0, table.entries)
	for n := uint32(0); n < table.entries; n++ {
		value, err := table.readPacked(n)
		if err != nil {
			return nil, err
		}
		out = append(out, FatEntry{Index: n, Value: value})
	}
	return out, nil
}

// GetFreeFATEntry scans for the first unused cluster and returns its index.
//
// The source this table's format was distilled from added 2 to the scan
// index before returning it, conflating "entry index" with "cluster number"
// inconsistently with how it read entries back; this implementation returns
// the raw entry index n for n >= 2, the value callers must store as a
// FirstLogicalCluster and pass back into ReadEntry/WriteEntry.
func (table *FatTable) GetFreeFATEntry() (uint32, bool) {
	for n := uint32(reservedEntries); n < table.entries; n++ {
		if table.free.Get(int(n)) {
			return n, true
		}
	}
	return 0, false
}

// MarkEndOfChain writes the end-of-chain marker (0xFFF) into entry n.
func (table *FatTable) MarkEndOfChain(n uint32) error {
	return table.WriteEntry(n, 0xFFF)
}

// IsEndOfChain reports whether value marks the end of a cluster chain. FAT12
// reserves 0xFF8-0xFFF for this; any reader encountering one of these must
// stop walking the chain.
func IsEndOfChain(value uint16) bool {
	return value >= 0xFF8
}

// IsFreeValue reports whether a raw FAT value denotes an unused cluster.
func IsFreeValue(value uint16) bool {
	return value == 0
}
