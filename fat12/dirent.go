package fat12

import (
	"fmt"
	"strings"

	"github.com/go-fat/fat12img/errors"
	"github.com/go-fat/fat12img/internal/bytecodec"
)

// RootEntrySize is the size of a single serialized directory entry, in bytes.
const RootEntrySize = 32

// Attribute bitflags for RootEntry.Attrs, per the FAT12 directory entry
// format.
const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrSubdir      = 0x10
	AttrArchive     = 0x20
)

// Slot-state sentinels driven by the first filename byte.
const (
	slotEndOfDirectory = 0x00
	slotDeleted        = 0xE5
)

// RootEntry is the in-memory form of a 32-byte FAT12 directory entry. Field
// names and widths mirror the on-disk layout exactly; serialization always
// goes through Bytes/ParseRootEntry rather than relying on struct layout.
type RootEntry struct {
	Filename             [8]byte
	Extension            [3]byte
	Attrs                uint8
	Reserved             uint16
	CreationTime         uint16
	CreationDate         uint16
	LastAccessDate       uint16
	ReservedIgnored      uint16
	LastWriteTime        uint16
	LastWriteDate        uint16
	FirstLogicalCluster  uint16
	FileSize             uint32
}

// NewRootEntry returns a blank entry: every numeric field zero, filename and
// extension filled with ASCII space.
func NewRootEntry() RootEntry {
	entry := RootEntry{}
	for i := range entry.Filename {
		entry.Filename[i] = ' '
	}
	for i := range entry.Extension {
		entry.Extension[i] = ' '
	}
	return entry
}

// ParseRootEntry decodes a 32-byte directory entry from data.
func ParseRootEntry(data []byte) (RootEntry, error) {
	if len(data) < RootEntrySize {
		return RootEntry{}, errors.ErrBounds.WithMessage("directory entry shorter than 32 bytes")
	}

	entry := RootEntry{}
	copy(entry.Filename[:], data[0:8])
	copy(entry.Extension[:], data[8:11])

	var err error
	if entry.Attrs, err = bytecodec.Uint8(data, 11); err != nil {
		return RootEntry{}, err
	}
	if entry.Reserved, err = bytecodec.Uint16LE(data, 12); err != nil {
		return RootEntry{}, err
	}
	if entry.CreationTime, err = bytecodec.Uint16LE(data, 14); err != nil {
		return RootEntry{}, err
	}
	if entry.CreationDate, err = bytecodec.Uint16LE(data, 16); err != nil {
		return RootEntry{}, err
	}
	if entry.LastAccessDate, err = bytecodec.Uint16LE(data, 18); err != nil {
		return RootEntry{}, err
	}
	if entry.ReservedIgnored, err = bytecodec.Uint16LE(data, 20); err != nil {
		return RootEntry{}, err
	}
	if entry.LastWriteTime, err = bytecodec.Uint16LE(data, 22); err != nil {
		return RootEntry{}, err
	}
	if entry.LastWriteDate, err = bytecodec.Uint16LE(data, 24); err != nil {
		return RootEntry{}, err
	}
	if entry.FirstLogicalCluster, err = bytecodec.Uint16LE(data, 26); err != nil {
		return RootEntry{}, err
	}
	if entry.FileSize, err = bytecodec.Uint32LE(data, 28); err != nil {
		return RootEntry{}, err
	}

	return entry, nil
}

// Bytes serializes the entry into its exact 32-byte on-disk form.
func (entry RootEntry) Bytes() []byte {
	data := make([]byte, RootEntrySize)
	copy(data[0:8], entry.Filename[:])
	copy(data[8:11], entry.Extension[:])
	_ = bytecodec.PutUint8(data, 11, entry.Attrs)
	_ = bytecodec.PutUint16LE(data, 12, entry.Reserved)
	_ = bytecodec.PutUint16LE(data, 14, entry.CreationTime)
	_ = bytecodec.PutUint16LE(data, 16, entry.CreationDate)
	_ = bytecodec.PutUint16LE(data, 18, entry.LastAccessDate)
	_ = bytecodec.PutUint16LE(data, 20, entry.ReservedIgnored)
	_ = bytecodec.PutUint16LE(data, 22, entry.LastWriteTime)
	_ = bytecodec.PutUint16LE(data, 24, entry.LastWriteDate)
	_ = bytecodec.PutUint16LE(data, 26, entry.FirstLogicalCluster)
	_ = bytecodec.PutUint32LE(data, 28, entry.FileSize)
	return data
}

// isPrintableASCIIOrSpace reports whether every byte in b is either a space
// or in the printable ASCII range, per the RootEntry invariant in the
// specification's data model.
func isPrintableASCIIOrSpace(b []byte) bool {
	for _, c := range b {
		if c != ' ' && (c < 0x20 || c > 0x7E) {
			return false
		}
	}
	return true
}

// Filename trims trailing spaces from the 8-byte name, appends a dot, then
// appends the 3-byte extension unTrimmed so the canonical 8.3 form is
// preserved even when the extension is shorter than 3 characters padded with
// spaces in the middle (which never happens on a well-formed volume, but this
// keeps the contract explicit).
func (entry RootEntry) Filename() (string, error) {
	if !isPrintableASCIIOrSpace(entry.Filename[:]) || !isPrintableASCIIOrSpace(entry.Extension[:]) {
		return "", errors.ErrParse.WithMessage("directory entry filename is not ASCII")
	}

	name := strings.TrimRight(string(entry.Filename[:]), " ")
	return name + "." + string(entry.Extension[:]), nil
}

// FilenameFull is the raw, untrimmed, unvalidated concatenation of the
// filename and extension bytes. It never fails: corrupted or non-ASCII slots
// still produce a string, for forensic display (e.g. a garbled volume label).
func (entry RootEntry) FilenameFull() string {
	return string(entry.Filename[:]) + string(entry.Extension[:])
}

// SetFilename splits name on its single '.', requires a base name of at most
// 8 characters and an extension of at most 3, uppercases both, and
// right-pads them with spaces into the fixed-width fields.
func (entry *RootEntry) SetFilename(nameDotExt string) error {
	parts := strings.Split(nameDotExt, ".")
	if len(parts) != 2 {
		return errors.ErrFormat.WithMessage(fmt.Sprintf(
			"filename %q must contain exactly one '.'", nameDotExt))
	}

	base, ext := strings.ToUpper(parts[0]), strings.ToUpper(parts[1])
	if len(base) == 0 || len(base) > 8 {
		return errors.ErrFormat.WithMessage(fmt.Sprintf(
			"name %q must be 1-8 characters", parts[0]))
	}
	if len(ext) > 3 {
		return errors.ErrFormat.WithMessage(fmt.Sprintf(
			"extension %q must be at most 3 characters", parts[1]))
	}
	if !isPrintableASCIIOrSpace([]byte(base)) || !isPrintableASCIIOrSpace([]byte(ext)) {
		return errors.ErrFormat.WithMessage(fmt.Sprintf("filename %q is not ASCII", nameDotExt))
	}

	for i := range entry.Filename {
		entry.Filename[i] = ' '
	}
	for i := range entry.Extension {
		entry.Extension[i] = ' '
	}
	copy(entry.Filename[:], base)
	copy(entry.Extension[:], ext)
	return nil
}

// SetSize stores the file's size, in bytes.
func (entry *RootEntry) SetSize(size uint32) {
	entry.FileSize = size
}

// IsFree reports whether this slot is available for reuse: either genuinely
// free (0x00) or a deleted entry (0xE5).
func (entry RootEntry) IsFree() bool {
	return entry.Filename[0] == slotEndOfDirectory || entry.Filename[0] == slotDeleted
}

// RestAreFree reports whether this slot, and every slot after it, is unused.
// Directory enumeration must stop here.
func (entry RootEntry) RestAreFree() bool {
	return entry.Filename[0] == slotEndOfDirectory
}

func (entry RootEntry) attr(bit uint8) bool { return entry.Attrs&bit == bit }

func (entry *RootEntry) setAttr(bit uint8, on bool) {
	if on {
		entry.Attrs |= bit
	} else {
		entry.Attrs &^= bit
	}
}

func (entry RootEntry) IsReadOnly() bool    { return entry.attr(AttrReadOnly) }
func (entry RootEntry) IsHidden() bool      { return entry.attr(AttrHidden) }
func (entry RootEntry) IsSystem() bool      { return entry.attr(AttrSystem) }
func (entry RootEntry) IsVolumeLabel() bool { return entry.attr(AttrVolumeLabel) }
func (entry RootEntry) IsSubdir() bool      { return entry.attr(AttrSubdir) }
func (entry RootEntry) IsArchive() bool     { return entry.attr(AttrArchive) }

func (entry *RootEntry) SetReadOnly(on bool)    { entry.setAttr(AttrReadOnly, on) }
func (entry *RootEntry) SetHidden(on bool)      { entry.setAttr(AttrHidden, on) }
func (entry *RootEntry) SetSystem(on bool)      { entry.setAttr(AttrSystem, on) }
func (entry *RootEntry) SetVolumeLabel(on bool) { entry.setAttr(AttrVolumeLabel, on) }
func (entry *RootEntry) SetSubdir(on bool)      { entry.setAttr(AttrSubdir, on) }
func (entry *RootEntry) SetArchive(on bool)     { entry.setAttr(AttrArchive, on) }

// String renders a structured, multi-field dump of the entry, used by the
// "detail" command.
func (entry RootEntry) String() string {
	name, err := entry.Filename()
	if err != nil {
		name = "????????.???"
	}
	return fmt.Sprintf(
		"RootEntry{filename: %q, attrs: 0x%02x, creation_time: 0x%04x, "+
			"creation_date: 0x%04x, last_access_date: 0x%04x, last_write_time: 0x%04x, "+
			"last_write_date: 0x%04x, first_logical_cluster: 0x%04x, file_size: 0x%x}",
		name, entry.Attrs, entry.CreationTime, entry.CreationDate, entry.LastAccessDate,
		entry.LastWriteTime, entry.LastWriteDate, entry.FirstLogicalCluster, entry.FileSize,
	)
}
