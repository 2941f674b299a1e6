package fat12

import (
	"io"
	"os"
	"strings"

	"github.com/go-fat/fat12img/errors"
)

// sectorsPerRoot is the fixed number of sectors the root directory occupies,
// independent of max_roots. On the canonical 1.44 MB geometry this works out
// to exactly max_roots*32 bytes (14*512 == 224*32); other geometries may
// leave slack or (if undersized) truncate the logical root entry count, which
// mirrors the source this layout was distilled from.
const sectorsPerRoot = 14

// Image is the complete in-memory FAT12 volume: the boot sector, both FAT
// mirrors, the root directory, and the data area, plus the BPB it was built
// or loaded with. Every section is owned by the Image; callers only ever see
// copies or narrow views of it.
type Image struct {
	bootSector []byte
	rootDir    []byte
	dataArea   []byte
	bpb        BIOSParam
	fat        *FatTable
	data       *SectorIO
}

func sectionLengths(bpb BIOSParam) (bootLen, fatLen, rootLen uint64) {
	bootLen = uint64(bpb.ReservedSectors) * uint64(bpb.BytesPerSector)
	fatLen = uint64(bpb.SectorsPerFAT) * uint64(bpb.BytesPerSector)
	rootLen = uint64(sectorsPerRoot) * uint64(bpb.BytesPerSector)
	return
}

// BlankImage allocates a zeroed Image for bpb, sized to totalBytes overall.
// The data area absorbs whatever remains after the boot sector, both FAT
// copies, and the root directory.
func BlankImage(bpb BIOSParam, totalBytes uint64) (*Image, error) {
	if err := bpb.Validate(); err != nil {
		return nil, err
	}

	bootLen, fatLen, rootLen := sectionLengths(bpb)
	reserved := bootLen + 2*fatLen + rootLen
	if reserved > totalBytes {
		return nil, errors.ErrFormat.WithMessage("geometry does not fit in the requested image size")
	}

	img := &Image{
		bootSector: make([]byte, bootLen),
		rootDir:    make([]byte, rootLen),
		dataArea:   make([]byte, totalBytes-reserved),
		bpb:        bpb,
	}

	fat1 := make([]byte, fatLen)
	fat2 := make([]byte, fatLen)
	fat, err := NewFatTable(fat1, fat2)
	if err != nil {
		return nil, err
	}
	img.fat = fat

	data, err := NewSectorIO(img.dataArea, uint32(bpb.BytesPerSector))
	if err != nil {
		return nil, err
	}
	img.data = data

	return img, nil
}

// BlankImageFromGeometry builds a blank image from a named canonical floppy
// geometry (see Geometry/LookupGeometry).
func BlankImageFromGeometry(name string) (*Image, error) {
	geometry, err := LookupGeometry(name)
	if err != nil {
		return nil, err
	}
	return BlankImage(geometry.BIOSParam(), geometry.TotalBytes())
}

// readSection reads exactly len(buf) bytes from r into buf, wrapping short
// reads as ErrIO.
func readSection(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return errors.ErrIO.Wrap(err)
	}
	return nil
}

func loadFromReader(r io.Reader, bpb BIOSParam, totalLength uint64) (*Image, error) {
	bootLen, fatLen, rootLen := sectionLengths(bpb)
	reserved := bootLen + 2*fatLen + rootLen
	if reserved > totalLength {
		return nil, errors.ErrFormat.WithMessage("geometry does not fit in the declared image length")
	}

	img := &Image{
		bootSector: make([]byte, bootLen),
		rootDir:    make([]byte, rootLen),
		dataArea:   make([]byte, totalLength-reserved),
		bpb:        bpb,
	}

	if err := readSection(r, img.bootSector); err != nil {
		return nil, err
	}

	fat1 := make([]byte, fatLen)
	if err := readSection(r, fat1); err != nil {
		return nil, err
	}
	fat2 := make([]byte, fatLen)
	if err := readSection(r, fat2); err != nil {
		return nil, err
	}
	fat, err := NewFatTable(fat1, fat2)
	if err != nil {
		return nil, err
	}
	img.fat = fat

	if err := readSection(r, img.rootDir); err != nil {
		return nil, err
	}
	if err := readSection(r, img.dataArea); err != nil {
		return nil, err
	}

	data, err := NewSectorIO(img.dataArea, uint32(bpb.BytesPerSector))
	if err != nil {
		return nil, err
	}
	img.data = data

	return img, nil
}

// LoadImage reads a whole file from disk as a FAT12 image, BPB and all.
func LoadImage(path string) (*Image, error) {
	return LoadImageAt(path, 0, 0)
}

// LoadImageAt reads length bytes, starting at byte offset start within path,
// as a FAT12 image. A zero length means "the rest of the file". This lets an
// image be embedded inside a larger container (e.g. a partitioned disk).
func LoadImageAt(path string, start int64, length int64) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}

	if length == 0 {
		length = info.Size() - start
	}
	if start+length > info.Size() {
		return nil, errors.ErrBounds.WithMessage("start + length exceeds file size")
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}

	header := make([]byte, bootSectorLen)
	if err := readSection(file, header); err != nil {
		return nil, err
	}
	bpb, err := ParseBIOSParam(header, 0)
	if err != nil {
		return nil, err
	}

	// The boot sector region can be larger than the 512 bytes needed to
	// decode the BPB (reserved_sectors > 1); rewind and let loadFromReader
	// consume the section at its real length.
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}

	return loadFromReader(file, bpb, uint64(length))
}

// Save writes all five sections back to path, in order, overwriting or
// creating the file as needed.
func (img *Image) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.ErrIO.Wrap(err)
	}
	defer file.Close()

	for _, section := range img.sections() {
		if _, err := file.Write(section); err != nil {
			return errors.ErrIO.Wrap(err)
		}
	}
	return nil
}

func (img *Image) sections() [][]byte {
	return [][]byte{img.bootSector, img.fat.fat1, img.fat.fat2, img.rootDir, img.dataArea}
}

// BiosParameter returns a copy of the BPB this image was built or loaded
// with.
func (img *Image) BiosParameter() BIOSParam {
	return img.bpb
}

// SectorSize is the volume's bytes-per-sector.
func (img *Image) SectorSize() uint16 {
	return img.bpb.BytesPerSector
}

const noVolumeLabel = "has no label"

// VolumeLabel scans the root directory for an entry with the VolumeLabel
// attribute and returns its raw, untrimmed 11-byte name, or the sentinel
// string if none exists.
func (img *Image) VolumeLabel() string {
	for _, entry := range img.RootEntries() {
		if entry.IsVolumeLabel() {
			return entry.FilenameFull()
		}
	}
	return noVolumeLabel
}

// RootEntriesAll returns every 32-byte slot in the root directory, live or
// not, in slot order.
func (img *Image) RootEntriesAll() ([]RootEntry, error) {
	count := len(img.rootDir) / RootEntrySize
	out := make([]RootEntry, 0, count)
	for i := 0; i < count; i++ {
		entry, err := ParseRootEntry(img.rootDir[i*RootEntrySize : (i+1)*RootEntrySize])
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// RootEntries returns the live entries of the root directory: deleted slots
// are skipped, and enumeration stops at the first end-of-directory slot.
func (img *Image) RootEntries() []RootEntry {
	count := len(img.rootDir) / RootEntrySize
	out := make([]RootEntry, 0, count)
	for i := 0; i < count; i++ {
		entry, err := ParseRootEntry(img.rootDir[i*RootEntrySize : (i+1)*RootEntrySize])
		if err != nil {
			continue
		}
		if entry.RestAreFree() {
			break
		}
		if entry.IsFree() {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// ListEntries returns the live, non-volume-label root entries, the set the
// "ls" command enumerates.
func (img *Image) ListEntries() []RootEntry {
	live := img.RootEntries()
	out := make([]RootEntry, 0, len(live))
	for _, entry := range live {
		if entry.IsVolumeLabel() {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// GetFileEntry looks up a live root entry by filename, case-insensitively.
func (img *Image) GetFileEntry(filename string) (RootEntry, error) {
	target := strings.ToUpper(filename)
	for _, entry := range img.RootEntries() {
		name, err := entry.Filename()
		if err != nil {
			continue
		}
		if strings.ToUpper(name) == target {
			return entry, nil
		}
	}
	return RootEntry{}, errors.ErrNotFound.WithMessage("file " + filename + " not found")
}

// CreateFileEntry reserves a root directory slot for filename without
// committing it: it fails if filename already exists (case-insensitively),
// otherwise it returns the first free slot (scanning every slot, including
// deleted ones) together with a freshly built RootEntry.
func (img *Image) CreateFileEntry(filename string, size uint32) (RootEntry, int, error) {
	if _, err := img.GetFileEntry(filename); err == nil {
		return RootEntry{}, 0, errors.ErrAlreadyExists.WithMessage(
			"file " + filename + " already exists")
	}

	all, err := img.RootEntriesAll()
	if err != nil {
		return RootEntry{}, 0, err
	}
	for index, entry := range all {
		if !entry.IsFree() {
			continue
		}
		fresh := NewRootEntry()
		if err := fresh.SetFilename(filename); err != nil {
			return RootEntry{}, 0, err
		}
		fresh.SetSize(size)
		return fresh, index, nil
	}

	return RootEntry{}, 0, errors.ErrNoFreeSlot.WithMessage("no free root directory slots")
}

// SaveFileEntry serializes entry into the root directory at slotIndex.
func (img *Image) SaveFileEntry(entry RootEntry, slotIndex int) error {
	start := slotIndex * RootEntrySize
	if start < 0 || start+RootEntrySize > len(img.rootDir) {
		return errors.ErrBounds.WithMessage("root directory slot index out of range")
	}
	copy(img.rootDir[start:start+RootEntrySize], entry.Bytes())
	return nil
}

// GetFatEntry reads the raw FAT value for clusterNum.
func (img *Image) GetFatEntry(clusterNum uint32) (uint16, error) {
	return img.fat.ReadEntry(clusterNum)
}

// GetFreeFatEntry finds the first unused cluster. It reports none when the
// first unused FAT entry lies past the end of the data area, since such an
// entry has no data sector behind it.
func (img *Image) GetFreeFatEntry() (uint32, bool) {
	n, ok := img.fat.GetFreeFATEntry()
	if !ok || n-reservedEntries >= img.data.TotalSectors() {
		return 0, false
	}
	return n, true
}

// SetFatEntry writes value into the FAT entry for clusterNum, on both
// mirrored copies.
func (img *Image) SetFatEntry(clusterNum uint32, value uint16) error {
	return img.fat.WriteEntry(clusterNum, value)
}

// WriteDataSector writes data into the data sector belonging to clusterNum.
// data must be exactly SectorSize() bytes.
func (img *Image) WriteDataSector(clusterNum uint32, data []byte) error {
	if clusterNum < reservedEntries {
		return errors.ErrBounds.WithMessage("cluster number below the first valid data cluster")
	}
	return img.data.WriteSector(clusterNum-reservedEntries, data)
}

// ReadDataSector reads the data sector belonging to clusterNum.
func (img *Image) ReadDataSector(clusterNum uint32) ([]byte, error) {
	if clusterNum < reservedEntries {
		return nil, errors.ErrBounds.WithMessage("cluster number below the first valid data cluster")
	}
	return img.data.ReadSector(clusterNum - reservedEntries)
}

// IsValidForwardLink reports whether n names a live cluster a chain can
// continue through, per the data model's "valid forward link" definition.
func IsValidForwardLink(n uint16) bool {
	return n >= 2 && n < 0xFF0
}

// ClusterChain walks the cluster chain starting at first, returning every
// cluster visited followed by the terminating (non-link) FAT value.
func (img *Image) ClusterChain(first uint16) ([]uint16, error) {
	chain := make([]uint16, 0, 8)
	current := first
	for {
		next, err := img.fat.ReadEntry(uint32(current))
		if err != nil {
			return nil, err
		}
		chain = append(chain, current)
		if !IsValidForwardLink(next) {
			chain = append(chain, next)
			return chain, nil
		}
		current = next
	}
}
