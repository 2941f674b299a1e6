package fat12

import (
	"fmt"

	"github.com/go-fat/fat12img/errors"
	"github.com/go-fat/fat12img/internal/bytecodec"
)

// bootSectorLen is the number of bytes BIOSParam reads from the start of a
// boot sector.
const bootSectorLen = 512

// BIOSParam is the geometry record extracted from a FAT12 boot sector. Every
// field is named and offset exactly as the on-disk BPB, per the byte codec's
// no-struct-reinterpretation rule.
type BIOSParam struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	MaxRoots          uint16
	Sectors           uint32
	MediaID           uint8
	SectorsPerFAT     uint32
}

// NewBIOSParam returns an empty BPB with the conventional FATCount of 2, for
// building blank images.
func NewBIOSParam() BIOSParam {
	return BIOSParam{FATCount: 2}
}

// ParseBIOSParam reads a 512-byte boot sector starting at offset within data
// and decodes the BPB fields at their fixed offsets.
func ParseBIOSParam(data []byte, offset int) (BIOSParam, error) {
	if offset < 0 || offset+bootSectorLen > len(data) {
		return BIOSParam{}, errors.ErrParse.WithMessage(
			"boot sector source is shorter than 512 bytes")
	}
	sector := data[offset : offset+bootSectorLen]

	bpb := BIOSParam{}
	var err error

	if bpb.BytesPerSector, err = bytecodec.Uint16LE(sector, 11); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if bpb.SectorsPerCluster, err = bytecodec.Uint8(sector, 13); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if bpb.ReservedSectors, err = bytecodec.Uint16LE(sector, 14); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if bpb.FATCount, err = bytecodec.Uint8(sector, 16); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if bpb.MaxRoots, err = bytecodec.Uint16LE(sector, 17); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}

	smallSectors, err := bytecodec.Uint16LE(sector, 19)
	if err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if smallSectors != 0 {
		bpb.Sectors = uint32(smallSectors)
	} else {
		if bpb.Sectors, err = bytecodec.Uint32LE(sector, 32); err != nil {
			return BIOSParam{}, errors.ErrParse.Wrap(err)
		}
	}

	if bpb.MediaID, err = bytecodec.Uint8(sector, 21); err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}

	smallSectorsPerFAT, err := bytecodec.Uint16LE(sector, 22)
	if err != nil {
		return BIOSParam{}, errors.ErrParse.Wrap(err)
	}
	if smallSectorsPerFAT != 0 {
		bpb.SectorsPerFAT = uint32(smallSectorsPerFAT)
	} else {
		if bpb.SectorsPerFAT, err = bytecodec.Uint32LE(sector, 36); err != nil {
			return BIOSParam{}, errors.ErrParse.Wrap(err)
		}
	}

	return bpb, nil
}

// Len is the reported length of the volume in bytes.
func (bpb BIOSParam) Len() uint64 {
	return uint64(bpb.Sectors) * uint64(bpb.BytesPerSector)
}

// Clusters is the reported number of data clusters in the volume. It returns
// 0, rather than dividing by zero, when SectorsPerCluster is 0 — malformed
// geometry must not crash the process.
func (bpb BIOSParam) Clusters() uint32 {
	if bpb.SectorsPerCluster == 0 {
		return 0
	}
	return bpb.Sectors / uint32(bpb.SectorsPerCluster)
}

// Validate rejects geometry that cannot describe a real FAT12 volume: a zero
// or non-power-of-two sector size, a sectors-per-cluster that isn't a power of
// two, or fewer than one FAT copy.
func (bpb BIOSParam) Validate() error {
	switch bpb.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return errors.ErrParse.WithMessage(fmt.Sprintf(
			"bytes_per_sector must be 512, 1024, 2048, or 4096, got %d", bpb.BytesPerSector))
	}

	if bpb.SectorsPerCluster == 0 || (bpb.SectorsPerCluster&(bpb.SectorsPerCluster-1)) != 0 {
		return errors.ErrParse.WithMessage(fmt.Sprintf(
			"sectors_per_cluster must be a power of two, got %d", bpb.SectorsPerCluster))
	}

	if bpb.FATCount < 1 {
		return errors.ErrParse.WithMessage("fat_count must be at least 1")
	}

	return nil
}
