package fat12

import (
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/go-fat/fat12img/errors"
)

// SectorIO gives sector-addressed read/write access to a flat in-memory image
// buffer, the way a real FAT12 driver would address a block device.
type SectorIO struct {
	stream        io.ReadWriteSeeker
	bytesPerSector uint32
	totalSectors   uint32
}

// NewSectorIO wraps data as a sector-addressed view, bytesPerSector bytes at
// a time. data is not copied; writes through SectorIO mutate it in place.
func NewSectorIO(data []byte, bytesPerSector uint32) (*SectorIO, error) {
	if bytesPerSector == 0 {
		return nil, errors.ErrFormat.WithMessage("bytes_per_sector must be nonzero")
	}
	return &SectorIO{
		stream:         bytesextra.NewReadWriteSeeker(data),
		bytesPerSector: bytesPerSector,
		totalSectors:   uint32(len(data)) / bytesPerSector,
	}, nil
}

// TotalSectors is the number of whole sectors addressable in the image.
func (sio *SectorIO) TotalSectors() uint32 {
	return sio.totalSectors
}

func (sio *SectorIO) seekToSector(n uint32) error {
	if n >= sio.totalSectors {
		return errors.ErrBounds.WithMessage("sector index out of range")
	}
	_, err := sio.stream.Seek(int64(n)*int64(sio.bytesPerSector), io.SeekStart)
	if err != nil {
		return errors.ErrIO.Wrap(err)
	}
	return nil
}

// ReadSector returns a freshly allocated copy of sector n.
func (sio *SectorIO) ReadSector(n uint32) ([]byte, error) {
	if err := sio.seekToSector(n); err != nil {
		return nil, err
	}
	buf := make([]byte, sio.bytesPerSector)
	if _, err := io.ReadFull(sio.stream, buf); err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}
	return buf, nil
}

// ReadSectors returns count sectors starting at n, concatenated.
func (sio *SectorIO) ReadSectors(n, count uint32) ([]byte, error) {
	if count == 0 {
		return nil, nil
	}
	if n+count > sio.totalSectors {
		return nil, errors.ErrBounds.WithMessage("sector range out of range")
	}
	if err := sio.seekToSector(n); err != nil {
		return nil, err
	}
	buf := make([]byte, uint64(count)*uint64(sio.bytesPerSector))
	if _, err := io.ReadFull(sio.stream, buf); err != nil {
		return nil, errors.ErrIO.Wrap(err)
	}
	return buf, nil
}

// WriteSector writes data to sector n. data must be exactly bytesPerSector
// long.
func (sio *SectorIO) WriteSector(n uint32, data []byte) error {
	if uint32(len(data)) != sio.bytesPerSector {
		return errors.ErrFormat.WithMessage("sector write buffer has the wrong length")
	}
	if err := sio.seekToSector(n); err != nil {
		return err
	}
	if _, err := sio.stream.Write(data); err != nil {
		return errors.ErrIO.Wrap(err)
	}
	return nil
}
