// Package bytecodec provides little-endian integer decode/encode helpers over
// fixed byte windows, and bounds-checked slice copies. Every multi-byte field
// in a FAT12 boot sector or directory entry is read and written through this
// package so offsets are named once instead of being re-derived at each call
// site, and so a too-short window always fails loudly instead of panicking or
// silently truncating.
package bytecodec

import (
	"github.com/noxer/bytewriter"

	"github.com/go-fat/fat12img/errors"
)

func needBytes(data []byte, offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(data) {
		return errors.ErrBounds.WithMessage("need more bytes than are available in window")
	}
	return nil
}

// Uint8 reads a single byte at offset.
func Uint8(data []byte, offset int) (uint8, error) {
	if err := needBytes(data, offset, 1); err != nil {
		return 0, err
	}
	return data[offset], nil
}

// PutUint8 writes a single byte at offset.
func PutUint8(data []byte, offset int, value uint8) error {
	if err := needBytes(data, offset, 1); err != nil {
		return err
	}
	return writeAt(data, offset, []byte{value})
}

// Uint16LE reads a little-endian 16-bit integer at offset.
func Uint16LE(data []byte, offset int) (uint16, error) {
	if err := needBytes(data, offset, 2); err != nil {
		return 0, err
	}
	return uint16(data[offset]) | uint16(data[offset+1])<<8, nil
}

// PutUint16LE writes a little-endian 16-bit integer at offset.
func PutUint16LE(data []byte, offset int, value uint16) error {
	if err := needBytes(data, offset, 2); err != nil {
		return err
	}
	return writeAt(data, offset, []byte{byte(value), byte(value >> 8)})
}

// Uint32LE reads a little-endian 32-bit integer at offset.
func Uint32LE(data []byte, offset int) (uint32, error) {
	if err := needBytes(data, offset, 4); err != nil {
		return 0, err
	}
	return uint32(data[offset]) |
		uint32(data[offset+1])<<8 |
		uint32(data[offset+2])<<16 |
		uint32(data[offset+3])<<24, nil
}

// PutUint32LE writes a little-endian 32-bit integer at offset.
func PutUint32LE(data []byte, offset int, value uint32) error {
	if err := needBytes(data, offset, 4); err != nil {
		return err
	}
	return writeAt(data, offset, []byte{
		byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24),
	})
}

// writeAt writes payload into data starting at offset using a bytewriter
// bounded to the remainder of data, so a logic error that miscomputes a width
// surfaces as ErrBounds rather than as a panic or a write that clobbers
// neighboring fields.
func writeAt(data []byte, offset int, payload []byte) error {
	w := bytewriter.New(data[offset:])
	n, err := w.Write(payload)
	if err != nil || n != len(payload) {
		return errors.ErrBounds.WithMessage("short write into byte window")
	}
	return nil
}

// CopyFrom returns a copy of data[offset : offset+width].
func CopyFrom(data []byte, offset, width int) ([]byte, error) {
	if err := needBytes(data, offset, width); err != nil {
		return nil, err
	}
	out := make([]byte, width)
	copy(out, data[offset:offset+width])
	return out, nil
}

// CopyInto copies src into data starting at offset. len(src) bytes are
// written; it is an error for that range to fall outside data.
func CopyInto(data []byte, offset int, src []byte) error {
	if err := needBytes(data, offset, len(src)); err != nil {
		return err
	}
	return writeAt(data, offset, src)
}
