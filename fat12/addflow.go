package fat12

import (
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/go-fat/fat12img/errors"
)

// AddFile streams source into img under name: it reserves a root directory
// slot, claims one cluster per bytesPerSector chunk of source, links the
// chain, and writes the end-of-chain marker. It does not save img to disk;
// the caller commits with Image.Save once AddFile returns successfully.
//
// If the image runs out of space partway through, every cluster already
// claimed for this call is freed on both FAT copies before returning
// ErrOutOfSpace, so a failed AddFile leaves img equivalent to how it looked
// before the call.
func AddFile(img *Image, source io.Reader, sourceSize int64, name string) error {
	entry, slot, err := img.CreateFileEntry(name, uint32(sourceSize))
	if err != nil {
		return err
	}

	sectorSize := int(img.SectorSize())
	buffer := make([]byte, sectorSize)
	var claimed []uint32
	var previousCluster uint32

	for {
		n, readErr := io.ReadFull(source, buffer)
		if n == 0 {
			break
		}
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			rollback(img, claimed)
			return errors.ErrIO.Wrap(readErr)
		}

		chunk := buffer
		if n < sectorSize {
			chunk = make([]byte, sectorSize)
			copy(chunk, buffer[:n])
		}

		cluster, ok := img.GetFreeFatEntry()
		if !ok {
			if rollbackErr := rollback(img, claimed); rollbackErr != nil {
				return multierror.Append(errors.ErrOutOfSpace.WithMessage("image has no free clusters left"), rollbackErr)
			}
			return errors.ErrOutOfSpace.WithMessage("image has no free clusters left")
		}

		// Mark the cluster used immediately so the next iteration's free scan
		// doesn't hand it out again; linking below overwrites this tentative
		// terminator once the following cluster (if any) is known.
		if err := img.SetFatEntry(cluster, 0xFFF); err != nil {
			rollback(img, claimed)
			return err
		}

		if err := img.WriteDataSector(cluster, chunk); err != nil {
			rollback(img, append(claimed, cluster))
			return err
		}

		if previousCluster == 0 {
			entry.FirstLogicalCluster = uint16(cluster)
		} else if err := img.SetFatEntry(previousCluster, uint16(cluster)); err != nil {
			rollback(img, append(claimed, cluster))
			return err
		}

		claimed = append(claimed, cluster)
		previousCluster = cluster

		if n < sectorSize || readErr == io.EOF {
			break
		}
	}

	// The last claimed cluster already carries the tentative 0xFFF terminator
	// written when it was claimed; nothing further to link.

	return img.SaveFileEntry(entry, slot)
}

// rollback frees every claimed cluster back to 0 on both FAT copies,
// aggregating any errors encountered instead of stopping at the first.
func rollback(img *Image, claimed []uint32) error {
	var result *multierror.Error
	for _, cluster := range claimed {
		if err := img.SetFatEntry(cluster, 0); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
