package fat12

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/go-fat/fat12img/errors"
)

//go:embed geometries.csv
var geometriesRawCSV string

// Geometry is a canonical FAT12 floppy geometry: everything BlankImage needs
// to build a correctly-shaped volume, keyed by a short slug like "1440k".
type Geometry struct {
	Slug              string `csv:"slug"`
	Name              string `csv:"name"`
	BytesPerSector    uint16 `csv:"bytes_per_sector"`
	SectorsPerCluster uint8  `csv:"sectors_per_cluster"`
	ReservedSectors   uint16 `csv:"reserved_sectors"`
	FATCount          uint8  `csv:"fat_count"`
	MaxRoots          uint16 `csv:"max_roots"`
	Sectors           uint32 `csv:"sectors"`
	MediaID           uint8  `csv:"media_id"`
	SectorsPerFAT     uint32 `csv:"sectors_per_fat"`
}

// BIOSParam derives a BPB from this geometry, ready to pass to BlankImage.
func (g Geometry) BIOSParam() BIOSParam {
	return BIOSParam{
		BytesPerSector:    g.BytesPerSector,
		SectorsPerCluster: g.SectorsPerCluster,
		ReservedSectors:   g.ReservedSectors,
		FATCount:          g.FATCount,
		MaxRoots:          g.MaxRoots,
		Sectors:           g.Sectors,
		MediaID:           g.MediaID,
		SectorsPerFAT:     g.SectorsPerFAT,
	}
}

// TotalBytes is the full size of a volume with this geometry.
func (g Geometry) TotalBytes() uint64 {
	return uint64(g.Sectors) * uint64(g.BytesPerSector)
}

var geometries map[string]Geometry

func init() {
	geometries = make(map[string]Geometry)
	reader := strings.NewReader(geometriesRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		if _, exists := geometries[row.Slug]; exists {
			return fmt.Errorf("duplicate geometry slug %q", row.Slug)
		}
		geometries[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// LookupGeometry returns the canonical geometry registered under slug (e.g.
// "1440k" for the classic 3.5in high-density floppy).
func LookupGeometry(slug string) (Geometry, error) {
	geometry, ok := geometries[slug]
	if !ok {
		return Geometry{}, errors.ErrNotFound.WithMessage(
			fmt.Sprintf("no predefined geometry named %q", slug))
	}
	return geometry, nil
}
