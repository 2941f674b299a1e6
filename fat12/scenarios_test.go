package fat12_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fat/fat12img/fat12"
)

// TestScenarioEmptyCanonicalFloppyListsZeroFiles covers spec scenario 1: a
// blank 1.44 MB image lists no files.
func TestScenarioEmptyCanonicalFloppyListsZeroFiles(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)
	assert.Empty(t, img.ListEntries())
	assert.Equal(t, "has no label", img.VolumeLabel())
}

// TestScenarioReadmeChainTerminatesAtFour covers spec scenario 2: a chain
// 2->3->4 with end-of-chain at 4 reports exactly that and the 0xFFF sentinel.
func TestScenarioReadmeChainTerminatesAtFour(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)

	require.NoError(t, img.SetFatEntry(2, 3))
	require.NoError(t, img.SetFatEntry(3, 4))
	require.NoError(t, img.SetFatEntry(4, 0xFFF))

	entry := fat12.NewRootEntry()
	require.NoError(t, entry.SetFilename("README.TXT"))
	entry.SetSize(1200)
	entry.FirstLogicalCluster = 2
	require.NoError(t, img.SaveFileEntry(entry, 0))

	found, err := img.GetFileEntry("README.TXT")
	require.NoError(t, err)
	chain, err := img.ClusterChain(found.FirstLogicalCluster)
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 3, 4, 0xFFF}, chain)
}

// TestScenarioAddSevenHundredBytesAllocatesTwoClusters covers spec scenario 3.
func TestScenarioAddSevenHundredBytesAllocatesTwoClusters(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)

	content := bytes.Repeat([]byte("x"), 700)
	require.NoError(t, fat12.AddFile(img, bytes.NewReader(content), int64(len(content)), "HELLO.TXT"))

	path := filepath.Join(t.TempDir(), "disk.img")
	saveWithBootSector(t, img, path)

	reloaded, err := fat12.LoadImage(path)
	require.NoError(t, err)

	entry, err := reloaded.GetFileEntry("HELLO.TXT")
	require.NoError(t, err)
	assert.EqualValues(t, 700, entry.FileSize)

	chain, err := reloaded.ClusterChain(entry.FirstLogicalCluster)
	require.NoError(t, err)
	require.Len(t, chain, 3) // 2 data clusters + terminator

	var data []byte
	for _, cluster := range chain[:2] {
		sector, err := reloaded.ReadDataSector(uint32(cluster))
		require.NoError(t, err)
		data = append(data, sector...)
	}
	assert.Equal(t, content, data[:700])
}

// TestScenarioAddWithNoFreeSlotLeavesImageUnchanged covers spec scenario 4.
func TestScenarioAddWithNoFreeSlotLeavesImageUnchanged(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)

	for i := 0; i < 224; i++ {
		entry := fat12.NewRootEntry()
		require.NoError(t, entry.SetFilename(fileNameForSlot(i)))
		require.NoError(t, img.SaveFileEntry(entry, i))
	}

	before, err := img.RootEntriesAll()
	require.NoError(t, err)

	err = fat12.AddFile(img, bytes.NewReader([]byte("x")), 1, "NEWFILE.TXT")
	assert.Error(t, err)

	after, err := img.RootEntriesAll()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func fileNameForSlot(i int) string {
	digits := [8]byte{'F', 'I', 'L', 'E', '0', '0', '0', '0'}
	digits[4] = byte('0' + (i/1000)%10)
	digits[5] = byte('0' + (i/100)%10)
	digits[6] = byte('0' + (i/10)%10)
	digits[7] = byte('0' + i%10)
	return string(digits[:]) + ".TXT"
}

// TestScenarioDeletedThenTerminatorListsZeroFiles covers spec scenario 5.
func TestScenarioDeletedThenTerminatorListsZeroFiles(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)

	deleted := fat12.NewRootEntry()
	require.NoError(t, deleted.SetFilename("GONE.TXT"))
	deleted.Filename[0] = 0xE5
	require.NoError(t, img.SaveFileEntry(deleted, 0))

	assert.Empty(t, img.ListEntries())
}

// TestScenarioDetailStopsAtBadCluster covers spec scenario 6.
func TestScenarioDetailStopsAtBadCluster(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)
	require.NoError(t, img.SetFatEntry(2, 0xFF7))

	chain, err := img.ClusterChain(2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 0xFF7}, chain)
}

// TestScenarioRoundTripGeometryIsByteIdenticalAfterReload covers the
// round-trip-geometry invariant: load(save(load(I))) == load(I).
func TestScenarioRoundTripGeometryIsByteIdenticalAfterReload(t *testing.T) {
	img, err := fat12.BlankImageFromGeometry("1440k")
	require.NoError(t, err)
	entry, slot, err := img.CreateFileEntry("A.TXT", 3)
	require.NoError(t, err)
	require.NoError(t, img.SaveFileEntry(entry, slot))

	path := filepath.Join(t.TempDir(), "disk.img")
	saveWithBootSector(t, img, path)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := fat12.LoadImage(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Save(path))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
