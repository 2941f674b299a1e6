package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fat/fat12img/fat12"
)

func TestNewRootEntryIsSpacePadded(t *testing.T) {
	entry := fat12.NewRootEntry()
	for _, b := range entry.Filename {
		assert.EqualValues(t, ' ', b)
	}
	for _, b := range entry.Extension {
		assert.EqualValues(t, ' ', b)
	}
	assert.False(t, entry.RestAreFree())
}

func TestSetFilenameThenFilenameRoundTrip(t *testing.T) {
	// Round-trip only holds for fully-specified 8.3 names: the 3-byte
	// extension field is never trimmed on decode (see RootEntry.Filename),
	// so a short extension would come back padded with trailing spaces.
	cases := []string{"README.TXT", "A.TXT", "HELLO.TXT", "LONGNAME.COM", "VOLUME.LAB"}
	for _, name := range cases {
		entry := fat12.NewRootEntry()
		require.NoError(t, entry.SetFilename(name))

		got, err := entry.Filename()
		require.NoError(t, err)
		assert.Equal(t, name, got, "round-trip for %q", name)
	}
}

func TestSetFilenameLowercasesAreUppercased(t *testing.T) {
	entry := fat12.NewRootEntry()
	require.NoError(t, entry.SetFilename("hello.txt"))

	got, err := entry.Filename()
	require.NoError(t, err)
	assert.Equal(t, "HELLO.TXT", got)
}

func TestSetFilenameRejectsNoDot(t *testing.T) {
	entry := fat12.NewRootEntry()
	assert.Error(t, entry.SetFilename("HELLOTXT"))
}

func TestSetFilenameRejectsTooLongName(t *testing.T) {
	entry := fat12.NewRootEntry()
	assert.Error(t, entry.SetFilename("LONGNAME1.TXT"))
}

func TestSetFilenameRejectsTooLongExtension(t *testing.T) {
	entry := fat12.NewRootEntry()
	assert.Error(t, entry.SetFilename("HELLO.TEXT"))
}

func TestAttributeIndependence(t *testing.T) {
	entry := fat12.NewRootEntry()
	entry.SetArchive(true)
	before := entry.Attrs

	entry.SetReadOnly(true)
	assert.True(t, entry.IsReadOnly())
	assert.True(t, entry.IsArchive(), "setting read-only must not clear archive")

	entry.SetReadOnly(false)
	assert.False(t, entry.IsReadOnly())
	assert.Equal(t, before, entry.Attrs, "clearing read-only must restore prior byte")
}

func TestIsFreeAndRestAreFree(t *testing.T) {
	deleted := fat12.NewRootEntry()
	deleted.Filename[0] = 0xE5
	assert.True(t, deleted.IsFree())
	assert.False(t, deleted.RestAreFree())

	terminator := fat12.NewRootEntry()
	terminator.Filename[0] = 0x00
	assert.True(t, terminator.IsFree())
	assert.True(t, terminator.RestAreFree())

	live := fat12.NewRootEntry()
	require.NoError(t, live.SetFilename("A.B"))
	assert.False(t, live.IsFree())
}

func TestRootEntryByteRoundTrip(t *testing.T) {
	entry := fat12.NewRootEntry()
	require.NoError(t, entry.SetFilename("README.TXT"))
	entry.SetSize(1200)
	entry.FirstLogicalCluster = 2
	entry.SetArchive(true)

	parsed, err := fat12.ParseRootEntry(entry.Bytes())
	require.NoError(t, err)
	assert.Equal(t, entry, parsed)
}

func TestRootEntryBytesIs32(t *testing.T) {
	entry := fat12.NewRootEntry()
	assert.Len(t, entry.Bytes(), fat12.RootEntrySize)
}

func TestFilenameFullNeverFails(t *testing.T) {
	entry := fat12.NewRootEntry()
	entry.Filename[0] = 0xE5
	entry.Extension[0] = 0xFF
	assert.NotPanics(t, func() { _ = entry.FilenameFull() })
}
