package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fat/fat12img/fat12"
)

func TestSectorIOReadWriteRoundTrip(t *testing.T) {
	data := make([]byte, 512*4)
	sio, err := fat12.NewSectorIO(data, 512)
	require.NoError(t, err)
	assert.EqualValues(t, 4, sio.TotalSectors())

	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, sio.WriteSector(2, payload))

	got, err := sio.ReadSector(2)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	untouched, err := sio.ReadSector(0)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 512), untouched)
}

func TestSectorIOReadSectorsSpansMultiple(t *testing.T) {
	data := make([]byte, 512*4)
	sio, err := fat12.NewSectorIO(data, 512)
	require.NoError(t, err)

	one := make([]byte, 512)
	one[0] = 1
	two := make([]byte, 512)
	two[0] = 2
	require.NoError(t, sio.WriteSector(1, one))
	require.NoError(t, sio.WriteSector(2, two))

	got, err := sio.ReadSectors(1, 2)
	require.NoError(t, err)
	assert.Equal(t, byte(1), got[0])
	assert.Equal(t, byte(2), got[512])
}

func TestSectorIORejectsOutOfRange(t *testing.T) {
	data := make([]byte, 512*2)
	sio, err := fat12.NewSectorIO(data, 512)
	require.NoError(t, err)

	_, err = sio.ReadSector(5)
	assert.Error(t, err)

	err = sio.WriteSector(5, make([]byte, 512))
	assert.Error(t, err)
}

func TestSectorIORejectsWrongSizedBuffer(t *testing.T) {
	data := make([]byte, 512*2)
	sio, err := fat12.NewSectorIO(data, 512)
	require.NoError(t, err)

	assert.Error(t, sio.WriteSector(0, make([]byte, 100)))
}

func TestSectorIORejectsZeroBytesPerSector(t *testing.T) {
	_, err := fat12.NewSectorIO(make([]byte, 16), 0)
	assert.Error(t, err)
}
