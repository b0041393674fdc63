package prefetch

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPrefetchHeader(version uint32, name string, volOffset, volCount uint32) []byte {
	buf := make([]byte, 200)
	binary.LittleEndian.PutUint32(buf[0:], version)
	copy(buf[4:], "SCCA")
	for i, r := range name {
		binary.LittleEndian.PutUint16(buf[executableNameOffset+i*2:], uint16(r))
	}
	binary.LittleEndian.PutUint32(buf[volumeInfoOffset:], volOffset)
	binary.LittleEndian.PutUint32(buf[volumeCountOffset:], volCount)
	return buf
}

func TestReadHeader(t *testing.T) {
	buf := buildPrefetchHeader(VersionWin10, "NOTEPAD.EXE", 0x2000, 2)

	hdr, err := ReadHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(VersionWin10), hdr.Version)
	assert.Equal(t, "NOTEPAD.EXE", hdr.ExecutableName)
	assert.Equal(t, uint32(0x2000), hdr.VolumeOffset)
	assert.Equal(t, uint32(2), hdr.VolumeCount)
}

func TestReadHeaderCompressed(t *testing.T) {
	_, err := ReadHeader([]byte{'M', 'A', 'M', 0x04, 0x10, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, ErrCompressed)
}

func TestReadHeaderNotPrefetch(t *testing.T) {
	_, err := ReadHeader([]byte("not a prefetch file at all"))
	require.ErrorIs(t, err, ErrNotPrefetch)

	_, err = ReadHeader(nil)
	require.ErrorIs(t, err, ErrNotPrefetch)
}

func TestReadHeaderUnknownVersion(t *testing.T) {
	buf := buildPrefetchHeader(17, "OLD.EXE", 0x1000, 1)
	_, err := ReadHeader(buf)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}
