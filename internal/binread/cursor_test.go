package binread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}
	cur := New(buf)

	v16, cur, err := cur.Uint16(LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)

	v32, cur, err := cur.Uint32(LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x06050403), v32)
	assert.Equal(t, 6, cur.Offset())
	assert.Equal(t, 4, cur.Remaining())

	raw, cur, err := cur.Take(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x08, 0x09, 0x0a}, raw)
	assert.Equal(t, 0, cur.Remaining())
}

func TestCursorBigEndian(t *testing.T) {
	cur := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	v64, _, err := cur.Uint64(BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v64)
}

func TestCursorShortBuffer(t *testing.T) {
	cur := New([]byte{0x01, 0x02})

	_, _, err := cur.Uint32(LittleEndian)
	require.ErrorIs(t, err, ErrShortBuffer)

	// A failed read must not advance the returned cursor.
	_, after, err := cur.Take(5)
	require.ErrorIs(t, err, ErrShortBuffer)
	assert.Equal(t, 0, after.Offset())

	_, err = cur.Seek(3)
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestCursorImmutable(t *testing.T) {
	buf := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	cur := New(buf)

	_, _, err := cur.Uint32(LittleEndian)
	require.NoError(t, err)

	// Reading through the original cursor again yields identical results.
	again, _, err := cur.Uint32(LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xddccbbaa), again)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd}, buf)
}

func TestUTF16String(t *testing.T) {
	// "AB" in UTF-16LE.
	cur := New([]byte{0x41, 0x00, 0x42, 0x00})
	s, _, err := cur.UTF16String(4)
	require.NoError(t, err)
	assert.Equal(t, "AB", s)
}

func TestDecodeUTF16Lossy(t *testing.T) {
	// Unpaired high surrogate decodes to the replacement rune instead of
	// failing.
	s := DecodeUTF16([]byte{0x00, 0xd8, 0x41, 0x00})
	assert.Equal(t, "�A", s)

	// Truncate at the first NUL.
	assert.Equal(t, "A", DecodeUTF16([]byte{0x41, 0x00, 0x00, 0x00, 0x42, 0x00}))

	// Odd trailing byte is dropped.
	assert.Equal(t, "A", DecodeUTF16([]byte{0x41, 0x00, 0x42}))
}

func TestFiletimeToUnix(t *testing.T) {
	// Creation timestamp from a real prefetch volume record.
	assert.Equal(t, int64(1599200033), FiletimeToUnix(0x01d6828290579d13))
	assert.Equal(t, int64(0), FiletimeToUnix(0))
}
