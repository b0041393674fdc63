// Package binread provides bounds-checked primitives for decoding Windows
// binary artifact layouts from byte buffers.
package binread

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// ErrShortBuffer signals that a read would run past the end of the buffer.
// Callers should treat it as "stop decoding this record set", not as a fatal
// condition for the whole run.
var ErrShortBuffer = errors.New("insufficient data")

// Endian selects the byte order for integer reads.
type Endian int

const (
	// LittleEndian is the byte order of all on-disk Windows artifact layouts
	// handled by this tool.
	LittleEndian Endian = iota
	BigEndian
)

// Cursor is an immutable view over a byte buffer plus a read position. Every
// read returns the decoded value and a new cursor positioned past it; the
// underlying buffer is never mutated or copied.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a cursor positioned at the start of buf.
func New(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Offset returns the current read position within the buffer.
func (c Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Rest returns the unread portion of the buffer.
func (c Cursor) Rest() []byte {
	return c.buf[c.pos:]
}

// Seek returns a cursor positioned at the absolute offset off within the
// same buffer.
func (c Cursor) Seek(off int) (Cursor, error) {
	if off < 0 || off > len(c.buf) {
		return c, errors.Wrapf(ErrShortBuffer, "seek to %d in %d byte buffer", off, len(c.buf))
	}
	return Cursor{buf: c.buf, pos: off}, nil
}

// Take consumes n bytes and returns them as a subslice of the buffer.
func (c Cursor) Take(n int) ([]byte, Cursor, error) {
	if n < 0 || c.Remaining() < n {
		return nil, c, errors.Wrapf(ErrShortBuffer, "take %d bytes with %d remaining", n, c.Remaining())
	}
	out := c.buf[c.pos : c.pos+n]
	return out, Cursor{buf: c.buf, pos: c.pos + n}, nil
}

// Uint16 consumes two bytes in the given byte order.
func (c Cursor) Uint16(e Endian) (uint16, Cursor, error) {
	raw, next, err := c.Take(2)
	if err != nil {
		return 0, c, err
	}
	if e == BigEndian {
		return binary.BigEndian.Uint16(raw), next, nil
	}
	return binary.LittleEndian.Uint16(raw), next, nil
}

// Uint32 consumes four bytes in the given byte order.
func (c Cursor) Uint32(e Endian) (uint32, Cursor, error) {
	raw, next, err := c.Take(4)
	if err != nil {
		return 0, c, err
	}
	if e == BigEndian {
		return binary.BigEndian.Uint32(raw), next, nil
	}
	return binary.LittleEndian.Uint32(raw), next, nil
}

// Uint64 consumes eight bytes in the given byte order.
func (c Cursor) Uint64(e Endian) (uint64, Cursor, error) {
	raw, next, err := c.Take(8)
	if err != nil {
		return 0, c, err
	}
	if e == BigEndian {
		return binary.BigEndian.Uint64(raw), next, nil
	}
	return binary.LittleEndian.Uint64(raw), next, nil
}

// UTF16String consumes byteLen bytes and decodes them as little-endian
// UTF-16. Decoding is best-effort lossy: invalid code units become the
// replacement rune and the string is cut at the first NUL, since forensic
// input is frequently imperfect.
func (c Cursor) UTF16String(byteLen int) (string, Cursor, error) {
	raw, next, err := c.Take(byteLen)
	if err != nil {
		return "", c, err
	}
	return DecodeUTF16(raw), next, nil
}

// DecodeUTF16 decodes little-endian UTF-16 bytes into a string, dropping an
// odd trailing byte and truncating at the first NUL code unit.
func DecodeUTF16(raw []byte) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(raw[i:i+2]))
	}
	s := string(utf16.Decode(units))
	if i := strings.IndexRune(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// Windows FILETIME counts 100ns ticks since 1601-01-01.
const (
	filetimeTicksPerSecond = 10_000_000
	filetimeEpochDelta     = 11_644_473_600
)

// FiletimeToUnix converts a Windows FILETIME value to seconds since the Unix
// epoch. A zero FILETIME (common in partially written records) maps to zero
// rather than the 1601 epoch offset.
func FiletimeToUnix(ft uint64) int64 {
	if ft == 0 {
		return 0
	}
	return int64(ft/filetimeTicksPerSecond) - filetimeEpochDelta
}
