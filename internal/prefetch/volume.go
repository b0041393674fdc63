// Package prefetch decodes the volume-information records embedded in
// Windows prefetch files, including the variable-length directory listings
// each record points at.
package prefetch

import (
	"github.com/pkg/errors"

	"exhume/internal/binread"
)

// ErrUnsupportedVersion reports a volume record set whose declared format
// version is not a known generation. Records decoded before the version was
// consulted are still returned; the error is informational, not fatal.
var ErrUnsupportedVersion = errors.New("unsupported volume record version")

// VolumeRecord is one decoded volume-information entry.
type VolumeRecord struct {
	Path                   string   `json:"volume_path"`
	Creation               int64    `json:"volume_creation"`
	Serial                 uint32   `json:"volume_serial"`
	NumberDirectoryStrings uint32   `json:"number_directory_strings"`
	Directories            []string `json:"directories"`

	// Header fields retained for completeness; not needed for recovery.
	pathOffset    uint32
	pathChars     uint32
	fileRefOffset uint32
	fileRefSize   uint32
	dirOffset     uint32
}

// DecodeVolumeRecords decodes count volume records from buf starting at
// offset. Offsets inside each record header are relative to the start of the
// whole record set, not to the current record.
//
// Decoding is partial-success oriented: a read past the end of the buffer or
// an unknown format version stops the walk and returns the records collected
// so far along with the unconsumed remainder of the buffer. Only the
// returned error distinguishes the two conditions; callers must not assume
// completeness.
func DecodeVolumeRecords(buf []byte, offset, count, version uint32) ([]VolumeRecord, []byte, error) {
	records := make([]VolumeRecord, 0, count)

	base, err := binread.New(buf).Seek(int(offset))
	if err != nil {
		return records, nil, err
	}
	cur := base

	for i := uint32(0); i < count; i++ {
		rec, next, err := decodeVolumeRecord(base, cur)
		if err != nil {
			return records, cur.Rest(), err
		}
		records = append(records, rec)
		cur = next

		trailer, ok := TrailerSize(version)
		if !ok {
			return records, cur.Rest(), errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
		}
		if _, cur, err = cur.Take(trailer); err != nil {
			return records, cur.Rest(), err
		}
	}

	return records, cur.Rest(), nil
}

// decodeVolumeRecord reads one fixed header at cur and resolves the two
// variable-length regions it points at, both anchored at base.
func decodeVolumeRecord(base, cur binread.Cursor) (VolumeRecord, binread.Cursor, error) {
	var rec VolumeRecord
	var creation uint64
	var dirCount uint32
	var err error

	if rec.pathOffset, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if rec.pathChars, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if creation, cur, err = cur.Uint64(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if rec.Serial, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if rec.fileRefOffset, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if rec.fileRefSize, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if rec.dirOffset, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}
	if dirCount, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return rec, cur, err
	}

	rec.Creation = binread.FiletimeToUnix(creation)
	rec.NumberDirectoryStrings = dirCount

	pathCur, err := base.Seek(base.Offset() + int(rec.pathOffset))
	if err != nil {
		return rec, cur, err
	}
	if rec.Path, _, err = pathCur.UTF16String(int(rec.pathChars) * 2); err != nil {
		return rec, cur, err
	}

	if rec.Directories, err = decodeDirectories(base, rec.dirOffset, dirCount); err != nil {
		return rec, cur, err
	}

	return rec, cur, nil
}

// decodeDirectories walks the directory-string table: each entry is a 16-bit
// character count, that many UTF-16 code units, then one UTF-16 null
// terminator. The count prefix is local to each entry.
func decodeDirectories(base binread.Cursor, offset, entries uint32) ([]string, error) {
	cur, err := base.Seek(base.Offset() + int(offset))
	if err != nil {
		return nil, err
	}

	directories := make([]string, 0, entries)
	for i := uint32(0); i < entries; i++ {
		var chars uint16
		var dir string

		if chars, cur, err = cur.Uint16(binread.LittleEndian); err != nil {
			return directories, err
		}
		if dir, cur, err = cur.UTF16String(int(chars) * 2); err != nil {
			return directories, err
		}
		// Skip the UTF-16 end of string character.
		if _, cur, err = cur.Take(2); err != nil {
			return directories, err
		}
		directories = append(directories, dir)
	}
	return directories, nil
}
