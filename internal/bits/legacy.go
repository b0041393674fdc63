package bits

import (
	"bytes"

	"github.com/pkg/errors"

	"exhume/internal/binread"
)

// ErrNotQueueFile reports a buffer that does not start with the legacy queue
// header marker.
var ErrNotQueueFile = errors.New("missing legacy queue header")

// DecodeLegacyBuffer decodes job and file entries from a legacy flat queue
// file: a queue header (marker plus an informational entry count) followed by
// sequentially laid out delimited entries.
//
// Entries are decoded until the buffer is exhausted or bytes no longer look
// like an entry; a structural error truncates the result to the records
// decoded so far rather than failing. Legacy files carry trailing slack, so
// unrecognized trailing bytes are normal.
func DecodeLegacyBuffer(buf []byte) ([]JobRecord, []FileRecord, error) {
	jobs := []JobRecord{}
	files := []FileRecord{}

	if !bytes.HasPrefix(buf, queueMarker) {
		return jobs, files, ErrNotQueueFile
	}

	cur := binread.New(buf)
	cur, err := expectMarker(cur, queueMarker)
	if err != nil {
		return jobs, files, err
	}
	// Declared entry count; informational only, the walk below is delimited
	// by the entry markers themselves.
	if _, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return jobs, files, ErrNotQueueFile
	}

	for cur.Remaining() >= len(jobMarker) {
		rest := cur.Rest()
		switch {
		case bytes.HasPrefix(rest, jobMarker):
			job, next, err := decodeJobEntry(cur)
			if err != nil {
				return jobs, files, nil
			}
			jobs = append(jobs, job)
			cur = next
		case bytes.HasPrefix(rest, fileMarker):
			file, next, err := decodeFileEntry(cur)
			if err != nil {
				return jobs, files, nil
			}
			files = append(files, file)
			cur = next
		default:
			// Slack space after the last entry.
			return jobs, files, nil
		}
	}

	return jobs, files, nil
}
