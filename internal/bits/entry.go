package bits

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"exhume/internal/binread"
)

// Serialized job and file entries share one delimited layout across all
// three sources: the Blob cells of the ESE Jobs/Files tables, the legacy
// flat queue files, and the raw byte scan used for carving.
//
//	entry      = marker(16) body
//	job body   = jobGUID(16) fileGUID(16) type(u32) priority(u32) state(u32)
//	             flags(u32) created(u64) modified(u64) completed(u64)
//	             expiration(u64) errorCount(u32) transientErrors(u32)
//	             timeout(u32) retryDelay(u32) ownerSID(str) name(str)
//	             description(str) command(str) arguments(str) httpMethod(str)
//	             targetPath(str) acls(list) additionalSIDs(list)
//	file body  = fileGUID(16) filesTransferred(u32) downloadBytes(u64)
//	             transferBytes(u64) url(str) fullPath(str) filename(str)
//	             tmpPath(str) volume(str)
//	str        = charCount(u32) UTF-16LE code units
//	list       = count(u32) str...
//
// All integers little-endian, timestamps FILETIME. The 16 byte type markers
// delimit entries so a signature scan can relocate them after the containing
// index structures have been deleted.
var (
	queueMarker = []byte{0x13, 0xf7, 0x2b, 0x9f, 0x52, 0x33, 0x4c, 0x81, 0x91, 0xd2, 0x86, 0x05, 0x33, 0x7e, 0x57, 0x8a}
	jobMarker   = []byte{0x8e, 0x1a, 0xfb, 0x3d, 0x80, 0x6d, 0x44, 0xd4, 0xa3, 0x0d, 0x67, 0x7b, 0x48, 0xd2, 0x6a, 0x81}
	fileMarker  = []byte{0xa1, 0x56, 0x09, 0xe2, 0x3f, 0x7c, 0x46, 0x1d, 0xb0, 0x0c, 0x2e, 0x3f, 0x4a, 0x91, 0x55, 0xce}
)

// Sanity bounds applied while decoding. Real queue entries stay far below
// them; bytes that violate them are noise, not a record.
const (
	maxFieldChars  = 4096
	maxListEntries = 64
)

var errBadMarker = errors.New("entry marker mismatch")

// expectMarker consumes the 16 byte type marker at cur.
func expectMarker(cur binread.Cursor, marker []byte) (binread.Cursor, error) {
	raw, next, err := cur.Take(len(marker))
	if err != nil {
		return cur, err
	}
	for i := range marker {
		if raw[i] != marker[i] {
			return cur, errBadMarker
		}
	}
	return next, nil
}

// readGUID consumes a Windows on-disk GUID (first three fields stored
// little-endian) and formats it canonically.
func readGUID(cur binread.Cursor) (string, binread.Cursor, error) {
	raw, next, err := cur.Take(16)
	if err != nil {
		return "", cur, err
	}
	var b [16]byte
	b[0], b[1], b[2], b[3] = raw[3], raw[2], raw[1], raw[0]
	b[4], b[5] = raw[5], raw[4]
	b[6], b[7] = raw[7], raw[6]
	copy(b[8:], raw[8:16])
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		return "", cur, err
	}
	return id.String(), next, nil
}

// readString consumes a character-count prefixed UTF-16 string field.
func readString(cur binread.Cursor) (string, binread.Cursor, error) {
	chars, next, err := cur.Uint32(binread.LittleEndian)
	if err != nil {
		return "", cur, err
	}
	if chars > maxFieldChars {
		return "", cur, errors.Errorf("implausible string length %d", chars)
	}
	return next.UTF16String(int(chars) * 2)
}

// readStringList consumes a count prefixed sequence of string fields.
func readStringList(cur binread.Cursor) ([]string, binread.Cursor, error) {
	count, next, err := cur.Uint32(binread.LittleEndian)
	if err != nil {
		return nil, cur, err
	}
	if count > maxListEntries {
		return nil, cur, errors.Errorf("implausible list length %d", count)
	}
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var s string
		if s, next, err = readString(next); err != nil {
			return out, cur, err
		}
		out = append(out, s)
	}
	return out, next, nil
}

// decodeJobEntry decodes one serialized job entry with cur positioned at its
// marker. On error the partially filled record is still returned so callers
// tolerating malformed cells can keep whatever decoded.
func decodeJobEntry(cur binread.Cursor) (JobRecord, binread.Cursor, error) {
	var job JobRecord

	cur, err := expectMarker(cur, jobMarker)
	if err != nil {
		return job, cur, err
	}
	if job.JobID, cur, err = readGUID(cur); err != nil {
		return job, cur, err
	}
	if job.FileID, cur, err = readGUID(cur); err != nil {
		return job, cur, err
	}

	var jobType, priority, state, flags uint32
	if jobType, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if priority, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if state, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if flags, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	job.JobType = jobTypeName(jobType)
	job.Priority = priorityName(priority)
	job.JobState = jobStateName(state)
	job.Flags = flagNames(flags)

	times := make([]int64, 4)
	for i := range times {
		var ft uint64
		if ft, cur, err = cur.Uint64(binread.LittleEndian); err != nil {
			return job, cur, err
		}
		times[i] = binread.FiletimeToUnix(ft)
	}
	job.Created, job.Modified, job.Completed, job.Expiration = times[0], times[1], times[2], times[3]

	if job.ErrorCount, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if job.TransientErrorCount, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if job.Timeout, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}
	if job.RetryDelay, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return job, cur, err
	}

	if job.OwnerSID, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.JobName, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.JobDescription, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.JobCommand, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.JobArguments, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.HTTPMethod, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.TargetPath, cur, err = readString(cur); err != nil {
		return job, cur, err
	}
	if job.ACLs, cur, err = readStringList(cur); err != nil {
		return job, cur, err
	}
	if job.AdditionalSIDs, cur, err = readStringList(cur); err != nil {
		return job, cur, err
	}

	return job, cur, nil
}

// decodeFileEntry decodes one serialized file entry with cur positioned at
// its marker.
func decodeFileEntry(cur binread.Cursor) (FileRecord, binread.Cursor, error) {
	var file FileRecord

	cur, err := expectMarker(cur, fileMarker)
	if err != nil {
		return file, cur, err
	}
	if file.FileID, cur, err = readGUID(cur); err != nil {
		return file, cur, err
	}
	if file.FilesTransferred, cur, err = cur.Uint32(binread.LittleEndian); err != nil {
		return file, cur, err
	}
	if file.DownloadBytesSize, cur, err = cur.Uint64(binread.LittleEndian); err != nil {
		return file, cur, err
	}
	if file.TransferBytesSize, cur, err = cur.Uint64(binread.LittleEndian); err != nil {
		return file, cur, err
	}
	if file.URL, cur, err = readString(cur); err != nil {
		return file, cur, err
	}
	if file.FullPath, cur, err = readString(cur); err != nil {
		return file, cur, err
	}
	if file.Filename, cur, err = readString(cur); err != nil {
		return file, cur, err
	}
	if file.TmpFullPath, cur, err = readString(cur); err != nil {
		return file, cur, err
	}
	if file.Volume, cur, err = readString(cur); err != nil {
		return file, cur, err
	}

	return file, cur, nil
}
