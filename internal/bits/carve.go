package bits

import (
	"bytes"

	"exhume/internal/binread"
)

// CarveResult holds records recovered by signature scan. Merged is populated
// only for the legacy generation, where a file entry physically adjacent to
// a job entry can be paired positionally; carved job and file lists are
// never key-joined because the relational link is not reconstructible once
// the authoritative index is gone.
type CarveResult struct {
	Merged []Entry
	Jobs   []JobRecord
	Files  []FileRecord
}

// Plausible FILETIME-derived timestamps: zero (never set) or between 1990
// and 2100. Anything else is treated as noise that happened to follow a
// marker collision.
const (
	minPlausibleUnix = 631152000
	maxPlausibleUnix = 4102444800
)

// Carve scans raw bytes for recoverable job and file entries without relying
// on any index or table of contents, since that index is exactly what was
// deleted. Carving is speculative by contract: it never fails, returning an
// empty result at worst.
func Carve(buf []byte, legacy bool) (result CarveResult) {
	result = CarveResult{Merged: []Entry{}, Jobs: []JobRecord{}, Files: []FileRecord{}}

	// Carving must never block or fail a collection run.
	defer func() {
		if r := recover(); r != nil {
			result = CarveResult{Merged: []Entry{}, Jobs: []JobRecord{}, Files: []FileRecord{}}
		}
	}()

	type hit struct {
		job        JobRecord
		file       FileRecord
		isJob      bool
		start, end int
	}
	hits := []hit{}

	cur := binread.New(buf)
	pos := 0
	for pos < len(buf) {
		ji := bytes.Index(buf[pos:], jobMarker)
		fi := bytes.Index(buf[pos:], fileMarker)
		next, isJob := ji, true
		if next < 0 || (fi >= 0 && fi < next) {
			next, isJob = fi, false
		}
		if next < 0 {
			break
		}
		start := pos + next

		at, err := cur.Seek(start)
		if err != nil {
			break
		}
		if isJob {
			job, after, err := decodeJobEntry(at)
			if err == nil && plausibleJob(job) {
				hits = append(hits, hit{job: job, isJob: true, start: start, end: after.Offset()})
				pos = after.Offset()
				continue
			}
		} else {
			file, after, err := decodeFileEntry(at)
			if err == nil && plausibleFile(file) {
				hits = append(hits, hit{file: file, start: start, end: after.Offset()})
				pos = after.Offset()
				continue
			}
		}
		// The marker bytes occurred inside other data; keep scanning past
		// them.
		pos = start + 1
	}

	for i := 0; i < len(hits); i++ {
		h := hits[i]
		if h.isJob {
			// In the legacy layout a job's file entry is written directly
			// after it; adjacency is the only trustworthy link for carved
			// data.
			if legacy && i+1 < len(hits) && !hits[i+1].isJob && hits[i+1].start == h.end {
				result.Merged = append(result.Merged, mergeEntry(h.job, hits[i+1].file, "", true))
				i++
				continue
			}
			result.Jobs = append(result.Jobs, h.job)
			continue
		}
		result.Files = append(result.Files, h.file)
	}

	return result
}

func plausibleTime(t int64) bool {
	return t == 0 || (t >= minPlausibleUnix && t <= maxPlausibleUnix)
}

// plausibleJob rejects marker collisions whose decoded fields fall outside
// the ranges real queue entries occupy.
func plausibleJob(job JobRecord) bool {
	return plausibleTime(job.Created) &&
		plausibleTime(job.Modified) &&
		plausibleTime(job.Completed) &&
		plausibleTime(job.Expiration) &&
		job.JobID != ""
}

func plausibleFile(file FileRecord) bool {
	return file.FileID != ""
}
