package bits

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"exhume/internal/tableengine"
	"exhume/internal/winutil"
)

// Decoder orchestrates per-generation decoding. Its collaborators are
// injectable for testing: the table engine, the raw reader that bypasses
// handle locks, and SID-to-username resolution.
type Decoder struct {
	ExtractTables  func(path string, tables []string) (map[string][]*ordereddict.Dict, error)
	ReadRaw        func(path string) ([]byte, error)
	LookupUsername func(sid string) (string, bool)
	Log            logrus.FieldLogger
}

// NewDecoder returns a decoder wired to the real collaborators.
func NewDecoder() *Decoder {
	return &Decoder{
		ExtractTables:  tableengine.ExtractTables,
		ReadRaw:        winutil.ReadRaw,
		LookupUsername: winutil.LookupUsername,
		Log:            logrus.StandardLogger(),
	}
}

// DecodeStructured decodes the structured (ESE) generation of the queue
// database at path: dump the Jobs and Files tables, decode both, join on the
// file GUID. With carve set the raw file bytes are scanned independently and
// recovered jobs/files appended unjoined.
//
// A missing required table is fatal for this source; carving failures never
// are.
func (d *Decoder) DecodeStructured(path string, carve bool) (*Collection, error) {
	tables, err := d.ExtractTables(path, []string{jobsTableName, filesTableName})
	if err != nil {
		return nil, errors.Wrapf(err, "extract tables from %s", path)
	}

	jobRows, ok := tables[jobsTableName]
	if !ok {
		return nil, errors.Wrapf(ErrMissingTable, "%s in %s", jobsTableName, path)
	}
	fileRows, ok := tables[filesTableName]
	if !ok {
		return nil, errors.Wrapf(ErrMissingTable, "%s in %s", filesTableName, path)
	}

	col := NewCollection()
	col.Entries = d.merge(jobsFromRows(jobRows), filesFromRows(fileRows))

	if carve {
		data, err := d.ReadRaw(path)
		if err != nil {
			// Best effort: the authoritative decode stands on its own.
			d.Log.WithError(err).WithField("path", path).Warn("raw read for carving failed")
			return col, nil
		}
		carved := Carve(data, false)
		col.CarvedJobs = append(col.CarvedJobs, carved.Jobs...)
		col.CarvedFiles = append(col.CarvedFiles, carved.Files...)
	}

	return col, nil
}

// DecodeLegacy decodes the legacy generation: two fixed queue file locations
// per installation, each decoded independently. An unreadable or absent file
// skips that source, never the run.
func (d *Decoder) DecodeLegacy(systemDrive rune, carve bool) (*Collection, error) {
	col := NewCollection()

	for i := 0; i < 2; i++ {
		path := fmt.Sprintf(`%c:\ProgramData\Microsoft\Network\Downloader\qmgr%d.dat`, systemDrive, i)
		data, err := d.ReadRaw(path)
		if err != nil {
			d.Log.WithError(err).WithField("path", path).Debug("skipping legacy queue file")
			continue
		}
		d.decodeLegacyData(data, carve, col)
	}

	return col, nil
}

// DecodeLegacyFile decodes a single legacy queue file at an explicit path.
func (d *Decoder) DecodeLegacyFile(path string, carve bool) (*Collection, error) {
	data, err := d.ReadRaw(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read legacy queue file %s", path)
	}
	col := NewCollection()
	d.decodeLegacyData(data, carve, col)
	return col, nil
}

// decodeLegacyData appends one legacy buffer's results to col. Carved merged
// records from the positional scan go straight into the entry list, the way
// the legacy generation has always folded its own carve output back in.
func (d *Decoder) decodeLegacyData(data []byte, carve bool, col *Collection) {
	jobs, files, err := DecodeLegacyBuffer(data)
	if err != nil {
		d.Log.WithError(err).Warn("legacy queue decode failed")
	}
	col.Entries = append(col.Entries, d.merge(jobs, files)...)

	if carve {
		carved := Carve(data, true)
		col.Entries = append(col.Entries, carved.Merged...)
		col.CarvedJobs = append(col.CarvedJobs, carved.Jobs...)
		col.CarvedFiles = append(col.CarvedFiles, carved.Files...)
	}
}

// merge joins jobs and files sharing a file GUID via a hash index, producing
// one entry per matching pair. Jobs or files without a counterpart are
// dropped: the artifact is meaningless without both halves.
func (d *Decoder) merge(jobs []JobRecord, files []FileRecord) []Entry {
	index := make(map[string][]FileRecord, len(files))
	for _, file := range files {
		index[file.FileID] = append(index[file.FileID], file)
	}

	entries := []Entry{}
	for _, job := range jobs {
		matches, ok := index[job.FileID]
		if !ok {
			continue
		}
		username, resolved := d.LookupUsername(job.OwnerSID)
		if !resolved {
			username = ""
		}
		for _, file := range matches {
			entries = append(entries, mergeEntry(job, file, username, false))
		}
	}
	return entries
}
