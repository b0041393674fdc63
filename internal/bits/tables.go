package bits

import (
	"encoding/hex"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"

	"exhume/internal/binread"
)

// Table names inside the structured (ESE) generation of the queue database.
const (
	jobsTableName  = "Jobs"
	filesTableName = "Files"
)

// ErrMissingTable reports that the external table engine did not yield a
// required table, which means the wrong file or schema was extracted. Fatal
// for that source's structured decode only.
var ErrMissingTable = errors.New("required table not present")

// jobsFromRows decodes the Jobs table. Each row carries a GUID Id cell and a
// Blob cell holding the serialized job entry. Malformed cells degrade to
// documented defaults instead of aborting the table.
func jobsFromRows(rows []*ordereddict.Dict) []JobRecord {
	jobs := make([]JobRecord, 0, len(rows))
	for _, row := range rows {
		id := stringCell(row, "Id")
		job, _, err := decodeJobEntry(binread.New(blobCell(row, "Blob")))
		if err != nil && job.JobID == "" {
			job.JobID = id
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// filesFromRows decodes the Files table the same way, independently of Jobs.
func filesFromRows(rows []*ordereddict.Dict) []FileRecord {
	files := make([]FileRecord, 0, len(rows))
	for _, row := range rows {
		id := stringCell(row, "Id")
		file, _, err := decodeFileEntry(binread.New(blobCell(row, "Blob")))
		if err != nil && file.FileID == "" {
			file.FileID = id
		}
		files = append(files, file)
	}
	return files
}

// stringCell reads a named cell as a string, defaulting to empty on absent
// or differently typed values.
func stringCell(row *ordereddict.Dict, name string) string {
	value, ok := row.Get(name)
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

// blobCell reads a named binary cell. The table engine may surface binary
// columns as raw bytes or as a hex string depending on the column type it
// inferred; both are accepted.
func blobCell(row *ordereddict.Dict, name string) []byte {
	value, ok := row.Get(name)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		if raw, err := hex.DecodeString(v); err == nil {
			return raw
		}
		return []byte(v)
	default:
		return nil
	}
}
