package bits

import (
	"encoding/hex"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRow(id string, blob interface{}) *ordereddict.Dict {
	return ordereddict.NewDict().Set("Id", id).Set("Blob", blob)
}

func TestJobsFromRows(t *testing.T) {
	fixture := defaultJobFixture()
	rows := []*ordereddict.Dict{jobRow(fixture.jobID, fixture.bytes())}

	jobs := jobsFromRows(rows)
	require.Len(t, jobs, 1)
	assert.Equal(t, fixture.jobID, jobs[0].JobID)
	assert.Equal(t, "Edge Component Update", jobs[0].JobName)
	assert.Equal(t, "TRANSFERRED", jobs[0].JobState)
}

func TestJobsFromRowsHexBlob(t *testing.T) {
	// The table engine surfaces some binary columns as hex strings.
	fixture := defaultJobFixture()
	rows := []*ordereddict.Dict{jobRow(fixture.jobID, hex.EncodeToString(fixture.bytes()))}

	jobs := jobsFromRows(rows)
	require.Len(t, jobs, 1)
	assert.Equal(t, fixture.jobID, jobs[0].JobID)
	assert.Equal(t, "Edge Component Update", jobs[0].JobName)
}

func TestJobsFromRowsMalformedBlobFallsBackToId(t *testing.T) {
	rows := []*ordereddict.Dict{
		jobRow("0b1f2e3d-0000-4000-8000-000000000001", []byte{0xde, 0xad, 0xbe, 0xef}),
	}

	jobs := jobsFromRows(rows)
	require.Len(t, jobs, 1)
	assert.Equal(t, "0b1f2e3d-0000-4000-8000-000000000001", jobs[0].JobID)
	assert.Empty(t, jobs[0].JobName)
}

func TestJobsFromRowsMissingBlob(t *testing.T) {
	rows := []*ordereddict.Dict{
		ordereddict.NewDict().Set("Id", "0b1f2e3d-0000-4000-8000-000000000002"),
	}

	jobs := jobsFromRows(rows)
	require.Len(t, jobs, 1)
	assert.Equal(t, "0b1f2e3d-0000-4000-8000-000000000002", jobs[0].JobID)
}

func TestFilesFromRows(t *testing.T) {
	fixture := defaultFileFixture()
	rows := []*ordereddict.Dict{
		ordereddict.NewDict().Set("Id", fixture.fileID).Set("Blob", fixture.bytes()),
	}

	files := filesFromRows(rows)
	require.Len(t, files, 1)
	assert.Equal(t, fixture.fileID, files[0].FileID)
	assert.Equal(t, "update.cab", files[0].Filename)
	assert.Equal(t, uint64(1048576), files[0].DownloadBytesSize)
}

func TestFilesFromRowsMalformedBlobFallsBackToId(t *testing.T) {
	rows := []*ordereddict.Dict{
		ordereddict.NewDict().Set("Id", "0b1f2e3d-0000-4000-8000-000000000003").Set("Blob", []byte{0x00}),
	}

	files := filesFromRows(rows)
	require.Len(t, files, 1)
	assert.Equal(t, "0b1f2e3d-0000-4000-8000-000000000003", files[0].FileID)
}

func TestBlobCellTypes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}

	assert.Equal(t, raw, blobCell(ordereddict.NewDict().Set("Blob", raw), "Blob"))
	assert.Equal(t, raw, blobCell(ordereddict.NewDict().Set("Blob", "010203"), "Blob"))
	// Non-hex strings pass through as raw bytes.
	assert.Equal(t, []byte("xyz"), blobCell(ordereddict.NewDict().Set("Blob", "xyz"), "Blob"))
	assert.Nil(t, blobCell(ordereddict.NewDict(), "Blob"))
	assert.Nil(t, blobCell(ordereddict.NewDict().Set("Blob", 42), "Blob"))
}
