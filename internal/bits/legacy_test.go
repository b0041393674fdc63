package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLegacyBuffer(t *testing.T) {
	job := defaultJobFixture()
	file := defaultFileFixture()
	buf := buildLegacyFile(job.bytes(), file.bytes())

	jobs, files, err := DecodeLegacyBuffer(buf)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Len(t, files, 1)
	assert.Equal(t, job.jobID, jobs[0].JobID)
	assert.Equal(t, file.fileID, files[0].FileID)
	assert.Equal(t, "update.cab", files[0].Filename)
}

func TestDecodeLegacyBufferMultipleJobs(t *testing.T) {
	second := defaultJobFixture()
	second.jobID = "11111111-2222-3333-4444-555555555555"
	second.fileID = "66666666-7777-8888-9999-aaaaaaaaaaaa"
	second.name = "Second Job"
	buf := buildLegacyFile(
		defaultJobFixture().bytes(),
		defaultFileFixture().bytes(),
		second.bytes(),
	)

	jobs, files, err := DecodeLegacyBuffer(buf)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Len(t, files, 1)
	assert.Equal(t, "Second Job", jobs[1].JobName)
}

func TestDecodeLegacyBufferNotQueueFile(t *testing.T) {
	_, _, err := DecodeLegacyBuffer([]byte("not a queue file at all, just bytes"))
	require.ErrorIs(t, err, ErrNotQueueFile)

	_, _, err = DecodeLegacyBuffer(nil)
	require.ErrorIs(t, err, ErrNotQueueFile)
}

func TestDecodeLegacyBufferTruncatedEntry(t *testing.T) {
	job := defaultJobFixture()
	file := defaultFileFixture()
	buf := buildLegacyFile(job.bytes(), file.bytes())

	// Cut into the middle of the file entry; the job before it survives.
	cut := len(queueMarker) + 4 + len(job.bytes()) + len(file.bytes())/2
	jobs, files, err := DecodeLegacyBuffer(buf[:cut])
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Empty(t, files)
}

func TestDecodeLegacyBufferHeaderOnly(t *testing.T) {
	jobs, files, err := DecodeLegacyBuffer(buildLegacyFile())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Empty(t, files)
}
