package bits

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// surround buries entries in arbitrary padding so the scan has to find them
// by signature.
func surround(entries ...[]byte) []byte {
	buf := &bytes.Buffer{}
	buf.Write(bytes.Repeat([]byte{0xcc}, 37))
	for _, e := range entries {
		buf.Write(e)
	}
	buf.Write(bytes.Repeat([]byte{0xcc}, 51))
	return buf.Bytes()
}

func TestCarveStructured(t *testing.T) {
	job := defaultJobFixture()
	file := defaultFileFixture()
	buf := surround(job.bytes(), file.bytes())

	result := Carve(buf, false)
	require.Len(t, result.Jobs, 1)
	require.Len(t, result.Files, 1)
	// Structured carving never pairs: the relational link is gone.
	assert.Empty(t, result.Merged)
	assert.Equal(t, job.jobID, result.Jobs[0].JobID)
	assert.Equal(t, file.fileID, result.Files[0].FileID)
}

func TestCarveLegacyPairsAdjacentEntries(t *testing.T) {
	job := defaultJobFixture()
	file := defaultFileFixture()
	buf := surround(job.bytes(), file.bytes())

	result := Carve(buf, true)
	require.Len(t, result.Merged, 1)
	assert.Empty(t, result.Jobs)
	assert.Empty(t, result.Files)

	merged := result.Merged[0]
	assert.True(t, merged.Carved)
	assert.Equal(t, job.jobID, merged.JobID)
	assert.Equal(t, "update.cab", merged.Filename)
	assert.Equal(t, job.targetPath, merged.TargetPath)
}

func TestCarveLegacyNonAdjacentStaysUnpaired(t *testing.T) {
	job := defaultJobFixture()
	file := defaultFileFixture()
	buf := &bytes.Buffer{}
	buf.Write(job.bytes())
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00}) // gap breaks adjacency
	buf.Write(file.bytes())

	result := Carve(buf.Bytes(), true)
	assert.Empty(t, result.Merged)
	assert.Len(t, result.Jobs, 1)
	assert.Len(t, result.Files, 1)
}

func TestCarveRejectsImplausibleTimestamps(t *testing.T) {
	job := defaultJobFixture()
	job.created = 9999999999999 // far beyond any real FILETIME conversion
	buf := surround(job.bytes())

	result := Carve(buf, false)
	assert.Empty(t, result.Jobs)
}

func TestCarveMarkerCollision(t *testing.T) {
	// A bare marker followed by garbage must not abort the scan or yield a
	// record; the genuine entry after it is still found.
	file := defaultFileFixture()
	buf := &bytes.Buffer{}
	buf.Write(fileMarker)
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	buf.Write(file.bytes())

	result := Carve(buf.Bytes(), false)
	require.Len(t, result.Files, 1)
	assert.Equal(t, file.fileID, result.Files[0].FileID)
}

func TestCarveGarbage(t *testing.T) {
	assert.Empty(t, Carve(bytes.Repeat([]byte{0xa1, 0x56, 0x09}, 2000), false).Files)
	assert.Empty(t, Carve(nil, false).Jobs)
	assert.Empty(t, Carve(make([]byte, 4096), true).Merged)
}
