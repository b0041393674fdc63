package bits

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exhume/internal/binread"
)

func TestDecodeJobEntry(t *testing.T) {
	fixture := defaultJobFixture()
	job, after, err := decodeJobEntry(binread.New(fixture.bytes()))
	require.NoError(t, err)

	assert.Equal(t, fixture.jobID, job.JobID)
	assert.Equal(t, fixture.fileID, job.FileID)
	assert.Equal(t, "DOWNLOAD", job.JobType)
	assert.Equal(t, "NORMAL", job.Priority)
	assert.Equal(t, "TRANSFERRED", job.JobState)
	assert.Equal(t, "JOB_TRANSFERRED|JOB_ERROR", job.Flags)
	assert.Equal(t, int64(1670000000), job.Created)
	assert.Equal(t, int64(1670000100), job.Modified)
	assert.Equal(t, int64(1670000200), job.Completed)
	assert.Equal(t, int64(1677000000), job.Expiration)
	assert.Equal(t, uint32(1), job.ErrorCount)
	assert.Equal(t, uint32(0), job.TransientErrorCount)
	assert.Equal(t, uint32(1209600), job.Timeout)
	assert.Equal(t, uint32(600), job.RetryDelay)
	assert.Equal(t, "S-1-5-18", job.OwnerSID)
	assert.Equal(t, "Edge Component Update", job.JobName)
	assert.Equal(t, "", job.JobDescription)
	assert.Equal(t, `C:\WINDOWS\system32\svchost.exe`, job.JobCommand)
	assert.Equal(t, "GET", job.HTTPMethod)
	assert.Equal(t, `C:\Users\bob\Downloads\update.cab`, job.TargetPath)
	assert.Equal(t, []string{"S-1-5-32-544"}, job.ACLs)
	assert.Empty(t, job.AdditionalSIDs)
	assert.Equal(t, len(fixture.bytes()), after.Offset())
}

func TestDecodeFileEntry(t *testing.T) {
	fixture := defaultFileFixture()
	file, after, err := decodeFileEntry(binread.New(fixture.bytes()))
	require.NoError(t, err)

	assert.Equal(t, fixture.fileID, file.FileID)
	assert.Equal(t, uint32(1), file.FilesTransferred)
	assert.Equal(t, uint64(1048576), file.DownloadBytesSize)
	assert.Equal(t, uint64(1048576), file.TransferBytesSize)
	assert.Equal(t, fixture.url, file.URL)
	assert.Equal(t, fixture.fullPath, file.FullPath)
	assert.Equal(t, "update.cab", file.Filename)
	assert.Equal(t, fixture.tmpFullPath, file.TmpFullPath)
	assert.Equal(t, fixture.volume, file.Volume)
	assert.Equal(t, len(fixture.bytes()), after.Offset())
}

func TestDecodeJobEntryBadMarker(t *testing.T) {
	raw := defaultJobFixture().bytes()
	raw[0] ^= 0xff
	_, _, err := decodeJobEntry(binread.New(raw))
	require.ErrorIs(t, err, errBadMarker)
}

func TestDecodeJobEntryTruncated(t *testing.T) {
	raw := defaultJobFixture().bytes()
	job, _, err := decodeJobEntry(binread.New(raw[:len(raw)-10]))
	require.Error(t, err)
	// Fields decoded before the truncation point survive.
	assert.Equal(t, defaultJobFixture().jobID, job.JobID)
}

func TestDecodeJobEntryImplausibleStringLength(t *testing.T) {
	fixture := defaultJobFixture()
	raw := fixture.bytes()
	// The owner SID length prefix sits right after the fixed fields
	// (16 marker + 32 GUIDs + 4*4 enums + 4*8 times + 4*4 counters).
	sidLenOffset := 16 + 32 + 16 + 32 + 16
	raw[sidLenOffset] = 0xff
	raw[sidLenOffset+1] = 0xff
	raw[sidLenOffset+2] = 0xff
	raw[sidLenOffset+3] = 0xff

	_, _, err := decodeJobEntry(binread.New(raw))
	require.Error(t, err)
	require.NotErrorIs(t, err, binread.ErrShortBuffer)
}

func TestReadGUIDMixedEndian(t *testing.T) {
	// On-disk layout stores the first three GUID fields little-endian.
	raw := []byte{
		0x04, 0x03, 0x02, 0x01,
		0x06, 0x05,
		0x08, 0x07,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	}
	id, _, err := readGUID(binread.New(raw))
	require.NoError(t, err)
	assert.Equal(t, "01020304-0506-0708-090a-0b0c0d0e0f10", id)
}

func TestDecodeEntriesIdempotent(t *testing.T) {
	raw := defaultJobFixture().bytes()
	first, _, err := decodeJobEntry(binread.New(raw))
	require.NoError(t, err)
	second, _, err := decodeJobEntry(binread.New(raw))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, bytes.Equal(raw, defaultJobFixture().bytes()))
}
