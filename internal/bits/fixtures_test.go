package bits

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Fixture builders emitting the serialized entry layout the decoders
// consume. Kept in test code only; production never writes these files.

func unixToFiletime(unix int64) uint64 {
	if unix == 0 {
		return 0
	}
	return uint64(unix+11_644_473_600) * 10_000_000
}

func putGUID(buf *bytes.Buffer, id string) {
	u := uuid.MustParse(id)
	raw := []byte{
		u[3], u[2], u[1], u[0],
		u[5], u[4],
		u[7], u[6],
		u[8], u[9], u[10], u[11], u[12], u[13], u[14], u[15],
	}
	buf.Write(raw)
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	buf.Write(raw[:])
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	buf.Write(raw[:])
}

func putString(buf *bytes.Buffer, s string) {
	units := utf16.Encode([]rune(s))
	putUint32(buf, uint32(len(units)))
	for _, u := range units {
		var raw [2]byte
		binary.LittleEndian.PutUint16(raw[:], u)
		buf.Write(raw[:])
	}
}

func putStringList(buf *bytes.Buffer, items []string) {
	putUint32(buf, uint32(len(items)))
	for _, s := range items {
		putString(buf, s)
	}
}

type jobFixture struct {
	jobID, fileID                                    string
	jobType, priority, state, flags                  uint32
	created, modified, completed, expiration         int64
	errorCount, transientErrors, timeout, retryDelay uint32
	ownerSID, name, description, command, arguments  string
	httpMethod, targetPath                           string
	acls, extraSIDs                                  []string
}

// defaultJobFixture is a plausible completed download job.
func defaultJobFixture() jobFixture {
	return jobFixture{
		jobID:      "5019f94e-14e1-4bd0-9107-aba53d8deaa9",
		fileID:     "6f2ba655-23b8-4f2c-a922-0d0c4dca059b",
		jobType:    0,
		priority:   2,
		state:      6,
		flags:      0x3,
		created:    1670000000,
		modified:   1670000100,
		completed:  1670000200,
		expiration: 1677000000,
		errorCount: 1,
		timeout:    1209600,
		retryDelay: 600,
		ownerSID:   "S-1-5-18",
		name:       "Edge Component Update",
		command:    `C:\WINDOWS\system32\svchost.exe`,
		httpMethod: "GET",
		targetPath: `C:\Users\bob\Downloads\update.cab`,
		acls:       []string{"S-1-5-32-544"},
		extraSIDs:  []string{},
	}
}

func (f jobFixture) bytes() []byte {
	buf := &bytes.Buffer{}
	buf.Write(jobMarker)
	putGUID(buf, f.jobID)
	putGUID(buf, f.fileID)
	putUint32(buf, f.jobType)
	putUint32(buf, f.priority)
	putUint32(buf, f.state)
	putUint32(buf, f.flags)
	putUint64(buf, unixToFiletime(f.created))
	putUint64(buf, unixToFiletime(f.modified))
	putUint64(buf, unixToFiletime(f.completed))
	putUint64(buf, unixToFiletime(f.expiration))
	putUint32(buf, f.errorCount)
	putUint32(buf, f.transientErrors)
	putUint32(buf, f.timeout)
	putUint32(buf, f.retryDelay)
	putString(buf, f.ownerSID)
	putString(buf, f.name)
	putString(buf, f.description)
	putString(buf, f.command)
	putString(buf, f.arguments)
	putString(buf, f.httpMethod)
	putString(buf, f.targetPath)
	putStringList(buf, f.acls)
	putStringList(buf, f.extraSIDs)
	return buf.Bytes()
}

type fileFixture struct {
	fileID                       string
	filesTransferred             uint32
	downloadBytes, transferBytes uint64
	url, fullPath, filename      string
	tmpFullPath, volume          string
}

func defaultFileFixture() fileFixture {
	return fileFixture{
		fileID:           "6f2ba655-23b8-4f2c-a922-0d0c4dca059b",
		filesTransferred: 1,
		downloadBytes:    1048576,
		transferBytes:    1048576,
		url:              "https://msedge.b.tlu.dl.delivery.mp.microsoft.com/filestreamingservice/files/update.cab",
		fullPath:         `C:\Users\bob\Downloads\update.cab`,
		filename:         "update.cab",
		tmpFullPath:      `C:\Users\bob\Downloads\BIT1A2B.tmp`,
		volume:           `\\?\Volume{01d68282-9057-9d13-4290-933e00000000}`,
	}
}

func (f fileFixture) bytes() []byte {
	buf := &bytes.Buffer{}
	buf.Write(fileMarker)
	putGUID(buf, f.fileID)
	putUint32(buf, f.filesTransferred)
	putUint64(buf, f.downloadBytes)
	putUint64(buf, f.transferBytes)
	putString(buf, f.url)
	putString(buf, f.fullPath)
	putString(buf, f.filename)
	putString(buf, f.tmpFullPath)
	putString(buf, f.volume)
	return buf.Bytes()
}

// buildLegacyFile assembles a legacy queue file from already serialized
// entries.
func buildLegacyFile(entries ...[]byte) []byte {
	buf := &bytes.Buffer{}
	buf.Write(queueMarker)
	putUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf.Write(e)
	}
	// Trailing slack as found in real queue files.
	buf.Write(make([]byte, 32))
	return buf.Bytes()
}
