package prefetch

import (
	"bytes"

	"github.com/pkg/errors"

	"exhume/internal/binread"
)

// File signature "SCCA" at offset 4 of every uncompressed prefetch file.
var sccaSignature = []byte{'S', 'C', 'C', 'A'}

// Windows 10 stores prefetch files compressed; the payload starts with a
// "MAM\x04" marker instead of a prefetch header.
var mamSignature = []byte{'M', 'A', 'M', 0x04}

// ErrCompressed reports a MAM-compressed prefetch file. Decompression is out
// of scope; callers should skip the file and note the condition.
var ErrCompressed = errors.New("prefetch file is MAM compressed")

// ErrNotPrefetch reports a buffer without the SCCA signature.
var ErrNotPrefetch = errors.New("missing SCCA signature")

// Header carries the handful of prefetch header fields needed to locate the
// volume-information record set.
type Header struct {
	Version        uint32 `json:"version"`
	ExecutableName string `json:"executable_name"`
	VolumeOffset   uint32 `json:"volume_info_offset"`
	VolumeCount    uint32 `json:"volume_count"`
}

// Header field offsets shared by versions 23, 26 and 30.
const (
	executableNameOffset = 16
	executableNameBytes  = 60
	volumeInfoOffset     = 108
	volumeCountOffset    = 112
)

// ReadHeader probes buf for a supported prefetch header and returns the
// fields needed to call DecodeVolumeRecords. Only the uncompressed versions
// with a known volume-record generation (23, 26, 30) are accepted.
func ReadHeader(buf []byte) (Header, error) {
	var hdr Header

	if bytes.HasPrefix(buf, mamSignature) {
		return hdr, ErrCompressed
	}
	if len(buf) < 8 || !bytes.Equal(buf[4:8], sccaSignature) {
		return hdr, ErrNotPrefetch
	}

	cur := binread.New(buf)
	version, _, err := cur.Uint32(binread.LittleEndian)
	if err != nil {
		return hdr, err
	}
	if _, ok := TrailerSize(version); !ok {
		return hdr, errors.Wrapf(ErrUnsupportedVersion, "prefetch version %d", version)
	}
	hdr.Version = version

	nameCur, err := cur.Seek(executableNameOffset)
	if err != nil {
		return hdr, err
	}
	if hdr.ExecutableName, _, err = nameCur.UTF16String(executableNameBytes); err != nil {
		return hdr, err
	}

	offCur, err := cur.Seek(volumeInfoOffset)
	if err != nil {
		return hdr, err
	}
	if hdr.VolumeOffset, offCur, err = offCur.Uint32(binread.LittleEndian); err != nil {
		return hdr, err
	}
	if hdr.VolumeCount, _, err = offCur.Uint32(binread.LittleEndian); err != nil {
		return hdr, err
	}

	return hdr, nil
}
