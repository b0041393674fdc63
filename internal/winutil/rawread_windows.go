//go:build windows

package winutil

import (
	"fmt"
	"io"
)

// ReadRaw reads the full contents of a file opened with backup semantics and
// generous sharing flags, so databases held open by system services (and the
// slack regions their live view hides) are still readable. Distinct from a
// conventional buffered read on purpose: carving needs the raw bytes.
func ReadRaw(path string) ([]byte, error) {
	file, err := OpenForCopy(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for raw read: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
