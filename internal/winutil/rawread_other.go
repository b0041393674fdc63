//go:build !windows

package winutil

import "os"

// ReadRaw reads the full contents of a file. Backup semantics only exist on
// Windows; elsewhere a plain read is the best available equivalent.
func ReadRaw(path string) ([]byte, error) {
	return os.ReadFile(path)
}
