//go:build !windows

package win_prefetch

import (
	"context"
)

// WinPrefetch represents the Windows prefetch collection module stub for non-Windows platforms.
type WinPrefetch struct {
	sinceTime string
}

// NewWinPrefetch creates a new Windows prefetch collection module stub.
func NewWinPrefetch() *WinPrefetch {
	return &WinPrefetch{}
}

// SetSinceTime records the since filter; unused off Windows.
func (w *WinPrefetch) SetSinceTime(sinceRFC3339 string) {
	w.sinceTime = sinceRFC3339
}

// Name returns the module's identifier.
func (w *WinPrefetch) Name() string {
	return "windows/prefetch"
}

// Collect is a no-op on non-Windows platforms and always returns nil.
func (w *WinPrefetch) Collect(ctx context.Context, outDir string) error {
	return nil
}
