//go:build windows

package win_prefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"exhume/internal/prefetch"
	"exhume/internal/winutil"
)

// WinPrefetch collects Windows prefetch files and decodes the volume
// information records embedded in each.
type WinPrefetch struct {
	sinceTime string
}

// NewWinPrefetch creates a new Windows prefetch collection module.
func NewWinPrefetch() *WinPrefetch {
	return &WinPrefetch{}
}

// SetSinceTime restricts collection to files modified at or after the given
// RFC3339 timestamp.
func (w *WinPrefetch) SetSinceTime(sinceRFC3339 string) {
	w.sinceTime = sinceRFC3339
}

// Name returns the module's identifier.
func (w *WinPrefetch) Name() string {
	return "windows/prefetch"
}

// fileVolumes holds the decoded volume records of one prefetch file.
type fileVolumes struct {
	File       string                  `json:"file"`
	Executable string                  `json:"executable"`
	Version    uint32                  `json:"version"`
	Volumes    []prefetch.VolumeRecord `json:"volumes"`
	Error      string                  `json:"error,omitempty"`
}

// Collect copies prefetch files, decodes their volume records, and writes a
// manifest plus the decoded records.
func (w *WinPrefetch) Collect(ctx context.Context, outDir string) error {
	prefetchDir := filepath.Join(outDir, "windows", "prefetch")
	if err := winutil.EnsureDir(prefetchDir); err != nil {
		return fmt.Errorf("failed to create prefetch directory: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	systemRoot := os.Getenv("SystemRoot")
	if systemRoot == "" {
		systemRoot = "C:\\Windows"
	}
	prefetchPath := filepath.Join(systemRoot, "Prefetch")

	prefetchEnabled, totalFiles := w.checkPrefetchStatus(prefetchPath)

	manifest := NewPrefetchManifest(hostname, prefetchEnabled, prefetchPath)
	manifest.SetTotalFiles(totalFiles)

	if !prefetchEnabled || totalFiles == 0 {
		manifest.AddError("prefetch_directory", "Prefetch is disabled or no .pf files found")

		// Expected on many systems; an empty manifest is the artifact.
		manifestPath := filepath.Join(prefetchDir, "manifest.json")
		if err := manifest.WriteManifest(manifestPath); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		return nil
	}

	constraints := winutil.NewSizeConstraints()

	volumes, err := w.collectPrefetchFiles(ctx, prefetchPath, prefetchDir, manifest, constraints)
	if err != nil {
		return fmt.Errorf("failed to collect prefetch files: %w", err)
	}

	if len(volumes) > 0 {
		data, err := json.MarshalIndent(volumes, "", "  ")
		if err != nil {
			manifest.AddError("volume_decode", fmt.Sprintf("Failed to marshal volume records: %v", err))
		} else if err := os.WriteFile(filepath.Join(prefetchDir, "volumes.json"), data, 0644); err != nil {
			manifest.AddError("volume_decode", fmt.Sprintf("Failed to write volume records: %v", err))
		}
	}

	manifestPath := filepath.Join(prefetchDir, "manifest.json")
	if err := manifest.WriteManifest(manifestPath); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// checkPrefetchStatus checks if prefetch is enabled and counts .pf files.
func (w *WinPrefetch) checkPrefetchStatus(prefetchPath string) (enabled bool, totalFiles int) {
	if _, err := os.Stat(prefetchPath); os.IsNotExist(err) {
		return false, 0
	}

	entries, err := os.ReadDir(prefetchPath)
	if err != nil {
		return false, 0
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".pf") {
			totalFiles++
		}
	}

	return totalFiles > 0, totalFiles
}

// collectPrefetchFiles copies and decodes all .pf files, honoring the since
// filter when one was set.
func (w *WinPrefetch) collectPrefetchFiles(ctx context.Context, prefetchPath, outDir string, manifest *PrefetchManifest, constraints *winutil.SizeConstraints) ([]fileVolumes, error) {
	entries, err := os.ReadDir(prefetchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefetch directory: %w", err)
	}

	var since time.Time
	if w.sinceTime != "" {
		since, _ = time.Parse(time.RFC3339, w.sinceTime)
	}

	volumes := []fileVolumes{}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return volumes, ctx.Err()
		default:
		}

		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pf") {
			continue
		}

		srcPath := filepath.Join(prefetchPath, entry.Name())
		stat, err := os.Stat(srcPath)
		if err != nil {
			manifest.AddError(entry.Name(), fmt.Sprintf("failed to stat prefetch file: %v", err))
			continue
		}
		if !since.IsZero() && stat.ModTime().Before(since) {
			continue
		}

		destPath := filepath.Join(outDir, entry.Name())
		size, sha256Hex, truncated, err := winutil.SmartCopy(srcPath, destPath, constraints)
		if err != nil {
			manifest.AddError(entry.Name(), fmt.Sprintf("failed to copy prefetch file: %v", err))
			continue
		}

		item := PrefetchItem{
			Path:      entry.Name(),
			Size:      size,
			SHA256:    sha256Hex,
			Truncated: truncated,
			Modified:  stat.ModTime().UTC().Format(time.RFC3339),
		}

		if fv, compressed := w.decodeVolumes(srcPath, entry.Name()); fv != nil {
			item.Executable = fv.Executable
			item.Version = fv.Version
			item.Compressed = compressed
			manifest.DecodedVolumes += len(fv.Volumes)
			volumes = append(volumes, *fv)
		} else {
			item.Compressed = compressed
		}

		manifest.AddItem(item)
	}

	return volumes, nil
}

// decodeVolumes reads one prefetch file and decodes its volume records.
// Compressed (MAM) files are preserved but not decoded.
func (w *WinPrefetch) decodeVolumes(path, name string) (*fileVolumes, bool) {
	data, err := winutil.ReadRaw(path)
	if err != nil {
		return nil, false
	}

	header, err := prefetch.ReadHeader(data)
	if err != nil {
		return nil, err == prefetch.ErrCompressed
	}

	fv := &fileVolumes{
		File:       name,
		Executable: header.ExecutableName,
		Version:    header.Version,
	}
	records, _, err := prefetch.DecodeVolumeRecords(data, header.VolumeOffset, header.VolumeCount, header.Version)
	fv.Volumes = records
	if err != nil {
		// Partial results still carry value; record what went wrong.
		fv.Error = err.Error()
	}
	return fv, false
}
