//go:build windows

package win_bits

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"exhume/internal/bits"
	"exhume/internal/winutil"
)

// WinBITS collects the BITS queue database files and decodes them into
// download-job entries, carving deleted records along the way.
type WinBITS struct{}

// NewWinBITS creates a new Windows BITS collection module.
func NewWinBITS() *WinBITS {
	return &WinBITS{}
}

// Name returns the module's identifier.
func (w *WinBITS) Name() string {
	return "windows/bits"
}

// Collect copies the queue database files, decodes whichever generation is
// present, and writes both a manifest and the decoded entries. The structured
// ESE database supersedes the legacy flat files when both exist.
func (w *WinBITS) Collect(ctx context.Context, outDir string) error {
	bitsDir := filepath.Join(outDir, "windows", "bits")
	if err := winutil.EnsureDir(bitsDir); err != nil {
		return fmt.Errorf("failed to create bits directory: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	manifest := NewBITSManifest(hostname)
	constraints := winutil.NewSizeConstraints()

	downloader := downloaderDir()
	if err := w.collectQueueFiles(ctx, downloader, bitsDir, manifest, constraints); err != nil {
		manifest.AddError("bits_directory", fmt.Sprintf("Failed to collect BITS files: %v", err))
	}

	w.decodeQueue(downloader, bitsDir, manifest)

	manifestPath := filepath.Join(bitsDir, "manifest.json")
	if err := manifest.WriteManifest(manifestPath); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// downloaderDir resolves the BITS queue directory under ProgramData.
func downloaderDir() string {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		systemDrive := os.Getenv("SystemDrive")
		if systemDrive == "" {
			systemDrive = "C:"
		}
		programData = filepath.Join(systemDrive, "ProgramData")
	}
	return filepath.Join(programData, "Microsoft", "Network", "Downloader")
}

// collectQueueFiles copies queue database files from the source directory.
func (w *WinBITS) collectQueueFiles(ctx context.Context, sourceDir, outDir string, manifest *BITSManifest, constraints *winutil.SizeConstraints) error {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to read BITS directory: %w", err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		fileType, note, ok := classifyQueueFile(filename)
		if !ok {
			continue
		}

		manifest.IncrementTotalFiles()

		srcPath := filepath.Join(sourceDir, filename)
		destPath := filepath.Join(outDir, filename)

		stat, err := os.Stat(srcPath)
		if err != nil {
			manifest.AddError(srcPath, fmt.Sprintf("Failed to stat file: %v", err))
			continue
		}

		size, sha256Hex, truncated, err := winutil.SmartCopy(srcPath, destPath, constraints)
		if err != nil {
			manifest.AddError(srcPath, fmt.Sprintf("Failed to copy file: %v", err))
			continue
		}

		manifest.AddItem(filename, size, sha256Hex, truncated, stat.ModTime(), fileType, note)
	}

	return nil
}

// decodeQueue decodes whichever queue generation is present and writes the
// entries alongside the preserved files. Decode failures are recorded in the
// manifest rather than failing the module: the copied files still have value.
func (w *WinBITS) decodeQueue(sourceDir, outDir string, manifest *BITSManifest) {
	decoder := bits.NewDecoder()

	var col *bits.Collection
	var err error

	structured := filepath.Join(sourceDir, "qmgr.db")
	if _, statErr := os.Stat(structured); statErr == nil {
		manifest.Generation = "structured"
		col, err = decoder.DecodeStructured(structured, true)
	} else {
		manifest.Generation = "legacy"
		drive := 'C'
		if sd := os.Getenv("SystemDrive"); sd != "" {
			drive = rune(sd[0])
		}
		col, err = decoder.DecodeLegacy(drive, true)
	}
	if err != nil {
		manifest.AddError("bits_decode", fmt.Sprintf("Failed to decode queue: %v", err))
		return
	}

	manifest.DecodedEntries = len(col.Entries)
	manifest.CarvedJobs = len(col.CarvedJobs)
	manifest.CarvedFiles = len(col.CarvedFiles)

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		manifest.AddError("bits_decode", fmt.Sprintf("Failed to marshal entries: %v", err))
		return
	}
	if err := os.WriteFile(filepath.Join(outDir, "bits.json"), data, 0644); err != nil {
		manifest.AddError("bits_decode", fmt.Sprintf("Failed to write entries: %v", err))
	}
}

// classifyQueueFile reports the generation a queue file belongs to and a
// human readable description; ok is false for unrelated files.
func classifyQueueFile(filename string) (fileType, note string, ok bool) {
	lower := strings.ToLower(filename)

	switch {
	case lower == "qmgr.db":
		return "structured", "BITS job queue database (ESE)", true
	case lower == "qmgr0.dat":
		return "legacy", "BITS primary job queue file", true
	case lower == "qmgr1.dat":
		return "legacy", "BITS secondary job queue file", true
	case strings.HasPrefix(lower, "qmgr") && strings.HasSuffix(lower, ".dat"):
		return "legacy", fmt.Sprintf("BITS job queue file (%s)", filename), true
	case strings.HasPrefix(lower, "edb") && (strings.HasSuffix(lower, ".log") || strings.HasSuffix(lower, ".chk")):
		// ESE transaction logs carry recently committed rows the database
		// file itself may not have flushed yet.
		return "structured", fmt.Sprintf("ESE transaction log (%s)", filename), true
	default:
		return "", "", false
	}
}
