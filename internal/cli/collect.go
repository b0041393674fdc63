package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"exhume/internal/core"
	"exhume/internal/modules/sysinfo"
	"exhume/internal/modules/win_bits"
	"exhume/internal/modules/win_prefetch"
	"exhume/internal/parse"
	"exhume/internal/schema"
	"exhume/internal/winutil"
)

var (
	since      string
	encryptAge string

	parallel      int
	moduleTimeout time.Duration
	out           string
	keepTmp       bool
)

// collectCmd represents the collect command.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect and decode artifacts, then package them securely",
	Long: `The collect command runs collection modules that preserve and decode the
BITS download-job databases and prefetch files, packages the results into a
compressed archive, and optionally encrypts the result using age public key
encryption.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&since, "since", "", "RFC3339 timestamp or duration like 7d, 72h, 15m, 30s, 2w")
	collectCmd.Flags().IntVar(&parallel, "parallel", 4, "maximum concurrent modules (1-64)")
	collectCmd.Flags().DurationVar(&moduleTimeout, "module-timeout", 60*time.Second, "per-module timeout")
	collectCmd.Flags().StringVar(&encryptAge, "encrypt-age", "", "Age public key for encryption (must start with age1)")
	collectCmd.Flags().StringVar(&out, "out", "", "output directory for final archive (default: temp directory)")
	collectCmd.Flags().BoolVar(&keepTmp, "keep-tmp", false, "keep temporary artifacts directory for debugging")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if parallel < 1 {
		parallel = 1
	}
	if parallel > 64 {
		parallel = 64
	}

	if moduleTimeout <= 0 {
		return fmt.Errorf("module-timeout must be positive")
	}

	var agePublicKey string
	var ageRecipientSet bool
	if encryptAge != "" {
		if err := core.ValidateAgePublicKey(encryptAge); err != nil {
			return fmt.Errorf("invalid --encrypt-age: %w", err)
		}
		agePublicKey = encryptAge
		ageRecipientSet = true
	}

	sinceNormalized, sinceWasSet, err := parse.NormalizeSince(since, now)
	if err != nil {
		return err
	}

	// Locked system files need backup semantics; degraded access is still
	// worth attempting.
	if err := winutil.EnableBackupRestorePrivileges(); err != nil {
		logger.WithError(err).Warn("could not enable backup privileges, some files may be inaccessible")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	artifactsDir, err := core.CreateTempDir()
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}

	var outDir string
	if out == "" {
		// Use the parent directory of artifacts to avoid including the
		// archive in itself.
		outDir = filepath.Dir(artifactsDir)
		logger.WithField("dir", outDir).Info("using temporary output directory")
	} else {
		outDir, err = filepath.Abs(out)
		if err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if !keepTmp {
		defer func() {
			if err := core.RemoveTempDir(artifactsDir); err != nil {
				logger.WithError(err).WithField("dir", artifactsDir).Warn("failed to clean up temporary directory")
			}
		}()
	}

	run := core.NewRun(parallel, moduleTimeout, artifactsDir, core.SystemClock{}, logger)

	sysInfoModule := sysinfo.NewSysInfo()
	run.Register(sysInfoModule)

	winBITSModule := win_bits.NewWinBITS()
	run.Register(winBITSModule)

	winPrefetchModule := win_prefetch.NewWinPrefetch()
	if sinceWasSet && sinceNormalized != "" {
		winPrefetchModule.SetSinceTime(sinceNormalized)
	}
	run.Register(winPrefetchModule)

	modulesRun := []string{
		sysInfoModule.Name(),
		winBITSModule.Name(),
		winPrefetchModule.Name(),
	}

	logger.WithFields(logrus.Fields{
		"modules":  len(modulesRun),
		"parallel": parallel,
		"timeout":  moduleTimeout,
	}).Info("starting collection")

	results, collectErr := run.CollectAll(ctx)
	if collectErr != nil {
		logger.WithError(collectErr).Warn("collection completed with errors")
	} else {
		logger.Info("collection completed successfully")
	}

	logger.Info("creating archive")
	packageMeta, err := core.BundleAndMaybeEncrypt(
		ctx,
		artifactsDir,
		outDir,
		hostname,
		now,
		agePublicKey,
	)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	logger.WithField("path", packageMeta.Path).Info("archive created")

	finalArtifactsDir := artifactsDir
	if !keepTmp {
		finalArtifactsDir = "" // Indicate it was removed
	}

	output := schema.NewRunOutput(
		finalArtifactsDir,
		packageMeta.Path,
		packageMeta.Encrypted,
		ageRecipientSet,
		parallel,
		moduleTimeout,
		modulesRun,
		results,
		packageMeta.FileCount,
		packageMeta.BytesWritten,
		now,
	)

	if sinceWasSet {
		output.SetSince(since, sinceNormalized)
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}

	fmt.Println(string(jsonBytes))

	return collectErr
}
