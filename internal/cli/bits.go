package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"exhume/internal/bits"
)

var (
	bitsLegacy bool
	bitsCarve  bool
	bitsTable  bool
)

// bitsCmd decodes a single BITS queue database without running a full
// collection, for analyst use against files pulled from another machine.
var bitsCmd = &cobra.Command{
	Use:   "bits <file>",
	Short: "Decode a BITS job queue database file",
	Long: `The bits command decodes download-job entries from a queue database file:
the structured ESE database (qmgr.db) by default, or a legacy flat queue
file (qmgr0.dat/qmgr1.dat) with --legacy. With --carve the raw bytes are
additionally scanned for deleted records.`,
	Args: cobra.ExactArgs(1),
	RunE: runBits,
}

func init() {
	bitsCmd.Flags().BoolVar(&bitsLegacy, "legacy", false, "treat the file as a legacy flat queue file")
	bitsCmd.Flags().BoolVar(&bitsCarve, "carve", false, "scan raw bytes for deleted records")
	bitsCmd.Flags().BoolVar(&bitsTable, "table", false, "print a summary table instead of JSON")
}

func runBits(cmd *cobra.Command, args []string) error {
	path := args[0]
	decoder := bits.NewDecoder()

	var col *bits.Collection
	var err error
	if bitsLegacy {
		col, err = decoder.DecodeLegacyFile(path, bitsCarve)
	} else {
		col, err = decoder.DecodeStructured(path, bitsCarve)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if bitsTable {
		printBitsTable(col)
		return nil
	}

	jsonBytes, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func printBitsTable(col *bits.Collection) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Job ID", "Name", "State", "Created", "URL", "Target", "Carved"})
	table.SetAutoWrapText(false)

	for _, entry := range col.Entries {
		table.Append([]string{
			entry.JobID,
			entry.JobName,
			entry.JobState,
			formatUnix(entry.Created),
			entry.URL,
			entry.TargetPath,
			strconv.FormatBool(entry.Carved),
		})
	}
	table.Render()

	if len(col.CarvedJobs) > 0 || len(col.CarvedFiles) > 0 {
		fmt.Printf("\ncarved: %d jobs, %d files (not joinable)\n",
			len(col.CarvedJobs), len(col.CarvedFiles))
	}
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
