package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"exhume/internal/prefetch"
	"exhume/internal/winutil"
)

var prefetchTable bool

// prefetchCmd decodes the volume information records of one prefetch file.
var prefetchCmd = &cobra.Command{
	Use:   "prefetch <file>",
	Short: "Decode volume records from a Windows prefetch file",
	Long: `The prefetch command decodes the volume information records embedded in a
single uncompressed prefetch (.pf) file: volume device path, creation time,
serial number, and the accessed directory strings.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrefetch,
}

// prefetchOutput is the JSON shape of one decoded prefetch file.
type prefetchOutput struct {
	File       string                  `json:"file"`
	Executable string                  `json:"executable"`
	Version    uint32                  `json:"version"`
	Volumes    []prefetch.VolumeRecord `json:"volumes"`
	Error      string                  `json:"error,omitempty"`
}

func init() {
	prefetchCmd.Flags().BoolVar(&prefetchTable, "table", false, "print a summary table instead of JSON")
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := winutil.ReadRaw(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	header, err := prefetch.ReadHeader(data)
	if err != nil {
		if errors.Is(err, prefetch.ErrCompressed) {
			return fmt.Errorf("%s is MAM compressed; decompress it before decoding", path)
		}
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := prefetchOutput{
		File:       path,
		Executable: header.ExecutableName,
		Version:    header.Version,
	}
	records, _, err := prefetch.DecodeVolumeRecords(data, header.VolumeOffset, header.VolumeCount, header.Version)
	out.Volumes = records
	if err != nil {
		// Partial results are still reported.
		out.Error = err.Error()
	}

	if prefetchTable {
		printPrefetchTable(out)
		return nil
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func printPrefetchTable(out prefetchOutput) {
	fmt.Printf("%s (version %d, executable %s)\n", out.File, out.Version, out.Executable)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Volume Path", "Created", "Serial", "Directories"})
	table.SetAutoWrapText(false)

	for _, vol := range out.Volumes {
		table.Append([]string{
			vol.Path,
			formatUnix(vol.Creation),
			fmt.Sprintf("%08x", vol.Serial),
			strconv.Itoa(len(vol.Directories)),
		})
	}
	table.Render()

	if out.Error != "" {
		fmt.Printf("\npartial decode: %s\n", out.Error)
	}
}
