// Package cli provides command-line interface implementation for exhume.
package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "exhume",
	Short: "A CLI tool for collecting and decoding Windows download-job artifacts",
	Long: `exhume collects Windows forensic artifacts and decodes BITS download-job
databases and prefetch volume records, including best-effort recovery of
deleted records from raw file bytes.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help and exit 0 if no subcommand is provided
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(bitsCmd)
	rootCmd.AddCommand(prefetchCmd)
}
