// Package main provides the entry point for the exhume CLI application.
package main

import (
	"os"

	"exhume/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
