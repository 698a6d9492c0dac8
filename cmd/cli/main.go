// Package main is the entry point for the catalog-cost CLI.
package main

import (
	"os"

	"catalog-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
