// Package main is the entry point for the fdctl CLI.
package main

import (
	"os"

	"github.com/SscSPs/finance_dashboard/cmd/fdctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
