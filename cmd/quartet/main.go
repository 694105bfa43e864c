// Package main is the entry point for the Quartet CLI.
package main

import (
	"os"

	"github.com/quartetgames/quartet/cmd/quartet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
