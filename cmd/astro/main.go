// Package main is the entry point for the astro CLI.
package main

import (
	"os"

	"github.com/okian/astrocore/cmd/astro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
