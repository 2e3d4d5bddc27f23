// Package main provides the entry point for the kbforge CLI.
package main

import (
	"os"

	"github.com/utcpkb/kbforge/cmd/kbforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
