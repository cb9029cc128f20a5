// Package main is the entry point for the fenquote CLI.
package main

import (
	"os"

	"fenquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
