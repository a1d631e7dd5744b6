// Package main is the entry point for the botbridge CLI.
package main

import (
	"os"

	"github.com/botbridge/botbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
