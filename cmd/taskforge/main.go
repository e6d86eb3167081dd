// Package main is the entry point for the taskforge CLI.
package main

import (
	"os"

	"taskforge/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
