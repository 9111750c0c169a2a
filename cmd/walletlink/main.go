// Package main is the entry point for the walletlink CLI.
package main

import (
	"os"

	"github.com/minterra/walletlink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
