// Package main is the entry point for the changelog CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/changelog/cmd"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/fatih/color"
)

var version = "0.1.0"

func main() {
	logging.Debug("starting changelog cli", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
