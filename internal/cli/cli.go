// Package cli wires the command line surface over the agent backend.
package cli

import (
	"fmt"
	"os"
)

// Run executes the root command and exits non-zero on failure.
func Run() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
