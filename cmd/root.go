// Package cmd implements the fathom command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fathom",
	Short: "Fathom - streaming AI chat service",
	Long: `Fathom is a streaming chat service with document artifacts, analytics
queries and external data tools.

Run "fathom serve" to start the HTTP API server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
