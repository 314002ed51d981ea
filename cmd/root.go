// Package cmd wires the command-line interface for the Campus Care
// backend. The default action starts the HTTP server, so both
// `campuscare` and `campuscare serve` behave the same.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "campuscare",
	Short: "Campus Care - student support chat backend",
	Long: `Campus Care is an HTTP backend for a student support chat service.
It forwards student messages to a Gemini model, optionally grounded in a
static knowledge base of counselling guidance, and returns the reply.

Running campuscare with no arguments starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
