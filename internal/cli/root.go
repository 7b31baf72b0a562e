// Package cli implements the voice-gateway commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formatFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "voice-gateway",
	Short: "Voice input gateway for the learning platform",
	Long: "Serves voice sessions over WebSocket: speech recognition, accent and age " +
		"correction, voice commands and dictation. The other commands run the same " +
		"pipeline offline.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
