package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var configPath string

// newRootCmd builds the start-agent cobra command (grounded on this pack's
// cobra-based CLI layout: a single persistent flag, SilenceUsage/Errors so
// the command owns its own error reporting).
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use: "start-agent",
		Short: "Run a single Deliveroo BDI agent against a simulator instance",
		SilenceErrors: true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runAgent(cmd.Context(), configPath, stdout, stderr); err != nil {
				fmt.Fprintf(stderr, "start-agent: %v\n", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml",
		"path to the agent's YAML configuration file")
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}
