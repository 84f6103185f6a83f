package main

import (
	"fmt"

	"github.com/alvmarrod/web-spider/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "web-spider %s (commit %s)\n", version.String(), version.ShortCommit())
		},
	}
}
