// Package main provides the entry point for the whence CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whencehq/whence/cmd/whence/commands"
)

var (
	Version = "unknown"
	Commit  = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "whence",
		Short: "whence attributes each line of a snapshot to the commit that introduced it",
		Long: `whence cross-references a snapshot of a project against a cloned git
repository and reports, per file, how many surviving lines trace back to
each commit and author.

Commands:
  run       Analyze a snapshot against a repository
  dump      Print the parsed addition history for one tracked path`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "whence %s (commit: %s)\n", Version, Commit)
		},
	}
}
