package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/whencehq/whence/internal/git"
	"github.com/whencehq/whence/internal/history"
)

// DumpCommand holds the flag state for the dump command.
type DumpCommand struct {
	repo    string
	pickaxe string
	debug   bool
}

// NewDumpCommand creates the history-inspection command. It prints the
// addition history whence sees for one tracked path, which is the fastest
// way to understand why a line did or did not match.
func NewDumpCommand() *cobra.Command {
	dc := &DumpCommand{}

	cmd := &cobra.Command{
		Use:   "dump [path]",
		Short: "Print the parsed addition history for one tracked path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return dc.run(args)
		},
	}

	cmd.Flags().StringVarP(&dc.repo, "repo", "r", "",
		"path to the cloned git repo")
	cmd.Flags().StringVar(&dc.pickaxe, "pickaxe", "",
		"resolve a single literal line via git log -S instead of dumping a path")
	cmd.Flags().BoolVar(&dc.debug, "debug", false,
		"enable debug logging")

	return cmd
}

func (dc *DumpCommand) run(args []string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"dump\": %w", err)
		}
	}()

	if dc.debug {
		configureLogging(slog.LevelDebug)
	} else {
		configureLogging(slog.LevelInfo)
	}

	if dc.repo == "" {
		return errors.New("path to the cloned git repo is required (-r)")
	}

	ctx := context.Background()
	src := git.RepoSource{RepoPath: dc.repo}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	if dc.pickaxe != "" {
		rec, ok := history.ResolveLine(ctx, src, dc.pickaxe)
		if !ok {
			return fmt.Errorf("no commit found introducing %q", dc.pickaxe)
		}

		printRecord(w, rec)

		return nil
	}

	if len(args) == 0 {
		return errors.New("a tracked path is required unless --pickaxe is given")
	}

	records := history.ForPath(ctx, src, args[0])
	if len(records) == 0 {
		return fmt.Errorf("no addition history found for %s", args[0])
	}

	for _, rec := range records {
		printRecord(w, rec)
	}

	return nil
}

func printRecord(w *bufio.Writer, rec history.PatchRecord) {
	fmt.Fprintf(
		w,
		"%s %s %s <%s> %q\n",
		rec.CommitHash,
		rec.AuthorDate,
		rec.AuthorName,
		rec.AuthorEmail,
		rec.LineText,
	)
}
