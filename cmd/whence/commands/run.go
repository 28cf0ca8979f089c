// Package commands implements CLI command handlers for whence.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/whencehq/whence/internal/config"
	"github.com/whencehq/whence/internal/git"
	"github.com/whencehq/whence/internal/report"
	"github.com/whencehq/whence/internal/runner"
)

// RunCommand holds the flag state for the run command.
type RunCommand struct {
	repo         string
	snapshot     string
	output       string
	sensitivity  int
	workers      int
	exclude      []string
	detectBinary bool
	verbose      bool
	trace        bool
	quiet        bool
	configFile   string
}

// NewRunCommand creates the analysis command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a snapshot against a cloned git repository",
		Long: `Run attributes each qualifying line in the snapshot to the commit that
first introduced its exact text, and writes per-file aggregate rows to a
summary CSV.

The snapshot directory and the cloned repo must share the same directory
structure: a snapshot file dir/file is looked up as path dir/file in the
repository's history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&rc.repo, "repo", "r", "",
		"path to the cloned git repo to compare against")
	cmd.Flags().StringVarP(&rc.snapshot, "snapshot", "s", "",
		"path to the directory containing the snapshot to analyze")
	cmd.Flags().StringVarP(&rc.output, "output", "o", config.DefaultOutput,
		"filename for the summary CSV")
	cmd.Flags().IntVarP(&rc.sensitivity, "sensitivity", "S", config.Default().Sensitivity,
		"lines with fewer trimmed characters than this are not considered for matching")
	cmd.Flags().IntVarP(&rc.workers, "workers", "j", 0,
		"number of concurrent workers (0 = one per CPU)")
	cmd.Flags().StringSliceVar(&rc.exclude, "exclude", config.DefaultExclude,
		"extensions and filenames to skip")
	cmd.Flags().BoolVar(&rc.detectBinary, "detect-binary", true,
		"sniff file content and skip files that look binary")
	cmd.Flags().BoolVarP(&rc.verbose, "verbose", "v", false,
		"report progress per file (forces a single worker)")
	cmd.Flags().BoolVarP(&rc.trace, "trace", "V", false,
		"trace every log and file line (forces a single worker)")
	cmd.Flags().BoolVarP(&rc.quiet, "quiet", "q", false,
		"suppress the status output")
	cmd.Flags().StringVar(&rc.configFile, "config", "",
		"path to a config file")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"run\": %w", err)
		}
	}()

	v := config.NewViper()
	for _, name := range []string{
		"repo", "snapshot", "output", "sensitivity", "workers",
		"exclude", "detect-binary", "verbose", "trace", "quiet",
	} {
		bindErr := v.BindPFlag(viperKey(name), cmd.Flags().Lookup(name))
		if bindErr != nil {
			return bindErr
		}
	}

	cfg, err := config.Load(v, rc.configFile)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		if errors.Is(err, config.ErrMissingRepo) ||
			errors.Is(err, config.ErrMissingSnapshot) {
			_ = cmd.Usage()
		}

		return err
	}

	if cfg.Trace {
		configureLogging(slog.LevelDebug)
	} else {
		configureLogging(slog.LevelInfo)
	}

	ctx := context.Background()

	ok, err := git.IsRepoRoot(ctx, cfg.RepoPath)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%s does not look like a git repository", cfg.RepoPath)
	}

	sink, err := report.NewCSVSink(cfg.OutputPath)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(os.Stdout, cfg.Verbose, cfg.Quiet)

	r := runner.New(cfg, git.RepoSource{RepoPath: cfg.RepoPath}, sink, printer)

	sum, runErr := r.Run(ctx)

	closeErr := sink.Close()

	if runErr != nil {
		return runErr
	}

	if closeErr != nil {
		return closeErr
	}

	printer.Done(sum)

	return nil
}

// Flag names use dashes, viper keys use underscores.
func viperKey(flagName string) string {
	if flagName == "detect-binary" {
		return "detect_binary"
	}

	return flagName
}
