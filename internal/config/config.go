// Package config holds the run configuration for whence.
//
// The configuration is built once at startup and passed by value into
// each component. Nothing in the engine reads ambient global state, so
// workers cannot race on shared options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/whencehq/whence/internal/match"
)

// DefaultOutput is where the summary CSV lands unless overridden.
const DefaultOutput = "whence.csv"

// DefaultExclude lists extensions (and exact filenames) that are skipped
// by default because their content is binary or otherwise not worth
// attributing line by line.
var DefaultExclude = []string{
	".swp", ".bin", ".png", ".jpg", ".gif", ".pdf", ".eps", ".ps",
	"LICENSE",
}

var (
	// ErrMissingRepo indicates the -r/--repo argument was not given.
	ErrMissingRepo = errors.New("path to the cloned git repo is required (-r)")
	// ErrMissingSnapshot indicates the -s/--snapshot argument was not given.
	ErrMissingSnapshot = errors.New("path to the snapshot directory is required (-s)")
	// ErrConflictingOutput indicates --quiet was combined with a verbosity flag.
	ErrConflictingOutput = errors.New("--quiet cannot be combined with --verbose or --trace")
)

// Config is the full set of options for one analysis run. Field tags use
// mapstructure for viper unmarshalling.
type Config struct {
	RepoPath     string   `mapstructure:"repo"`
	SnapshotPath string   `mapstructure:"snapshot"`
	OutputPath   string   `mapstructure:"output"`
	Sensitivity  int      `mapstructure:"sensitivity"`
	Workers      int      `mapstructure:"workers"`
	Exclude      []string `mapstructure:"exclude"`
	DetectBinary bool     `mapstructure:"detect_binary"`
	Verbose      bool     `mapstructure:"verbose"`
	Trace        bool     `mapstructure:"trace"`
	Quiet        bool     `mapstructure:"quiet"`
}

// Default returns the configuration used when no flag, env var, or
// config file says otherwise.
func Default() Config {
	return Config{
		OutputPath:   DefaultOutput,
		Sensitivity:  match.DefaultSensitivity,
		Exclude:      DefaultExclude,
		DetectBinary: true,
	}
}

// Validate checks required options, rejects inconsistent combinations,
// and normalizes the repo and snapshot paths to absolute form. A
// validation error is fatal at startup; no analysis runs after one.
func (c *Config) Validate() error {
	if c.RepoPath == "" {
		return ErrMissingRepo
	}

	if c.SnapshotPath == "" {
		return ErrMissingSnapshot
	}

	if c.Quiet && (c.Verbose || c.Trace) {
		return ErrConflictingOutput
	}

	if c.Sensitivity < 0 {
		return fmt.Errorf("sensitivity must not be negative, got %d", c.Sensitivity)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	repo, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return fmt.Errorf("could not resolve repo path: %w", err)
	}

	snapshot, err := filepath.Abs(c.SnapshotPath)
	if err != nil {
		return fmt.Errorf("could not resolve snapshot path: %w", err)
	}

	info, err := os.Stat(snapshot)
	if err != nil {
		return fmt.Errorf("cannot read snapshot directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("snapshot path %s is not a directory", snapshot)
	}

	c.RepoPath = repo
	c.SnapshotPath = snapshot

	return nil
}

// EffectiveWorkers is the worker pool size to actually use. Verbose and
// trace output interleaves uselessly across workers, so either mode
// forces single-threaded execution. Zero means one worker per available
// CPU.
func (c Config) EffectiveWorkers() int {
	if c.Verbose || c.Trace {
		return 1
	}

	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.GOMAXPROCS(0)
}
