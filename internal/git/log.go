/*
* Wraps access to the data we need from git.
*
* We invoke git directly as a subprocess and parse the output rather than
* linking against libgit2. A repository's history is only ever read, never
* written.
 */
package git

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

// Header fields requested per commit. Field names double as the parser's
// keys, so the two must stay in sync with package history.
const logFormat = "--pretty=format:" +
	"hash: %H%n" +
	"author_name: %an%n" +
	"author_email: %ae%n" +
	"author_date: %ai%n" +
	"committer_name: %cn%n" +
	"committer_email: %ce%n" +
	"committer_date: %ci%n" +
	"EndPatch"

// LogSource runs git history queries for paths inside one repository.
//
// The two call shapes correspond to the two extraction strategies: a full
// per-file log with patch text, and a pickaxe search for the commits that
// introduced a literal line of text.
type LogSource interface {
	FileLog(ctx context.Context, relPath string) (iter.Seq[string], func() error, error)
	PickaxeLog(ctx context.Context, lineText string) (iter.Seq[string], func() error, error)
}

// RepoSource is the real LogSource, invoking git against a local clone.
type RepoSource struct {
	RepoPath string
}

// FileLog runs git log for one tracked path, following renames and
// including patch text. Returns an iterator over raw output lines and a
// closer that must be called after iteration to reap the subprocess.
func (s RepoSource) FileLog(ctx context.Context, relPath string) (
	iter.Seq[string],
	func() error,
	error,
) {
	args := []string{
		"-C", s.RepoPath,
		"log",
		"--follow",
		"-p",
		"-M",
		logFormat,
		"--",
		relPath,
	}

	subprocess, err := run(ctx, args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run git log: %w", err)
	}

	lines, finish := subprocess.StdoutLines()

	closer := func() error {
		err := finish()
		if err != nil {
			return err
		}

		return subprocess.Wait()
	}

	return lines, closer, nil
}

// PickaxeLog runs git log -S for a literal line of text, returning header
// fields for at most one commit whose diff changed the number of
// occurrences of that text.
func (s RepoSource) PickaxeLog(ctx context.Context, lineText string) (
	iter.Seq[string],
	func() error,
	error,
) {
	args := []string{
		"-C", s.RepoPath,
		"log",
		"--max-count=1",
		"-S" + lineText,
		logFormat,
	}

	subprocess, err := run(ctx, args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run git log -S: %w", err)
	}

	lines, finish := subprocess.StdoutLines()

	closer := func() error {
		err := finish()
		if err != nil {
			return err
		}

		return subprocess.Wait()
	}

	return lines, closer, nil
}

// IsRepoRoot reports whether path is the top level of a git repository.
func IsRepoRoot(ctx context.Context, path string) (bool, error) {
	args := []string{
		"-C", path,
		"rev-parse",
		"--show-toplevel",
	}

	subprocess, err := run(ctx, args)
	if err != nil {
		return false, fmt.Errorf("failed to run git rev-parse: %w", err)
	}

	out, err := subprocess.StdoutText()
	if err != nil {
		return false, err
	}

	err = subprocess.Wait()
	if err != nil {
		return false, err
	}

	return len(out) > 0, nil
}

// LinesSource adapts canned log output to the LogSource interface. Used
// by tests to exercise the extraction pipeline without a git binary.
type LinesSource struct {
	Lines []string
}

func (s LinesSource) FileLog(_ context.Context, _ string) (
	iter.Seq[string],
	func() error,
	error,
) {
	return slices.Values(s.Lines), func() error { return nil }, nil
}

func (s LinesSource) PickaxeLog(_ context.Context, _ string) (
	iter.Seq[string],
	func() error,
	error,
) {
	return slices.Values(s.Lines), func() error { return nil }, nil
}
