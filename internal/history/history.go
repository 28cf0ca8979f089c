/*
* Extracts line-addition history for a tracked path from git log output.
*
* The extractor walks the raw log text for one path and records every
* added line along with the identity of the commit that added it. Removals
* are never recorded; provenance is defined positively, as "who added this
* exact text".
 */
package history

import (
	"context"
	"iter"
	"strings"

	"github.com/whencehq/whence/internal/git"
)

// Unknown is the sentinel for identity fields the log never supplied.
const Unknown = "(Unknown)"

// PatchRecord is one line added in one commit, as reported by git history
// for a specific path. LineText is taken verbatim from the "+" side of a
// diff hunk and is stored trimmed; whitespace-only lines are never
// recorded.
type PatchRecord struct {
	CommitHash     string
	AuthorName     string
	AuthorEmail    string
	AuthorDate     string
	CommitterName  string
	CommitterEmail string
	CommitterDate  string
	LineText       string
}

// The running commit context while walking log output. Fields reset to
// Unknown whenever a new hash line starts a new commit.
type commitContext struct {
	hash           string
	authorName     string
	authorEmail    string
	authorDate     string
	committerName  string
	committerEmail string
	committerDate  string
}

func newCommitContext(hash string) commitContext {
	return commitContext{
		hash:           hash,
		authorName:     Unknown,
		authorEmail:    Unknown,
		authorDate:     Unknown,
		committerName:  Unknown,
		committerEmail: Unknown,
		committerDate:  Unknown,
	}
}

// Names and emails keep their text as-is except that single quotes gain a
// backslash escape, matching what downstream consumers of the CSV expect.
func escapeIdentity(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// Dates keep only their calendar-date prefix; time of day and timezone
// play no part in grouping.
func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}

	return s
}

// Parse turns raw git log output lines into the ordered PatchRecord
// sequence for a path. Records come out in the order git log emits
// commits, most recent first.
func Parse(lines iter.Seq[string]) []PatchRecord {
	var records []PatchRecord
	cur := newCommitContext("")

	for line := range lines {
		c := classify(line)

		switch c.kind {
		case kindIgnored:
			continue
		case kindHash:
			cur = newCommitContext(c.value)
		case kindAuthorName:
			cur.authorName = escapeIdentity(c.value)
		case kindAuthorEmail:
			cur.authorEmail = escapeIdentity(c.value)
		case kindAuthorDate:
			cur.authorDate = truncateDate(c.value)
		case kindCommitterName:
			cur.committerName = escapeIdentity(c.value)
		case kindCommitterEmail:
			cur.committerEmail = escapeIdentity(c.value)
		case kindCommitterDate:
			cur.committerDate = truncateDate(c.value)
		case kindAddition:
			records = append(records, PatchRecord{
				CommitHash:     cur.hash,
				AuthorName:     cur.authorName,
				AuthorEmail:    cur.authorEmail,
				AuthorDate:     cur.authorDate,
				CommitterName:  cur.committerName,
				CommitterEmail: cur.committerEmail,
				CommitterDate:  cur.committerDate,
				LineText:       c.value,
			})
		}
	}

	return records
}

// ForPath extracts the full addition history for one tracked path.
//
// A failed or empty git invocation yields an empty sequence; a single
// file's missing history must never abort the run, so errors are logged
// and swallowed here.
func ForPath(ctx context.Context, src git.LogSource, relPath string) []PatchRecord {
	lines, closer, err := src.FileLog(ctx, relPath)
	if err != nil {
		logger().Warn(
			"history extraction failed",
			"path", relPath,
			"error", err,
		)

		return nil
	}

	records := Parse(lines)

	err = closer()
	if err != nil {
		logger().Warn(
			"git log did not exit cleanly",
			"path", relPath,
			"error", err,
		)

		return nil
	}

	return records
}

// ResolveLine asks git directly, via pickaxe search, for a commit whose
// diff introduced the given literal text. This is the per-line
// alternative to scanning a full file history in-process: one subprocess
// per line, headers only, and the commit returned is whichever git's own
// search reports first, which is not necessarily the oldest.
func ResolveLine(ctx context.Context, src git.LogSource, lineText string) (PatchRecord, bool) {
	lines, closer, err := src.PickaxeLog(ctx, lineText)
	if err != nil {
		logger().Warn(
			"pickaxe search failed",
			"error", err,
		)

		return PatchRecord{}, false
	}

	cur := newCommitContext("")

	for line := range lines {
		c := classify(line)

		// Only the first commit's headers count.
		if c.kind == kindHash && cur.hash != "" {
			break
		}

		switch c.kind {
		case kindHash:
			cur = newCommitContext(c.value)
		case kindAuthorName:
			cur.authorName = escapeIdentity(c.value)
		case kindAuthorEmail:
			cur.authorEmail = escapeIdentity(c.value)
		case kindAuthorDate:
			cur.authorDate = truncateDate(c.value)
		case kindCommitterName:
			cur.committerName = escapeIdentity(c.value)
		case kindCommitterEmail:
			cur.committerEmail = escapeIdentity(c.value)
		case kindCommitterDate:
			cur.committerDate = truncateDate(c.value)
		}
	}

	err = closer()
	if err != nil {
		logger().Warn("git log -S did not exit cleanly", "error", err)
		return PatchRecord{}, false
	}

	if cur.hash == "" {
		return PatchRecord{}, false
	}

	return PatchRecord{
		CommitHash:     cur.hash,
		AuthorName:     cur.authorName,
		AuthorEmail:    cur.authorEmail,
		AuthorDate:     cur.authorDate,
		CommitterName:  cur.committerName,
		CommitterEmail: cur.committerEmail,
		CommitterDate:  cur.committerDate,
		LineText:       strings.TrimSpace(lineText),
	}, true
}
