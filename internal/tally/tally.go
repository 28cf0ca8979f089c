/*
* Handles aggregation of line matches into per-file rows.
 */
package tally

import (
	"github.com/whencehq/whence/internal/history"
)

// Sentinels for the residual row counting lines that matched nothing.
const (
	UnmatchedMarker = "Unmatched"
	UnmatchedHash   = "N/A"
)

// Key identifies one aggregate row. Two matched lines with an identical
// Key belong to the same row; uniqueness of the tuple within a file is
// the dedup invariant.
type Key struct {
	Filename       string
	AuthorName     string
	AuthorEmail    string
	AuthorDate     string
	CommitterName  string
	CommitterEmail string
	CommitterDate  string
	CommitHash     string
}

// KeyFor builds the aggregation key for a matched line.
func KeyFor(filename string, rec history.PatchRecord) Key {
	return Key{
		Filename:       filename,
		AuthorName:     rec.AuthorName,
		AuthorEmail:    rec.AuthorEmail,
		AuthorDate:     rec.AuthorDate,
		CommitterName:  rec.CommitterName,
		CommitterEmail: rec.CommitterEmail,
		CommitterDate:  rec.CommitterDate,
		CommitHash:     rec.CommitHash,
	}
}

// Row is one output record: a key plus how many of the file's current
// lines trace back to it.
type Row struct {
	Key
	NumLines int
}

// FileTally accumulates matches for a single file. It is owned by
// exactly one worker for the file's lifetime and is not safe for
// concurrent use; only the flushed rows cross a goroutine boundary.
type FileTally struct {
	filename  string
	rows      map[Key]*Row
	order     []Key // Keys in first-seen order, for stable output
	unmatched int
}

func NewFileTally(filename string) *FileTally {
	return &FileTally{
		filename: filename,
		rows:     map[Key]*Row{},
	}
}

// Add records one matched line. Insert-if-absent then increment: the
// first match for a key creates its row, every later match bumps the
// same row, so duplicate keys are a structural no-op rather than an
// error.
func (t *FileTally) Add(rec history.PatchRecord) {
	key := KeyFor(t.filename, rec)

	row, ok := t.rows[key]
	if !ok {
		row = &Row{Key: key}
		t.rows[key] = row
		t.order = append(t.order, key)
	}

	row.NumLines++
}

// AddUnmatched records n qualifying lines that matched no patch record.
func (t *FileTally) AddUnmatched(n int) {
	t.unmatched += n
}

// Matched returns the number of lines recorded so far across all rows.
func (t *FileTally) Matched() int {
	n := 0
	for _, row := range t.rows {
		n += row.NumLines
	}

	return n
}

// Unmatched returns the number of lines that matched nothing.
func (t *FileTally) Unmatched() int {
	return t.unmatched
}

// Rows flushes the per-file aggregate: one row per distinct key in
// first-seen order, then the single residual row if and only if any
// qualifying line went unmatched. The returned rows are fully formed and
// safe to hand across a concurrency boundary.
func (t *FileTally) Rows() []Row {
	rows := make([]Row, 0, len(t.order)+1)
	for _, key := range t.order {
		rows = append(rows, *t.rows[key])
	}

	if t.unmatched > 0 {
		rows = append(rows, Row{
			Key: Key{
				Filename:       t.filename,
				AuthorName:     UnmatchedMarker,
				AuthorEmail:    UnmatchedMarker,
				AuthorDate:     UnmatchedMarker,
				CommitterName:  UnmatchedMarker,
				CommitterEmail: UnmatchedMarker,
				CommitterDate:  UnmatchedMarker,
				CommitHash:     UnmatchedHash,
			},
			NumLines: t.unmatched,
		})
	}

	return rows
}
