package tally_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/whencehq/whence/internal/history"
	"github.com/whencehq/whence/internal/tally"
)

var alice = history.PatchRecord{
	CommitHash:     "abc123",
	AuthorName:     "Alice",
	AuthorEmail:    "alice@x.com",
	AuthorDate:     "2020-01-01",
	CommitterName:  "Carol",
	CommitterEmail: "carol@x.com",
	CommitterDate:  "2020-01-02",
}

var bob = history.PatchRecord{
	CommitHash:     "def456",
	AuthorName:     "Bob",
	AuthorEmail:    "bob@x.com",
	AuthorDate:     "2021-06-15",
	CommitterName:  "Bob",
	CommitterEmail: "bob@x.com",
	CommitterDate:  "2021-06-15",
}

func TestFileTallyDedup(t *testing.T) {
	ft := tally.NewFileTally("f.txt")

	ft.Add(alice)
	ft.Add(bob)
	ft.Add(alice)
	ft.Add(alice)

	rows := ft.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byHash := map[string]int{}
	for _, row := range rows {
		if _, seen := byHash[row.CommitHash]; seen {
			t.Fatalf("duplicate row for commit %s", row.CommitHash)
		}

		byHash[row.CommitHash] = row.NumLines
	}

	if byHash["abc123"] != 3 {
		t.Errorf("abc123 row has %d lines, expected 3", byHash["abc123"])
	}

	if byHash["def456"] != 1 {
		t.Errorf("def456 row has %d lines, expected 1", byHash["def456"])
	}
}

func TestFileTallyRowFields(t *testing.T) {
	ft := tally.NewFileTally("f.txt")
	ft.Add(alice)

	rows := ft.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	expected := tally.Row{
		Key: tally.Key{
			Filename:       "f.txt",
			AuthorName:     "Alice",
			AuthorEmail:    "alice@x.com",
			AuthorDate:     "2020-01-01",
			CommitterName:  "Carol",
			CommitterEmail: "carol@x.com",
			CommitterDate:  "2020-01-02",
			CommitHash:     "abc123",
		},
		NumLines: 1,
	}

	if diff := cmp.Diff(expected, rows[0]); diff != "" {
		t.Errorf("row is wrong:\n%s", diff)
	}
}

func TestFileTallyUnmatchedRow(t *testing.T) {
	ft := tally.NewFileTally("f.txt")
	ft.Add(alice)
	ft.Add(alice)
	ft.AddUnmatched(1)

	rows := ft.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	last := rows[len(rows)-1]

	expected := tally.Row{
		Key: tally.Key{
			Filename:       "f.txt",
			AuthorName:     tally.UnmatchedMarker,
			AuthorEmail:    tally.UnmatchedMarker,
			AuthorDate:     tally.UnmatchedMarker,
			CommitterName:  tally.UnmatchedMarker,
			CommitterEmail: tally.UnmatchedMarker,
			CommitterDate:  tally.UnmatchedMarker,
			CommitHash:     tally.UnmatchedHash,
		},
		NumLines: 1,
	}

	if diff := cmp.Diff(expected, last); diff != "" {
		t.Errorf("unmatched row is wrong:\n%s", diff)
	}
}

func TestFileTallyNoUnmatchedRowWhenAllMatched(t *testing.T) {
	ft := tally.NewFileTally("f.txt")
	ft.Add(alice)
	ft.AddUnmatched(0)

	for _, row := range ft.Rows() {
		if row.CommitHash == tally.UnmatchedHash {
			t.Error("unmatched row emitted even though every line matched")
		}
	}
}

func TestFileTallyEmptyHistory(t *testing.T) {
	// Extraction failure: five qualifying lines, nothing to match.
	ft := tally.NewFileTally("f.txt")
	ft.AddUnmatched(5)

	rows := ft.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected only the unmatched row, got %d rows", len(rows))
	}

	if rows[0].NumLines != 5 {
		t.Errorf("unmatched row has %d lines, expected 5", rows[0].NumLines)
	}
}

func TestFileTallyCounters(t *testing.T) {
	ft := tally.NewFileTally("f.txt")
	ft.Add(alice)
	ft.Add(bob)
	ft.Add(alice)
	ft.AddUnmatched(2)

	if ft.Matched() != 3 {
		t.Errorf("Matched() = %d, expected 3", ft.Matched())
	}

	if ft.Unmatched() != 2 {
		t.Errorf("Unmatched() = %d, expected 2", ft.Unmatched())
	}
}

func TestFileTallyRowsStableOrder(t *testing.T) {
	ft := tally.NewFileTally("f.txt")
	ft.Add(bob)
	ft.Add(alice)
	ft.Add(bob)

	rows := ft.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// First-seen order.
	if rows[0].CommitHash != "def456" || rows[1].CommitHash != "abc123" {
		t.Errorf(
			"rows out of order: got %s then %s",
			rows[0].CommitHash,
			rows[1].CommitHash,
		)
	}
}
