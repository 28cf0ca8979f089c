/*
* Writes per-file aggregate rows to the summary CSV.
 */
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/whencehq/whence/internal/tally"
)

// The canonical output record shape. Consumers key on this field order.
var csvHeader = []string{
	"File",
	"Author name",
	"Author email",
	"Author date",
	"Committer name",
	"Committer email",
	"Committer date",
	"Commit",
	"Number of lines",
}

// FileResult is one file's finished aggregate: immutable, fully formed
// rows plus the summary counters for that file.
type FileResult struct {
	Path      string
	Rows      []tally.Row
	Matched   int
	Unmatched int
}

// Sink consumes finished per-file results. Implementations are not
// required to be goroutine-safe; a single writer goroutine owns the sink
// for the lifetime of a run.
type Sink interface {
	WriteResult(res FileResult) error
	Close() error
}

// CSVSink renders results to a CSV file, one row per aggregate, with a
// UTF-8 byte-order mark ahead of the header for the benefit of
// spreadsheet imports.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create output file: %w", err)
	}

	_, err = f.WriteString("\xef\xbb\xbf")
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not write BOM: %w", err)
	}

	w := csv.NewWriter(f)

	err = w.Write(csvHeader)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not write CSV header: %w", err)
	}

	return &CSVSink{f: f, w: w}, nil
}

func (s *CSVSink) WriteResult(res FileResult) error {
	for _, row := range res.Rows {
		err := s.w.Write([]string{
			row.Filename,
			row.AuthorName,
			row.AuthorEmail,
			row.AuthorDate,
			row.CommitterName,
			row.CommitterEmail,
			row.CommitterDate,
			row.CommitHash,
			strconv.Itoa(row.NumLines),
		})
		if err != nil {
			return fmt.Errorf("could not write row for %s: %w", res.Path, err)
		}
	}

	return nil
}

func (s *CSVSink) Close() error {
	s.w.Flush()

	err := s.w.Error()
	if err != nil {
		s.f.Close()
		return fmt.Errorf("could not flush CSV: %w", err)
	}

	return s.f.Close()
}
