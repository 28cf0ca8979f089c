package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/whencehq/whence/internal/format"
)

const maxPathWidth = 96

// Summary holds the counters for a whole run.
type Summary struct {
	Files     int
	Matched   int
	Unmatched int
	Failures  int
	Elapsed   time.Duration
	Output    string
}

// Printer renders run progress and the final summary to the terminal.
// Per-file output only appears in verbose mode, which runs
// single-threaded, so Printer needs no locking.
type Printer struct {
	out     io.Writer
	verbose bool
	quiet   bool
	total   int

	green *color.Color
	faint *color.Color
}

func NewPrinter(out *os.File, verbose bool, quiet bool) *Printer {
	p := &Printer{
		out:     out,
		verbose: verbose,
		quiet:   quiet,
		green:   color.New(color.FgGreen),
		faint:   color.New(color.Faint),
	}

	if !term.IsTerminal(int(out.Fd())) {
		p.green.DisableColor()
		p.faint.DisableColor()
	}

	return p
}

// Start announces the run. The total feeds the "(i of n)" progress shown
// per file in verbose mode.
func (p *Printer) Start(totalFiles int) {
	p.total = totalFiles

	if p.quiet {
		return
	}

	if totalFiles > 0 {
		fmt.Fprintf(
			p.out,
			"Beginning analysis of %s files.\n",
			humanize.Comma(int64(totalFiles)),
		)
	} else {
		fmt.Fprintln(p.out, "Beginning analysis.")
	}
}

// FileDone reports one analyzed file in verbose mode.
func (p *Printer) FileDone(res FileResult, index int) {
	if !p.verbose {
		return
	}

	fmt.Fprintf(
		p.out,
		" Analyzed file (%d of %d): %s\n",
		index,
		p.total,
		format.AbbrevHead(res.Path, maxPathWidth),
	)
	p.faint.Fprintf(
		p.out,
		"  Matched lines: %d\n  Unmatched lines: %d\n",
		res.Matched,
		res.Unmatched,
	)
}

// Done renders the run summary table and the closing status line.
func (p *Printer) Done(s Summary) {
	if p.quiet {
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(p.out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendRow(table.Row{"Files analyzed", humanize.Comma(int64(s.Files))})
	tbl.AppendRow(table.Row{"Lines matched", humanize.Comma(int64(s.Matched))})
	tbl.AppendRow(table.Row{"Lines unmatched", humanize.Comma(int64(s.Unmatched))})

	if s.Failures > 0 {
		tbl.AppendRow(table.Row{"Files with errors", humanize.Comma(int64(s.Failures))})
	}

	fmt.Fprintln(p.out)
	tbl.Render()
	fmt.Fprintln(p.out)

	p.green.Fprintf(
		p.out,
		"Analysis complete in %s. Results written to %s\n",
		s.Elapsed.Round(time.Millisecond),
		s.Output,
	)
}
