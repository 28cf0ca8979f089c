/*
* Drives the analysis: fans per-directory batches of files out to a
* bounded worker pool and funnels finished per-file aggregates to a
* single writer goroutine that owns the output sink.
 */
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/whencehq/whence/internal/config"
	"github.com/whencehq/whence/internal/git"
	"github.com/whencehq/whence/internal/history"
	"github.com/whencehq/whence/internal/match"
	"github.com/whencehq/whence/internal/report"
	"github.com/whencehq/whence/internal/tally"
	"github.com/whencehq/whence/internal/walk"
)

// Runner processes every eligible file in the snapshot exactly once.
type Runner struct {
	cfg      config.Config
	src      git.LogSource
	sink     report.Sink
	printer  *report.Printer
	failures atomic.Int64
}

func New(
	cfg config.Config,
	src git.LogSource,
	sink report.Sink,
	printer *report.Printer,
) *Runner {
	return &Runner{
		cfg:     cfg,
		src:     src,
		sink:    sink,
		printer: printer,
	}
}

// Run walks the snapshot to exhaustion and returns the run summary.
//
// Per-file failures degrade that file's rows and never abort the run;
// only a failure to write to the sink is returned as an error.
func (r *Runner) Run(ctx context.Context) (_ report.Summary, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running analysis: %w", err)
		}
	}()

	start := time.Now()

	opts := walk.Options{
		Exclude:      r.cfg.Exclude,
		DetectBinary: r.cfg.DetectBinary,
	}

	// The total is only worth a second walk when we are going to show
	// per-file progress.
	total := 0
	if r.cfg.Verbose {
		total = walk.Count(r.cfg.SnapshotPath, opts)
	}

	r.printer.Start(total)

	nWorkers := r.cfg.EffectiveWorkers()
	logger().Debug("starting worker pool", "workers", nWorkers)

	units := make(chan walk.Batch)
	results := make(chan report.FileResult, nWorkers)

	g, ctx := errgroup.WithContext(ctx)

	// Producer. Walks the snapshot and feeds batches to the pool.
	g.Go(func() error {
		defer close(units)

		for batch, walkErr := range walk.Snapshot(r.cfg.SnapshotPath, opts) {
			if walkErr != nil {
				logger().Warn(
					"could not read directory",
					"dir", batch.Dir,
					"error", walkErr,
				)
				r.failures.Add(1)

				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case units <- batch:
			}
		}

		return nil
	})

	// Workers. Each runs the extract/match/tally pipeline for a whole
	// unit before taking the next; per-file state never crosses workers.
	var workers errgroup.Group
	for range nWorkers {
		workers.Go(func() error {
			r.work(ctx, units, results)
			return nil
		})
	}

	g.Go(func() error {
		_ = workers.Wait() // Workers never return errors
		close(results)
		return nil
	})

	// Writer. The single goroutine with access to the sink, so row
	// batches from different files are never interleaved.
	var sum report.Summary
	g.Go(func() error {
		i := 0
		for res := range results {
			i++

			writeErr := r.sink.WriteResult(res)
			if writeErr != nil {
				return writeErr
			}

			r.printer.FileDone(res, i)

			sum.Files++
			sum.Matched += res.Matched
			sum.Unmatched += res.Unmatched
		}

		return nil
	})

	err = g.Wait()
	if err != nil {
		return report.Summary{}, err
	}

	sum.Failures = int(r.failures.Load())
	sum.Elapsed = time.Since(start)
	sum.Output = r.cfg.OutputPath

	return sum, nil
}

func (r *Runner) work(
	ctx context.Context,
	units <-chan walk.Batch,
	results chan<- report.FileResult,
) {
	for batch := range units {
		for _, name := range batch.Files {
			res := r.processFile(ctx, batch.Dir, name)

			select {
			case <-ctx.Done():
				return
			case results <- res:
			}
		}
	}
}

// processFile runs the full pipeline for one file. Any failure along the
// way degrades the result, worst case to zero rows, and is never allowed
// to take down the worker.
func (r *Runner) processFile(
	ctx context.Context,
	dir string,
	name string,
) (res report.FileResult) {
	path := filepath.Join(dir, name)
	res.Path = path

	defer func() {
		if p := recover(); p != nil {
			logger().Error("panic while processing file", "path", path, "panic", p)
			r.failures.Add(1)
			res = report.FileResult{Path: path}
		}
	}()

	relPath, err := filepath.Rel(r.cfg.SnapshotPath, path)
	if err != nil {
		logger().Warn("could not relativize path", "path", path, "error", err)
		r.failures.Add(1)

		return res
	}

	records := history.ForPath(ctx, r.src, filepath.ToSlash(relPath))

	content, err := os.ReadFile(path)
	if err != nil {
		logger().Warn("could not read file", "path", path, "error", err)
		r.failures.Add(1)

		return res
	}

	matched, err := match.File(content, records, r.cfg.Sensitivity)
	if err != nil {
		// Keep whatever matched before the failure.
		logger().Warn("error while matching file", "path", path, "error", err)
		r.failures.Add(1)
	}

	ft := tally.NewFileTally(path)
	for _, rec := range matched.Contributions {
		ft.Add(rec)
	}
	ft.AddUnmatched(matched.Unmatched)

	res.Rows = ft.Rows()
	res.Matched = matched.Matched
	res.Unmatched = matched.Unmatched

	return res
}
