/*
* Enumerates the snapshot tree as per-directory batches of files.
*
* The walker is the file-enumeration collaborator of the engine: it
* excludes version-control metadata, applies the extension denylist, and
* optionally sniffs file content so known-binary files never reach the
* matcher.
 */
package walk

import (
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// How much of a file enry gets to look at when deciding whether the
// content is binary.
const sniffLen = 8000

// Batch is one directory's worth of work: the directory path and the
// filenames in it that are eligible for analysis.
type Batch struct {
	Dir   string
	Files []string
}

// Options controls which files are eligible.
type Options struct {
	// Exclude holds extensions (".png") matched as filename suffixes and
	// bare names ("LICENSE") matched exactly.
	Exclude []string

	// DetectBinary additionally sniffs file content with enry and drops
	// files that look binary regardless of extension.
	DetectBinary bool
}

// Snapshot walks the tree rooted at root and yields one batch per
// directory that contains eligible files. Directories named ".git" are
// never descended into. An unreadable directory yields its error and the
// walk continues with its siblings.
func Snapshot(root string, opts Options) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		walkDir(root, opts, yield)
	}
}

// Count returns the number of eligible files under root, for progress
// reporting. Unreadable directories count as empty.
func Count(root string, opts Options) int {
	n := 0
	for batch, err := range Snapshot(root, opts) {
		if err != nil {
			continue
		}

		n += len(batch.Files)
	}

	return n
}

func walkDir(
	dir string,
	opts Options,
	yield func(Batch, error) bool,
) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield(Batch{Dir: dir}, err)
	}

	var files []string
	var subdirs []string

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() {
			if name == ".git" {
				continue
			}

			subdirs = append(subdirs, name)

			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		if excluded(name, opts.Exclude) {
			logger().Debug("skipping excluded file", "dir", dir, "name", name)
			continue
		}

		if opts.DetectBinary && isBinary(filepath.Join(dir, name)) {
			logger().Debug("skipping binary file", "dir", dir, "name", name)
			continue
		}

		files = append(files, name)
	}

	if len(files) > 0 {
		if !yield(Batch{Dir: dir, Files: files}, nil) {
			return false
		}
	}

	for _, sub := range subdirs {
		if !walkDir(filepath.Join(dir, sub), opts, yield) {
			return false
		}
	}

	return true
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, ".") {
			if strings.HasSuffix(name, pattern) {
				return true
			}
		} else if name == pattern {
			return true
		}
	}

	return false
}

// isBinary sniffs the head of the file. Unreadable files are not
// filtered here; the worker will surface the read error later.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sample := make([]byte, sniffLen)

	n, err := f.Read(sample)
	if err != nil && err != io.EOF {
		return false
	}

	return enry.IsBinary(sample[:n])
}
