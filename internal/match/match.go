/*
* Decides which historical addition, if any, is the provenance of each
* line in a snapshot file.
 */
package match

import (
	"bufio"
	"bytes"

	"github.com/whencehq/whence/internal/history"
)

// DefaultSensitivity is the minimum trimmed length a line must have to be
// considered for matching. Shorter lines (braces, short keywords) match
// too many unrelated commits to attribute meaningfully.
const DefaultSensitivity = 5

const maxLineBytes = 1024 * 1024

// Result classifies the qualifying lines of one file. Lines shorter than
// the sensitivity threshold appear in neither count.
type Result struct {
	Contributions []history.PatchRecord // One per matched line, in file order
	Matched       int
	Unmatched     int
}

// File matches each qualifying line of content against the path's patch
// records.
//
// Records arrive in git log order, most recent commit first. A line's
// provenance is the *earliest* commit that ever added its exact text, so
// the scan runs oldest to newest and stops at the first hit. The most
// recent addition of identical text is usually a restore or a moved
// fragment, not new authorship.
//
// Content is compared byte-exactly after trimming; binary or non-UTF-8
// content is not special-cased and simply tends not to match.
func File(content []byte, records []history.PatchRecord, sensitivity int) (Result, error) {
	var res Result

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		trimmed := bytes.TrimSpace(scanner.Bytes())
		if len(trimmed) < sensitivity {
			continue
		}

		text := string(trimmed)

		found := false
		for i := len(records) - 1; i >= 0; i-- {
			if records[i].LineText == text {
				logger().Debug(
					"matched line",
					"text", text,
					"commit", records[i].CommitHash,
				)

				res.Contributions = append(res.Contributions, records[i])
				res.Matched++
				found = true

				break
			}
		}

		if !found {
			logger().Debug("unmatched line", "text", text)
			res.Unmatched++
		}
	}

	err := scanner.Err()
	if err != nil {
		// Counts so far are still good; the caller decides how loudly
		// to complain.
		return res, err
	}

	return res, nil
}
