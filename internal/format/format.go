/*
* Utility functions for formatting output.
 */
package format

// Print string with max length, truncating with ellipsis.
func Abbrev(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-1] + "…"
}

// Like Abbrev, but truncates the head. Used for paths, where the
// leading directories matter less than the filename.
func AbbrevHead(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return "…" + s[len(s)-max+1:]
}
