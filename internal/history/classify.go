package history

import "strings"

// What a single raw line of git log output means to the parser.
type lineKind int

const (
	kindIgnored lineKind = iota
	kindHash
	kindAuthorName
	kindAuthorEmail
	kindAuthorDate
	kindCommitterName
	kindCommitterEmail
	kindCommitterDate
	kindAddition
)

type classified struct {
	kind  lineKind
	value string // Header value or trimmed added-line text
}

// Diff metadata we skip outright. "+++ " and "--- " must be ruled out
// before the addition check or they would read as added lines.
var ignoredPrefixes = []string{
	"diff --git ",
	"index ",
	"+++ ",
	"--- ",
	"@@ -",
	"rename from ",
	"rename to ",
	"parents: ",
	"    ",
}

var headerKinds = []struct {
	prefix string
	kind   lineKind
}{
	{"hash: ", kindHash},
	{"author_name: ", kindAuthorName},
	{"author_email: ", kindAuthorEmail},
	{"author_date: ", kindAuthorDate},
	{"committer_name: ", kindCommitterName},
	{"committer_email: ", kindCommitterEmail},
	{"committer_date: ", kindCommitterDate},
}

// classify buckets one raw line of log output. Anything unrecognized is
// ignored; only lines the parser acts on get a kind of their own.
func classify(line string) classified {
	if len(line) == 0 {
		return classified{kind: kindIgnored}
	}

	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(line, prefix) {
			return classified{kind: kindIgnored}
		}
	}

	for _, h := range headerKinds {
		if value, ok := strings.CutPrefix(line, h.prefix); ok {
			return classified{kind: h.kind, value: value}
		}
	}

	if rest, ok := strings.CutPrefix(line, "+"); ok {
		text := strings.TrimSpace(rest)
		if len(text) > 0 {
			return classified{kind: kindAddition, value: text}
		}
	}

	// Removal lines, context lines, EndPatch terminators and anything
	// else we did not ask for.
	return classified{kind: kindIgnored}
}
