package format_test

import (
	"testing"

	"github.com/whencehq/whence/internal/format"
)

func TestAbbrev(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		max      int
		expected string
	}{
		{"short enough", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello w…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := format.Abbrev(tc.s, tc.max)
			if got != tc.expected {
				t.Errorf("Abbrev(%q, %d) = %q, expected %q",
					tc.s,
					tc.max,
					got,
					tc.expected,
				)
			}
		})
	}
}

func TestAbbrevHead(t *testing.T) {
	got := format.AbbrevHead("/very/long/path/to/file.txt", 12)
	if got != "…to/file.txt" {
		t.Errorf("AbbrevHead() = %q, expected %q", got, "…to/file.txt")
	}

	got = format.AbbrevHead("short.txt", 12)
	if got != "short.txt" {
		t.Errorf("AbbrevHead() = %q, expected %q", got, "short.txt")
	}
}
