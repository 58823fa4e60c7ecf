package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTranscript(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short input untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"ascii cut at limit", "hello world", 5, "hello"},
		{"multibyte rune not split", "aé", 2, "a"}, // é is 2 bytes starting at index 1
		{"cut lands on rune start", "aéb", 3, "aé"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateTranscript(tc.input, tc.max)
			if got != tc.want {
				t.Errorf("truncateTranscript(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result %q is not valid UTF-8", got)
			}
		})
	}
}

func TestTruncateTranscript_LongMultibyteText(t *testing.T) {
	// A transcript of 3-byte runes whose boundaries never align with the cap.
	input := strings.Repeat("알고리즘 ", 2000)

	got := truncateTranscript(input, maxTranscriptChars)
	if len(got) > maxTranscriptChars {
		t.Fatalf("expected at most %d bytes, got %d", maxTranscriptChars, len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a UTF-8 sequence")
	}
}
