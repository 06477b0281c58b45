package services

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitIntoChunks_Sizes(t *testing.T) {
	page := strings.Repeat("a", 2500)

	chunks := SplitIntoChunks([]string{page}, 1000, 0)

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 1000 || len(chunks[2]) != 500 {
		t.Errorf("Unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplitIntoChunks_Deterministic(t *testing.T) {
	pages := []string{strings.Repeat("lecture notes ", 200), strings.Repeat("x", 1500)}

	first := SplitIntoChunks(pages, 1000, 0)
	second := SplitIntoChunks(pages, 1000, 0)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical chunk sequences for identical input and parameters")
	}
}

func TestSplitIntoChunks_Overlap(t *testing.T) {
	page := strings.Repeat("ab", 600) // 1200 chars

	chunks := SplitIntoChunks([]string{page}, 500, 100)

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks with overlap, got %d", len(chunks))
	}
	// Each chunk after the first repeats the previous chunk's last 100 chars.
	tail := chunks[0][len(chunks[0])-100:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Error("Expected second chunk to start with the first chunk's overlap tail")
	}
}

func TestSplitIntoChunks_ShortPage(t *testing.T) {
	chunks := SplitIntoChunks([]string{"short page"}, 1000, 0)

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short page" {
		t.Errorf("Expected chunk to equal page text, got %q", chunks[0])
	}
}

func TestSplitIntoChunks_SkipsEmptyPages(t *testing.T) {
	chunks := SplitIntoChunks([]string{"", "content", ""}, 1000, 0)

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplitIntoChunks_MultibyteSafe(t *testing.T) {
	page := strings.Repeat("日本語のテキスト", 100)

	chunks := SplitIntoChunks([]string{page}, 50, 0)

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != page {
		t.Error("Chunking must not split multibyte characters or lose text")
	}
}

func TestNormalizeExtractedText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"trims line whitespace", "  a  \n  b  ", "a\nb"},
		{"normalizes CRLF", "a\r\nb\rc", "a\nb\nc"},
		{"empty input", "   \n  \n ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := normalizeExtractedText(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
