package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Chunk parameters for PDF context extraction. Page text is split into
// fixed-size character chunks with no overlap, then joined with blank lines.
const (
	ChunkSize    = 1000
	ChunkOverlap = 0
)

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// LoadPDFPages returns the plain text of each page in the document.
func (s *FileExtractService) LoadPDFPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text := normalizeExtractedText(content)
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text found in pdf")
	}

	return pages, nil
}

// ExtractPDFContext loads the document pages, splits them into chunks and
// joins the chunk text into a single context string.
func (s *FileExtractService) ExtractPDFContext(path string) (string, error) {
	pages, err := s.LoadPDFPages(path)
	if err != nil {
		return "", err
	}

	chunks := SplitIntoChunks(pages, ChunkSize, ChunkOverlap)
	return strings.Join(chunks, "\n\n"), nil
}

// SplitIntoChunks splits each page into chunks of at most size characters.
// An overlap greater than zero repeats the trailing overlap characters of
// one chunk at the start of the next. Splitting is deterministic: the same
// pages and parameters always yield the same chunk sequence.
func SplitIntoChunks(pages []string, size, overlap int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	for _, page := range pages {
		runes := []rune(page)
		if len(runes) == 0 {
			continue
		}

		step := size - overlap
		for start := 0; start < len(runes); start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[start:end]))
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
