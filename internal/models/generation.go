package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileKind is the coarse category of an uploaded study document, derived
// from its filename extension.
type FileKind string

const (
	FileKindPDF         FileKind = "pdf"
	FileKindImage       FileKind = "image"
	FileKindAudio       FileKind = "audio"
	FileKindUnsupported FileKind = "unsupported"
)

// ClassifyFileKind maps a filename extension to a FileKind.
func ClassifyFileKind(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".png", ".jpg", ".jpeg":
		return FileKindImage
	case ".mp3", ".wav":
		return FileKindAudio
	default:
		return FileKindUnsupported
	}
}

// UploadedDocument is a single user upload. It lives for exactly one
// generation cycle and is never persisted.
type UploadedDocument struct {
	Filename string
	Data     []byte
	Kind     FileKind
}

func NewUploadedDocument(filename string, data []byte) *UploadedDocument {
	return &UploadedDocument{
		Filename: filename,
		Data:     data,
		Kind:     ClassifyFileKind(filename),
	}
}

// Stem returns the base filename without its extension, used for the
// subject-expert framing in the instruction prompt.
func (d *UploadedDocument) Stem() string {
	base := filepath.Base(d.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Difficulty levels and answer formats selectable per request.
const (
	DifficultyStandard = "standard"
	DifficultyHard     = "hard"
	DifficultyEasy     = "easy"

	FormatEssay          = "essay"
	FormatQA             = "qa"
	FormatMultipleChoice = "multiple-choice"
)

// GenerationOptions are the UI selections for one request. Immutable for
// the duration of the cycle.
type GenerationOptions struct {
	Difficulty string `json:"difficulty"`
	Format     string `json:"format"`
	Focus      string `json:"focus,omitempty"`
}

// Validate returns field-level problems, empty when the options are usable.
func (o GenerationOptions) Validate() map[string]string {
	fields := map[string]string{}

	switch o.Difficulty {
	case DifficultyStandard, DifficultyHard, DifficultyEasy:
	default:
		fields["difficulty"] = "must be one of: standard, hard, easy"
	}

	switch o.Format {
	case FormatEssay, FormatQA, FormatMultipleChoice:
	default:
		fields["format"] = "must be one of: essay, qa, multiple-choice"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// PartType tags one unit of model input.
type PartType string

const (
	PartTypeText    PartType = "text"
	PartTypeFileRef PartType = "file_ref"
)

// ContentPart is one unit of input handed to the model: either text or an
// opaque reference to a previously uploaded binary.
type ContentPart struct {
	Type     PartType
	Text     string
	FileURI  string
	MIMEType string
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: PartTypeText, Text: text}
}

func FileRefPart(uri, mimeType string) ContentPart {
	return ContentPart{Type: PartTypeFileRef, FileURI: uri, MIMEType: mimeType}
}

// GenerationResult is the outcome of one cycle: generated text or an error
// descriptor. The latest result is held in a process-wide slot that is
// reset at the start of each new request.
type GenerationResult struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	FileKind  FileKind  `json:"file_kind"`
	Text      string    `json:"text,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	ErrorMsg  string    `json:"error_message,omitempty"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}

func (r GenerationResult) Failed() bool {
	return r.ErrorCode != ""
}

// Generation is a persisted history row for one completed cycle.
type Generation struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	FileKind   string    `json:"file_kind"`
	Difficulty string    `json:"difficulty"`
	Format     string    `json:"format"`
	Focus      string    `json:"focus,omitempty"`
	ResultText string    `json:"result_text,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	ErrorMsg   string    `json:"error_message,omitempty"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
