package services

import (
	"fmt"
	"strings"

	"studymixer-backend/internal/models"
)

// Fixed instructional strings for the non-text kinds.
const (
	imageInstruction = "The following image is a lecture whiteboard photo or an important diagram. Read and understand the content of this image completely, then generate questions based on it."
	audioInstruction = "The following audio file is a lecture recording. First transcribe the content completely, then generate questions referring only to that transcript."
)

// Assembler builds the ordered content-part sequence submitted to the model
// for one generation cycle.
type Assembler struct {
	extract *FileExtractService
}

func NewAssembler(extract *FileExtractService) *Assembler {
	return &Assembler{extract: extract}
}

// Assemble produces the content parts for the given document. localPath is
// the document's on-disk copy (read only for PDF text extraction) and
// fileRef is the opaque reference to the already-uploaded binary. The
// instruction prompt is always the first element of the returned sequence.
func (a *Assembler) Assemble(doc *models.UploadedDocument, opts models.GenerationOptions, localPath string, fileRef models.ContentPart) ([]models.ContentPart, models.FileKind, error) {
	kind := models.ClassifyFileKind(doc.Filename)

	var parts []models.ContentPart
	switch kind {
	case models.FileKindPDF:
		// Both the extracted text and the original binary go to the model,
		// so it can use layout and embedded figures as well.
		contextText, err := a.extract.ExtractPDFContext(localPath)
		if err != nil {
			return nil, kind, &ExtractionError{Err: err}
		}
		parts = append(parts, models.TextPart(contextText), fileRef)

	case models.FileKindImage:
		parts = append(parts, models.TextPart(imageInstruction), fileRef)

	case models.FileKindAudio:
		parts = append(parts, models.TextPart(audioInstruction), fileRef)

	default:
		return nil, models.FileKindUnsupported, ErrUnsupportedFileKind
	}

	prompt := BuildInstructionPrompt(doc, opts)
	return append([]models.ContentPart{models.TextPart(prompt)}, parts...), kind, nil
}

// BuildInstructionPrompt renders the final instruction string: the document
// stem as subject-expert framing, the selected options verbatim, and a fixed
// request for exactly five question/answer pairs.
func BuildInstructionPrompt(doc *models.UploadedDocument, opts models.GenerationOptions) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You are a subject expert on %s.\n", doc.Stem()))
	b.WriteString(fmt.Sprintf("Generation rules: difficulty: %s / format: %s", opts.Difficulty, opts.Format))
	if opts.Focus != "" {
		b.WriteString(fmt.Sprintf(" / focus: %s", opts.Focus))
	}
	b.WriteString("\n")
	b.WriteString("Follow these rules and create exactly 5 questions, each paired with a model answer.\n")

	return b.String()
}
