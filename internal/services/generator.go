package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"studymixer-backend/internal/models"
	"studymixer-backend/internal/repository"
)

// Error codes surfaced to the caller. One per failure kind of the cycle.
const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeUploadFailed      = "UPLOAD_FAILED"
	CodeModelBlocked      = "MODEL_BLOCKED"
	CodeModelError        = "MODEL_ERROR"
)

// GeneratorService runs one synchronous generation cycle: temp-file save,
// remote upload, content assembly, a single model call, and unconditional
// cleanup of local and remote copies. Cache and history are optional and
// may be nil.
type GeneratorService struct {
	model     ModelClient
	assembler *Assembler
	cache     *ResultCache
	history   *repository.GenerationRepo
	holder    *ResultHolder
	tempDir   string
}

func NewGeneratorService(model ModelClient, assembler *Assembler, cache *ResultCache, history *repository.GenerationRepo, tempDir string) *GeneratorService {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &GeneratorService{
		model:     model,
		assembler: assembler,
		cache:     cache,
		history:   history,
		holder:    NewResultHolder(),
		tempDir:   tempDir,
	}
}

// Results exposes the latest-result slot for the rendering layer.
func (g *GeneratorService) Results() *ResultHolder {
	return g.holder
}

// Generate runs one full cycle for the uploaded document. It never returns
// an error: failures are folded into the GenerationResult, which is also
// stored in the latest-result slot and, when configured, the history table.
func (g *GeneratorService) Generate(ctx context.Context, doc *models.UploadedDocument, opts models.GenerationOptions) models.GenerationResult {
	g.holder.Reset()

	result := models.GenerationResult{
		ID:        uuid.New(),
		Filename:  doc.Filename,
		FileKind:  doc.Kind,
		CreatedAt: time.Now(),
	}

	// Unsupported kinds fail before any network call.
	if doc.Kind == models.FileKindUnsupported {
		result.ErrorCode = CodeUnsupportedFormat
		result.ErrorMsg = "file type is not supported"
		return g.finish(ctx, result, opts)
	}

	key := CacheKey(doc.Data, opts)
	if cached, ok := g.cache.Get(ctx, key); ok {
		result.Text = cached.Text
		result.Cached = true
		return g.finish(ctx, result, opts)
	}

	text, err := g.runCycle(ctx, doc, opts)
	if err != nil {
		result.ErrorCode, result.ErrorMsg = classifyCycleError(err)
	} else {
		result.Text = text
		g.cache.Set(ctx, key, result)
	}

	return g.finish(ctx, result, opts)
}

// runCycle performs the temp save, upload, assemble, and generate steps.
// Cleanup runs on every exit path: the remote file is deleted first, then
// the local temp file, and failures of either are only logged.
func (g *GeneratorService) runCycle(ctx context.Context, doc *models.UploadedDocument, opts models.GenerationOptions) (string, error) {
	tempPath := filepath.Join(g.tempDir, uuid.New().String()+"_"+filepath.Base(doc.Filename))
	if err := os.WriteFile(tempPath, doc.Data, 0o644); err != nil {
		return "", &UploadError{Err: err}
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Printf("WARNING: failed to remove temp file %s: %v", tempPath, err)
		}
	}()

	handle, err := g.model.UploadFile(ctx, bytes.NewReader(doc.Data), doc.Filename, MimeTypeFor(doc.Filename))
	if err != nil {
		return "", &UploadError{Err: err}
	}
	defer func() {
		// Best effort. Context may already be cancelled, so use a fresh one.
		if err := g.model.DeleteFile(context.Background(), handle); err != nil {
			log.Printf("WARNING: failed to delete remote file %s: %v", handle.Name, err)
		}
	}()

	parts, _, err := g.assembler.Assemble(doc, opts, tempPath, models.FileRefPart(handle.URI, handle.MIMEType))
	if err != nil {
		return "", err
	}

	return g.model.Generate(ctx, parts)
}

// finish populates the latest-result slot and records history, then hands
// the result back to the caller.
func (g *GeneratorService) finish(ctx context.Context, result models.GenerationResult, opts models.GenerationOptions) models.GenerationResult {
	g.holder.Set(result)

	if g.history != nil {
		row := &models.Generation{
			ID:         result.ID,
			Filename:   result.Filename,
			FileKind:   string(result.FileKind),
			Difficulty: opts.Difficulty,
			Format:     opts.Format,
			Focus:      opts.Focus,
			ResultText: result.Text,
			ErrorCode:  result.ErrorCode,
			ErrorMsg:   result.ErrorMsg,
			Cached:     result.Cached,
			CreatedAt:  result.CreatedAt,
		}
		if err := g.history.Create(ctx, row); err != nil {
			log.Printf("WARNING: failed to record generation history: %v", err)
		}
	}

	return result
}

func classifyCycleError(err error) (code, message string) {
	var blocked *BlockedError
	var extraction *ExtractionError
	var upload *UploadError

	switch {
	case errors.Is(err, ErrUnsupportedFileKind):
		return CodeUnsupportedFormat, "file type is not supported"
	case errors.As(err, &extraction):
		return CodeExtractionFailed, extraction.Error()
	case errors.As(err, &upload):
		return CodeUploadFailed, upload.Error()
	case errors.As(err, &blocked):
		return CodeModelBlocked, blocked.Error()
	default:
		return CodeModelError, err.Error()
	}
}

// MimeTypeFor returns the MIME type for a supported upload extension.
func MimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
