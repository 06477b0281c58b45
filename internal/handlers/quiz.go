package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studymixer-backend/internal/models"
	"studymixer-backend/internal/repository"
	"studymixer-backend/internal/services"
)

type QuizHandler struct {
	generator      *services.GeneratorService
	history        *repository.GenerationRepo
	maxUploadBytes int64
}

// NewQuizHandler wires the generation pipeline into HTTP. history may be
// nil when persistence is not configured.
func NewQuizHandler(generator *services.GeneratorService, history *repository.GenerationRepo, maxUploadMB int) *QuizHandler {
	return &QuizHandler{
		generator:      generator,
		history:        history,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Generate accepts a multipart study document plus generation options, runs
// one synchronous generation cycle, and returns the quiz text or an error
// envelope. Exactly one model call per request; nothing is retried.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds the upload limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Uploaded file is empty", r))
		return
	}

	opts := models.GenerationOptions{
		Difficulty: r.FormValue("difficulty"),
		Format:     r.FormValue("format"),
		Focus:      r.FormValue("focus"),
	}
	if fields := opts.Validate(); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid generation options", fields, r))
		return
	}

	doc := models.NewUploadedDocument(header.Filename, data)
	result := h.generator.Generate(r.Context(), doc, opts)

	if result.Failed() {
		writeJSON(w, statusForCode(result.ErrorCode), errorResp(result.ErrorCode, result.ErrorMsg, r))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Latest returns the contents of the latest-result slot.
func (h *QuizHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generator.Results().Get()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No generation has completed yet", r))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": []map[string]string{
			{"extension": ".pdf", "mime_type": "application/pdf", "description": "PDF Document"},
			{"extension": ".png", "mime_type": "image/png", "description": "PNG Image"},
			{"extension": ".jpg", "mime_type": "image/jpeg", "description": "JPEG Image"},
			{"extension": ".jpeg", "mime_type": "image/jpeg", "description": "JPEG Image"},
			{"extension": ".mp3", "mime_type": "audio/mpeg", "description": "MP3 Audio"},
			{"extension": ".wav", "mime_type": "audio/wav", "description": "WAV Audio"},
		},
	})
}

func (h *QuizHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorResp("HISTORY_DISABLED", "Generation history is not configured", r))
		return
	}

	generations, err := h.history.List(r.Context(), 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list generations", r))
		return
	}
	if generations == nil {
		generations = []*models.Generation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"generations": generations})
}

func (h *QuizHandler) HistoryItem(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorResp("HISTORY_DISABLED", "Generation history is not configured", r))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid generation ID", r))
		return
	}

	generation, err := h.history.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Generation not found", r))
		return
	}

	writeJSON(w, http.StatusOK, generation)
}

func statusForCode(code string) int {
	switch code {
	case services.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case services.CodeExtractionFailed, services.CodeModelBlocked:
		return http.StatusUnprocessableEntity
	case services.CodeUploadFailed, services.CodeModelError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
