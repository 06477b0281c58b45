package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"studymixer-backend/internal/models"
	"studymixer-backend/internal/services"
)

type stubModelClient struct {
	uploads    int
	generateFn func(parts []models.ContentPart) (string, error)
}

func (s *stubModelClient) UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*services.FileHandle, error) {
	s.uploads++
	return &services.FileHandle{Name: "files/stub", URI: "https://example.com/files/stub", MIMEType: mimeType}, nil
}

func (s *stubModelClient) Generate(ctx context.Context, parts []models.ContentPart) (string, error) {
	if s.generateFn != nil {
		return s.generateFn(parts)
	}
	return "1. Question...\nAnswer...", nil
}

func (s *stubModelClient) DeleteFile(ctx context.Context, handle *services.FileHandle) error {
	return nil
}

func (s *stubModelClient) Close() error { return nil }

func newTestHandler(t *testing.T, stub *stubModelClient) *QuizHandler {
	t.Helper()
	assembler := services.NewAssembler(services.NewFileExtractService())
	generator := services.NewGeneratorService(stub, assembler, nil, nil, t.TempDir())
	return NewQuizHandler(generator, nil, 100)
}

func multipartBody(t *testing.T, filename string, fileData []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fw.Write(fileData)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	return body, mw.FormDataContentType()
}

func doGenerate(t *testing.T, h *QuizHandler, filename string, fileData []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, fileData, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/generate", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	h.Generate(rr, req)
	return rr
}

func standardFields() map[string]string {
	return map[string]string{"difficulty": "standard", "format": "qa"}
}

func TestGenerate_Success(t *testing.T) {
	stub := &stubModelClient{}
	h := newTestHandler(t, stub)

	rr := doGenerate(t, h, "whiteboard.png", []byte("imagedata"), standardFields())

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result models.GenerationResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Text != "1. Question...\nAnswer..." {
		t.Errorf("Expected the generated text verbatim, got %q", result.Text)
	}
	if result.FileKind != models.FileKindImage {
		t.Errorf("Expected image kind, got %q", result.FileKind)
	}
}

func TestGenerate_MissingFile(t *testing.T) {
	h := newTestHandler(t, &stubModelClient{})

	rr := doGenerate(t, h, "", nil, standardFields())

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestGenerate_InvalidOptions(t *testing.T) {
	h := newTestHandler(t, &stubModelClient{})

	rr := doGenerate(t, h, "whiteboard.png", []byte("x"), map[string]string{
		"difficulty": "impossible",
		"format":     "interpretive-dance",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Fields["difficulty"] == "" || resp.Error.Fields["format"] == "" {
		t.Error("Expected field-level validation messages")
	}
}

func TestGenerate_UnsupportedExtension(t *testing.T) {
	stub := &stubModelClient{}
	h := newTestHandler(t, stub)

	rr := doGenerate(t, h, "notes.docx", []byte("docxdata"), standardFields())

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("Expected 415, got %d", rr.Code)
	}
	if stub.uploads != 0 {
		t.Error("Expected no upload attempt for an unsupported extension")
	}
}

func TestGenerate_Blocked(t *testing.T) {
	stub := &stubModelClient{
		generateFn: func(parts []models.ContentPart) (string, error) {
			return "", &services.BlockedError{Reason: "SAFETY"}
		},
	}
	h := newTestHandler(t, stub)

	rr := doGenerate(t, h, "whiteboard.png", []byte("imagedata"), standardFields())

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Code != services.CodeModelBlocked {
		t.Errorf("Expected %s, got %s", services.CodeModelBlocked, resp.Error.Code)
	}
	if !bytes.Contains([]byte(resp.Error.Message), []byte("SAFETY")) {
		t.Errorf("Expected block reason in message, got %q", resp.Error.Message)
	}
}

func TestGenerate_ModelFailure(t *testing.T) {
	stub := &stubModelClient{
		generateFn: func(parts []models.ContentPart) (string, error) {
			return "", errors.New("backend unavailable")
		},
	}
	h := newTestHandler(t, stub)

	rr := doGenerate(t, h, "whiteboard.png", []byte("imagedata"), standardFields())

	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rr.Code)
	}
}

func TestLatest_EmptyThenPopulated(t *testing.T) {
	stub := &stubModelClient{}
	h := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/latest", nil)
	rr := httptest.NewRecorder()
	h.Latest(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 before any generation, got %d", rr.Code)
	}

	doGenerate(t, h, "whiteboard.png", []byte("imagedata"), standardFields())

	rr = httptest.NewRecorder()
	h.Latest(rr, httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/latest", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 after generation, got %d", rr.Code)
	}

	var result models.GenerationResult
	json.NewDecoder(rr.Body).Decode(&result)
	if result.Text == "" {
		t.Error("Expected the latest result to carry the generated text")
	}
}

func TestSupportedFormats(t *testing.T) {
	h := newTestHandler(t, &stubModelClient{})

	rr := httptest.NewRecorder()
	h.SupportedFormats(rr, httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/supported-formats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(".pdf")) {
		t.Error("Expected .pdf in supported formats")
	}
}

func TestHistory_Disabled(t *testing.T) {
	h := newTestHandler(t, &stubModelClient{})

	rr := httptest.NewRecorder()
	h.History(rr, httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/history", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 when history is not configured, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Code != "HISTORY_DISABLED" {
		t.Errorf("Expected HISTORY_DISABLED, got %s", resp.Error.Code)
	}
}
