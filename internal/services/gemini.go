package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"studymixer-backend/internal/models"
)

// FileHandle is an opaque reference to a binary staged with the model
// provider. Name identifies the remote file for deletion, URI is what
// generation requests reference.
type FileHandle struct {
	Name     string
	URI      string
	MIMEType string
}

// ModelClient is the minimal surface one generation cycle needs from the
// hosted model: stage a file, generate once, delete the staged file.
type ModelClient interface {
	UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*FileHandle, error)
	Generate(ctx context.Context, parts []models.ContentPart) (string, error)
	DeleteFile(ctx context.Context, handle *FileHandle) error
	Close() error
}

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(apiKey, modelName string) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiService{
		client: client,
		model:  model,
	}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// UploadFile stages the document with the Gemini File API and waits until
// the remote file is active, so a generation request can reference it.
func (s *GeminiService) UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*FileHandle, error) {
	file, err := s.client.UploadFile(ctx, "", r, &genai.UploadFileOptions{
		DisplayName: displayName,
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to Gemini: %w", err)
	}

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return nil, fmt.Errorf("Gemini failed to process uploaded file")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return nil, fmt.Errorf("uploaded file did not become active in time")
	}

	return &FileHandle{Name: file.Name, URI: file.URI, MIMEType: mimeType}, nil
}

// Generate submits the assembled content parts in a single call and returns
// the concatenated text of the response. An empty response is reported as a
// BlockedError carrying the provider's block reason when one is available.
func (s *GeminiService) Generate(ctx context.Context, parts []models.ContentPart) (string, error) {
	genaiParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case models.PartTypeFileRef:
			genaiParts = append(genaiParts, genai.FileData{MIMEType: p.MIMEType, URI: p.FileURI})
		default:
			genaiParts = append(genaiParts, genai.Text(p.Text))
		}
	}

	resp, err := s.model.GenerateContent(ctx, genaiParts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", &BlockedError{Reason: blockReason(resp)}
	}

	return text, nil
}

func (s *GeminiService) DeleteFile(ctx context.Context, handle *FileHandle) error {
	return s.client.DeleteFile(ctx, handle.Name)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
	}
	return UnknownBlockReason
}
