package services

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileKind means the upload's extension matched no supported
// kind. The cycle stops before any upload or model call.
var ErrUnsupportedFileKind = errors.New("unsupported file kind")

// ExtractionError wraps a failure while extracting document text.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("document text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// UploadError wraps a failure while staging the document with the model
// provider.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("file upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// BlockedError means the model declined to respond. Reason carries the
// provider's explanation when one is available.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("model declined to respond: %s", e.Reason)
}

// UnknownBlockReason is surfaced when the provider gives no usable reason.
const UnknownBlockReason = "unknown reason"
