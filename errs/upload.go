package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Upload errors
var (
	ErrUpload          = errors.New("upload failed")
	ErrInvalidFileType = errors.New("file must be an image")
	ErrFileTooLarge    = errors.New("file is too large")
)

func NewInvalidFileTypeError(contentType string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        fmt.Errorf("%w: %w", ErrUpload, ErrInvalidFileType),
		Details:    fmt.Sprintf("Unsupported type %q", contentType),
		Field:      "imageFile",
	}
}

func NewFileTooLargeError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        fmt.Errorf("%w: %w", ErrUpload, ErrFileTooLarge),
		Details:    fmt.Sprintf("File size must be at most %d bytes", maxSize),
		Field:      "imageFile",
	}
}

// NewUploadWriteError hides the storage failure behind a generic message.
func NewUploadWriteError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrUpload,
		Details:    "Failed to upload image",
		Field:      "imageFile",
		Cause:      cause,
	}
}

func IsUploadError(err error) bool {
	return errors.Is(err, ErrUpload)
}

func IsInvalidFileType(err error) bool {
	return errors.Is(err, ErrInvalidFileType)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}
