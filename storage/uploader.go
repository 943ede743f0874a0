package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader прячет S3/R2 за узким интерфейсом; в тестах подменяется фейком.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ScreenshotKey builds the object key for a payment screenshot. The original
// filename only contributes its extension, never its name.
func ScreenshotKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		ext = ".png"
	}
	return "payments/" + uuid.NewString() + ext
}
