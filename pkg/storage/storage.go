// Package storage validates uploaded media and writes it to a blob store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
)

// MaxUploadSize is the largest accepted upload (100MB).
const MaxUploadSize int64 = 100 << 20

// Rejection causes carried inside UploadRejected errors.
var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported media type")
)

// allowedTypes maps accepted content types to the extension used in keys.
var allowedTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
}

// AllowedTypes returns the accepted content types.
func AllowedTypes() []string {
	types := make([]string, 0, len(allowedTypes))
	for t := range allowedTypes {
		types = append(types, t)
	}
	return types
}

// TypeFromFilename guesses a content type from the extension of name, for
// clients that send files as application/octet-stream.
func TypeFromFilename(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for ct, e := range allowedTypes {
		if e == ext {
			return ct
		}
	}
	return mime.TypeByExtension(ext)
}

func normalizeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// Validate checks an upload against the type allow-list and the size ceiling.
func Validate(contentType string, size int64) error {
	if _, ok := allowedTypes[normalizeType(contentType)]; !ok {
		return &domain.DomainError{
			Code:    domain.ErrCodeUploadRejected,
			Message: fmt.Sprintf("File type %q is not allowed. Upload an mp4, webm, mov, jpeg, png, gif or webp file.", contentType),
			Err:     ErrUnsupportedType,
		}
	}
	if size > MaxUploadSize {
		return &domain.DomainError{
			Code:    domain.ErrCodeUploadRejected,
			Message: "File is too large. The maximum size is 100MB.",
			Err:     ErrTooLarge,
		}
	}
	return nil
}

// BlobStore persists an object and returns the URL it is served from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Upload is a stored file.
type Upload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader validates files and writes them to a BlobStore.
type Uploader struct {
	store   BlobStore
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewUploader creates an uploader over store.
func NewUploader(store BlobStore, m *metrics.Metrics, log logger.Logger) *Uploader {
	if log == nil {
		log = logger.Default()
	}
	return &Uploader{store: store, metrics: m, log: log.With("component", "uploader")}
}

// Key builds the object key for a new upload: <kind>/<uuid><ext>.
func Key(contentType string) string {
	ct := normalizeType(contentType)
	kind, _, _ := strings.Cut(ct, "/")
	return path.Join(kind, uuid.NewString()+allowedTypes[ct])
}

// Upload validates and stores a file.
func (u *Uploader) Upload(ctx context.Context, contentType string, size int64, body io.Reader) (*Upload, error) {
	if err := Validate(contentType, size); err != nil {
		reason := "rejected_type"
		if errors.Is(err, ErrTooLarge) {
			reason = "rejected_size"
		}
		u.metrics.RecordUpload(reason)
		return nil, err
	}

	ct := normalizeType(contentType)
	key := Key(ct)
	url, err := u.store.Put(ctx, key, ct, body, size)
	if err != nil {
		u.metrics.RecordUpload("error")
		u.log.Error("upload failed", "key", key, "error", err)
		return nil, domain.NewExternalServiceError("file storage", err)
	}

	u.metrics.RecordUpload("success")
	u.log.Info("file uploaded", "key", key, "size", size)
	return &Upload{URL: url, Key: key, ContentType: ct, Size: size}, nil
}
