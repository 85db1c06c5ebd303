// Package storage keeps uploaded media on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"beaconcms.org/internal/config"
)

var (
	ErrNotFound       = errors.New("storage: object not found")
	ErrInvalidKey     = errors.New("storage: invalid key")
	ErrTooLarge       = errors.New("storage: file too large")
	ErrTypeNotAllowed = errors.New("storage: file type not allowed")
)

// Backend stores objects by storage-relative key. URL returns a redirect target for
// backends that serve objects themselves and "" for backends streamed through Open.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
}

// AllowedType reports whether uploads of contentType are accepted.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[baseType(contentType)]
	return ok
}

func baseType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[a-z0-9]+)?$`)

// ValidKey rejects anything that could escape the storage root.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// NewKey returns a random object key carrying the canonical extension of contentType.
// Client file names are ignored.
func NewKey(contentType string) (string, error) {
	ext, ok := allowedTypes[baseType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, baseType(contentType))
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("storage: generate key: %w", err)
	}
	return id + ext, nil
}

// TypeForKey returns the allow-listed content type matching key's extension, or
// application/octet-stream for anything else.
func TypeForKey(key string) string {
	_, ext, ok := strings.Cut(key, ".")
	if !ok {
		return "application/octet-stream"
	}
	for ct, e := range allowedTypes {
		if e == "."+ext {
			return ct
		}
	}
	return "application/octet-stream"
}

// CheckUpload validates an upload before any bytes are stored.
func CheckUpload(size, maxBytes int64, contentType string) error {
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	if !AllowedType(contentType) {
		return fmt.Errorf("%w: %s", ErrTypeNotAllowed, baseType(contentType))
	}
	return nil
}

// FromConfig picks S3 when bucket credentials are configured and local disk otherwise.
func FromConfig(ctx context.Context, st config.StorageConfig, s3cfg config.S3Config) (Backend, error) {
	if s3cfg.Enabled() {
		return NewS3FromConfig(ctx, s3cfg)
	}
	return NewLocal(st.LocalDir)
}
