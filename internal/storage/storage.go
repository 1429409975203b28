// Package storage persists playlist cover images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

var (
	// ErrInvalidName indicates a filename outside the allowed character set
	// or extension list.
	ErrInvalidName = errors.New("storage: invalid image name")
	// ErrPayloadTooLarge indicates an upload above the configured limit.
	ErrPayloadTooLarge = errors.New("storage: payload too large")
	// ErrNotFound indicates the image does not exist.
	ErrNotFound = errors.New("storage: image not found")
)

// AllowedExtensions lists the accepted image extensions, lower case.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var safeName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ImageInfo describes a stored image.
type ImageInfo struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

// Image is an opened image. Callers must close it.
type Image struct {
	io.ReadCloser
	Info        ImageInfo
	ContentType string
}

// ImageStore saves, opens and lists cover images.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (*Image, error)
	List(ctx context.Context) ([]ImageInfo, error)
}

// ValidateName checks name is a bare filename made of safe characters.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || !safeName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// AllowedExtension reports whether name carries an accepted image extension.
func AllowedExtension(name string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(name)))
}

// CoverName is the stored filename for a playlist cover.
func CoverName(playlistID string) string {
	return playlistID + ".jpeg"
}

func validateImageName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !AllowedExtension(name) {
		return fmt.Errorf("%w: extension %q not allowed", ErrInvalidName, filepath.Ext(name))
	}
	return nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// readLimited buffers r, failing once more than limit bytes are read.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n > limit {
		return nil, ErrPayloadTooLarge
	}
	return buf.Bytes(), nil
}

func sortByName(items []ImageInfo) {
	slices.SortFunc(items, func(a, b ImageInfo) int {
		return strings.Compare(a.Filename, b.Filename)
	})
}
