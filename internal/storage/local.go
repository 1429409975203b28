package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalImageStore keeps images in a directory on disk.
type LocalImageStore struct {
	dir      string
	maxBytes int64
}

// NewLocalImageStore creates dir when missing.
func NewLocalImageStore(dir string, maxBytes int64) (*LocalImageStore, error) {
	if dir == "" {
		return nil, errors.New("local storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save writes the image atomically and returns its filename. An existing
// image with the same name is replaced.
func (s *LocalImageStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if err := validateImageName(name); err != nil {
		return "", err
	}

	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("local storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("local storage: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("local storage: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("local storage: store %s: %w", name, err)
	}
	return name, nil
}

// Open returns the named image.
func (s *LocalImageStore) Open(_ context.Context, name string) (*Image, error) {
	if err := validateImageName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("local storage: open %s: %w", name, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("local storage: stat %s: %w", name, err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Image{
		ReadCloser:  f,
		Info:        ImageInfo{Filename: name, SizeBytes: stat.Size(), Modified: stat.ModTime()},
		ContentType: contentType(name),
	}, nil
}

// List returns the stored images sorted by name.
func (s *LocalImageStore) List(_ context.Context) ([]ImageInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("local storage: read %s: %w", s.dir, err)
	}

	items := make([]ImageInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !AllowedExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, ImageInfo{Filename: entry.Name(), SizeBytes: info.Size(), Modified: info.ModTime()})
	}
	sortByName(items)
	return items, nil
}
