package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"cover.jpeg", true},
		{"pl-01_A.png", true},
		{"", false},
		{"../secret.jpeg", false},
		{"a/b.jpeg", false},
		{`a\b.jpeg`, false},
		{".hidden.jpeg", false},
		{"..", false},
		{"space name.jpeg", false},
		{"ñandu.jpeg", false},
	}

	for _, tc := range cases {
		err := ValidateName(tc.name)
		if tc.valid && err != nil {
			t.Fatalf("expected %q valid, got %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected %q invalid, got %v", tc.name, err)
		}
	}
}

func TestAllowedExtension(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "a.png", "a.gif", "a.webp"} {
		if !AllowedExtension(name) {
			t.Fatalf("expected %s allowed", name)
		}
	}
	for _, name := range []string{"a.svg", "a", "a.jpeg.exe"} {
		if AllowedExtension(name) {
			t.Fatalf("expected %s rejected", name)
		}
	}
}

func TestLocalImageStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "img")
	store, err := NewLocalImageStore(dir, 1024)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	name, err := store.Save(ctx, CoverName("pl-2"), strings.NewReader("second"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if name != "pl-2.jpeg" {
		t.Fatalf("unexpected stored name %q", name)
	}
	if _, err := store.Save(ctx, "pl-1.jpeg", strings.NewReader("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Save(ctx, "pl-1.jpeg", strings.NewReader("replaced")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	img, err := store.Open(ctx, "pl-1.jpeg")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, err := io.ReadAll(img)
	img.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "replaced" || img.ContentType != "image/jpeg" || img.Info.SizeBytes != 8 {
		t.Fatalf("unexpected image %q %+v", body, img)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Filename != "pl-1.jpeg" || items[1].Filename != "pl-2.jpeg" {
		t.Fatalf("unexpected listing: %+v", items)
	}
}

func TestLocalImageStoreRejects(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Save(ctx, "big.jpeg", bytes.NewReader(make([]byte, 5))); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge got %v", err)
	}
	if _, err := store.Save(ctx, "fits.jpeg", bytes.NewReader(make([]byte, 4))); err != nil {
		t.Fatalf("expected upload at the limit to succeed, got %v", err)
	}
	if _, err := store.Save(ctx, "../escape.jpeg", strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName got %v", err)
	}
	if _, err := store.Open(ctx, "script.sh"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for extension got %v", err)
	}
	if _, err := store.Open(ctx, "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected rejected uploads to leave no files, got %+v", items)
	}
}
