package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/lacajita/backend/internal/repositories"
	"github.com/lacajita/backend/internal/storage"
)

func newImageHandler(t *testing.T, covers CoverSetter) ImageHandler {
	t.Helper()
	store, err := storage.NewLocalImageStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new image store: %v", err)
	}
	return ImageHandler{Images: store, Covers: covers, MaxBytes: 1 << 20}
}

func uploadRequest(t *testing.T, plid, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("plid", plid); err != nil {
		t.Fatalf("write plid: %v", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImageHandlerUploadAndServeCover(t *testing.T) {
	covers := &coverSetterStub{}
	handler := newImageHandler(t, covers)

	rec := httptest.NewRecorder()
	handler.Upload(rec, uploadRequest(t, "pl42", "poster.png", "image/png", []byte("fake-image")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if covers.playlistID != "pl42" || covers.filename != "pl42.jpeg" {
		t.Fatalf("expected cover to be recorded, got %+v", covers)
	}

	req := httptest.NewRequest(http.MethodGet, "/getcover?filename=pl42", nil)
	rec = httptest.NewRecorder()
	handler.Cover(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if rec.Body.String() != "fake-image" {
		t.Fatalf("unexpected image body %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg got %s", got)
	}
}

func TestImageHandlerUploadUnknownPlaylist(t *testing.T) {
	handler := newImageHandler(t, &coverSetterStub{err: repositories.ErrNotFound})

	rec := httptest.NewRecorder()
	handler.Upload(rec, uploadRequest(t, "orphan", "a.jpg", "image/jpeg", []byte("x")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
}

func TestImageHandlerUploadValidation(t *testing.T) {
	tests := []struct {
		name        string
		plid        string
		filename    string
		contentType string
	}{
		{name: "traversal plid", plid: "../etc", filename: "a.jpg", contentType: "image/jpeg"},
		{name: "empty plid", plid: "", filename: "a.jpg", contentType: "image/jpeg"},
		{name: "non image", plid: "pl1", filename: "a.jpg", contentType: "text/plain"},
		{name: "bad extension", plid: "pl1", filename: "a.exe", contentType: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covers := &coverSetterStub{}
			handler := newImageHandler(t, covers)

			rec := httptest.NewRecorder()
			handler.Upload(rec, uploadRequest(t, tt.plid, tt.filename, tt.contentType, []byte("x")))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400 got %d", rec.Code)
			}
			if covers.playlistID != "" {
				t.Fatal("expected cover not to be recorded")
			}
		})
	}
}

func TestImageHandlerGetMissing(t *testing.T) {
	handler := newImageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/images/none.png", nil)
	req.SetPathValue("filename", "none.png")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestImageHandlerListEmpty(t *testing.T) {
	handler := newImageHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"images\":[]}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
