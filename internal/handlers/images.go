package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/repositories"
	"github.com/lacajita/backend/internal/storage"
	"github.com/lacajita/backend/internal/validation"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// ImageHandler uploads and serves playlist cover images.
type ImageHandler struct {
	Images   storage.ImageStore
	Covers   CoverSetter
	MaxBytes int64
}

// Upload handles POST /upload-image. The multipart file is stored as
// {plid}.jpeg whatever its source name.
func (h ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(ctx, w, "image", err)
			return
		}
		badRequest(ctx, w, &validation.Error{Field: "body", Rule: "multipart"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	plid := r.FormValue("plid")
	if err := storage.ValidateName(plid); err != nil {
		badRequest(ctx, w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(ctx, w, &validation.Error{Field: "file", Rule: "required"})
		return
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); ext != "" && !storage.AllowedExtension(header.Filename) {
		logger.Warn("upload with disallowed source extension", "filename", header.Filename)
		respondMessage(ctx, w, http.StatusBadRequest, "source extension not allowed")
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		logger.Warn("upload with non-image content type", "content_type", header.Header.Get("Content-Type"))
		respondMessage(ctx, w, http.StatusBadRequest, "invalid content type")
		return
	}

	filename := storage.CoverName(plid)
	if _, err := h.Images.Save(ctx, filename, file); err != nil {
		respondError(ctx, w, "image", err)
		return
	}

	if h.Covers != nil {
		if err := h.Covers.SetCover(ctx, plid, filename); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("record playlist cover", "playlist_id", plid, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"msg":      "File uploaded successfully",
		"filename": filename,
	})
}

// List handles GET /images.
func (h ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	images, err := h.Images.List(ctx)
	if err != nil {
		respondError(ctx, w, "image", err)
		return
	}
	if images == nil {
		images = []storage.ImageInfo{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"images": images})
}

// Get handles GET /images/{filename}.
func (h ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if err := storage.ValidateName(name); err != nil {
		badRequest(r.Context(), w, err)
		return
	}
	if !storage.AllowedExtension(name) {
		respondMessage(r.Context(), w, http.StatusBadRequest, "extension not allowed")
		return
	}
	h.serve(w, r, name)
}

// Cover handles GET /getcover?filename=, serving {filename}.jpeg.
func (h ImageHandler) Cover(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if err := storage.ValidateName(name); err != nil {
		badRequest(r.Context(), w, err)
		return
	}
	h.serve(w, r, storage.CoverName(name))
}

func (h ImageHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	img, err := h.Images.Open(ctx, name)
	if err != nil {
		respondError(ctx, w, "image", err)
		return
	}
	defer img.Close()

	w.Header().Set("Content-Type", img.ContentType)
	if img.Info.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.Info.SizeBytes, 10))
	}
	if !img.Info.Modified.IsZero() {
		w.Header().Set("Last-Modified", img.Info.Modified.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(time.Hour.Seconds())))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, img); err != nil {
		logging.FromContext(ctx).Warn("stream image", "filename", name, "error", err)
	}
}
