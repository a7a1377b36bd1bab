package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/storage"
)

// ImageUploadHandler serves the upload and download URLs issued by the local
// image store.
type ImageUploadHandler struct {
	files    storage.FileServer
	maxBytes int64
}

func NewImageUploadHandler(files storage.FileServer, maxBytes int64) *ImageUploadHandler {
	return &ImageUploadHandler{files: files, maxBytes: maxBytes}
}

// HandleUpload accepts a PUT to a URL returned by UploadURL. The token is
// single use and bound to the key and content type it was issued for.
func (h *ImageUploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	token := mux.Vars(r)["token"]
	contentType := r.Header.Get("Content-Type")

	if err := h.files.AcceptUpload(token, key, contentType); err != nil {
		http.Error(w, "Upload not allowed", http.StatusForbidden)
		return
	}

	err := h.files.SaveFile(key, r.Body, h.maxBytes)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, storage.ErrInvalidKey):
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	case err != nil:
		logger.Error("Failed to save upload", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	logger.Info("Image uploaded", "key", key)
	w.Header().Set("ETag", `"`+token+`"`)
	w.WriteHeader(http.StatusOK)
}

func (h *ImageUploadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Download interrupted", "key", key, "error", err)
	}
}

// RegisterImageRoutes registers the local image storage endpoints.
func RegisterImageRoutes(router *mux.Router, files storage.FileServer, maxBytes int64) {
	handler := NewImageUploadHandler(files, maxBytes)
	router.HandleFunc("/api/v1/upload/{token}", handler.HandleUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/download/{id}", handler.HandleDownload).Methods(http.MethodGet)
}
