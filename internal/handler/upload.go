package handlers

import (
	"errors"
	"io"
	"net/http"
	"socialhub/internal/service"
	"strings"
)

// multipart overhead allowed on top of the configured file limit
const formOverhead = 1 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseUpload parses a multipart body and returns the file under field, or nil when it is absent.
// The returned closer must be called once the upload has been consumed.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request, field string) (*service.ImageUpload, io.Closer, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+formOverhead)

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, h.tooLargeMessage(), http.StatusRequestEntityTooLarge)
		} else {
			WriteError(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, true
		}
		WriteError(w, "Invalid file upload", http.StatusBadRequest)
		return nil, nil, false
	}

	return &service.ImageUpload{File: file, Size: header.Size}, file, true
}
