package web

import (
	"errors"
	"net/http"

	"github.com/surekeys/rentals/internal/media"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeMessage(w, http.StatusServiceUnavailable, "image uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+maxBodyBytes)
	if err := r.ParseMultipartForm(media.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	obj, err := media.Upload(r.Context(), s.media, header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Image uploaded successfully", obj)
}
