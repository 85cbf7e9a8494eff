// Package media stores uploaded listing images.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

const folder = "surekeys"

// ErrUpload is wrapped by every rejected or failed upload.
var ErrUpload = errors.New("upload failed")

// Object is a stored file.
type Object struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
}

// Store persists objects under a generated name.
type Store interface {
	Put(ctx context.Context, id, contentType string, data []byte) (Object, error)
}

var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Upload validates an image read from r and stores it. filename supplies
// the extension; the content itself must agree with it.
func Upload(ctx context.Context, s Store, filename string, r io.Reader) (Object, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedTypes[ext]
	if !ok {
		return Object{}, fmt.Errorf("%w: only jpg, jpeg, png and webp images are allowed", ErrUpload)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return Object{}, fmt.Errorf("%w: reading image: %v", ErrUpload, err)
	}
	if len(data) == 0 {
		return Object{}, fmt.Errorf("%w: image is empty", ErrUpload)
	}
	if len(data) > MaxImageSize {
		return Object{}, fmt.Errorf("%w: image exceeds %d bytes", ErrUpload, MaxImageSize)
	}
	if !sniffMatches(data, contentType) {
		return Object{}, fmt.Errorf("%w: file content is not a %s image", ErrUpload, ext[1:])
	}

	id := folder + "/" + uuid.NewString() + ext
	obj, err := s.Put(ctx, id, contentType, data)
	if err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return obj, nil
}

// sniffMatches reports whether data looks like contentType.
func sniffMatches(data []byte, contentType string) bool {
	if contentType == "image/webp" {
		return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
	}
	return http.DetectContentType(data) == contentType
}
