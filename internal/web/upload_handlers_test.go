package web

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/media"
)

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, token, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, data)
	r := httptest.NewRequest("POST", "/api/upload", body)
	r.Header.Set("Content-Type", contentType)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, r)
	return w
}

func TestUpload(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(t, "landlord", auth.RoleLandlord)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var obj media.Object
	decode(t, e.upload(t, token, "image", "front.png", img.Bytes()), http.StatusOK, &obj)
	if !strings.HasPrefix(obj.URL, "http://localhost:8080/uploads/surekeys/") || obj.StorageID == "" {
		t.Fatalf("object = %+v", obj)
	}

	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, httptest.NewRequest("GET", "/uploads/"+obj.StorageID, nil))
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), img.Bytes()) {
		t.Errorf("serving upload: status %d", w.Code)
	}
}

func TestUploadRejects(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(t, "landlord", auth.RoleLandlord)

	decode(t, e.upload(t, "", "image", "a.png", []byte("x")), http.StatusUnauthorized, nil)
	decode(t, e.upload(t, token, "file", "a.png", []byte("x")), http.StatusBadRequest, nil)
	resp := decode(t, e.upload(t, token, "image", "a.pdf", []byte("%PDF-1.4")), http.StatusBadRequest, nil)
	if !strings.Contains(resp.Message, "jpg") {
		t.Errorf("message = %q", resp.Message)
	}
}
