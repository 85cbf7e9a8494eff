package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestSetupDevMode(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	var buf bytes.Buffer
	Setup(&buf, true, "error")

	slog.Debug("test debug")
	if !strings.Contains(buf.String(), "test debug") {
		t.Error("expected debug message visible in dev mode")
	}
	if strings.HasPrefix(buf.String(), "{") {
		t.Error("dev mode should write text, not JSON")
	}
}

func TestSetupProdMode(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	var buf bytes.Buffer
	Setup(&buf, false, "warn")

	slog.Info("hidden")
	slog.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	buf := captureDefault(t)

	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		_, _ = w.Write([]byte("hello"))
	})

	req := httptest.NewRequest("GET", "/api/listings", nil)
	rec := httptest.NewRecorder()
	RequestLogger(inner).ServeHTTP(rec, req)

	out := buf.String()
	for _, want := range []string{"GET", "/api/listings", "status=200", "bytes=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log: %s", want, out)
		}
	}
	if seenID == "" {
		t.Fatal("expected request ID in context")
	}
	if rec.Header().Get("X-Request-ID") != seenID {
		t.Errorf("header id = %q, context id = %q", rec.Header().Get("X-Request-ID"), seenID)
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	captureDefault(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest("GET", "/api/listings", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	RequestLogger(inner).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestRequestLoggerSkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/uploads/surekeys/a.png"} {
		t.Run(path, func(t *testing.T) {
			buf := captureDefault(t)
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			RequestLogger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))

			if buf.Len() > 0 {
				t.Errorf("expected no log for %s", path)
			}
		})
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	buf := captureDefault(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	RequestLogger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

	out := buf.String()
	if !strings.Contains(out, "404") {
		t.Error("expected 404 status in log")
	}
	if !strings.Contains(out, "level=WARN") {
		t.Error("expected 4xx to log at warn")
	}
}

func TestFromContext(t *testing.T) {
	buf := captureDefault(t)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-9")
	FromContext(ctx).Info("tagged")
	if !strings.Contains(buf.String(), "request_id=req-9") {
		t.Errorf("expected request id in log: %s", buf.String())
	}

	if RequestID(context.Background()) != "" {
		t.Error("expected empty id without middleware")
	}
}
