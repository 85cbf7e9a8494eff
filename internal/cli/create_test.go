package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "listing.json")
	if err := os.WriteFile(good, []byte(`{"title":"Flat"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"title":`), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := readDocument(good, nil)
	if err != nil || string(doc) != `{"title":"Flat"}` {
		t.Errorf("file: doc = %s, err = %v", doc, err)
	}

	doc, err = readDocument("-", strings.NewReader(`{"title":"Stdin"}`))
	if err != nil || string(doc) != `{"title":"Stdin"}` {
		t.Errorf("stdin: doc = %s, err = %v", doc, err)
	}

	if _, err := readDocument(bad, nil); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := readDocument(filepath.Join(dir, "missing.json"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
