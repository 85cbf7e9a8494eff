package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes objects below a local directory and serves them under
// a URL prefix.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore stores objects in dir. baseURL is the public address of
// Handler's mount point, e.g. http://localhost:8080/uploads.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes data to dir/id.
func (s *DiskStore) Put(_ context.Context, id, _ string, data []byte) (Object, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return Object{}, fmt.Errorf("creating object dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("writing object: %w", err)
	}
	return Object{URL: s.baseURL + "/" + id, StorageID: id}, nil
}

// Handler serves stored objects. Mount it with http.StripPrefix.
func (s *DiskStore) Handler() http.Handler {
	return http.FileServer(noListing{http.Dir(s.dir)})
}

// noListing hides directory indexes.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
