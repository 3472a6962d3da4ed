package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes payloads to a local directory served over HTTP.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the media directory if needed. baseURL is the externally
// reachable server root, e.g. "http://localhost:3001".
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes the payload to disk and returns its public URL.
func (s *DiskStore) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	// Uploaded names are server-generated, but never trust a path separator.
	name = filepath.Base(name)

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return s.baseURL + "/media/" + name, nil
}
