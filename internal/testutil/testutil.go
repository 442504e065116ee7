// Package testutil provides shared test helpers for fabricating capture
// trees and stubbing header readers.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/astrometa/internal/fileheader"
)

// QuietLogger returns a logger that only surfaces errors, keeping test
// output readable.
func QuietLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// WriteCapture creates an empty capture file at root/rel, creating parent
// directories, and returns its absolute path.
func WriteCapture(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("capture"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// StubReader is a canned fileheader.Reader keyed by path. Paths absent
// from both maps read as empty headers.
type StubReader struct {
	Headers map[string]map[string]string
	Errs    map[string]error
}

// Read returns the canned headers or error for path.
func (s StubReader) Read(path string) (map[string]string, error) {
	if err, ok := s.Errs[path]; ok {
		return nil, err
	}
	if h, ok := s.Headers[path]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

// ReaderFor adapts the stub into the per-path selector the indexer takes.
func (s StubReader) ReaderFor(string) (fileheader.Reader, error) {
	return s, nil
}
