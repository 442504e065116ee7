package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/starford/astrometa/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct{}

// NewFS creates a local file-system provider.
func NewFS() FS { return FS{} }

// ListFiles walks root and returns the absolute path of every regular
// file, sorted for deterministic indexing. A missing or non-directory
// root is a structural error.
func (FS) ListFiles(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	var out []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !recursive && p != abs {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether path names an existing file or directory.
func (FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Move renames oldPath to newPath, creating the destination directory and
// refusing to overwrite an existing file.
func (FS) Move(oldPath, newPath string) error {
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("storage: destination %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}
