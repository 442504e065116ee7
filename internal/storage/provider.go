// Package storage provides the file-system collaborator: read-only
// capture enumeration plus the rename primitive used by canonical renaming.
package storage

// Provider is the interface for capture-file operations. Enumeration is
// read-only; Move is the only mutation this core ever performs.
type Provider interface {
	// ListFiles returns the absolute path of every regular file under
	// root. When recursive is false only root's direct children are
	// returned.
	ListFiles(root string, recursive bool) ([]string, error)
	// Exists reports whether path names an existing file or directory.
	Exists(path string) bool
	// Move renames oldPath to newPath, refusing to clobber an existing
	// destination.
	Move(oldPath, newPath string) error
}
