// Package fileheader extracts raw header key/value pairs from capture
// files. FITS parsing is delegated to astrogo/fitsio, XISF headers are
// plain XML, and pseudo-headers can be decoded from a filename alone.
package fileheader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Reader extracts the raw (un-normalized) header map from one file.
type Reader interface {
	Read(path string) (map[string]string, error)
}

// ErrUnsupported marks a file kind no reader handles.
var ErrUnsupported = errors.New("fileheader: unsupported file kind")

// ReadError wraps a failure to extract headers from one file. The indexer
// catches it per file and degrades that record instead of aborting.
type ReadError struct {
	Path string
	Kind string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("fileheader: read %s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ForPath selects a reader by file extension.
func ForPath(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return FITS{}, nil
	case ".xisf":
		return XISF{}, nil
	case ".cr2":
		// Raw camera files carry no parseable header block; the filename
		// is the only metadata source.
		return Pseudo{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}
