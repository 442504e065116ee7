// Package indexer walks capture directories and builds filterable
// metadata records by combining filename-derived, path-derived, and
// header-derived fields.
package indexer

import (
	"encoding/json"

	"github.com/starford/astrometa/internal/fileheader"
	"github.com/starford/astrometa/internal/filename"
	"github.com/starford/astrometa/internal/header"
	"github.com/starford/astrometa/internal/storage"
)

// Record is the metadata for one capture file. Records are immutable once
// an indexing pass returns; a new pass replaces them wholesale.
type Record struct {
	Path   string        `json:"path"`
	Fields header.Record `json:"fields"`
}

// Index maps file path to its metadata record.
type Index map[string]*Record

// Diagnostic reports a per-file degradation (unreadable header,
// undecodable filename). The file it names stays in the index with
// partial metadata; diagnostics never abort a batch.
type Diagnostic struct {
	Path string
	Err  error
}

// MarshalJSON encodes the diagnostic with its error message flattened.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{Path: d.Path, Error: d.Err.Error()})
}

// Options controls an indexing pass. The zero value is usable: defaults
// are applied by every entry point.
type Options struct {
	// Recursive descends into subdirectories of each scan root.
	Recursive bool

	// Patterns are regular expressions matched against base filenames;
	// a file is indexed when any pattern matches. Defaults to FITS files.
	Patterns []string

	// ProfileFromPath derives fields from directory segments: the parent
	// of a DirectoryAccept segment names the target, and segments
	// spelling a frame type set the type.
	ProfileFromPath bool

	// DirectoryAccept is the directory name marking accepted frames
	// (default "accept").
	DirectoryAccept string

	// Enrich reads true file headers during GetFilteredMetadata and
	// watch-driven record builds even when no criterion requires them.
	Enrich bool

	// Filename is the filename codec convention.
	Filename filename.Options

	// Header holds normalization options (format overrides, panel
	// pattern, filter aliases).
	Header header.Options

	// Store is the file-system collaborator (defaults to the local FS).
	Store storage.Provider

	// ReaderFor selects a header reader per path. Defaults to
	// fileheader.ForPath; tests inject stubs here.
	ReaderFor func(path string) (fileheader.Reader, error)

	// Progress, if set, is called once per file as indexing and
	// enrichment passes visit it.
	Progress func(path string)
}

// DefaultDirectoryAccept is the canonical accepted-frames directory name.
const DefaultDirectoryAccept = "accept"

// DefaultPatterns matches FITS captures only; configuration extends this.
var DefaultPatterns = []string{`(?i)\.fits$`}

// WithDefaults fills unset fields with the package defaults. Entry points
// apply it; callers that use Store or ReaderFor directly need it too.
func (o Options) WithDefaults() Options {
	if len(o.Patterns) == 0 {
		o.Patterns = DefaultPatterns
	}
	if o.DirectoryAccept == "" {
		o.DirectoryAccept = DefaultDirectoryAccept
	}
	if len(o.Filename.Fields) == 0 {
		o.Filename = filename.DefaultOptions()
	}
	if o.Store == nil {
		o.Store = storage.NewFS()
	}
	if o.ReaderFor == nil {
		o.ReaderFor = fileheader.ForPath
	}
	return o
}
