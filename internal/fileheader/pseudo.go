package fileheader

import (
	"github.com/starford/astrometa/internal/filename"
)

// Pseudo decodes headers embedded positionally in a filename, for files
// whose true headers are unreadable or that were produced by tools which
// only record metadata in the name.
type Pseudo struct {
	Options filename.Options
}

// Read decodes the base name of path under the configured convention and
// returns the fields as raw string pairs. Normalization is idempotent, so
// re-normalizing the already-canonical values downstream is harmless.
func (p Pseudo) Read(path string) (map[string]string, error) {
	opts := p.Options
	if len(opts.Fields) == 0 {
		opts = filename.DefaultOptions()
	}
	rec, err := filename.Decode(path, opts)
	if err != nil {
		return nil, &ReadError{Path: path, Kind: "filename", Err: err}
	}
	return rec.Strings(), nil
}
