package indexer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/starford/astrometa/internal/filename"
	"github.com/starford/astrometa/internal/header"
)

// GetMetadata enumerates every matching file under dirs and builds one
// record per file from its filename (and, with ProfileFromPath, its
// directory segments). File contents are never read here. A missing scan
// directory is a structural error; everything per-file degrades into
// diagnostics.
func GetMetadata(dirs []string, opts Options, logger *slog.Logger) (Index, []Diagnostic, error) {
	opts = opts.WithDefaults()
	patterns, err := compilePatterns(opts.Patterns)
	if err != nil {
		return nil, nil, err
	}

	idx := make(Index)
	var diags []Diagnostic
	for _, dir := range dirs {
		files, err := opts.Store.ListFiles(dir, opts.Recursive)
		if err != nil {
			return nil, nil, fmt.Errorf("indexer: scan %s: %w", dir, err)
		}
		for _, path := range files {
			if !matchesAny(patterns, filepath.Base(path)) {
				continue
			}
			if opts.Progress != nil {
				opts.Progress(path)
			}
			rec, diag := buildRecord(path, opts)
			idx[path] = rec
			if diag != nil {
				diags = append(diags, *diag)
				logger.Warn("index: filename not decodable",
					slog.String("path", path),
					slog.String("error", diag.Err.Error()))
			} else {
				logger.Debug("index: added", slog.String("path", path))
			}
		}
	}
	return idx, diags, nil
}

// EnrichMetadata reads true file headers for every record and merges them
// in. Header-derived values override filename/path-derived ones; fields
// the header lacks keep their existing values, because filenames are the
// only source for externally renamed or legacy files. Read failures leave
// the record with its existing fields and emit a diagnostic.
func EnrichMetadata(idx Index, opts Options, logger *slog.Logger) (Index, []Diagnostic) {
	opts = opts.WithDefaults()
	out := make(Index, len(idx))
	var diags []Diagnostic
	for path, rec := range idx {
		if opts.Progress != nil {
			opts.Progress(path)
		}
		enriched, diag := enrichRecord(rec, opts)
		out[path] = enriched
		if diag != nil {
			diags = append(diags, *diag)
			logger.Warn("enrich: degraded",
				slog.String("path", path),
				slog.String("error", diag.Err.Error()))
		}
	}
	return out, diags
}

// GetFilteredMetadata composes GetMetadata, EnrichMetadata (when requested
// or when a criterion needs header-only fields), and FilterMetadata.
func GetFilteredMetadata(dirs []string, criteria Criteria, opts Options, logger *slog.Logger) (Index, []Diagnostic, error) {
	opts = opts.WithDefaults()
	idx, diags, err := GetMetadata(dirs, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	if opts.Enrich || criteria.needsHeaders(opts.Filename.Fields) {
		var more []Diagnostic
		idx, more = EnrichMetadata(idx, opts, logger)
		diags = append(diags, more...)
	}
	return FilterMetadata(idx, criteria), diags, nil
}

// BuildRecord builds (and optionally enriches) the record for a single
// file, outside of a directory pass. Used by watch mode and the per-file
// API surface.
func BuildRecord(path string, opts Options) (*Record, []Diagnostic) {
	opts = opts.WithDefaults()
	var diags []Diagnostic
	rec, diag := buildRecord(path, opts)
	if diag != nil {
		diags = append(diags, *diag)
	}
	if opts.Enrich {
		enriched, ediag := enrichRecord(rec, opts)
		rec = enriched
		if ediag != nil {
			diags = append(diags, *ediag)
		}
	}
	return rec, diags
}

func buildRecord(path string, opts Options) (*Record, *Diagnostic) {
	fields := make(header.Record)
	if opts.ProfileFromPath {
		for k, v := range deriveFromPath(path, opts) {
			fields[k] = v
		}
	}

	var diag *Diagnostic
	decoded, err := filename.Decode(path, opts.Filename)
	if err != nil {
		// The filename-derived fields are lost for this file; whatever
		// the path segments supplied survives.
		diag = &Diagnostic{Path: path, Err: err}
	} else {
		for k, v := range decoded {
			fields[k] = v
		}
	}
	fields.Set(header.KeyFilename, header.Text(filepath.Base(path)))
	return &Record{Path: path, Fields: fields}, diag
}

func enrichRecord(rec *Record, opts Options) (*Record, *Diagnostic) {
	merged := rec.Fields.Clone()
	enriched := &Record{Path: rec.Path, Fields: merged}

	reader, err := opts.ReaderFor(rec.Path)
	if err != nil {
		return enriched, &Diagnostic{Path: rec.Path, Err: err}
	}
	raw, err := reader.Read(rec.Path)
	if err != nil {
		return enriched, &Diagnostic{Path: rec.Path, Err: err}
	}
	normalized, nerr := header.NormalizeHeaders(raw, opts.Header)
	for k, v := range normalized {
		merged[k] = v
	}
	if nerr != nil {
		return enriched, &Diagnostic{Path: rec.Path, Err: nerr}
	}
	return enriched, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("indexer: bad file pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
