package api

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/astrometa/internal/apperr"
	"github.com/starford/astrometa/internal/calibration"
	"github.com/starford/astrometa/internal/indexer"
)

// Service coordinates scans, enrichment, and calibration matching for the
// API layer. Every request runs a fresh scan; the index is never persisted.
type Service struct {
	dirs    []string
	opts    indexer.Options
	calOpts calibration.Options
	logger  *slog.Logger
}

// NewService creates a new API service over the configured scan roots.
func NewService(dirs []string, opts indexer.Options, calOpts calibration.Options, logger *slog.Logger) *Service {
	return &Service{dirs: dirs, opts: opts, calOpts: calOpts, logger: logger}
}

// QueryResult is the response payload for a metadata query.
type QueryResult struct {
	Records     []*indexer.Record    `json:"records"`
	Total       int                  `json:"total"`
	Diagnostics []indexer.Diagnostic `json:"diagnostics,omitempty"`
}

// FileDetail is the response payload for a single file lookup.
type FileDetail struct {
	Path       string            `json:"path"`
	RawHeaders map[string]string `json:"raw_headers,omitempty"`
	Fields     map[string]string `json:"fields"`
}

// CalibrationResult pairs a light frame with its best calibration matches.
type CalibrationResult struct {
	Light   string               `json:"light"`
	Matches calibration.MatchSet `json:"matches"`
}

// Query scans the configured roots, applies criteria, and returns records
// sorted by path. enrich forces header reads even when no criterion needs
// them.
func (s *Service) Query(ctx context.Context, criteria indexer.Criteria, enrich bool) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := s.opts
	opts.Enrich = opts.Enrich || enrich

	idx, diags, err := indexer.GetFilteredMetadata(s.dirs, criteria, opts, s.logger)
	if err != nil {
		return nil, err
	}

	records := make([]*indexer.Record, 0, len(idx))
	for _, rec := range idx {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	return &QueryResult{Records: records, Total: len(records), Diagnostics: diags}, nil
}

// FileDetail builds the full record for one file, including the raw
// headers as read from disk.
func (s *Service) FileDetail(ctx context.Context, path string) (*FileDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := s.opts.WithDefaults()
	if !opts.Store.Exists(path) {
		return nil, fmt.Errorf("api: %s: %w", path, apperr.ErrNotFound)
	}

	opts.Enrich = true
	rec, diags := indexer.BuildRecord(path, opts)
	for _, d := range diags {
		s.logger.Warn("file detail degraded",
			slog.String("path", d.Path),
			slog.String("error", d.Err.Error()))
	}

	detail := &FileDetail{Path: path, Fields: rec.Fields.Strings()}
	if reader, err := opts.ReaderFor(path); err == nil {
		if raw, err := reader.Read(path); err == nil {
			detail.RawHeaders = raw
		}
	}
	return detail, nil
}

// Calibration finds the best dark, bias, and flat for a light frame. The
// whole configured tree is rescanned with enrichment so calibration frames
// carry their camera settings.
func (s *Service) Calibration(ctx context.Context, lightPath string) (*CalibrationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := s.opts.WithDefaults()
	if !opts.Store.Exists(lightPath) {
		return nil, fmt.Errorf("api: %s: %w", lightPath, apperr.ErrNotFound)
	}

	opts.Enrich = true
	light, diags := indexer.BuildRecord(lightPath, opts)
	for _, d := range diags {
		s.logger.Warn("calibration: light degraded",
			slog.String("path", d.Path),
			slog.String("error", d.Err.Error()))
	}

	idx, _, err := indexer.GetMetadata(s.dirs, opts, s.logger)
	if err != nil {
		return nil, err
	}
	idx, _ = indexer.EnrichMetadata(idx, opts, s.logger)

	return &CalibrationResult{
		Light:   lightPath,
		Matches: calibration.FindAll(light, idx, s.calOpts),
	}, nil
}
