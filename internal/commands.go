package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/astrometa/internal/api"
	"github.com/starford/astrometa/internal/filename"
	"github.com/starford/astrometa/internal/indexer"
	"github.com/starford/astrometa/internal/mcpserver"
	"github.com/starford/astrometa/internal/progress"
)

func newCLILogger(cfg *Config) *slog.Logger {
	// CLI results go to stdout; logs stay on stderr.
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func scanDirs(cfg *Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Scan.Dirs
}

// RunScan scans directories, applies criteria, and writes the matching
// records as JSON to out.
func RunScan(ctx context.Context, cfg *Config, dirs, criteriaArgs []string, enrich, showProgress bool, out io.Writer) error {
	logger := newCLILogger(cfg)

	criteria, err := indexer.ParseCriteria(criteriaArgs)
	if err != nil {
		return err
	}
	opts, err := cfg.IndexerOptions()
	if err != nil {
		return err
	}
	opts.Enrich = opts.Enrich || enrich

	tracker := progress.New(os.Stderr, "scan", 0, showProgress)
	opts.Progress = func(path string) { tracker.Update(filepath.Base(path)) }

	idx, diags, err := indexer.GetFilteredMetadata(scanDirs(cfg, dirs), criteria, opts, logger)
	tracker.Finish()
	if err != nil {
		return err
	}

	records := make([]*indexer.Record, 0, len(idx))
	for _, rec := range idx {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Records     []*indexer.Record    `json:"records"`
		Total       int                  `json:"total"`
		Diagnostics []indexer.Diagnostic `json:"diagnostics,omitempty"`
	}{Records: records, Total: len(records), Diagnostics: diags})
}

// RunRename renames every scanned file to its canonical metadata-derived
// name. With dryRun the planned renames are printed but not applied.
func RunRename(ctx context.Context, cfg *Config, dirs []string, dryRun, showProgress bool, out io.Writer) error {
	logger := newCLILogger(cfg)

	opts, err := cfg.IndexerOptions()
	if err != nil {
		return err
	}
	opts = opts.WithDefaults()
	opts.Enrich = true

	tracker := progress.New(os.Stderr, "rename", 0, showProgress)
	opts.Progress = func(path string) { tracker.Update(filepath.Base(path)) }

	idx, _, err := indexer.GetMetadata(scanDirs(cfg, dirs), opts, logger)
	if err != nil {
		tracker.Finish()
		return err
	}
	idx, _ = indexer.EnrichMetadata(idx, opts, logger)
	tracker.Finish()

	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var renamed, skipped int
	for _, path := range paths {
		stem, err := filename.Encode(idx[path].Fields, opts.Filename)
		if err != nil {
			return err
		}
		want := filepath.Join(filepath.Dir(path), stem+strings.ToLower(filepath.Ext(path)))
		if want == path {
			skipped++
			continue
		}
		fmt.Fprintf(out, "%s -> %s\n", path, want)
		if dryRun {
			renamed++
			continue
		}
		if err := opts.Store.Move(path, want); err != nil {
			logger.Warn("rename failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		renamed++
	}

	verb := "renamed"
	if dryRun {
		verb = "would rename"
	}
	fmt.Fprintf(out, "%s %d file(s), %d already canonical\n", verb, renamed, skipped)
	return nil
}

// RunMatch finds calibration frames for a light frame and writes the
// result as JSON to out. dirs override the configured scan roots.
func RunMatch(ctx context.Context, cfg *Config, lightPath string, dirs []string, out io.Writer) error {
	logger := newCLILogger(cfg)

	opts, err := cfg.IndexerOptions()
	if err != nil {
		return err
	}
	svc := api.NewService(scanDirs(cfg, dirs), opts, cfg.CalibrationOptions(), logger)

	result, err := svc.Calibration(ctx, lightPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// RunWatch follows the scan directories and writes one JSON line per
// frame event until the context is cancelled.
func RunWatch(ctx context.Context, cfg *Config, dirs []string, out io.Writer) error {
	logger := newCLILogger(cfg)

	opts, err := cfg.IndexerOptions()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	err = indexer.Watch(ctx, scanDirs(cfg, dirs), opts, logger, func(kind string, rec *indexer.Record) {
		event := struct {
			Event  string            `json:"event"`
			Path   string            `json:"path"`
			Fields map[string]string `json:"fields,omitempty"`
		}{Event: kind, Path: rec.Path}
		if kind == "indexed" {
			event.Fields = rec.Fields.Strings()
		}
		if err := enc.Encode(event); err != nil {
			logger.Warn("watch: write event", slog.String("error", err.Error()))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunMCP serves the MCP tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, cfg *Config) error {
	logger := newCLILogger(cfg)

	opts, err := cfg.IndexerOptions()
	if err != nil {
		return err
	}
	svc := api.NewService(cfg.Scan.Dirs, opts, cfg.CalibrationOptions(), logger)
	return mcpserver.New(svc, opts).ServeStdio()
}
