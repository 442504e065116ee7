// Package filename implements the bidirectional mapping between a
// normalized header record and a normalized capture filename.
package filename

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/astrometa/internal/header"
)

// KnownExtensions lists the capture-file extensions stripped before
// decoding (and never encoded).
var KnownExtensions = []string{".fits", ".xisf", ".cr2"}

// Options fixes the filename convention: which fields appear, in what
// order, the delimiter between them, and the placeholder for missing
// fields. Multiple calling projects supply their own conventions, so none
// of this is hard-coded.
type Options struct {
	Fields    []string `yaml:"fields"`
	Delimiter string   `yaml:"delimiter"`
	Missing   string   `yaml:"missing"`
}

// DefaultOptions returns the stock convention:
// target_panel_type_filter_datetime_camera_exposure_gain_offset_settemp,
// underscore-delimited, "NA" for absent fields.
func DefaultOptions() Options {
	return Options{
		Fields: []string{
			header.KeyTargetName,
			header.KeyPanel,
			header.KeyType,
			header.KeyFilter,
			header.KeyDateTime,
			header.KeyCamera,
			header.KeyExposureSeconds,
			header.KeyGain,
			header.KeyOffset,
			header.KeySetTemp,
		},
		Delimiter: "_",
		Missing:   "NA",
	}
}

// FormatError reports a filename that does not decode under the configured
// convention.
type FormatError struct {
	Name string
	Want int
	Got  int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("filename: %q has %d fields, want %d", e.Name, e.Got, e.Want)
}

// Encode builds the canonical filename stem for a normalized header record.
// Fields absent from the record emit the missing token. Values containing
// the delimiter are rewritten with "-" so the result stays decodable; the
// round-trip guarantee only covers delimiter-free values.
func Encode(h header.Record, opts Options) (string, error) {
	if len(opts.Fields) == 0 || opts.Delimiter == "" || opts.Missing == "" {
		return "", fmt.Errorf("filename: encode options incomplete")
	}
	parts := make([]string, 0, len(opts.Fields))
	for _, field := range opts.Fields {
		v, ok := h.Get(field)
		if !ok || v.IsZero() {
			parts = append(parts, opts.Missing)
			continue
		}
		s := v.String()
		if v.Kind == header.KindDateTime {
			// Colons are unusable in filenames on most platforms; the
			// dashed time form decodes back to the same canonical value.
			s = strings.ReplaceAll(s, ":", "-")
		}
		if strings.Contains(s, opts.Delimiter) {
			s = strings.ReplaceAll(s, opts.Delimiter, "-")
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, opts.Delimiter), nil
}

// Decode is the inverse of Encode: it splits name positionally on the
// delimiter and re-hydrates the configured field names, re-applying the
// per-field normalization rules so decoded values carry the same canonical
// spellings a header read would produce. A known capture extension is
// stripped first. Returns a FormatError when the token count does not
// match the convention.
func Decode(name string, opts Options) (header.Record, error) {
	if len(opts.Fields) == 0 || opts.Delimiter == "" || opts.Missing == "" {
		return nil, fmt.Errorf("filename: decode options incomplete")
	}
	stem := stripExtension(filepath.Base(name))

	parts := strings.Split(stem, opts.Delimiter)
	if len(parts) != len(opts.Fields) {
		return nil, &FormatError{Name: name, Want: len(opts.Fields), Got: len(parts)}
	}

	rec := make(header.Record, len(parts))
	for i, field := range opts.Fields {
		token := parts[i]
		if token == opts.Missing || token == "" {
			continue
		}
		switch field {
		case header.KeyDate:
			v, err := header.NormalizeDate(token)
			if err != nil {
				return nil, fmt.Errorf("filename: field %s: %w", field, err)
			}
			rec[field] = v
		case header.KeyDateTime:
			v, err := header.NormalizeDateTime(token)
			if err != nil {
				return nil, fmt.Errorf("filename: field %s: %w", field, err)
			}
			rec[header.KeyDateTime] = v
			rec[header.KeyDate] = header.Date(v.Time)
		case header.KeyFilter:
			rec[field] = header.Text(header.NormalizeFilterName(token))
		case header.KeyType:
			rec[field] = header.Text(header.NormalizeConstant(header.KeyType, token))
		default:
			rec[field] = header.Text(token)
		}
	}
	return rec, nil
}

// stripExtension removes a trailing known capture extension,
// case-insensitively. Unknown extensions are kept: a dot inside the last
// field (e.g. a fractional exposure) is not an extension.
func stripExtension(name string) string {
	ext := filepath.Ext(name)
	for _, known := range KnownExtensions {
		if strings.EqualFold(ext, known) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
