package header

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a date or datetime string that matched none of the
// attempted layouts. It is fatal to the single field, never to a batch.
type ParseError struct {
	Raw     string
	Layouts []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("header: unrecognized date %q (tried %d layouts)", e.Raw, len(e.Layouts))
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Default layouts tried before any caller-supplied overrides.
var (
	defaultDateLayouts = []string{
		DateLayout,
		"20060102",
		"2006/01/02",
	}
	defaultDateTimeLayouts = []string{
		DateTimeLayout,
		"2006-01-02T15-04-05",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02_15-04-05",
		"20060102150405",
	}
)

// DefaultPanelPattern splits a trailing mosaic-panel token from a target
// name: "M31-P02" → target "M31", panel "P02". The first capture group is
// the panel token.
var DefaultPanelPattern = regexp.MustCompile(`-(P\d+)$`)

// Options controls per-record normalization.
type Options struct {
	// DateLayouts and DateTimeLayouts are tried after the built-in
	// layouts, in order.
	DateLayouts     []string
	DateTimeLayouts []string

	// PanelPattern overrides DefaultPanelPattern. Its first capture group
	// must be the panel token.
	PanelPattern *regexp.Regexp

	// FilterAliases extends FilterNormalizationData with caller-supplied
	// spellings (lower-case variant → canonical name).
	FilterAliases map[string]string
}

// NormalizeDate parses raw under the default date layouts, then datetime
// layouts, then the overrides in order, and returns a canonical date value.
func NormalizeDate(raw string, overrides ...string) (Value, error) {
	layouts := make([]string, 0, len(defaultDateLayouts)+len(defaultDateTimeLayouts)+len(overrides))
	layouts = append(layouts, defaultDateLayouts...)
	layouts = append(layouts, defaultDateTimeLayouts...)
	layouts = append(layouts, overrides...)

	t, err := parseAny(raw, layouts)
	if err != nil {
		return Value{}, err
	}
	return Date(t), nil
}

// NormalizeDateTime parses raw under the default datetime layouts and the
// overrides in order, and returns a canonical timestamp value.
func NormalizeDateTime(raw string, overrides ...string) (Value, error) {
	layouts := make([]string, 0, len(defaultDateTimeLayouts)+len(overrides))
	layouts = append(layouts, defaultDateTimeLayouts...)
	layouts = append(layouts, overrides...)

	t, err := parseAny(raw, layouts)
	if err != nil {
		return Value{}, err
	}
	return DateTime(t), nil
}

// NormalizeFilterName canonicalizes a filter-wheel name through the static
// table. Unmapped names are returned unchanged, never an error.
func NormalizeFilterName(raw string) string {
	return normalizeFilterName(raw, nil)
}

func normalizeFilterName(raw string, aliases map[string]string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	if canonical, ok := FilterNormalizationData[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// NormalizeConstant remaps an enumeration value through
// ConstantNormalizationData. Unmapped keys or values pass through unchanged.
func NormalizeConstant(key, raw string) string {
	table, ok := ConstantNormalizationData[strings.ToLower(key)]
	if !ok {
		return raw
	}
	if canonical, ok := table[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return raw
}

// NormalizeTargetName splits an optional trailing panel token from a raw
// target string. pattern may be nil, selecting DefaultPanelPattern.
// Re-joining target and panel with the pattern's separator reproduces the
// original string.
func NormalizeTargetName(raw string, pattern *regexp.Regexp) (target, panel string) {
	if pattern == nil {
		pattern = DefaultPanelPattern
	}
	trimmed := strings.TrimSpace(raw)
	m := pattern.FindStringSubmatchIndex(trimmed)
	if m == nil || len(m) < 4 {
		return trimmed, ""
	}
	target = strings.TrimSpace(trimmed[:m[0]])
	panel = trimmed[m[2]:m[3]]
	if target == "" {
		// A bare panel token is a target name, not a panel.
		return trimmed, ""
	}
	return target, panel
}

// NormalizeHeaders canonicalizes a raw header map into a Record. Recognized
// keys get their per-field rules applied; unrecognized keys pass through
// with canonical key casing and untouched values. Date parse failures omit
// the offending field and are reported through the joined error while the
// rest of the record is still returned.
func NormalizeHeaders(raw map[string]string, opts Options) (Record, error) {
	// Collapse alternative raw spellings (EXPTIME vs EXPOSURE, …) onto one
	// canonical key, keeping the highest-priority source.
	chosen := make(map[string]string, len(raw))
	rank := make(map[string]int, len(raw))
	for k, v := range raw {
		upper := strings.ToUpper(strings.TrimSpace(k))
		key := CanonicalKey(k)
		p := keyPriority[upper]
		if prev, ok := rank[key]; ok && prev <= p {
			continue
		}
		chosen[key] = v
		rank[key] = p
	}

	rec := make(Record, len(chosen))
	var errs []error
	// Date candidates are resolved after the loop: a date derived from the
	// capture datetime outranks a bare DATE-OBS date, which outranks a plain
	// DATE header. Writing them inline would let map iteration order decide.
	var captureDate, obsDate, plainDate Value
	var haveCapture, haveObs, havePlain bool
	for key, v := range chosen {
		val := strings.TrimSpace(v)
		switch key {
		case KeyDateTime:
			dt, err := NormalizeDateTime(val, opts.DateTimeLayouts...)
			if err != nil {
				// Some tools write a bare date into DATE-OBS.
				d, derr := NormalizeDate(val, opts.DateLayouts...)
				if derr != nil {
					errs = append(errs, err)
					continue
				}
				obsDate, haveObs = d, true
				continue
			}
			rec[KeyDateTime] = dt
			captureDate, haveCapture = Date(dt.Time), true
		case KeyDate:
			d, err := NormalizeDate(val, opts.DateLayouts...)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			plainDate, havePlain = d, true
		case KeyType:
			rec[KeyType] = Text(NormalizeConstant(KeyType, val))
		case KeyFilter:
			rec[KeyFilter] = Text(normalizeFilterName(val, opts.FilterAliases))
		case KeyTargetName:
			target, panel := NormalizeTargetName(val, opts.PanelPattern)
			rec[KeyTargetName] = Text(target)
			if panel != "" {
				rec[KeyPanel] = Text(panel)
			}
		default:
			if _, numeric := numericKeys[key]; numeric {
				rec[key] = Text(canonicalNumber(val))
				continue
			}
			rec[key] = Text(val)
		}
	}

	switch {
	case haveCapture:
		rec[KeyDate] = captureDate
	case haveObs:
		rec[KeyDate] = obsDate
	case havePlain:
		rec[KeyDate] = plainDate
	}

	return rec, errors.Join(errs...)
}

// canonicalNumber rewrites a numeric string to one canonical decimal
// spelling ("300.0" → "300"). Non-numeric input passes through.
func canonicalNumber(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseAny(raw string, layouts []string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &ParseError{Raw: raw, Layouts: layouts}
}
