// Package calibration finds matching master calibration frames (darks,
// biases, flats) for light frames based on their metadata records.
package calibration

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/starford/astrometa/internal/header"
	"github.com/starford/astrometa/internal/indexer"
)

// Options tunes the matching rules.
type Options struct {
	// TemperatureTolerance is the maximum set-temperature difference in
	// degrees for dark matching.
	TemperatureTolerance float64
	// DateToleranceDays bounds how far apart a flat and light may be
	// captured. Negative disables the date check.
	DateToleranceDays int
	// PreferExactExposure ranks an exact dark exposure match above the
	// closest longer one.
	PreferExactExposure bool
	// MatchGain and MatchOffset require those camera settings to agree
	// when both frames carry them.
	MatchGain   bool
	MatchOffset bool
}

// DefaultOptions mirrors the stock matching behavior: 5 degree dark
// tolerance, no flat date bound, exact exposures preferred, gain and
// offset enforced.
func DefaultOptions() Options {
	return Options{
		TemperatureTolerance: 5.0,
		DateToleranceDays:    -1,
		PreferExactExposure:  true,
		MatchGain:            true,
		MatchOffset:          true,
	}
}

// MatchSet holds the best calibration frame paths for one light frame.
// Empty strings mark frame kinds with no match.
type MatchSet struct {
	Dark string `json:"dark,omitempty"`
	Bias string `json:"bias,omitempty"`
	Flat string `json:"flat,omitempty"`
}

// FindAll returns the dark, bias, and flat matches for a light frame in
// one call.
func FindAll(light *indexer.Record, cals indexer.Index, opts Options) MatchSet {
	return MatchSet{
		Dark: FindMatchingDark(light, cals, opts),
		Bias: FindMatchingBias(light, cals, opts),
		Flat: FindMatchingFlat(light, cals, opts),
	}
}

// FindMatchingDark returns the path of the best dark for a light frame, or
// "". Darks must cover the light exposure (equal or longer), agree on
// camera settings, and sit within the set-temperature tolerance when both
// frames carry one. Exact exposure matches rank first when preferred,
// then the smallest exposure surplus; paths break remaining ties.
func FindMatchingDark(light *indexer.Record, cals indexer.Index, opts Options) string {
	lightExp, ok := floatField(light, header.KeyExposureSeconds)
	if !ok {
		return ""
	}
	lightTemp, hasLightTemp := floatField(light, header.KeySetTemp)

	type candidate struct {
		path    string
		exact   bool
		surplus float64
	}
	var candidates []candidate

	for path, cal := range cals {
		if !isType(cal, header.TypeDark, header.TypeMasterDark) {
			continue
		}
		if !cameraSettingsMatch(light, cal, opts) {
			continue
		}
		darkExp, ok := floatField(cal, header.KeyExposureSeconds)
		if !ok || darkExp < lightExp {
			continue
		}
		if hasLightTemp {
			if darkTemp, ok := floatField(cal, header.KeySetTemp); ok {
				if math.Abs(lightTemp-darkTemp) > opts.TemperatureTolerance {
					continue
				}
			}
		}
		candidates = append(candidates, candidate{
			path:    path,
			exact:   math.Abs(darkExp-lightExp) < 0.001,
			surplus: darkExp - lightExp,
		})
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if opts.PreferExactExposure && a.exact != b.exact {
			return a.exact
		}
		if a.surplus != b.surplus {
			return a.surplus < b.surplus
		}
		return a.path < b.path
	})
	return candidates[0].path
}

// FindMatchingBias returns the path of a bias matching the light frame's
// camera settings, or "". The lexicographically first match is returned so
// repeated calls are deterministic.
func FindMatchingBias(light *indexer.Record, cals indexer.Index, opts Options) string {
	best := ""
	for path, cal := range cals {
		if !isType(cal, header.TypeBias, header.TypeMasterBias) {
			continue
		}
		if !cameraSettingsMatch(light, cal, opts) {
			continue
		}
		if best == "" || path < best {
			best = path
		}
	}
	return best
}

// FindMatchingFlat returns the path of the best flat for a light frame, or
// "". Flats must agree on filter and camera settings; with a date
// tolerance configured, flats outside the window are rejected and the
// closest-dated one wins.
func FindMatchingFlat(light *indexer.Record, cals indexer.Index, opts Options) string {
	lightFilter, ok := stringField(light, header.KeyFilter)
	if !ok {
		return ""
	}
	lightDate, hasLightDate := dateField(light)

	type candidate struct {
		path     string
		daysDiff float64
	}
	var candidates []candidate

	for path, cal := range cals {
		if !isType(cal, header.TypeFlat, header.TypeMasterFlat) {
			continue
		}
		if !cameraSettingsMatch(light, cal, opts) {
			continue
		}
		flatFilter, ok := stringField(cal, header.KeyFilter)
		if !ok || !strings.EqualFold(flatFilter, lightFilter) {
			continue
		}

		daysDiff := math.Inf(1)
		if opts.DateToleranceDays >= 0 && hasLightDate {
			if flatDate, ok := dateField(cal); ok {
				daysDiff = math.Abs(lightDate.Sub(flatDate).Hours() / 24)
				if daysDiff > float64(opts.DateToleranceDays) {
					continue
				}
			}
		}
		candidates = append(candidates, candidate{path: path, daysDiff: daysDiff})
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.daysDiff != b.daysDiff {
			return a.daysDiff < b.daysDiff
		}
		return a.path < b.path
	})
	return candidates[0].path
}

// cameraSettingsMatch requires the same camera, and agreeing gain/offset
// when enforced and both frames carry the value.
func cameraSettingsMatch(light, cal *indexer.Record, opts Options) bool {
	lightCam, ok := stringField(light, header.KeyCamera)
	if !ok {
		return false
	}
	calCam, ok := stringField(cal, header.KeyCamera)
	if !ok || lightCam != calCam {
		return false
	}
	if opts.MatchGain && !floatAgrees(light, cal, header.KeyGain) {
		return false
	}
	if opts.MatchOffset && !floatAgrees(light, cal, header.KeyOffset) {
		return false
	}
	return true
}

// floatAgrees reports false only when both records carry the field and the
// values differ.
func floatAgrees(a, b *indexer.Record, key string) bool {
	av, aok := floatField(a, key)
	bv, bok := floatField(b, key)
	if aok && bok && av != bv {
		return false
	}
	return true
}

func isType(r *indexer.Record, rawType, masterType string) bool {
	t, ok := stringField(r, header.KeyType)
	if !ok {
		return false
	}
	upper := strings.ToUpper(t)
	return upper == rawType || upper == masterType
}

func stringField(r *indexer.Record, key string) (string, bool) {
	v, ok := r.Fields.Get(key)
	if !ok || v.IsZero() {
		return "", false
	}
	return v.String(), true
}

func floatField(r *indexer.Record, key string) (float64, bool) {
	s, ok := stringField(r, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateField returns the record's capture date, preferring the typed date
// value and falling back to parsing a textual one.
func dateField(r *indexer.Record) (time.Time, bool) {
	v, found := r.Fields.Get(header.KeyDate)
	if !found {
		v, found = r.Fields.Get(header.KeyDateTime)
	}
	if !found || v.IsZero() {
		return time.Time{}, false
	}
	if v.Kind == header.KindDate || v.Kind == header.KindDateTime {
		return v.Time, true
	}
	parsed, err := header.NormalizeDate(v.Text)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Time, true
}
