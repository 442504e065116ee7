// Package header canonicalizes raw capture-file headers: names, dates,
// filter names, and vendor-specific constants.
package header

import (
	"encoding/json"
	"strings"
	"time"
)

// Canonical textual layouts. Lexicographic order of the canonical datetime
// form equals chronological order.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Kind distinguishes the value variants a header can carry.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindDateTime
)

// Value is a normalized header value: plain text, a calendar date, or a
// full timestamp. The zero Value is empty text.
type Value struct {
	Kind Kind
	Text string
	Time time.Time
}

// Text wraps a plain string value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Date wraps a calendar date (time-of-day is discarded). Offset-bearing
// inputs are converted to UTC first, so one instant yields one date.
func Date(t time.Time) Value {
	y, m, d := t.UTC().Date()
	return Value{Kind: KindDate, Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTime wraps a full timestamp (sub-second precision is discarded).
// Offset-bearing inputs are converted to UTC, keeping the canonical string
// form in chronological order.
func DateTime(t time.Time) Value {
	return Value{Kind: KindDateTime, Time: t.UTC().Truncate(time.Second)}
}

// String returns the canonical textual form of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindDate:
		return v.Time.Format(DateLayout)
	case KindDateTime:
		return v.Time.Format(DateTimeLayout)
	default:
		return v.Text
	}
}

// IsZero reports whether the value carries no data.
func (v Value) IsZero() bool {
	return v.Text == "" && v.Time.IsZero()
}

// MarshalJSON encodes the canonical textual form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON re-hydrates a value from its canonical textual form,
// recovering the date/datetime kinds where the text matches their layouts.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		*v = DateTime(t)
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*v = Date(t)
		return nil
	}
	*v = Text(s)
	return nil
}

// Record maps canonical header names to normalized values. Keys are stored
// lower-case; lookups through Get are case-insensitive.
type Record map[string]Value

// Get returns the value for key, matching case-insensitively.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r[strings.ToLower(key)]
	return v, ok
}

// Set stores a value under the canonical (lower-case) spelling of key.
func (r Record) Set(key string, v Value) {
	r[strings.ToLower(key)] = v
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Strings returns the record as canonical key → canonical textual value.
func (r Record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = v.String()
	}
	return out
}
