package indexer

import (
	"fmt"
	"strings"

	"github.com/starford/astrometa/internal/header"
)

// Criteria maps a canonical field name to its acceptable values. A record
// matches when every key matches; a single-element slice is plain
// equality, a longer one is set membership. String comparison is
// case-insensitive.
type Criteria map[string][]string

// ParseCriteria builds criteria from "key=value" or "key=v1|v2" strings
// (the CLI and query-parameter syntax).
func ParseCriteria(args []string) (Criteria, error) {
	if len(args) == 0 {
		return nil, nil
	}
	c := make(Criteria, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || val == "" {
			return nil, fmt.Errorf("indexer: bad criterion %q, want key=value", arg)
		}
		c[strings.ToLower(key)] = strings.Split(val, "|")
	}
	return c, nil
}

// Match reports whether the record satisfies every criterion. A record
// missing a filtered-on field never matches: filtering is closed-world.
func (c Criteria) Match(r *Record) bool {
	for key, accepted := range c {
		v, ok := r.Fields.Get(key)
		if !ok {
			return false
		}
		s := v.String()
		matched := false
		for _, want := range accepted {
			if strings.EqualFold(s, want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// needsHeaders reports whether any criterion names a field that filename
// decoding (or path profiling) cannot supply, so the pass must enrich.
func (c Criteria) needsHeaders(filenameFields []string) bool {
	derivable := map[string]struct{}{
		header.KeyTargetName: {},
		header.KeyPanel:      {},
		header.KeyType:       {},
		header.KeyFilename:   {},
	}
	for _, f := range filenameFields {
		derivable[strings.ToLower(f)] = struct{}{}
		if strings.ToLower(f) == header.KeyDateTime {
			derivable[header.KeyDate] = struct{}{}
		}
	}
	for key := range c {
		if _, ok := derivable[strings.ToLower(key)]; !ok {
			return true
		}
	}
	return false
}

// FilterMetadata returns the subset of records matching all criteria.
// Empty criteria is the identity filter. Criteria are a commutative AND,
// and filtering is idempotent.
func FilterMetadata(idx Index, c Criteria) Index {
	if len(c) == 0 {
		return idx
	}
	out := make(Index)
	for path, rec := range idx {
		if c.Match(rec) {
			out[path] = rec
		}
	}
	return out
}
