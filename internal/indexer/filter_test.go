package indexer

import (
	"testing"

	"github.com/starford/astrometa/internal/header"
)

func rec(path string, fields map[string]string) *Record {
	r := &Record{Path: path, Fields: make(header.Record, len(fields))}
	for k, v := range fields {
		r.Fields.Set(k, header.Text(v))
	}
	return r
}

func testIndex() Index {
	return Index{
		"/d/l1.fits": rec("/d/l1.fits", map[string]string{"type": "LIGHT", "filter": "Ha"}),
		"/d/l2.fits": rec("/d/l2.fits", map[string]string{"type": "LIGHT", "filter": "OIII"}),
		"/d/d1.fits": rec("/d/d1.fits", map[string]string{"type": "DARK"}),
		"/d/f1.fits": rec("/d/f1.fits", map[string]string{"type": "FLAT", "filter": "Ha"}),
	}
}

func TestFilterMetadata_SingleCriterion(t *testing.T) {
	got := FilterMetadata(testIndex(), Criteria{"type": {"LIGHT"}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got["/d/d1.fits"] != nil || got["/d/f1.fits"] != nil {
		t.Error("non-LIGHT records leaked through")
	}
}

func TestFilterMetadata_Idempotent(t *testing.T) {
	c := Criteria{"type": {"LIGHT"}}
	once := FilterMetadata(testIndex(), c)
	twice := FilterMetadata(once, c)
	if len(twice) != len(once) {
		t.Errorf("re-filtering changed the result: %d vs %d", len(twice), len(once))
	}
}

func TestFilterMetadata_EmptyCriteriaIsIdentity(t *testing.T) {
	idx := testIndex()
	if got := FilterMetadata(idx, nil); len(got) != len(idx) {
		t.Errorf("len = %d, want %d", len(got), len(idx))
	}
	if got := FilterMetadata(idx, Criteria{}); len(got) != len(idx) {
		t.Errorf("len = %d, want %d", len(got), len(idx))
	}
}

func TestFilterMetadata_MissingFieldExcludes(t *testing.T) {
	// d1 has no filter field: closed-world filtering drops it.
	got := FilterMetadata(testIndex(), Criteria{"filter": {"Ha"}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got["/d/d1.fits"] != nil {
		t.Error("record missing the filtered field must be excluded")
	}
}

func TestFilterMetadata_CaseInsensitive(t *testing.T) {
	// Both the key and the value match case-insensitively.
	got := FilterMetadata(testIndex(), Criteria{"FILTER": {"ha"}})
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (key and value compare case-insensitively)", len(got))
	}
}

func TestFilterMetadata_SetMembershipAndAND(t *testing.T) {
	got := FilterMetadata(testIndex(), Criteria{
		"filter": {"Ha", "OIII"},
		"type":   {"LIGHT"},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Order of criteria keys must not matter.
	swapped := FilterMetadata(testIndex(), Criteria{
		"type":   {"LIGHT"},
		"filter": {"Ha", "OIII"},
	})
	if len(swapped) != len(got) {
		t.Error("criteria are not commutative")
	}
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria([]string{"type=LIGHT", "filter=Ha|OIII"})
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if len(c["type"]) != 1 || c["type"][0] != "LIGHT" {
		t.Errorf("type = %v", c["type"])
	}
	if len(c["filter"]) != 2 {
		t.Errorf("filter = %v", c["filter"])
	}

	if _, err := ParseCriteria([]string{"nonsense"}); err == nil {
		t.Error("expected error for criterion without =")
	}
}
