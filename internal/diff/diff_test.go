package diff

import (
	"testing"

	"github.com/jmleung/deltamail/internal/snapshot"
)

func records(keys ...string) []snapshot.Record {
	rs := make([]snapshot.Record, len(keys))
	for i, k := range keys {
		rs[i] = snapshot.Record{"Issue key": k}
	}
	return rs
}

func TestKeys(t *testing.T) {
	set := Keys(records("A-1", " A-2 ", "", "A-1"), "Issue key")
	if len(set) != 2 {
		t.Fatalf("len = %d, want 2", len(set))
	}
	if !set.Has("A-1") || !set.Has("A-2") {
		t.Errorf("set = %v, want {A-1, A-2}", set.Sorted())
	}
}

func TestKeys_ExcludesEmptyAndAbsent(t *testing.T) {
	rs := []snapshot.Record{
		{"Issue key": "   "},
		{"Summary": "no key column at all"},
		{"Issue key": "A-1"},
	}
	set := Keys(rs, "Issue key")
	if len(set) != 1 || !set.Has("A-1") {
		t.Errorf("set = %v, want {A-1}", set.Sorted())
	}
}

func TestNewKeys(t *testing.T) {
	older := Keys(records("A-1", "A-2"), "Issue key")
	newer := Keys(records("A-1", "A-2", "A-3"), "Issue key")

	novel := NewKeys(older, newer)
	if len(novel) != 1 || !novel.Has("A-3") {
		t.Errorf("novel = %v, want {A-3}", novel.Sorted())
	}
}

func TestNewKeys_SameInputsEmpty(t *testing.T) {
	set := Keys(records("A-1", "A-2"), "Issue key")
	if novel := NewKeys(set, set); len(novel) != 0 {
		t.Errorf("novelty(A, A) = %v, want empty", novel.Sorted())
	}
}

func TestNewKeys_OrderIndependent(t *testing.T) {
	olderA := Keys(records("A-1", "A-2", "A-4"), "Issue key")
	olderB := Keys(records("A-4", "A-1", "A-2"), "Issue key")
	newerA := Keys(records("A-3", "A-1", "A-2", "A-4"), "Issue key")
	newerB := Keys(records("A-4", "A-2", "A-1", "A-3"), "Issue key")

	a := NewKeys(olderA, newerA).Sorted()
	b := NewKeys(olderB, newerB).Sorted()
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] || a[0] != "A-3" {
		t.Errorf("novelty differs by row order: %v vs %v", a, b)
	}
}

func TestNewKeys_CaseSensitive(t *testing.T) {
	older := Keys(records("a-1"), "Issue key")
	newer := Keys(records("A-1"), "Issue key")

	novel := NewKeys(older, newer)
	if !novel.Has("A-1") {
		t.Error("A-1 should be novel; comparison is case-sensitive")
	}
}

func TestNewKeys_RemovedKeysIgnored(t *testing.T) {
	older := Keys(records("A-1", "A-2"), "Issue key")
	newer := Keys(records("A-2"), "Issue key")

	if novel := NewKeys(older, newer); len(novel) != 0 {
		t.Errorf("novel = %v, want empty; disappeared keys are not novelty", novel.Sorted())
	}
}

func TestSorted(t *testing.T) {
	set := Keys(records("B-2", "A-10", "A-2"), "Issue key")
	got := set.Sorted()
	want := []string{"A-10", "A-2", "B-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}
