package hmm

import (
	"testing"
)

func TestCanonicalizeSymbols(t *testing.T) {
	tr, table := newTestModel(t)
	// Entries 1, 3 and 5 share (central phone 1, pdfs {0,1}); entry 2
	// stands alone; entries 4 and 6 are disambiguation and nonterminal
	// singletons.
	info := [][]int32{
		{},
		{2, 1, 2},
		{1, 2, 1},
		{3, 1, 3},
		{-7},
		{2, 1, 3},
		{NontermBigNumber + 2},
	}
	old2new, err := CanonicalizeSymbols(info, tr, table)
	if err != nil {
		t.Fatalf("CanonicalizeSymbols: %v", err)
	}
	want := []int32{0, 1, 2, 4, 6}
	if len(old2new) != len(want) {
		t.Fatalf("old2new = %v, want %v", old2new, want)
	}
	for i := range want {
		if old2new[i] != want[i] {
			t.Fatalf("old2new = %v, want %v", old2new, want)
		}
	}
}

func TestCanonicalizeSymbolsDisambigNeverMerged(t *testing.T) {
	tr, table := newTestModel(t)
	// Two identical disambiguation entries stay separate classes.
	info := [][]int32{
		{},
		{-1},
		{-1},
	}
	old2new, err := CanonicalizeSymbols(info, tr, table)
	if err != nil {
		t.Fatalf("CanonicalizeSymbols: %v", err)
	}
	if len(old2new) != 3 || old2new[1] != 1 || old2new[2] != 2 {
		t.Errorf("old2new = %v, want [0 1 2]", old2new)
	}
}

func TestCanonicalizeSymbolsClassKeys(t *testing.T) {
	tr, table := newTestModel(t)
	info := [][]int32{
		{},
		{1, 1, 1},
		{2, 1, 2},
		{1, 2, 1},
	}
	old2new, err := CanonicalizeSymbols(info, tr, table)
	if err != nil {
		t.Fatalf("CanonicalizeSymbols: %v", err)
	}
	if len(old2new) > len(info) {
		t.Fatalf("more classes (%d) than entries (%d)", len(old2new), len(info))
	}
	// Each representative's key must match the key of every entry in
	// its class; recompute the keys directly.
	keyOf := func(entry []int32) cacheKey {
		window := make([]PhoneID, len(entry))
		for i, p := range entry {
			window[i] = PhoneID(p)
		}
		pdfs, err := tr.Lookup(window)
		if err != nil {
			t.Fatalf("Lookup(%v): %v", window, err)
		}
		return makeCacheKey(window[tr.CentralPosition()], pdfs)
	}
	if keyOf(info[old2new[1]]) != keyOf(info[1]) || keyOf(info[old2new[1]]) != keyOf(info[2]) {
		t.Error("class representative key differs from member keys")
	}
	if keyOf(info[old2new[2]]) != keyOf(info[3]) {
		t.Error("second class representative key differs from its member")
	}
}

func TestCanonicalizeSymbolsErrors(t *testing.T) {
	tr, table := newTestModel(t)
	if _, err := CanonicalizeSymbols([][]int32{{1}}, tr, table); err == nil {
		t.Error("non-empty entry 0 accepted")
	}
	if _, err := CanonicalizeSymbols([][]int32{{}, {}}, tr, table); err == nil {
		t.Error("empty interior entry accepted")
	}
	if _, err := CanonicalizeSymbols([][]int32{{}, {1, 1}}, tr, table); err == nil {
		t.Error("short window accepted")
	}
	if _, err := CanonicalizeSymbols([][]int32{{}, {1, 42, 1}}, tr, table); err == nil {
		t.Error("unknown central phone accepted")
	}
}
