package hmm

import (
	"bytes"
	"testing"
)

func TestTransitionTableLayout(t *testing.T) {
	_, table := newTestModel(t)
	if got := table.NumTransitionIDs(); got != 9 {
		t.Fatalf("NumTransitionIDs() = %d, want 9", got)
	}

	tests := []struct {
		tid  TransitionID
		want TransitionInfo
	}{
		{1, TransitionInfo{Phone: 1, HmmState: 0, IsSelfLoop: true, Pdf: 0, Prob: 0.5}},
		{2, TransitionInfo{Phone: 1, HmmState: 0, IsSelfLoop: false, Pdf: 0, Prob: 0.5}},
		{3, TransitionInfo{Phone: 1, HmmState: 1, IsSelfLoop: true, Pdf: 1, Prob: 0.3}},
		{4, TransitionInfo{Phone: 1, HmmState: 1, IsSelfLoop: false, Pdf: 1, Prob: 0.7}},
		{5, TransitionInfo{Phone: 2, HmmState: 0, IsSelfLoop: true, Pdf: 2, Prob: 0.5}},
		{8, TransitionInfo{Phone: 2, HmmState: 1, IsSelfLoop: false, Pdf: 3, Prob: 0.7}},
		{9, TransitionInfo{Phone: 3, HmmState: 0, IsSelfLoop: false, Pdf: 4, Prob: 1.0}},
	}
	for _, tt := range tests {
		got, err := table.Info(tt.tid)
		if err != nil {
			t.Fatalf("Info(%d): %v", tt.tid, err)
		}
		if got != tt.want {
			t.Errorf("Info(%d) = %+v, want %+v", tt.tid, got, tt.want)
		}
	}
}

func TestTransitionTableLookup(t *testing.T) {
	_, table := newTestModel(t)
	tid, err := table.Lookup(1, 1, 1, false)
	if err != nil || tid != 4 {
		t.Errorf("Lookup(1,1,1,fwd) = %d, %v, want 4", tid, err)
	}
	if _, err := table.Lookup(1, 0, 7, false); err == nil {
		t.Error("Lookup with wrong pdf did not fail")
	}
	if _, err := table.Lookup(3, 0, 4, true); err == nil {
		t.Error("Lookup of missing self-loop did not fail")
	}
}

func TestTransitionTableInfoBounds(t *testing.T) {
	_, table := newTestModel(t)
	if _, err := table.Info(0); err == nil {
		t.Error("Info(0) did not fail")
	}
	if _, err := table.Info(10); err == nil {
		t.Error("Info(10) did not fail")
	}
}

func TestSelfLoopOf(t *testing.T) {
	_, table := newTestModel(t)
	tests := []struct {
		tid  TransitionID
		want TransitionID
	}{
		{2, 1}, // forward of phone 1 state 0 -> its self-loop
		{4, 3},
		{1, 1}, // a self-loop maps to itself
		{9, 0}, // phone 3 state 0 has no self-loop
		{0, 0}, // invalid ids map to 0
		{99, 0},
	}
	for _, tt := range tests {
		if got := table.SelfLoopOf(tt.tid); got != tt.want {
			t.Errorf("SelfLoopOf(%d) = %d, want %d", tt.tid, got, tt.want)
		}
	}
}

func TestTransitionIDsByPhone(t *testing.T) {
	_, table := newTestModel(t)
	got := table.TransitionIDs(1)
	want := []TransitionID{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("TransitionIDs(1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TransitionIDs(1) = %v, want %v", got, want)
		}
	}
	if got := table.TransitionIDs(42); len(got) != 0 {
		t.Errorf("TransitionIDs(42) = %v, want empty", got)
	}
}

func TestNewTransitionTableErrors(t *testing.T) {
	topo := newTestTopology(t)
	if _, err := NewTransitionTable(topo, map[PhoneID][][]PdfID{1: {{0}}}); err == nil {
		t.Error("short pdf sequence accepted")
	}
	if _, err := NewTransitionTable(topo, map[PhoneID][][]PdfID{42: {{0, 1}}}); err == nil {
		t.Error("unknown phone accepted")
	}
	if _, err := NewTransitionTable(topo, map[PhoneID][][]PdfID{}); err == nil {
		t.Error("empty pdf map accepted")
	}
}

func TestTransitionTableSaveLoad(t *testing.T) {
	_, table := newTestModel(t)
	var buf bytes.Buffer
	if err := table.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadTransitionTable(&buf)
	if err != nil {
		t.Fatalf("LoadTransitionTable: %v", err)
	}
	if loaded.NumTransitionIDs() != table.NumTransitionIDs() {
		t.Fatalf("loaded table has %d ids, want %d", loaded.NumTransitionIDs(), table.NumTransitionIDs())
	}
	for tid := TransitionID(1); int(tid) <= table.NumTransitionIDs(); tid++ {
		a, _ := table.Info(tid)
		b, err := loaded.Info(tid)
		if err != nil {
			t.Fatalf("loaded Info(%d): %v", tid, err)
		}
		if a != b {
			t.Errorf("Info(%d): loaded %+v, want %+v", tid, b, a)
		}
	}
}
