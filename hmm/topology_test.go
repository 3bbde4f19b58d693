package hmm

import (
	"strings"
	"testing"
)

func TestSetEntryValidation(t *testing.T) {
	good := []TopologyState{
		{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 0, Prob: 0.5}, {Dest: 1, Prob: 0.5}}},
		{PdfClass: -1},
	}
	tests := []struct {
		name    string
		states  []TopologyState
		wantErr string
	}{
		{"good", good, ""},
		{"too short", []TopologyState{{PdfClass: -1}}, "at least one"},
		{"final emitting", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 1}}},
			{PdfClass: 1},
		}, "must be non-emitting"},
		{"entry non-emitting", []TopologyState{
			{PdfClass: -1, Transitions: []TopologyTransition{{Dest: 1, Prob: 1}}},
			{PdfClass: -1},
		}, "pdf-class"},
		{"out of range dest", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 7, Prob: 1}}},
			{PdfClass: -1},
		}, "out-of-range"},
		{"non-positive prob", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 0}, {Dest: 1, Prob: 1}}},
			{PdfClass: -1},
		}, "non-positive"},
		{"bad sum", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 0.6}}},
			{PdfClass: -1},
		}, "sum to"},
		{"two forwards", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 0.5}, {Dest: 2, Prob: 0.5}}},
			{PdfClass: 1, Transitions: []TopologyTransition{{Dest: 2, Prob: 1}}},
			{PdfClass: -1},
		}, "forward transitions"},
		{"pdf-class gap", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 1}}},
			{PdfClass: 2, Transitions: []TopologyTransition{{Dest: 2, Prob: 1}}},
			{PdfClass: -1},
		}, "dense"},
		{"unreachable", []TopologyState{
			{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 2, Prob: 1}}},
			{PdfClass: 1, Transitions: []TopologyTransition{{Dest: 2, Prob: 1}}},
			{PdfClass: -1},
		}, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := NewTopology()
			err := topo.SetEntry([]PhoneID{1}, tt.states)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("SetEntry: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("SetEntry error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetEntryRejectsDuplicatePhone(t *testing.T) {
	topo := newTestTopology(t)
	err := topo.SetEntry([]PhoneID{1}, []TopologyState{
		{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 1}}},
		{PdfClass: -1},
	})
	if err == nil {
		t.Fatal("SetEntry accepted a duplicate phone")
	}
}

func TestTopologyQueries(t *testing.T) {
	topo := newTestTopology(t)

	if got := topo.Phones(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Phones() = %v, want [1 2 3]", got)
	}

	if n, err := topo.NumPdfClasses(1); err != nil || n != 2 {
		t.Errorf("NumPdfClasses(1) = %d, %v, want 2", n, err)
	}
	if n, err := topo.NumPdfClasses(3); err != nil || n != 1 {
		t.Errorf("NumPdfClasses(3) = %d, %v, want 1", n, err)
	}

	if has, err := topo.StateHasSelfLoop(1, 0); err != nil || !has {
		t.Errorf("StateHasSelfLoop(1, 0) = %t, %v, want true", has, err)
	}
	if has, err := topo.StateHasSelfLoop(3, 0); err != nil || has {
		t.Errorf("StateHasSelfLoop(3, 0) = %t, %v, want false", has, err)
	}
	if _, err := topo.StateHasSelfLoop(1, 9); err == nil {
		t.Error("StateHasSelfLoop(1, 9) did not fail")
	}

	if finals, err := topo.FinalStates(1); err != nil || len(finals) != 1 || finals[0] != 2 {
		t.Errorf("FinalStates(1) = %v, %v, want [2]", finals, err)
	}

	if _, err := topo.Entry(42); err == nil {
		t.Error("Entry(42) did not fail for unknown phone")
	}
}

func TestMinLength(t *testing.T) {
	topo := newTestTopology(t)
	if n, err := topo.MinLength(1); err != nil || n != 2 {
		t.Errorf("MinLength(1) = %d, %v, want 2", n, err)
	}
	if n, err := topo.MinLength(3); err != nil || n != 1 {
		t.Errorf("MinLength(3) = %d, %v, want 1", n, err)
	}
	if _, err := topo.MinLength(42); err == nil {
		t.Error("MinLength(42) did not fail for unknown phone")
	}
}
