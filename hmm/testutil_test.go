package hmm

import (
	"fmt"
	"testing"
)

// Test model: phones 1 and 2 share a two-state topology (state 0:
// self-loop 0.5 / forward 0.5, state 1: self-loop 0.3 / exit 0.7);
// phone 3 has a single emitting state with no self-loop.
func newTestTopology(t *testing.T) *Topology {
	t.Helper()
	topo := NewTopology()
	if err := topo.SetEntry([]PhoneID{1, 2}, []TopologyState{
		{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 0, Prob: 0.5}, {Dest: 1, Prob: 0.5}}},
		{PdfClass: 1, Transitions: []TopologyTransition{{Dest: 1, Prob: 0.3}, {Dest: 2, Prob: 0.7}}},
		{PdfClass: -1},
	}); err != nil {
		t.Fatalf("SetEntry(1,2): %v", err)
	}
	if err := topo.SetEntry([]PhoneID{3}, []TopologyState{
		{PdfClass: 0, Transitions: []TopologyTransition{{Dest: 1, Prob: 1.0}}},
		{PdfClass: -1},
	}); err != nil {
		t.Fatalf("SetEntry(3): %v", err)
	}
	return topo
}

// stubTree is context-independent: the pdf sequence depends only on the
// central phone. Width 3, central position 1.
type stubTree struct{}

func (stubTree) ContextWidth() int    { return 3 }
func (stubTree) CentralPosition() int { return 1 }

func (stubTree) Lookup(window []PhoneID) ([]PdfID, error) {
	if len(window) != 3 {
		return nil, fmt.Errorf("stub tree: window %v has length %d, want 3", window, len(window))
	}
	switch window[1] {
	case 1:
		return []PdfID{0, 1}, nil
	case 2:
		return []PdfID{2, 3}, nil
	case 3:
		return []PdfID{4}, nil
	default:
		return nil, fmt.Errorf("stub tree: unknown central phone %d", window[1])
	}
}

// Transition-id layout of the test model (phones ascending, states in
// order, transitions in topology order):
//
//	1: phone 1 state 0 self-loop   5: phone 2 state 0 self-loop
//	2: phone 1 state 0 forward     6: phone 2 state 0 forward
//	3: phone 1 state 1 self-loop   7: phone 2 state 1 self-loop
//	4: phone 1 state 1 forward     8: phone 2 state 1 forward
//	9: phone 3 state 0 forward
func newTestModel(t *testing.T) (stubTree, *TransitionTable) {
	t.Helper()
	topo := newTestTopology(t)
	table, err := NewTransitionTable(topo, map[PhoneID][][]PdfID{
		1: {{0, 1}},
		2: {{2, 3}},
		3: {{4}},
	})
	if err != nil {
		t.Fatalf("NewTransitionTable: %v", err)
	}
	return stubTree{}, table
}
