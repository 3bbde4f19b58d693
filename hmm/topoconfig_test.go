package hmm

import (
	"strings"
	"testing"
)

const testTopoYAML = `
topologies:
  - phones: [1, 2]
    states:
      - pdf_class: 0
        transitions:
          - {dest: 0, prob: 0.5}
          - {dest: 1, prob: 0.5}
      - pdf_class: 1
        transitions:
          - {dest: 1, prob: 0.3}
          - {dest: 2, prob: 0.7}
      - {}
  - phones: [3]
    states:
      - pdf_class: 0
        transitions:
          - {dest: 1, prob: 1.0}
      - {}
`

func TestParseTopology(t *testing.T) {
	topo, err := ParseTopology(strings.NewReader(testTopoYAML))
	if err != nil {
		t.Fatalf("ParseTopology: %v", err)
	}
	if got := topo.Phones(); len(got) != 3 {
		t.Fatalf("Phones() = %v, want 3 phones", got)
	}
	states, err := topo.Entry(1)
	if err != nil {
		t.Fatalf("Entry(1): %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("Entry(1) has %d states, want 3", len(states))
	}
	if states[0].PdfClass != 0 || states[2].PdfClass != -1 {
		t.Errorf("pdf classes = %d, %d, want 0, -1", states[0].PdfClass, states[2].PdfClass)
	}
	if states[1].Transitions[0].Prob != 0.3 {
		t.Errorf("state 1 self-loop prob = %g, want 0.3", states[1].Transitions[0].Prob)
	}
	if has, _ := topo.StateHasSelfLoop(3, 0); has {
		t.Error("phone 3 state 0 should have no self-loop")
	}
}

func TestParseTopologyErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "topologies: []"},
		{"no phones", "topologies:\n  - states:\n      - {}\n      - {}"},
		{"garbage", ":::"},
		{"invalid entry", `
topologies:
  - phones: [1]
    states:
      - pdf_class: 0
        transitions:
          - {dest: 1, prob: 0.4}
      - {}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTopology(strings.NewReader(tt.yaml)); err == nil {
				t.Error("ParseTopology accepted bad input")
			}
		})
	}
}
