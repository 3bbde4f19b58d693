package hmm

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// YAML topology file format:
//
//	topologies:
//	  - phones: [1, 2, 3]
//	    states:
//	      - pdf_class: 0
//	        transitions:
//	          - {dest: 0, prob: 0.5}
//	          - {dest: 1, prob: 0.5}
//	      - pdf_class: 1
//	        transitions:
//	          - {dest: 1, prob: 0.5}
//	          - {dest: 2, prob: 0.5}
//	      - {}   # final state: non-emitting, no transitions
//
// States without a pdf_class are non-emitting.

type topoFile struct {
	Topologies []topoEntry `yaml:"topologies"`
}

type topoEntry struct {
	Phones []PhoneID   `yaml:"phones"`
	States []topoState `yaml:"states"`
}

type topoState struct {
	PdfClass    *int             `yaml:"pdf_class"`
	Transitions []topoTransition `yaml:"transitions"`
}

type topoTransition struct {
	Dest int     `yaml:"dest"`
	Prob float64 `yaml:"prob"`
}

// ParseTopology reads a YAML topology description and returns the
// validated Topology.
func ParseTopology(r io.Reader) (*Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	var file topoFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("topology: parse yaml: %w", err)
	}
	if len(file.Topologies) == 0 {
		return nil, fmt.Errorf("topology: file defines no topologies")
	}
	topo := NewTopology()
	for i, entry := range file.Topologies {
		if len(entry.Phones) == 0 {
			return nil, fmt.Errorf("topology: entry %d lists no phones", i)
		}
		states := make([]TopologyState, len(entry.States))
		for j, st := range entry.States {
			pdfClass := -1
			if st.PdfClass != nil {
				pdfClass = *st.PdfClass
			}
			states[j].PdfClass = pdfClass
			for _, tr := range st.Transitions {
				states[j].Transitions = append(states[j].Transitions, TopologyTransition{
					Dest: tr.Dest,
					Prob: tr.Prob,
				})
			}
		}
		if err := topo.SetEntry(entry.Phones, states); err != nil {
			return nil, fmt.Errorf("topology: entry %d: %w", i, err)
		}
	}
	return topo, nil
}
