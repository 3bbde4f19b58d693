package fst

import (
	"encoding/gob"
	"fmt"
	"io"
)

// serializable types for gob encoding
type serializedArc struct {
	ILabel int32
	OLabel int32
	Cost   float64
	Dest   int
}

type serializedState struct {
	Arcs      []serializedArc
	FinalCost float64
	Final     bool
}

type serializedFst struct {
	States   []serializedState
	Start    int
	HasStart bool
}

// Save serializes the transducer to a writer using gob encoding.
func (f *Fst) Save(w io.Writer) error {
	sf := serializedFst{
		States:   make([]serializedState, len(f.states)),
		Start:    f.start,
		HasStart: f.hasStart,
	}
	for i := range f.states {
		ss := &sf.States[i]
		if !f.states[i].final.IsZero() {
			ss.Final = true
			ss.FinalCost = float64(f.states[i].final)
		}
		for _, a := range f.states[i].arcs {
			ss.Arcs = append(ss.Arcs, serializedArc{
				ILabel: a.ILabel,
				OLabel: a.OLabel,
				Cost:   float64(a.Weight),
				Dest:   a.Dest,
			})
		}
	}
	return gob.NewEncoder(w).Encode(sf)
}

// Load deserializes a transducer from a reader.
func Load(r io.Reader) (*Fst, error) {
	var sf serializedFst
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, err
	}
	f := New()
	for range sf.States {
		f.AddState()
	}
	for i, ss := range sf.States {
		if ss.Final {
			f.SetFinal(i, Weight(ss.FinalCost))
		}
		for _, a := range ss.Arcs {
			if a.Dest < 0 || a.Dest >= len(sf.States) {
				return nil, fmt.Errorf("fst: arc from state %d has out-of-range destination %d", i, a.Dest)
			}
			f.AddArc(i, Arc{
				ILabel: a.ILabel,
				OLabel: a.OLabel,
				Weight: Weight(a.Cost),
				Dest:   a.Dest,
			})
		}
	}
	if sf.HasStart {
		if sf.Start < 0 || sf.Start >= len(sf.States) {
			return nil, fmt.Errorf("fst: out-of-range start state %d", sf.Start)
		}
		f.SetStart(sf.Start)
	}
	return f, nil
}
