package hmm

import (
	"encoding/gob"
	"fmt"
	"io"
)

// serializable types for gob encoding
type serializedTransition struct {
	Phone    PhoneID
	HmmState int
	Pdf      PdfID
	SelfLoop bool
	Prob     float64
}

type serializedPhoneTopo struct {
	Phone  PhoneID
	States []TopologyState
}

type serializedTable struct {
	Phones      []serializedPhoneTopo
	Transitions []serializedTransition // index+1 = transition-id
}

// Save serializes the table to a writer using gob encoding. Transition
// id assignment is preserved exactly.
func (t *TransitionTable) Save(w io.Writer) error {
	st := serializedTable{}
	for _, phone := range t.topo.Phones() {
		states, _ := t.topo.Entry(phone)
		st.Phones = append(st.Phones, serializedPhoneTopo{Phone: phone, States: states})
	}
	for _, info := range t.infos[1:] {
		st.Transitions = append(st.Transitions, serializedTransition{
			Phone:    info.Phone,
			HmmState: info.HmmState,
			Pdf:      info.Pdf,
			SelfLoop: info.IsSelfLoop,
			Prob:     info.Prob,
		})
	}
	return gob.NewEncoder(w).Encode(st)
}

// LoadTransitionTable deserializes a table from a reader.
func LoadTransitionTable(r io.Reader) (*TransitionTable, error) {
	var st serializedTable
	if err := gob.NewDecoder(r).Decode(&st); err != nil {
		return nil, err
	}
	topo := NewTopology()
	for _, pt := range st.Phones {
		if err := topo.SetEntry([]PhoneID{pt.Phone}, pt.States); err != nil {
			return nil, fmt.Errorf("transitions: load phone %d: %w", pt.Phone, err)
		}
	}
	t := &TransitionTable{
		topo:    topo,
		infos:   make([]TransitionInfo, 1),
		byTuple: make(map[transTuple]TransitionID),
		byPhone: make(map[PhoneID][]TransitionID),
	}
	for i, tr := range st.Transitions {
		key := transTuple{tr.Phone, tr.HmmState, tr.Pdf, tr.SelfLoop}
		if _, dup := t.byTuple[key]; dup {
			return nil, fmt.Errorf("transitions: duplicate tuple at transition-id %d", i+1)
		}
		t.register(tr.Phone, tr.HmmState, tr.Pdf, tr.SelfLoop, tr.Prob)
	}
	if t.NumTransitionIDs() == 0 {
		return nil, fmt.Errorf("transitions: loaded table has no transitions")
	}
	return t, nil
}
