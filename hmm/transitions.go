package hmm

import (
	"fmt"
	"sort"
)

// ContextTree maps a phonetic context window to the ordered pdf-ids of
// the central phone's emitting topology states. Concrete trees live in
// the tree package; this core depends only on the interface.
type ContextTree interface {
	// ContextWidth returns the required window length.
	ContextWidth() int
	// CentralPosition returns the index of the central phone within a
	// window; 0 <= CentralPosition() < ContextWidth().
	CentralPosition() int
	// Lookup returns one pdf-id per pdf-class of the central phone's
	// topology. It fails on a malformed window length or an unknown
	// phone.
	Lookup(window []PhoneID) ([]PdfID, error)
}

// TransitionInfo is the tuple a TransitionID denotes.
type TransitionInfo struct {
	Phone      PhoneID
	HmmState   int
	IsSelfLoop bool
	Pdf        PdfID
	Prob       float64
}

// TransitionModel resolves TransitionIDs to the structural and
// probabilistic facts they denote. Ids are dense, starting at 1.
type TransitionModel interface {
	// NumTransitionIDs returns the largest valid id.
	NumTransitionIDs() int
	// Info resolves an id. It fails on ids outside 1..NumTransitionIDs.
	Info(tid TransitionID) (TransitionInfo, error)
	// Lookup returns the id registered for the tuple.
	Lookup(phone PhoneID, hmmState int, pdf PdfID, selfLoop bool) (TransitionID, error)
	// SelfLoopOf returns the self-loop id sharing tid's (phone, HMM
	// state, pdf), or 0 if that state has no self-loop. For a
	// self-loop id it returns the id itself.
	SelfLoopOf(tid TransitionID) TransitionID
	// TransitionIDs returns all ids belonging to phone, ascending.
	TransitionIDs(phone PhoneID) []TransitionID
	// Topology returns the underlying phone topologies.
	Topology() *Topology
}

type transTuple struct {
	phone    PhoneID
	hmmState int
	pdf      PdfID
	selfLoop bool
}

// TransitionTable is a table-backed TransitionModel built from a
// topology plus the pdf sequences each phone can be assigned. Id
// assignment is deterministic: phones ascending, sequences in the given
// order, states in topology order, transitions in topology order.
type TransitionTable struct {
	topo    *Topology
	infos   []TransitionInfo // index = tid; infos[0] is unused
	byTuple map[transTuple]TransitionID
	byPhone map[PhoneID][]TransitionID
}

// NewTransitionTable builds the table. pdfSeqs maps each phone to the
// pdf sequences (one pdf per pdf-class) it can take; context-dependent
// phones have one sequence per decision-tree leaf combination. A tuple
// appearing in several sequences is registered once.
func NewTransitionTable(topo *Topology, pdfSeqs map[PhoneID][][]PdfID) (*TransitionTable, error) {
	t := &TransitionTable{
		topo:    topo,
		infos:   make([]TransitionInfo, 1),
		byTuple: make(map[transTuple]TransitionID),
		byPhone: make(map[PhoneID][]TransitionID),
	}
	phones := make([]PhoneID, 0, len(pdfSeqs))
	for p := range pdfSeqs {
		phones = append(phones, p)
	}
	sort.Slice(phones, func(i, j int) bool { return phones[i] < phones[j] })
	for _, phone := range phones {
		states, err := topo.Entry(phone)
		if err != nil {
			return nil, err
		}
		numClasses, _ := topo.NumPdfClasses(phone)
		for _, seq := range pdfSeqs[phone] {
			if len(seq) != numClasses {
				return nil, fmt.Errorf("transitions: phone %d pdf sequence has length %d, want %d", phone, len(seq), numClasses)
			}
			for j, st := range states {
				if st.PdfClass < 0 {
					continue
				}
				pdf := seq[st.PdfClass]
				if pdf < 0 {
					return nil, fmt.Errorf("transitions: phone %d state %d has negative pdf %d", phone, j, pdf)
				}
				for _, tr := range st.Transitions {
					t.register(phone, j, pdf, tr.Dest == j, tr.Prob)
				}
			}
		}
	}
	if len(t.infos) == 1 {
		return nil, fmt.Errorf("transitions: no transitions registered")
	}
	return t, nil
}

func (t *TransitionTable) register(phone PhoneID, hmmState int, pdf PdfID, selfLoop bool, prob float64) TransitionID {
	key := transTuple{phone, hmmState, pdf, selfLoop}
	if tid, ok := t.byTuple[key]; ok {
		return tid
	}
	tid := TransitionID(len(t.infos))
	t.infos = append(t.infos, TransitionInfo{
		Phone:      phone,
		HmmState:   hmmState,
		IsSelfLoop: selfLoop,
		Pdf:        pdf,
		Prob:       prob,
	})
	t.byTuple[key] = tid
	t.byPhone[phone] = append(t.byPhone[phone], tid)
	return tid
}

// NumTransitionIDs returns the largest valid id.
func (t *TransitionTable) NumTransitionIDs() int {
	return len(t.infos) - 1
}

// Info resolves an id.
func (t *TransitionTable) Info(tid TransitionID) (TransitionInfo, error) {
	if tid < 1 || int(tid) >= len(t.infos) {
		return TransitionInfo{}, fmt.Errorf("transitions: invalid transition-id %d (have 1..%d)", tid, t.NumTransitionIDs())
	}
	return t.infos[tid], nil
}

// Lookup returns the id registered for the tuple.
func (t *TransitionTable) Lookup(phone PhoneID, hmmState int, pdf PdfID, selfLoop bool) (TransitionID, error) {
	tid, ok := t.byTuple[transTuple{phone, hmmState, pdf, selfLoop}]
	if !ok {
		return 0, fmt.Errorf("transitions: no id for phone %d state %d pdf %d self-loop %t", phone, hmmState, pdf, selfLoop)
	}
	return tid, nil
}

// SelfLoopOf returns the self-loop id sharing tid's (phone, HMM state,
// pdf), or 0 if that state has none.
func (t *TransitionTable) SelfLoopOf(tid TransitionID) TransitionID {
	if tid < 1 || int(tid) >= len(t.infos) {
		return 0
	}
	info := t.infos[tid]
	if info.IsSelfLoop {
		return tid
	}
	sl, ok := t.byTuple[transTuple{info.Phone, info.HmmState, info.Pdf, true}]
	if !ok {
		return 0
	}
	return sl
}

// TransitionIDs returns all ids belonging to phone, ascending.
func (t *TransitionTable) TransitionIDs(phone PhoneID) []TransitionID {
	ids := append([]TransitionID(nil), t.byPhone[phone]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Topology returns the underlying phone topologies.
func (t *TransitionTable) Topology() *Topology {
	return t.topo
}
