package fst

// Arc is a single transition between two states. Dest is a state index
// into the owning Fst, never a pointer, so automata with cycles
// (self-loops) still have simple ownership.
type Arc struct {
	ILabel int32
	OLabel int32
	Weight Weight
	Dest   int
}

type state struct {
	arcs  []Arc
	final Weight
}

// Fst is a weighted finite-state transducer stored as an arena of states
// indexed by integer id. The zero value is an empty transducer with no
// states and no start state.
type Fst struct {
	states   []state
	start    int
	hasStart bool
}

// New returns an empty Fst.
func New() *Fst {
	return &Fst{}
}

// NumStates returns the number of states.
func (f *Fst) NumStates() int {
	return len(f.states)
}

// NumArcs returns the total number of arcs.
func (f *Fst) NumArcs() int {
	n := 0
	for i := range f.states {
		n += len(f.states[i].arcs)
	}
	return n
}

// AddState appends a new non-final state and returns its id.
func (f *Fst) AddState() int {
	f.states = append(f.states, state{final: Zero()})
	return len(f.states) - 1
}

// SetStart marks s as the start state.
func (f *Fst) SetStart(s int) {
	f.start = s
	f.hasStart = true
}

// Start returns the start state id, or -1 if none has been set.
func (f *Fst) Start() int {
	if !f.hasStart {
		return -1
	}
	return f.start
}

// SetFinal sets the final weight of s. A weight of Zero makes s non-final.
func (f *Fst) SetFinal(s int, w Weight) {
	f.states[s].final = w
}

// Final returns the final weight of s (Zero for non-final states).
func (f *Fst) Final(s int) Weight {
	return f.states[s].final
}

// IsFinal reports whether s has a non-Zero final weight.
func (f *Fst) IsFinal(s int) bool {
	return !f.states[s].final.IsZero()
}

// AddArc appends an arc leaving s.
func (f *Fst) AddArc(s int, a Arc) {
	f.states[s].arcs = append(f.states[s].arcs, a)
}

// Arcs returns the arcs leaving s. The slice is owned by the Fst;
// callers must not modify it.
func (f *Fst) Arcs(s int) []Arc {
	return f.states[s].arcs
}

// MutableArcs returns the arcs leaving s for in-place rewriting.
func (f *Fst) MutableArcs(s int) []Arc {
	return f.states[s].arcs
}

// SetArcs replaces the arcs leaving s. Intended for rewrites that
// filter a state's arcs in place.
func (f *Fst) SetArcs(s int, arcs []Arc) {
	f.states[s].arcs = arcs
}

// Clone returns a deep copy.
func (f *Fst) Clone() *Fst {
	c := &Fst{
		states:   make([]state, len(f.states)),
		start:    f.start,
		hasStart: f.hasStart,
	}
	for i := range f.states {
		c.states[i].final = f.states[i].final
		c.states[i].arcs = append([]Arc(nil), f.states[i].arcs...)
	}
	return c
}

// Equal reports whether two transducers have identical state and arc
// structure, labels and weights (up to tol on weights). State and arc
// order are significant: this is structural identity, not isomorphism.
func Equal(a, b *Fst, tol float64) bool {
	if a.NumStates() != b.NumStates() || a.Start() != b.Start() {
		return false
	}
	for s := 0; s < a.NumStates(); s++ {
		if !a.states[s].final.ApproxEqual(b.states[s].final, tol) {
			return false
		}
		aa, ba := a.states[s].arcs, b.states[s].arcs
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if aa[i].ILabel != ba[i].ILabel ||
				aa[i].OLabel != ba[i].OLabel ||
				aa[i].Dest != ba[i].Dest ||
				!aa[i].Weight.ApproxEqual(ba[i].Weight, tol) {
				return false
			}
		}
	}
	return true
}
