package fst

import "math"

// LatticeWeight carries separate graph and acoustic costs, both negative
// log probabilities. Graph cost holds language-model, transition and
// pronunciation scores; acoustic cost holds the acoustic-model scores.
type LatticeWeight struct {
	Graph    float64
	Acoustic float64
}

// LatticeOne is the multiplicative identity.
var LatticeOne = LatticeWeight{}

// LatticeZero returns the semiring zero.
func LatticeZero() LatticeWeight {
	return LatticeWeight{Graph: math.Inf(1), Acoustic: math.Inf(1)}
}

// IsZero reports whether w is the semiring zero.
func (w LatticeWeight) IsZero() bool {
	return math.IsInf(w.Graph, 1) || math.IsInf(w.Acoustic, 1)
}

// LatticeTimes combines two lattice weights along a path.
func LatticeTimes(a, b LatticeWeight) LatticeWeight {
	if a.IsZero() || b.IsZero() {
		return LatticeZero()
	}
	return LatticeWeight{Graph: a.Graph + b.Graph, Acoustic: a.Acoustic + b.Acoustic}
}

// LatticeArc is a transition in a Lattice.
type LatticeArc struct {
	ILabel int32
	OLabel int32
	Weight LatticeWeight
	Dest   int
}

type latticeState struct {
	arcs  []LatticeArc
	final LatticeWeight
}

// Lattice is a transducer over LatticeWeight, stored like Fst as an
// arena of states indexed by integer id.
type Lattice struct {
	states   []latticeState
	start    int
	hasStart bool
}

// NewLattice returns an empty Lattice.
func NewLattice() *Lattice {
	return &Lattice{}
}

// NumStates returns the number of states.
func (l *Lattice) NumStates() int {
	return len(l.states)
}

// AddState appends a new non-final state and returns its id.
func (l *Lattice) AddState() int {
	l.states = append(l.states, latticeState{final: LatticeZero()})
	return len(l.states) - 1
}

// SetStart marks s as the start state.
func (l *Lattice) SetStart(s int) {
	l.start = s
	l.hasStart = true
}

// Start returns the start state id, or -1 if none has been set.
func (l *Lattice) Start() int {
	if !l.hasStart {
		return -1
	}
	return l.start
}

// SetFinal sets the final weight of s.
func (l *Lattice) SetFinal(s int, w LatticeWeight) {
	l.states[s].final = w
}

// Final returns the final weight of s.
func (l *Lattice) Final(s int) LatticeWeight {
	return l.states[s].final
}

// AddArc appends an arc leaving s.
func (l *Lattice) AddArc(s int, a LatticeArc) {
	l.states[s].arcs = append(l.states[s].arcs, a)
}

// Arcs returns the arcs leaving s. The slice is owned by the Lattice;
// callers must not modify it.
func (l *Lattice) Arcs(s int) []LatticeArc {
	return l.states[s].arcs
}

// MutableArcs returns the arcs leaving s for in-place rewriting.
func (l *Lattice) MutableArcs(s int) []LatticeArc {
	return l.states[s].arcs
}
