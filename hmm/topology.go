package hmm

import (
	"fmt"
	"math"
	"sort"
)

// TopologyTransition is one outgoing transition of a topology state.
// Dest is a state index within the same entry; Dest equal to the owning
// state's index makes it a self-loop.
type TopologyTransition struct {
	Dest int
	Prob float64
}

// TopologyState is one HMM state in a phone's prototype topology.
// PdfClass selects which output distribution the state consumes; it is
// -1 for non-emitting states.
type TopologyState struct {
	PdfClass    int
	Transitions []TopologyTransition
}

// Topology maps each phone to its prototype HMM. Entries are validated
// on insertion:
//   - state 0 is the entry state;
//   - exactly the transition-less states are final, and they are
//     non-emitting;
//   - every emitting state has at most one self-loop and at most one
//     forward transition (this keeps TransitionID tuples bijective);
//   - outgoing probabilities are positive and sum to 1 per state.
type Topology struct {
	entries map[PhoneID][]TopologyState
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{entries: make(map[PhoneID][]TopologyState)}
}

// SetEntry installs the prototype HMM for the given phones. All phones
// share the same entry (the usual case: one topology for all speech
// phones, another for silence).
func (t *Topology) SetEntry(phones []PhoneID, states []TopologyState) error {
	if err := validateEntry(states); err != nil {
		return err
	}
	for _, p := range phones {
		if p <= 0 {
			return fmt.Errorf("topology: invalid phone id %d", p)
		}
		if _, dup := t.entries[p]; dup {
			return fmt.Errorf("topology: phone %d defined twice", p)
		}
		t.entries[p] = states
	}
	return nil
}

func validateEntry(states []TopologyState) error {
	if len(states) < 2 {
		return fmt.Errorf("topology: entry needs at least one emitting and one final state, got %d states", len(states))
	}
	nextPdfClass := 0
	for i, st := range states {
		if len(st.Transitions) == 0 {
			if st.PdfClass != -1 {
				return fmt.Errorf("topology: final state %d must be non-emitting (pdf-class %d)", i, st.PdfClass)
			}
			continue
		}
		if st.PdfClass != nextPdfClass {
			return fmt.Errorf("topology: state %d has pdf-class %d, want %d (pdf-classes must be dense and in state order)", i, st.PdfClass, nextPdfClass)
		}
		nextPdfClass++
		sum := 0.0
		selfLoops, forwards := 0, 0
		for _, tr := range st.Transitions {
			if tr.Dest < 0 || tr.Dest >= len(states) {
				return fmt.Errorf("topology: state %d has transition to out-of-range state %d", i, tr.Dest)
			}
			if tr.Prob <= 0 {
				return fmt.Errorf("topology: state %d has non-positive transition probability %g", i, tr.Prob)
			}
			if tr.Dest == i {
				selfLoops++
			} else {
				forwards++
			}
			sum += tr.Prob
		}
		if selfLoops > 1 {
			return fmt.Errorf("topology: state %d has %d self-loops", i, selfLoops)
		}
		if forwards > 1 {
			return fmt.Errorf("topology: state %d has %d forward transitions; at most one is supported", i, forwards)
		}
		if forwards == 0 {
			return fmt.Errorf("topology: state %d has only a self-loop and can never exit", i)
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fmt.Errorf("topology: state %d outgoing probabilities sum to %g, want 1", i, sum)
		}
	}
	if states[0].PdfClass == -1 {
		return fmt.Errorf("topology: entry state must be emitting")
	}
	if err := checkReachable(states); err != nil {
		return err
	}
	return nil
}

// checkReachable verifies every state is on some path from state 0 to a
// final state.
func checkReachable(states []TopologyState) error {
	seen := make([]bool, len(states))
	stack := []int{0}
	seen[0] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, tr := range states[s].Transitions {
			if !seen[tr.Dest] {
				seen[tr.Dest] = true
				stack = append(stack, tr.Dest)
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("topology: state %d unreachable from entry state", i)
		}
	}
	return nil
}

// Entry returns the prototype states for phone.
func (t *Topology) Entry(phone PhoneID) ([]TopologyState, error) {
	states, ok := t.entries[phone]
	if !ok {
		return nil, fmt.Errorf("topology: unknown phone %d", phone)
	}
	return states, nil
}

// Phones returns the sorted phone inventory.
func (t *Topology) Phones() []PhoneID {
	phones := make([]PhoneID, 0, len(t.entries))
	for p := range t.entries {
		phones = append(phones, p)
	}
	sort.Slice(phones, func(i, j int) bool { return phones[i] < phones[j] })
	return phones
}

// NumPdfClasses returns the number of distinct pdf-classes (emitting
// states) in phone's topology.
func (t *Topology) NumPdfClasses(phone PhoneID) (int, error) {
	states, err := t.Entry(phone)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, st := range states {
		if st.PdfClass >= 0 {
			n++
		}
	}
	return n, nil
}

// StateHasSelfLoop reports whether the given topology state permits a
// self-loop.
func (t *Topology) StateHasSelfLoop(phone PhoneID, hmmState int) (bool, error) {
	states, err := t.Entry(phone)
	if err != nil {
		return false, err
	}
	if hmmState < 0 || hmmState >= len(states) {
		return false, fmt.Errorf("topology: phone %d has no state %d", phone, hmmState)
	}
	for _, tr := range states[hmmState].Transitions {
		if tr.Dest == hmmState {
			return true, nil
		}
	}
	return false, nil
}

// FinalStates returns the indices of phone's final (transition-less)
// states, in increasing order.
func (t *Topology) FinalStates(phone PhoneID) ([]int, error) {
	states, err := t.Entry(phone)
	if err != nil {
		return nil, err
	}
	var finals []int
	for i, st := range states {
		if len(st.Transitions) == 0 {
			finals = append(finals, i)
		}
	}
	return finals, nil
}

// MinLength returns the minimum number of emitting states traversed on
// any path from the entry state to a final state, i.e. the minimum
// number of feature frames an instance of phone can consume.
func (t *Topology) MinLength(phone PhoneID) (int, error) {
	states, err := t.Entry(phone)
	if err != nil {
		return 0, err
	}
	const inf = int(^uint(0) >> 1)
	dist := make([]int, len(states))
	for i := range dist {
		dist[i] = inf
	}
	dist[0] = 0
	// Forward transitions are not guaranteed to increase the state
	// index, so relax until fixed point; entries are tiny.
	for changed := true; changed; {
		changed = false
		for i, st := range states {
			if dist[i] == inf {
				continue
			}
			cost := 0
			if st.PdfClass >= 0 {
				cost = 1
			}
			for _, tr := range st.Transitions {
				if tr.Dest == i {
					continue
				}
				if dist[i]+cost < dist[tr.Dest] {
					dist[tr.Dest] = dist[i] + cost
					changed = true
				}
			}
		}
	}
	best := inf
	for i, st := range states {
		if len(st.Transitions) == 0 && dist[i] < best {
			best = dist[i]
		}
	}
	if best == inf {
		return 0, fmt.Errorf("topology: phone %d has no path to a final state", phone)
	}
	return best, nil
}
