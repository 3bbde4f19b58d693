package hmm

import (
	"fmt"

	"github.com/ieee0824/hcompile-go/fst"
)

// transClass identifies the HMM transition state an arc label belongs
// to. Epsilon, disambiguation and nonterminal labels share the zero
// class and never receive self-loops.
type transClass struct {
	phone    PhoneID
	hmmState int
	pdf      PdfID
}

// AddSelfLoops expands a transducer that was built without self-loops,
// inserting the self-loop arc belonging to each state and rescaling the
// state's other outgoing mass so the result stays stochastic.
//
// The self-loop attached to a state is that of the HMM transition state
// carried by the state's outgoing TransitionID-labeled arcs. States
// whose outgoing arcs mix transition states (possible after composition
// or determinization) are first split per transition state, connected
// by epsilon arcs, so the association is well defined; arcs labeled
// with epsilon, a member of disambigSyms, or a nonterminal symbol stay
// on the original state and are never rescaled.
//
// If currentlySelfLoopFree is true the transducer is required to be
// free of self-loops on entry; a violation is a contract error. If
// false, states that already carry a self-loop are left untouched. If
// useWeights is false the self-loops are inserted with weight One and
// no rescaling occurs.
//
// A transducer with zero states is a no-op. disambigSyms must be sorted
// and duplicate-free; it is used only for the exemption check.
func AddSelfLoops(trans TransitionModel, disambigSyms []int32, currentlySelfLoopFree, useWeights bool, f *fst.Fst) error {
	if f == nil || f.NumStates() == 0 {
		return nil
	}
	if err := checkSortedUnique(disambigSyms); err != nil {
		return err
	}

	hasSelfLoop := make([]bool, f.NumStates())
	for s := 0; s < f.NumStates(); s++ {
		for _, a := range f.Arcs(s) {
			if a.Dest == s {
				if currentlySelfLoopFree {
					return fmt.Errorf("hmm: state %d already has a self-loop (input label %d) but the transducer was asserted self-loop free", s, a.ILabel)
				}
				hasSelfLoop[s] = true
			}
		}
	}

	classOf := func(label int32) (transClass, error) {
		if label == 0 || isDisambigOrNonterm(disambigSyms, label) {
			return transClass{}, nil
		}
		info, err := trans.Info(TransitionID(label))
		if err != nil {
			return transClass{}, err
		}
		return transClass{phone: info.Phone, hmmState: info.HmmState, pdf: info.Pdf}, nil
	}

	// Pass 1: split states whose outgoing arcs mix transition-state
	// classes, or mix a transition-state class with zero-class arcs.
	// Each nonzero class moves to a fresh state reached by an epsilon
	// arc; the zero class and the final weight stay put.
	type target struct {
		state int
		rep   TransitionID // representative label of the state's class
	}
	var targets []target
	numOrig := f.NumStates()
	for s := 0; s < numOrig; s++ {
		if hasSelfLoop[s] {
			continue
		}
		arcs := f.Arcs(s)
		if len(arcs) == 0 {
			continue
		}
		classes := make(map[transClass]TransitionID)
		zeroArcs := 0
		for i := range arcs {
			c, err := classOf(arcs[i].ILabel)
			if err != nil {
				return fmt.Errorf("hmm: state %d: unexpected input label %d: %w", s, arcs[i].ILabel, err)
			}
			if c == (transClass{}) {
				zeroArcs++
				continue
			}
			if _, ok := classes[c]; !ok {
				classes[c] = TransitionID(arcs[i].ILabel)
			}
		}
		if len(classes) == 0 {
			continue
		}
		if len(classes) == 1 && zeroArcs == 0 {
			for _, rep := range classes {
				targets = append(targets, target{state: s, rep: rep})
			}
			continue
		}
		split := make(map[transClass]int, len(classes))
		var splitOrder []int
		kept := f.MutableArcs(s)[:0]
		for _, a := range f.Arcs(s) {
			c, _ := classOf(a.ILabel)
			if c == (transClass{}) {
				kept = append(kept, a)
				continue
			}
			ns, ok := split[c]
			if !ok {
				ns = f.AddState()
				split[c] = ns
				splitOrder = append(splitOrder, ns)
				targets = append(targets, target{state: ns, rep: classes[c]})
			}
			f.AddArc(ns, a)
		}
		f.SetArcs(s, kept)
		for _, ns := range splitOrder {
			f.AddArc(s, fst.Arc{Weight: fst.One, Dest: ns})
		}
	}

	// Pass 2: insert self-loops and rescale.
	for _, tg := range targets {
		sl := trans.SelfLoopOf(tg.rep)
		if sl == 0 {
			continue
		}
		loop := fst.Arc{ILabel: int32(sl), Weight: fst.One, Dest: tg.state}
		if useWeights {
			info, err := trans.Info(sl)
			if err != nil {
				return err
			}
			scale := fst.FromProb(1 - info.Prob)
			arcs := f.MutableArcs(tg.state)
			for i := range arcs {
				arcs[i].Weight = fst.Times(arcs[i].Weight, scale)
			}
			if fw := f.Final(tg.state); !fw.IsZero() {
				f.SetFinal(tg.state, fst.Times(fw, scale))
			}
			loop.Weight = fst.FromProb(info.Prob)
		}
		f.AddArc(tg.state, loop)
	}
	return nil
}

func checkSortedUnique(syms []int32) error {
	for i := 1; i < len(syms); i++ {
		if syms[i] <= syms[i-1] {
			return fmt.Errorf("hmm: disambiguation symbols must be sorted and duplicate-free, got %v", syms)
		}
	}
	return nil
}
