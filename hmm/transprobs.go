package hmm

import (
	"errors"
	"fmt"

	"github.com/ieee0824/hcompile-go/fst"
)

// AddTransitionProbs multiplies each arc's weight by the transition
// probability of its input TransitionID (an addition in the log
// domain). Epsilon arcs, arcs labeled with a member of disambigSyms and
// arcs labeled with nonterminal symbols are left untouched. Useful for
// building a graph without transition probabilities, training the
// model, and folding the probabilities back in while keeping the graph
// fixed. A transducer with zero states is a no-op.
//
// disambigSyms must be sorted and duplicate-free.
func AddTransitionProbs(trans TransitionModel, disambigSyms []int32, f *fst.Fst) error {
	if f == nil || f.NumStates() == 0 {
		return nil
	}
	if err := checkSortedUnique(disambigSyms); err != nil {
		return err
	}
	for s := 0; s < f.NumStates(); s++ {
		arcs := f.MutableArcs(s)
		for i := range arcs {
			label := arcs[i].ILabel
			if label == 0 || isDisambigOrNonterm(disambigSyms, label) {
				continue
			}
			info, err := trans.Info(TransitionID(label))
			if err != nil {
				return fmt.Errorf("hmm: state %d: unexpected input label %d: %w", s, label, err)
			}
			arcs[i].Weight = fst.Times(arcs[i].Weight, fst.FromProb(info.Prob))
		}
	}
	return nil
}

// AddTransitionProbsLattice is AddTransitionProbs for a lattice: the
// transition probability is folded into the graph cost only, leaving
// the acoustic cost untouched. Lattices carry no disambiguation
// symbols, so only epsilon and nonterminal labels are exempt.
func AddTransitionProbsLattice(trans TransitionModel, lat *fst.Lattice) error {
	if lat == nil || lat.NumStates() == 0 {
		return nil
	}
	for s := 0; s < lat.NumStates(); s++ {
		arcs := lat.MutableArcs(s)
		for i := range arcs {
			label := arcs[i].ILabel
			if label == 0 || IsNontermSymbol(label) {
				continue
			}
			info, err := trans.Info(TransitionID(label))
			if err != nil {
				return fmt.Errorf("hmm: lattice state %d: unexpected input label %d: %w", s, label, err)
			}
			arcs[i].Weight = fst.LatticeTimes(arcs[i].Weight, fst.LatticeWeight{
				Graph: float64(fst.FromProb(info.Prob)),
			})
		}
	}
	return nil
}

// PdfToTransitionIDFst returns a one-state transducer mapping pdf-ids
// plus one (input side; the shift keeps pdf 0 off the epsilon label) to
// TransitionIDs (output side). Of use for testing and debugging.
func PdfToTransitionIDFst(trans TransitionModel) *fst.Fst {
	f := fst.New()
	s := f.AddState()
	f.SetStart(s)
	f.SetFinal(s, fst.One)
	for tid := TransitionID(1); int(tid) <= trans.NumTransitionIDs(); tid++ {
		info, err := trans.Info(tid)
		if err != nil {
			continue
		}
		f.AddArc(s, fst.Arc{
			ILabel: int32(info.Pdf) + 1,
			OLabel: int32(tid),
			Weight: fst.One,
			Dest:   s,
		})
	}
	return f
}

// ErrNotImplemented is returned by operations that are declared but
// intentionally not implemented.
var ErrNotImplemented = errors.New("hmm: not implemented")

// ConvertTransitionIDsToPdfs would relabel every TransitionID in the
// transducer to its pdf-id plus one. It is not implemented; callers get
// an explicit failure rather than a silent no-op.
func ConvertTransitionIDsToPdfs(trans TransitionModel, disambigSyms []int32, f *fst.Fst) error {
	return fmt.Errorf("hmm: ConvertTransitionIDsToPdfs: %w", ErrNotImplemented)
}
