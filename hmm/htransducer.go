package hmm

import (
	"fmt"
	"sort"

	"github.com/ieee0824/hcompile-go/fst"
)

// Config controls H-transducer construction.
type Config struct {
	// NontermPhonesOffset is the id of the first grammar-nonterminal
	// phone symbol, or -1 when grammar decoding is disabled. When set,
	// context windows may carry nonterminal symbols at their edge
	// positions.
	NontermPhonesOffset int
	// IncludeSelfLoops includes self-loop arcs directly during
	// embedding instead of deferring them to AddSelfLoops. A
	// construction-time toggle, not an end-user option.
	IncludeSelfLoops bool
}

// DefaultConfig returns the default construction options.
func DefaultConfig() Config {
	return Config{NontermPhonesOffset: -1}
}

// BuildHTransducer assembles the H transducer from ilabelInfo: a
// transducer with TransitionIDs (plus disambiguation symbols) on the
// input side and ilabelInfo indices on the output side.
//
// ilabelInfo follows the usual conventions: entry 0 is empty and stands
// for epsilon; an entry of length one holding a non-positive value is a
// disambiguation symbol stored negated; an entry of length one at or
// above NontermBigNumber is a grammar-nonterminal symbol; every other
// entry is a phonetic context window.
//
// Each entry becomes one lane from the shared start state to the shared
// final state, sharing no internal states with any other lane, so the
// output label alone identifies which entry an accepted path used.
// Disambiguation entries get fresh input-side symbols starting at
// NumTransitionIDs()+1; those symbols, and any nonterminal pass-through
// symbols, are returned sorted and duplicate-free.
//
// Self-loops are omitted unless cfg.IncludeSelfLoops is set; add them
// later with AddSelfLoops.
func BuildHTransducer(ilabelInfo [][]int32, tree ContextTree, trans TransitionModel, cfg Config) (*fst.Fst, []int32, error) {
	h := fst.New()
	start := h.AddState()
	final := h.AddState()
	h.SetStart(start)
	h.SetFinal(final, fst.One)

	cache := NewCache()
	nextDisambig := int32(trans.NumTransitionIDs()) + 1
	var left []int32

	for j, entry := range ilabelInfo {
		if j == 0 {
			if len(entry) != 0 {
				return nil, nil, fmt.Errorf("hmm: ilabel-info entry 0 must be empty (epsilon), got %v", entry)
			}
			continue
		}
		switch {
		case len(entry) == 0:
			return nil, nil, fmt.Errorf("hmm: ilabel-info entry %d is empty", j)
		case len(entry) == 1 && entry[0] <= 0:
			// Disambiguation symbol, stored negated.
			sym := nextDisambig
			nextDisambig++
			left = append(left, sym)
			h.AddArc(start, fst.Arc{ILabel: sym, OLabel: int32(j), Weight: fst.One, Dest: final})
		case len(entry) == 1 && IsNontermSymbol(entry[0]):
			left = append(left, entry[0])
			h.AddArc(start, fst.Arc{ILabel: entry[0], OLabel: int32(j), Weight: fst.One, Dest: final})
		default:
			window := make([]PhoneID, len(entry))
			for i, p := range entry {
				window[i] = PhoneID(p)
			}
			if err := validateWindow(window, tree, cfg); err != nil {
				return nil, nil, fmt.Errorf("hmm: ilabel-info entry %d: %w", j, err)
			}
			acc, err := CompileHmm(window, tree, trans, cfg.IncludeSelfLoops, cache)
			if err != nil {
				return nil, nil, fmt.Errorf("hmm: ilabel-info entry %d: %w", j, err)
			}
			embedLane(h, start, final, int32(j), acc)
		}
	}

	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	left = dedupeInt32(left)
	return h, left, nil
}

// embedLane copies every state of acc into h, connects the shared start
// to the copy's start with an epsilon arc carrying the lane's output
// label, and turns the copy's final weights into arcs reaching the
// shared final state. Interior arcs keep their TransitionID input
// labels with epsilon output.
func embedLane(h *fst.Fst, start, final int, olabel int32, acc *fst.Fst) {
	m := make([]int, acc.NumStates())
	for s := 0; s < acc.NumStates(); s++ {
		m[s] = h.AddState()
	}
	h.AddArc(start, fst.Arc{OLabel: olabel, Weight: fst.One, Dest: m[acc.Start()]})
	for s := 0; s < acc.NumStates(); s++ {
		for _, a := range acc.Arcs(s) {
			h.AddArc(m[s], fst.Arc{ILabel: a.ILabel, Weight: a.Weight, Dest: m[a.Dest]})
		}
		if fw := acc.Final(s); !fw.IsZero() {
			h.AddArc(m[s], fst.Arc{Weight: fw, Dest: final})
		}
	}
}

// validateWindow checks a context window before compilation. With
// grammar decoding enabled, nonterminal symbols (ids at or above the
// configured offset) may appear at the window edges but never at the
// central position; without it any such symbol is an error.
func validateWindow(window []PhoneID, tree ContextTree, cfg Config) error {
	if len(window) != tree.ContextWidth() {
		return fmt.Errorf("context window %v has length %d, want %d", window, len(window), tree.ContextWidth())
	}
	central := tree.CentralPosition()
	for i, p := range window {
		if p <= 0 {
			return fmt.Errorf("context window %v has invalid phone %d at position %d", window, p, i)
		}
		nonterm := IsNontermSymbol(int32(p)) ||
			(cfg.NontermPhonesOffset >= 0 && int(p) >= cfg.NontermPhonesOffset)
		if !nonterm {
			continue
		}
		if cfg.NontermPhonesOffset < 0 {
			return fmt.Errorf("context window %v has nonterminal symbol %d but grammar decoding is disabled", window, p)
		}
		if i == central {
			return fmt.Errorf("context window %v has nonterminal symbol %d at the central position", window, p)
		}
		if i != 0 && i != len(window)-1 {
			return fmt.Errorf("context window %v has nonterminal symbol %d at interior position %d", window, p, i)
		}
	}
	return nil
}

func dedupeInt32(xs []int32) []int32 {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
