package hmm

import "fmt"

// CanonicalizeSymbols groups the entries of ilabelInfoOld into
// equivalence classes keyed by (central phone, pdf sequence) — the same
// key CompileHmm caches on — since entries with equal keys compile to
// identical acceptors and are interchangeable as output symbols.
//
// The returned old2new mapping has one element per class, holding the
// index in ilabelInfoOld of the class representative (its first member),
// so that ilabelInfoNew[i] == ilabelInfoOld[old2new[i]]. Classes are
// numbered in order of first occurrence, which keeps epsilon at 0.
// Epsilon, disambiguation and nonterminal entries are never merged:
// each stays its own singleton class.
//
// Fewer distinct output symbols make the downstream determinization and
// minimization over the output alphabet cheaper.
func CanonicalizeSymbols(ilabelInfoOld [][]int32, tree ContextTree, trans TransitionModel) ([]int32, error) {
	var old2new []int32
	classOf := make(map[cacheKey]int32)
	for j, entry := range ilabelInfoOld {
		if j == 0 {
			if len(entry) != 0 {
				return nil, fmt.Errorf("hmm: ilabel-info entry 0 must be empty (epsilon), got %v", entry)
			}
			old2new = append(old2new, 0)
			continue
		}
		switch {
		case len(entry) == 0:
			return nil, fmt.Errorf("hmm: ilabel-info entry %d is empty", j)
		case len(entry) == 1 && (entry[0] <= 0 || IsNontermSymbol(entry[0])):
			// Singleton class, never merged.
			old2new = append(old2new, int32(j))
		default:
			window := make([]PhoneID, len(entry))
			for i, p := range entry {
				window[i] = PhoneID(p)
			}
			if len(window) != tree.ContextWidth() {
				return nil, fmt.Errorf("hmm: ilabel-info entry %d: window %v has length %d, want %d", j, window, len(window), tree.ContextWidth())
			}
			pdfs, err := tree.Lookup(window)
			if err != nil {
				return nil, fmt.Errorf("hmm: ilabel-info entry %d: window %v: %w", j, window, err)
			}
			key := makeCacheKey(window[tree.CentralPosition()], pdfs)
			if _, seen := classOf[key]; !seen {
				classOf[key] = int32(len(old2new))
				old2new = append(old2new, int32(j))
			}
		}
	}
	return old2new, nil
}
