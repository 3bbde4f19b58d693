// Package hmm compiles per-phone HMM topologies and a phonetic context
// tree into weighted finite-state transducers: per-phone acceptors, the
// assembled H transducer, and the self-loop / transition-probability
// rewrites that keep the result stochastic.
package hmm

import "sort"

// PhoneID identifies a phone in the model's phone inventory. Valid
// phones are positive.
type PhoneID int32

// PdfID indexes an acoustic output distribution assigned to an HMM
// state instance. Valid pdf-ids start at 0.
type PdfID int32

// TransitionID is an opaque handle denoting one (phone, HMM state,
// self-loop/forward, pdf) tuple. Ids are dense and start at 1; 0 is
// reserved for epsilon.
type TransitionID int32

// NontermBigNumber is the threshold above which input labels are
// treated like disambiguation symbols without explicit registration.
// Labels this large are reserved for grammar-nonterminal symbols.
const NontermBigNumber = 10000000

// IsNontermSymbol reports whether label is in the range reserved for
// grammar-nonterminal symbols.
func IsNontermSymbol(label int32) bool {
	return label >= NontermBigNumber
}

// isDisambigOrNonterm reports whether label is a member of the sorted
// disambiguation-symbol list or exceeds the nonterminal threshold.
func isDisambigOrNonterm(disambig []int32, label int32) bool {
	if IsNontermSymbol(label) {
		return true
	}
	i := sort.Search(len(disambig), func(i int) bool { return disambig[i] >= label })
	return i < len(disambig) && disambig[i] == label
}
