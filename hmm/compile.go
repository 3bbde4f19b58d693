package hmm

import (
	"encoding/binary"
	"fmt"

	"github.com/ieee0824/hcompile-go/fst"
)

// cacheKey is (central phone, pdf sequence). Two context windows that
// reduce to the same key compile to identical acceptors, since only the
// central phone and the resulting pdfs affect topology instantiation.
type cacheKey struct {
	phone PhoneID
	pdfs  string
}

func makeCacheKey(phone PhoneID, pdfs []PdfID) cacheKey {
	buf := make([]byte, 0, 4*len(pdfs))
	for _, p := range pdfs {
		buf = binary.BigEndian.AppendUint32(buf, uint32(p))
	}
	return cacheKey{phone: phone, pdfs: string(buf)}
}

// Cache memoizes compiled phone acceptors. It is not internally
// synchronized; concurrent compilations must either serialize access
// under one lock or use a cache per goroutine. Stored acceptors are
// shared by reference and must never be mutated after insertion.
type Cache struct {
	m map[cacheKey]*fst.Fst
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]*fst.Fst)}
}

// Len returns the number of cached acceptors.
func (c *Cache) Len() int {
	return len(c.m)
}

// CompileHmm returns the acceptor for one phone in context: input and
// output labels are TransitionIDs, arc weights the topology's transition
// probabilities. When includeSelfLoops is false, self-loop arcs are
// omitted and the remaining outgoing mass at each state is rescaled by
// 1/(1-q), where q is the omitted self-loop probability, so the result
// stays stochastic; the self-loops are added back later by AddSelfLoops.
//
// A non-nil cache is consulted first and updated on a miss. The
// returned acceptor is shared and must not be mutated by the caller.
func CompileHmm(window []PhoneID, tree ContextTree, trans TransitionModel, includeSelfLoops bool, cache *Cache) (*fst.Fst, error) {
	if len(window) != tree.ContextWidth() {
		return nil, fmt.Errorf("hmm: context window %v has length %d, want %d", window, len(window), tree.ContextWidth())
	}
	phone := window[tree.CentralPosition()]
	pdfs, err := tree.Lookup(window)
	if err != nil {
		return nil, fmt.Errorf("hmm: window %v: %w", window, err)
	}
	key := makeCacheKey(phone, pdfs)
	if cache != nil {
		if f, ok := cache.m[key]; ok {
			return f, nil
		}
	}

	states, err := trans.Topology().Entry(phone)
	if err != nil {
		return nil, fmt.Errorf("hmm: window %v: %w", window, err)
	}
	numClasses, _ := trans.Topology().NumPdfClasses(phone)
	if len(pdfs) != numClasses {
		return nil, fmt.Errorf("hmm: phone %d: tree returned %d pdfs, topology has %d pdf-classes", phone, len(pdfs), numClasses)
	}

	f := fst.New()
	for range states {
		f.AddState()
	}
	f.SetStart(0)
	for j, st := range states {
		if len(st.Transitions) == 0 {
			f.SetFinal(j, fst.One)
			continue
		}
		pdf := pdfs[st.PdfClass]
		selfProb := 0.0
		for _, tr := range st.Transitions {
			if tr.Dest == j {
				selfProb = tr.Prob
			}
		}
		for _, tr := range st.Transitions {
			if tr.Dest == j {
				if !includeSelfLoops {
					continue
				}
				tid, err := trans.Lookup(phone, j, pdf, true)
				if err != nil {
					return nil, fmt.Errorf("hmm: phone %d state %d: %w", phone, j, err)
				}
				f.AddArc(j, fst.Arc{
					ILabel: int32(tid),
					OLabel: int32(tid),
					Weight: fst.FromProb(tr.Prob),
					Dest:   j,
				})
				continue
			}
			p := tr.Prob
			if !includeSelfLoops && selfProb > 0 {
				p /= 1 - selfProb
			}
			tid, err := trans.Lookup(phone, j, pdf, false)
			if err != nil {
				return nil, fmt.Errorf("hmm: phone %d state %d: %w", phone, j, err)
			}
			f.AddArc(j, fst.Arc{
				ILabel: int32(tid),
				OLabel: int32(tid),
				Weight: fst.FromProb(p),
				Dest:   tr.Dest,
			})
		}
	}
	if cache != nil {
		cache.m[key] = f
	}
	return f, nil
}
