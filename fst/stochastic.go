package fst

import (
	"github.com/ieee0824/hcompile-go/internal/mathutil"
)

// IsStochastic reports whether every state's outgoing probability mass
// (arcs plus final weight) sums to 1 within tol. States with no outgoing
// mass at all are ignored, as are unreachable dead-end states produced by
// graph rewrites.
func IsStochastic(f *Fst, tol float64) bool {
	for s := 0; s < f.NumStates(); s++ {
		sum := float64(mathutil.LogZero)
		if !f.Final(s).IsZero() {
			sum = -float64(f.Final(s))
		}
		arcs := f.Arcs(s)
		for i := range arcs {
			if arcs[i].Weight.IsZero() {
				continue
			}
			sum = mathutil.LogAdd(sum, -float64(arcs[i].Weight))
		}
		if sum == mathutil.LogZero {
			continue
		}
		if !mathutil.ApproxEqual(sum, 0, tol) {
			return false
		}
	}
	return true
}
