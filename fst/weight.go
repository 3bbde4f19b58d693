package fst

import "math"

// Weight is a tropical-semiring weight stored as a cost (negative log
// probability). Times is cost addition; the identity One is cost zero.
type Weight float64

// One is the multiplicative identity (probability 1).
const One Weight = 0

// Zero is the semiring zero (no path).
func Zero() Weight {
	return Weight(math.Inf(1))
}

// IsZero reports whether w is the semiring zero.
func (w Weight) IsZero() bool {
	return math.IsInf(float64(w), 1)
}

// Times combines two weights along a path.
func Times(a, b Weight) Weight {
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	return a + b
}

// FromProb converts a probability to a weight. FromProb(0) is Zero.
func FromProb(p float64) Weight {
	if p <= 0 {
		return Zero()
	}
	return Weight(-math.Log(p))
}

// Prob converts a weight back to a probability.
func (w Weight) Prob() float64 {
	if w.IsZero() {
		return 0
	}
	return math.Exp(-float64(w))
}

// ApproxEqual reports whether two weights differ by at most tol,
// treating two Zeros as equal.
func (w Weight) ApproxEqual(o Weight, tol float64) bool {
	if w.IsZero() || o.IsZero() {
		return w.IsZero() && o.IsZero()
	}
	return math.Abs(float64(w)-float64(o)) <= tol
}
