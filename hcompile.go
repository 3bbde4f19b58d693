// Package hcompile compiles HMM acoustic-model topologies and a
// phonetic decision tree into weighted finite-state transducers for a
// WFST-based decoder.
package hcompile

import (
	"sync"

	"github.com/ieee0824/hcompile-go/fst"
	"github.com/ieee0824/hcompile-go/hmm"
)

// Compiler ties a context tree and transition model together with a
// shared phone-acceptor cache. The cache is guarded by a mutex, so a
// single Compiler may serve concurrent compilations.
type Compiler struct {
	Tree   hmm.ContextTree
	Trans  hmm.TransitionModel
	Config hmm.Config

	mu    sync.Mutex
	cache *hmm.Cache
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSelfLoops includes self-loop arcs directly during construction
// instead of deferring them to AddSelfLoops.
func WithSelfLoops(enabled bool) Option {
	return func(c *Compiler) {
		c.Config.IncludeSelfLoops = enabled
	}
}

// WithNontermPhonesOffset enables grammar-decoding context-window
// validation with the given integer offset.
func WithNontermPhonesOffset(offset int) Option {
	return func(c *Compiler) {
		c.Config.NontermPhonesOffset = offset
	}
}

// New creates a Compiler over the given tree and transition model.
func New(tree hmm.ContextTree, trans hmm.TransitionModel, opts ...Option) *Compiler {
	c := &Compiler{
		Tree:   tree,
		Trans:  trans,
		Config: hmm.DefaultConfig(),
		cache:  hmm.NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompilePhone returns the acceptor for one phone in context, memoized
// in the Compiler's shared cache. The result is shared and must not be
// mutated.
func (c *Compiler) CompilePhone(window []hmm.PhoneID) (*fst.Fst, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return hmm.CompileHmm(window, c.Tree, c.Trans, c.Config.IncludeSelfLoops, c.cache)
}

// BuildH assembles the H transducer for ilabelInfo and returns it with
// the input-side disambiguation symbols, sorted and duplicate-free.
func (c *Compiler) BuildH(ilabelInfo [][]int32) (*fst.Fst, []int32, error) {
	return hmm.BuildHTransducer(ilabelInfo, c.Tree, c.Trans, c.Config)
}

// Canonicalize groups interchangeable ilabelInfo entries and returns
// the class-representative mapping.
func (c *Compiler) Canonicalize(ilabelInfo [][]int32) ([]int32, error) {
	return hmm.CanonicalizeSymbols(ilabelInfo, c.Tree, c.Trans)
}

// CacheSize reports how many phone acceptors the shared cache holds.
func (c *Compiler) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
