// Package tree provides concrete context trees for the hmm package: a
// table-backed tree with explicit window entries and a context-independent
// monophone tree derived from a topology.
package tree

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/ieee0824/hcompile-go/hmm"
)

// Table is an explicit window-to-pdf-sequence table. It implements
// hmm.ContextTree.
type Table struct {
	width   int
	central int
	m       map[string][]hmm.PdfID
}

// NewTable creates an empty table for windows of the given width with
// the central phone at position central.
func NewTable(width, central int) (*Table, error) {
	if width < 1 || central < 0 || central >= width {
		return nil, fmt.Errorf("tree: invalid context shape: width %d, central %d", width, central)
	}
	return &Table{width: width, central: central, m: make(map[string][]hmm.PdfID)}, nil
}

// ContextWidth returns the required window length.
func (t *Table) ContextWidth() int { return t.width }

// CentralPosition returns the index of the central phone.
func (t *Table) CentralPosition() int { return t.central }

// Add registers the pdf sequence for a window.
func (t *Table) Add(window []hmm.PhoneID, pdfs []hmm.PdfID) error {
	if len(window) != t.width {
		return fmt.Errorf("tree: window %v has length %d, want %d", window, len(window), t.width)
	}
	key := windowKey(window)
	if _, dup := t.m[key]; dup {
		return fmt.Errorf("tree: window %v registered twice", window)
	}
	t.m[key] = append([]hmm.PdfID(nil), pdfs...)
	return nil
}

// Lookup returns the pdf sequence for a window.
func (t *Table) Lookup(window []hmm.PhoneID) ([]hmm.PdfID, error) {
	if len(window) != t.width {
		return nil, fmt.Errorf("tree: window %v has length %d, want %d", window, len(window), t.width)
	}
	pdfs, ok := t.m[windowKey(window)]
	if !ok {
		return nil, fmt.Errorf("tree: no entry for window %v", window)
	}
	return pdfs, nil
}

// PdfSequences returns, per central phone, the distinct pdf sequences
// the table can produce, in deterministic order. The result feeds
// hmm.NewTransitionTable.
func (t *Table) PdfSequences() map[hmm.PhoneID][][]hmm.PdfID {
	keys := make([]string, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[hmm.PhoneID][][]hmm.PdfID)
	seen := make(map[string]bool)
	for _, k := range keys {
		window := decodeWindowKey(k)
		phone := window[t.central]
		seq := t.m[k]
		dedupe := fmt.Sprintf("%d|%v", phone, seq)
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true
		out[phone] = append(out[phone], append([]hmm.PdfID(nil), seq...))
	}
	return out
}

func windowKey(window []hmm.PhoneID) string {
	buf := make([]byte, 0, 4*len(window))
	for _, p := range window {
		buf = binary.BigEndian.AppendUint32(buf, uint32(p))
	}
	return string(buf)
}

func decodeWindowKey(key string) []hmm.PhoneID {
	window := make([]hmm.PhoneID, len(key)/4)
	for i := range window {
		window[i] = hmm.PhoneID(binary.BigEndian.Uint32([]byte(key[4*i : 4*i+4])))
	}
	return window
}

// Monophone is a context-independent tree: every window maps by its
// central phone alone, with pdf-ids assigned densely per (phone,
// pdf-class) in ascending phone order. It implements hmm.ContextTree.
type Monophone struct {
	width   int
	central int
	base    map[hmm.PhoneID]hmm.PdfID
	classes map[hmm.PhoneID]int
	numPdfs int
}

// NewMonophone derives a monophone tree from the topology's phone
// inventory.
func NewMonophone(topo *hmm.Topology, width, central int) (*Monophone, error) {
	if width < 1 || central < 0 || central >= width {
		return nil, fmt.Errorf("tree: invalid context shape: width %d, central %d", width, central)
	}
	m := &Monophone{
		width:   width,
		central: central,
		base:    make(map[hmm.PhoneID]hmm.PdfID),
		classes: make(map[hmm.PhoneID]int),
	}
	for _, p := range topo.Phones() {
		n, err := topo.NumPdfClasses(p)
		if err != nil {
			return nil, err
		}
		m.base[p] = hmm.PdfID(m.numPdfs)
		m.classes[p] = n
		m.numPdfs += n
	}
	if m.numPdfs == 0 {
		return nil, fmt.Errorf("tree: topology has no emitting states")
	}
	return m, nil
}

// ContextWidth returns the required window length.
func (m *Monophone) ContextWidth() int { return m.width }

// CentralPosition returns the index of the central phone.
func (m *Monophone) CentralPosition() int { return m.central }

// NumPdfs returns the total number of pdf-ids the tree assigns.
func (m *Monophone) NumPdfs() int { return m.numPdfs }

// Lookup returns the pdf sequence for the window's central phone; the
// context positions are ignored.
func (m *Monophone) Lookup(window []hmm.PhoneID) ([]hmm.PdfID, error) {
	if len(window) != m.width {
		return nil, fmt.Errorf("tree: window %v has length %d, want %d", window, len(window), m.width)
	}
	phone := window[m.central]
	base, ok := m.base[phone]
	if !ok {
		return nil, fmt.Errorf("tree: unknown central phone %d in window %v", phone, window)
	}
	pdfs := make([]hmm.PdfID, m.classes[phone])
	for i := range pdfs {
		pdfs[i] = base + hmm.PdfID(i)
	}
	return pdfs, nil
}

// PdfSequences returns each phone's single pdf sequence, for
// hmm.NewTransitionTable.
func (m *Monophone) PdfSequences() map[hmm.PhoneID][][]hmm.PdfID {
	out := make(map[hmm.PhoneID][][]hmm.PdfID, len(m.base))
	for p := range m.base {
		seq, _ := m.Lookup(m.windowFor(p))
		out[p] = [][]hmm.PdfID{seq}
	}
	return out
}

func (m *Monophone) windowFor(p hmm.PhoneID) []hmm.PhoneID {
	w := make([]hmm.PhoneID, m.width)
	for i := range w {
		w[i] = p
	}
	return w
}
