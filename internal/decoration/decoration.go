// Package decoration turns a syntax tree into abstract overlay descriptors.
//
// A Builder walks the tree once per rebuild and produces two sets: atomic
// descriptors that replace text and block cursor entry (heading numbers,
// list markers, checkboxes, images, rendered links, rules, hidden markup),
// and ordinary descriptors that only style (line framing, indentation,
// inline marks). Nodes the cursor is editing are left raw.
package decoration

import (
	"cmp"
	"slices"
)

// Kind classifies a descriptor.
type Kind int

const (
	// KindLine styles a whole line. From and To are the line start.
	KindLine Kind = iota
	// KindMark styles a span of text.
	KindMark
	// KindReplace hides a span, optionally drawing a payload in its place.
	KindReplace
	// KindWidget inserts a rendered unit at From.
	KindWidget
)

var kindNames = [...]string{"line", "mark", "replace", "widget"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Descriptor is one overlay element. Descriptors are shared by pointer so
// incremental rebuilds can hand back the same objects.
type Descriptor struct {
	From    int  `json:"from" yaml:"from"`
	To      int  `json:"to" yaml:"to"`
	Kind    Kind `json:"kind" yaml:"kind"`
	Payload any  `json:"payload,omitempty" yaml:"payload,omitempty"`
	Atomic  bool `json:"atomic,omitempty" yaml:"atomic,omitempty"`
}

// Set is an immutable, position-ordered collection of descriptors.
type Set struct {
	items []*Descriptor
}

// NewSet sorts ds by position. Line descriptors sort before other kinds at
// the same offset; otherwise insertion order is kept.
func NewSet(ds ...*Descriptor) Set {
	items := slices.Clone(ds)
	slices.SortStableFunc(items, compareDescriptors)
	return Set{items: items}
}

func compareDescriptors(a, b *Descriptor) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	if (a.Kind == KindLine) != (b.Kind == KindLine) {
		if a.Kind == KindLine {
			return -1
		}
		return 1
	}
	return 0
}

// Len returns the number of descriptors.
func (s Set) Len() int {
	return len(s.items)
}

// All returns the descriptors in order. The slice must not be modified.
func (s Set) All() []*Descriptor {
	return s.items
}

// At returns the i'th descriptor.
func (s Set) At(i int) *Descriptor {
	return s.items[i]
}

// In returns the descriptors intersecting [from, to], edges included.
func (s Set) In(from, to int) []*Descriptor {
	var out []*Descriptor
	for _, d := range s.items {
		if d.From > to {
			break
		}
		if d.To >= from {
			out = append(out, d)
		}
	}
	return out
}

// Concat returns a set with the descriptors of s followed by ds, which must
// not start before the last descriptor of s.
func (s Set) Concat(ds ...*Descriptor) Set {
	if len(ds) == 0 {
		return s
	}
	items := make([]*Descriptor, 0, len(s.items)+len(ds))
	items = append(items, s.items...)
	items = append(items, ds...)
	slices.SortStableFunc(items[len(s.items):], compareDescriptors)
	return Set{items: items}
}
