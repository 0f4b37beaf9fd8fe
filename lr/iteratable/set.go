package iteratable

import (
	"bytes"
	"fmt"
)

// Equaler is implemented by compound set elements which cannot be compared
// with ==. Sets check for it before falling back to plain comparison.
type Equaler interface {
	Equals(other interface{}) bool
}

// Set is an insertion-ordered set. The zero value is not usable; create
// sets with NewSet.
type Set struct {
	items  []interface{}
	cursor int // iteration position, see IterateOnce
}

// NewSet creates an empty set. size is a capacity hint and may be 0.
func NewSet(size int) *Set {
	if size <= 0 {
		size = 4
	}
	return &Set{
		items:  make([]interface{}, 0, size),
		cursor: -1,
	}
}

func eq(a, b interface{}) bool {
	if e, ok := a.(Equaler); ok {
		return e.Equals(b)
	}
	return a == b
}

// Size returns the number of elements in the set.
func (s *Set) Size() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Empty is true if the set contains no elements.
func (s *Set) Empty() bool {
	return s.Size() == 0
}

// Contains checks membership under value equality.
func (s *Set) Contains(el interface{}) bool {
	return s.IndexOf(el) >= 0
}

// IndexOf returns the insertion position of el, or -1 if el is not contained
// in the set.
func (s *Set) IndexOf(el interface{}) int {
	if s == nil {
		return -1
	}
	for i, x := range s.items {
		if eq(x, el) {
			return i
		}
	}
	return -1
}

// At returns the element at insertion position i.
func (s *Set) At(i int) interface{} {
	return s.items[i]
}

// Add inserts el if it is not already contained. It returns true iff the set
// has been mutated.
func (s *Set) Add(el interface{}) bool {
	if s.Contains(el) {
		return false
	}
	s.items = append(s.items, el)
	return true
}

// Extend inserts every element of els. It returns true iff any insert mutated
// the set.
func (s *Set) Extend(els ...interface{}) bool {
	changed := false
	for _, el := range els {
		if s.Add(el) {
			changed = true
		}
	}
	return changed
}

// Union inserts every element of other, preserving the receiver's order.
// It returns true iff the receiver has been mutated.
func (s *Set) Union(other *Set) bool {
	if other == nil {
		return false
	}
	return s.Extend(other.items...)
}

// Difference returns a new set with all elements of s not contained in other.
func (s *Set) Difference(other *Set) *Set {
	d := NewSet(s.Size())
	for _, x := range s.items {
		if other == nil || !other.Contains(x) {
			d.Add(x)
		}
	}
	return d
}

// Copy returns a shallow copy of the set.
func (s *Set) Copy() *Set {
	c := NewSet(s.Size())
	c.items = append(c.items, s.items...)
	return c
}

// Values returns the elements in insertion order. The returned slice is the
// set's backing store; callers must not modify it.
func (s *Set) Values() []interface{} {
	if s == nil {
		return nil
	}
	return s.items
}

// Equals compares two sets for set equality, i.e. mutual containment.
// Insertion order does not influence equality.
func (s *Set) Equals(other interface{}) bool {
	o, ok := other.(*Set)
	if !ok {
		return false
	}
	if s.Size() != o.Size() {
		return false
	}
	for _, x := range s.items {
		if !o.Contains(x) {
			return false
		}
	}
	return true
}

// IterateOnce starts a single-cursor iteration over the set. The iteration
// tolerates appends while it is in progress: elements added behind the cursor
// will be visited, too. This is the natural shape of closure fixed points.
//
// Usage:
//
//	S.IterateOnce()
//	for S.Next() {
//	    el := S.Item()
//	    …
//	}
func (s *Set) IterateOnce() {
	s.cursor = -1
}

// Next advances the iteration cursor. See IterateOnce.
func (s *Set) Next() bool {
	s.cursor++
	return s.cursor < len(s.items)
}

// Item returns the element at the iteration cursor. See IterateOnce.
func (s *Set) Item() interface{} {
	return s.items[s.cursor]
}

func (s *Set) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	for i, x := range s.Values() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", x)
	}
	b.WriteString("}")
	return b.String()
}
