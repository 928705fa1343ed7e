// Package registry provides an insertion-ordered, doubly-linked collection of
// opaque handles. The compositor keeps one instance for stacking order and
// one for most-recently-used focus order.
package registry

import "iter"

// Element is a single entry of a List.
type Element[H comparable] struct {
	Value H
	prev  *Element[H]
	next  *Element[H]
}

// Next returns the entry after e, or nil at the tail.
func (e *Element[H]) Next() *Element[H] {
	if e == nil {
		return nil
	}
	return e.next
}

// Prev returns the entry before e, or nil at the head.
func (e *Element[H]) Prev() *Element[H] {
	if e == nil {
		return nil
	}
	return e.prev
}

// List is an ordered collection of handles. The zero value is an empty list
// ready to use. A List does not reject duplicates; callers must not insert a
// handle that is already present.
type List[H comparable] struct {
	head *Element[H]
	tail *Element[H]
	size int
}

// New returns an empty list.
func New[H comparable]() *List[H] {
	return &List[H]{}
}

// PushFront inserts h at the head of the list.
func (l *List[H]) PushFront(h H) *Element[H] {
	e := &Element[H]{Value: h, next: l.head}
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.size++
	return e
}

// Remove unlinks the first entry holding h. It reports false when h is not a
// member.
func (l *List[H]) Remove(h H) bool {
	e := l.Find(h)
	if e == nil {
		return false
	}
	l.unlink(e)
	return true
}

// MoveToFront removes h and reinserts it at the head. It reports false, and
// leaves the list untouched, when h is not a member.
func (l *List[H]) MoveToFront(h H) bool {
	if !l.Remove(h) {
		return false
	}
	l.PushFront(h)
	return true
}

func (l *List[H]) unlink(e *Element[H]) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if e == l.head {
		l.head = e.next
	}
	if e == l.tail {
		l.tail = e.prev
	}
	e.prev = nil
	e.next = nil
	l.size--
}

// Find returns the first entry holding h, or nil.
func (l *List[H]) Find(h H) *Element[H] {
	for e := l.head; e != nil; e = e.next {
		if e.Value == h {
			return e
		}
	}
	return nil
}

// Contains reports whether h is a member.
func (l *List[H]) Contains(h H) bool {
	return l.Find(h) != nil
}

// Front returns the head entry, or nil when empty.
func (l *List[H]) Front() *Element[H] {
	return l.head
}

// Back returns the tail entry, or nil when empty.
func (l *List[H]) Back() *Element[H] {
	return l.tail
}

// Len returns the number of entries.
func (l *List[H]) Len() int {
	return l.size
}

// After returns the handle following h, wrapping from the tail to the head.
// It reports false when h is not a member.
func (l *List[H]) After(h H) (H, bool) {
	e := l.Find(h)
	if e == nil {
		var zero H
		return zero, false
	}
	if e.next != nil {
		return e.next.Value, true
	}
	return l.head.Value, true
}

// All iterates the handles from head to tail.
func (l *List[H]) All() iter.Seq[H] {
	return func(yield func(H) bool) {
		for e := l.head; e != nil; e = e.next {
			if !yield(e.Value) {
				return
			}
		}
	}
}

// Values returns a head-to-tail copy of the handles.
func (l *List[H]) Values() []H {
	out := make([]H, 0, l.size)
	for e := l.head; e != nil; e = e.next {
		out = append(out, e.Value)
	}
	return out
}
