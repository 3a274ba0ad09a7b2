// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package elist

import (
	"fmt"
)

// Addr is an opaque address or page handle for a candidate line.
type Addr uint64

func (a Addr) String() string {
	return fmt.Sprintf("%#x", uint64(a))
}

// Elem is one candidate memory location. Elements are shared by pointer and
// must live in exactly one List at a time.
type Elem struct {
	Addr Addr
}

// List is an owned, ordered sequence of elements. Operations that combine
// lists drain their argument so an element is never reachable from two lists.
type List struct {
	elems []*Elem
}

// New returns a list holding elems in order. The list takes ownership.
func New(elems ...*Elem) *List {
	l := &List{elems: make([]*Elem, 0, len(elems))}
	l.elems = append(l.elems, elems...)
	return l
}

// FromAddrs allocates one element per address.
func FromAddrs(addrs ...Addr) *List {
	l := &List{elems: make([]*Elem, 0, len(addrs))}
	for _, a := range addrs {
		l.elems = append(l.elems, &Elem{Addr: a})
	}
	return l
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.elems)
}

// Get returns the element at position i without removing it.
func (l *List) Get(i int) *Elem {
	return l.elems[i]
}

// PushFront inserts e at the head.
func (l *List) PushFront(e *Elem) {
	l.elems = append(l.elems, nil)
	copy(l.elems[1:], l.elems)
	l.elems[0] = e
}

// PushBack appends e at the tail.
func (l *List) PushBack(e *Elem) {
	l.elems = append(l.elems, e)
}

// PopFront removes and returns the head, or nil when empty.
func (l *List) PopFront() *Elem {
	if len(l.elems) == 0 {
		return nil
	}
	e := l.elems[0]
	l.elems[0] = nil
	l.elems = l.elems[1:]
	return e
}

// PopBack removes and returns the tail, or nil when empty.
func (l *List) PopBack() *Elem {
	n := len(l.elems)
	if n == 0 {
		return nil
	}
	e := l.elems[n-1]
	l.elems[n-1] = nil
	l.elems = l.elems[:n-1]
	return e
}

// Take removes and returns the element at position i.
func (l *List) Take(i int) *Elem {
	e := l.elems[i]
	copy(l.elems[i:], l.elems[i+1:])
	l.elems[len(l.elems)-1] = nil
	l.elems = l.elems[:len(l.elems)-1]
	return e
}

// Concat moves every element of other to the tail of l, leaving other empty.
// A nil other is a no-op.
func (l *List) Concat(other *List) {
	if other == nil || other == l {
		return
	}
	l.elems = append(l.elems, other.elems...)
	other.elems = nil
}

// Slice moves the elements at positions [from, to] (inclusive) into a new
// list. Out-of-range bounds are clamped; an empty range yields an empty list.
func (l *List) Slice(from, to int) *List {
	if from < 0 {
		from = 0
	}
	if to >= len(l.elems) {
		to = len(l.elems) - 1
	}
	if from > to {
		return New()
	}
	out := New(l.elems[from : to+1]...)
	rest := make([]*Elem, 0, len(l.elems)-out.Len())
	rest = append(rest, l.elems[:from]...)
	rest = append(rest, l.elems[to+1:]...)
	l.elems = rest
	return out
}

// Drain moves all elements into a new list and leaves l empty.
func (l *List) Drain() *List {
	out := &List{elems: l.elems}
	l.elems = nil
	return out
}

// Addrs returns the addresses in order.
func (l *List) Addrs() []Addr {
	out := make([]Addr, 0, l.Len())
	for _, e := range l.elems {
		out = append(out, e.Addr)
	}
	return out
}

// View returns a read-only view of the current contents.
func (l *List) View() View {
	return View{elems: l.elems}
}

// Contains reports whether e is held by l.
func (l *List) Contains(e *Elem) bool {
	for _, x := range l.elems {
		if x == e {
			return true
		}
	}
	return false
}

// View is a read-only window over a sequence of elements. It is only valid
// until the list it was taken from is next mutated.
type View struct {
	elems []*Elem
}

func (v View) Len() int { return len(v.elems) }

// At returns the address at position i.
func (v View) At(i int) Addr { return v.elems[i].Addr }

// Addrs copies the addresses out of the view.
func (v View) Addrs() []Addr {
	out := make([]Addr, len(v.elems))
	for i, e := range v.elems {
		out[i] = e.Addr
	}
	return out
}

// Join concatenates views into a single read-only view. Nothing is moved.
func Join(views ...View) View {
	n := 0
	for _, v := range views {
		n += len(v.elems)
	}
	elems := make([]*Elem, 0, n)
	for _, v := range views {
		elems = append(elems, v.elems...)
	}
	return View{elems: elems}
}
