// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package elist

// Partition is a temporary split of a list into k disjoint, order-preserving
// chunks. Merging the chunks back in index order reconstructs the list.
type Partition struct {
	chunks []*List
}

// Split drains l into k chunks of near-equal size. The first len%k chunks get
// one extra element. k must be positive.
func (l *List) Split(k int) *Partition {
	p := &Partition{chunks: make([]*List, k)}
	n := len(l.elems)
	size, extra := n/k, n%k

	pos := 0
	for i := 0; i < k; i++ {
		sz := size
		if i < extra {
			sz++
		}
		p.chunks[i] = New(l.elems[pos : pos+sz]...)
		pos += sz
	}
	l.elems = nil
	return p
}

// Width is the number of chunk slots, including taken ones.
func (p *Partition) Width() int { return len(p.chunks) }

// Chunk returns chunk i, or nil if it was taken.
func (p *Partition) Chunk(i int) *List { return p.chunks[i] }

// Len is the total number of elements still held by the partition.
func (p *Partition) Len() int {
	n := 0
	for _, c := range p.chunks {
		n += c.Len()
	}
	return n
}

// ViewWithout concatenates every chunk except skip, in index order, into a
// read-only view. Nothing is moved.
func (p *Partition) ViewWithout(skip int) View {
	elems := make([]*Elem, 0, p.Len())
	for i, c := range p.chunks {
		if i == skip || c == nil {
			continue
		}
		elems = append(elems, c.elems...)
	}
	return View{elems: elems}
}

// Take removes chunk i from the partition and hands ownership to the caller.
func (p *Partition) Take(i int) *List {
	c := p.chunks[i]
	p.chunks[i] = nil
	return c
}

// Merge concatenates the remaining chunks in index order into a new list and
// empties the partition.
func (p *Partition) Merge() *List {
	out := &List{elems: make([]*Elem, 0, p.Len())}
	for i, c := range p.chunks {
		out.Concat(c)
		p.chunks[i] = nil
	}
	return out
}
