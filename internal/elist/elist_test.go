// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package elist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) *List {
	addrs := make([]Addr, n)
	for i := range addrs {
		addrs[i] = Addr(i)
	}
	return FromAddrs(addrs...)
}

func TestPushPop(t *testing.T) {
	l := seq(3)

	l.PushFront(&Elem{Addr: 100})
	l.PushBack(&Elem{Addr: 200})
	assert.Equal(t, []Addr{100, 0, 1, 2, 200}, l.Addrs())

	assert.Equal(t, Addr(100), l.PopFront().Addr)
	assert.Equal(t, Addr(200), l.PopBack().Addr)
	assert.Equal(t, []Addr{0, 1, 2}, l.Addrs())

	empty := New()
	assert.Nil(t, empty.PopFront())
	assert.Nil(t, empty.PopBack())
}

func TestTake(t *testing.T) {
	l := seq(5)
	e := l.Take(2)
	assert.Equal(t, Addr(2), e.Addr)
	assert.Equal(t, []Addr{0, 1, 3, 4}, l.Addrs())

	l.PushFront(e)
	assert.Equal(t, []Addr{2, 0, 1, 3, 4}, l.Addrs())
}

func TestConcatDrainsOther(t *testing.T) {
	a := seq(2)
	b := FromAddrs(7, 8)

	a.Concat(b)
	assert.Equal(t, []Addr{0, 1, 7, 8}, a.Addrs())
	assert.Equal(t, 0, b.Len())

	a.Concat(nil)
	a.Concat(a)
	assert.Equal(t, 4, a.Len())
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		wantOut  []Addr
		wantRest []Addr
	}{
		{name: "suffix", from: 3, to: 5, wantOut: []Addr{3, 4, 5}, wantRest: []Addr{0, 1, 2}},
		{name: "middle", from: 1, to: 2, wantOut: []Addr{1, 2}, wantRest: []Addr{0, 3, 4, 5}},
		{name: "clamped", from: -1, to: 99, wantOut: []Addr{0, 1, 2, 3, 4, 5}, wantRest: []Addr{}},
		{name: "empty range", from: 6, to: 5, wantOut: []Addr{}, wantRest: []Addr{0, 1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := seq(6)
			out := l.Slice(tt.from, tt.to)
			assert.Equal(t, tt.wantOut, out.Addrs())
			assert.Equal(t, tt.wantRest, l.Addrs())
		})
	}
}

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		n, k  int
		sizes []int
	}{
		{n: 20, k: 5, sizes: []int{4, 4, 4, 4, 4}},
		{n: 16, k: 5, sizes: []int{4, 3, 3, 3, 3}},
		{n: 7, k: 3, sizes: []int{3, 2, 2}},
		{n: 5, k: 5, sizes: []int{1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		l := seq(tt.n)
		p := l.Split(tt.k)
		require.Equal(t, tt.k, p.Width())
		assert.Equal(t, 0, l.Len())
		for i, want := range tt.sizes {
			assert.Equal(t, want, p.Chunk(i).Len(), "n=%d k=%d chunk %d", tt.n, tt.k, i)
		}
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for k := 1; k <= 9; k++ {
			l := seq(n)
			want := l.Addrs()
			got := l.Split(k).Merge()
			assert.Equal(t, want, got.Addrs(), "n=%d k=%d", n, k)
		}
	}
}

func TestPartitionViewWithoutAndTake(t *testing.T) {
	l := seq(10)
	p := l.Split(3) // [0..3] [4..6] [7..9]

	v := p.ViewWithout(1)
	assert.Equal(t, []Addr{0, 1, 2, 3, 7, 8, 9}, v.Addrs())
	assert.Equal(t, 10, p.Len(), "view must not move anything")

	taken := p.Take(1)
	assert.Equal(t, []Addr{4, 5, 6}, taken.Addrs())
	assert.Nil(t, p.Chunk(1))

	rest := p.Merge()
	assert.Equal(t, []Addr{0, 1, 2, 3, 7, 8, 9}, rest.Addrs())
	assert.Equal(t, 0, p.Len())
}

func TestNoElementInTwoLists(t *testing.T) {
	l := seq(12)
	orig := make([]*Elem, l.Len())
	for i := range orig {
		orig[i] = l.Get(i)
	}

	p := l.Split(4)
	a := p.Take(2)
	b := p.Merge()
	c := b.Slice(0, 2)

	for _, e := range orig {
		holders := 0
		for _, x := range []*List{l, a, b, c} {
			if x.Contains(e) {
				holders++
			}
		}
		assert.Equal(t, 1, holders, "element %v", e.Addr)
	}
}

func TestAddrString(t *testing.T) {
	assert.Equal(t, "0x1000", Addr(0x1000).String())
}
