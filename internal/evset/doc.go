// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package evset reduces a pool of congruent candidate addresses to a minimal
// cache eviction set. Five strategies are provided (naive, optimistic, gt,
// gt-any and binary); each drives a timing Oracle strictly sequentially and
// returns a Result whose Active and Discard lists together hold every input
// element exactly once.
package evset
