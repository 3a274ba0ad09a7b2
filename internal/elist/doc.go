// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package elist holds candidate address sets as owned, indexable sequences.
// Every operation that moves elements between lists drains its source so an
// element is never held by two lists at once.
package elist
