// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package oracle provides a software model of a set-associative cache that
// answers eviction queries with simulated access latencies. It lets the
// reduction strategies run without hardware timers.
package oracle
