// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package pool builds candidate address pools for reduction, either
// synthetically or from JSON documents on disk or in S3.
//
// A pool document looks like:
//
//	{"victim": "0x7f0000001000", "candidates": ["0x7f0000011000", 4096, ...]}
//
// Addresses may be hex or decimal strings or plain JSON numbers.
package pool
