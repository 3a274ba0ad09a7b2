// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package output turns reduction results into reports and renders them as a
// table, JSON, YAML or raw JSON lines.
package output
