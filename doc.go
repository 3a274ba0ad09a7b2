// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// evsetctl is the main package for the evsetctl command line tool. It reduces
// pools of candidate addresses to minimal cache eviction sets, wiring the CLI
// to the internal packages.
package main
