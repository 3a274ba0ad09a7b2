// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"errors"
	"fmt"

	"github.com/staranto/evsetctl/internal/elist"
)

// Status is the outcome of a reduction run.
type Status int

const (
	StatusSuccess Status = iota
	// StatusResourceExhaustion means the working structures could not be
	// sized for this run.
	StatusResourceExhaustion
	// StatusStuck means no further reduction was possible.
	StatusStuck
	// StatusRetryBudgetExhausted means the backtracking bound was hit.
	StatusRetryBudgetExhausted
	// StatusInconsistentBound means the binary search computed a bound that
	// leaves fewer than cache_way elements.
	StatusInconsistentBound
	// StatusInsufficientNecessary means fewer than cache_way elements proved
	// necessary.
	StatusInsufficientNecessary
	// StatusUnconfirmed means the set reached the target size but the final
	// confirmation query did not report an eviction.
	StatusUnconfirmed
)

var (
	ErrResourceExhaustion    = errors.New("working structures could not be allocated")
	ErrStuck                 = errors.New("reduction is stuck")
	ErrRetryBudgetExhausted  = errors.New("backtracking retry budget exhausted")
	ErrInconsistentBound     = errors.New("inconsistent search bound")
	ErrInsufficientNecessary = errors.New("insufficient necessary elements")
	ErrUnconfirmed           = errors.New("eviction set not confirmed")
)

var statusNames = map[Status]string{
	StatusSuccess:               "success",
	StatusResourceExhaustion:    "resource-exhaustion",
	StatusStuck:                 "stuck",
	StatusRetryBudgetExhausted:  "retry-budget-exhausted",
	StatusInconsistentBound:     "inconsistent-bound",
	StatusInsufficientNecessary: "insufficient-necessary",
	StatusUnconfirmed:           "unconfirmed",
}

var statusErrs = map[Status]error{
	StatusResourceExhaustion:    ErrResourceExhaustion,
	StatusStuck:                 ErrStuck,
	StatusRetryBudgetExhausted:  ErrRetryBudgetExhausted,
	StatusInconsistentBound:     ErrInconsistentBound,
	StatusInsufficientNecessary: ErrInsufficientNecessary,
	StatusUnconfirmed:           ErrUnconfirmed,
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is what a strategy hands back. Active and Discard together hold
// every element of the input pool exactly once, whatever the status.
type Result struct {
	Strategy Strategy
	Status   Status
	Active   *elist.List
	Discard  *elist.List

	// Queries counts Oracle calls, including the final confirmation.
	Queries int
	// Iterations counts reduction steps (one per tested candidate or chunk).
	Iterations int
	// Backtracks counts undo steps.
	Backtracks int
	// Necessary is the number of elements proven necessary (optimistic only).
	Necessary int
}

// OK reports success.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Err returns nil on success and the sentinel error of the failure kind
// otherwise.
func (r Result) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	if err, ok := statusErrs[r.Status]; ok {
		return fmt.Errorf("%s: %w", r.Strategy, err)
	}
	return fmt.Errorf("%s: %s", r.Strategy, r.Status)
}
