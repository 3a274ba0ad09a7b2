// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// filterRegex splits an expression into key, operator and target. Operators
// are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression. Key is a gjson path into
// the filtered document, so "eviction_set.#" selects the set size.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification. Expressions are separated by
// "," unless EVSETCTL_FILTER_DELIM says otherwise.
func BuildFilters(spec string) ([]Filter, error) {
	//nolint:prealloc
	var filters []Filter

	// If there are no filters specified, go home early.
	if spec == "" {
		return filters, nil
	}

	// Default delimiter is ",", allow an override for targets that contain
	// commas, e.g. regexes.
	delim := ","
	if d, ok := os.LookupEnv("EVSETCTL_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		// Unlike the row-level checks, a malformed expression is a usage error
		// and fails the whole spec.
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("invalid filter: %q", filterSpec)
		}

		// parts[2] is the operand. It may have a leading negation. If so, trim it
		// and just use the remainder as the working operand.
		negate := strings.HasPrefix(parts[2], "!")
		operand := strings.TrimPrefix(parts[2], "!")

		// Compile regex targets once here so a bad pattern is reported before
		// any reduction runs instead of silently matching nothing.
		if operand == "/" {
			if _, err := regexp.Compile(parts[3]); err != nil {
				return nil, fmt.Errorf("invalid filter regex %q: %w", parts[3], err)
			}
		}

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: operand,
			Target:  parts[3],
		})
	}

	return filters, nil
}

// Apply returns the items whose JSON form matches every expression in spec.
func Apply[T any](items []T, spec string) ([]T, error) {
	filters, err := BuildFilters(spec)
	if err != nil {
		return nil, err
	}
	// No filters, so go home early.
	if len(filters) == 0 {
		return items, nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		// Round trip through JSON so keys are the same names the user sees in
		// --output json.
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		if Match(gjson.ParseBytes(raw), filters) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Match reports whether doc satisfies all filters. A key missing from doc
// fails the match.
func Match(doc gjson.Result, filters []Filter) bool {
	for _, filter := range filters {
		// Get the value for the key. If it's not there, fail early; a filter on
		// an absent field can never be satisfied.
		value := doc.Get(filter.Key)
		if !value.Exists() {
			log.Debugf("filter key not found: %s", filter.Key)
			return false
		}

		// Check the value against the filter. If it fails the check, fail early as
		// there's no need to continue checking the remaining filters.
		var result bool
		switch {
		case value.IsArray():
			result = checkContainsOperand(value, filter)
		case value.Type == gjson.Number:
			result = checkNumericOperand(value.Float(), filter)
		default:
			result = checkStringOperand(value.String(), filter)
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates a membership filter (operand '@') against
// an array. Other operands compare the array length.
func checkContainsOperand(value gjson.Result, filter Filter) bool {
	items := value.Array()
	if filter.Operand != "@" {
		return checkNumericOperand(float64(len(items)), filter)
	}
	for _, item := range items {
		if strings.EqualFold(item.String(), filter.Target) {
			return !filter.Negate
		}
	}
	return filter.Negate
}

// checkNumericOperand compares numerically. Supported operands are =, > and
// <, each negatable.
func checkNumericOperand(value float64, filter Filter) bool {
	// Parse the target as a float64.
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		// Hex targets match address-like numbers.
		u, herr := strconv.ParseUint(strings.TrimSpace(filter.Target), 0, 64)
		if herr != nil {
			log.Error("invalid numeric target: " + filter.Target)
			return false
		}
		tgt = float64(u)
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		// Operators with no numeric meaning (~ ^ @ /) work on the printed form.
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
