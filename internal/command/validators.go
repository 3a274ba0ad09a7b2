// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/evsetctl/internal/evset"
	"github.com/staranto/evsetctl/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func PositiveValidator(value any) error {
	if value.(int) < 1 {
		return errors.New("must be positive")
	}
	return nil
}

func TraverseValidator(value any) error {
	if v := value.(int); v < 0 || v > 2 {
		return errors.New("must be 0, 1 or 2")
	}
	return nil
}

// StrategyValidator accepts strategy names and the word "all".
func StrategyValidator(value any) error {
	for _, s := range value.([]string) {
		if strings.EqualFold(strings.TrimSpace(s), "all") {
			continue
		}
		if _, err := evset.ParseStrategy(s); err != nil {
			return err
		}
	}
	return nil
}
