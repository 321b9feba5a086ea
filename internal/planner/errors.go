/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates a rule field value outside its documented domain.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvertedInterval indicates a rule whose from time is after its to time.
	ErrInvertedInterval = errors.New("from time is after to time")
)

// RangeError describes a set value rejected while building a rule.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %d out of range %d..%d", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap lets callers match any RangeError with errors.Is(err, ErrOutOfRange).
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
