// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrInvalidRange indicates that a minimum bound was greater than its
// maximum bound.
var ErrInvalidRange = errors.New("min is greater than max")

// OutOfRangeError indicates that the Name setting had a Value out of
// its acceptable range. Bound is the violated minimum (if Below is
// true) or maximum value.
type OutOfRangeError[T cmp.Ordered] struct {
	Name  string
	Value T
	Bound T
	Below bool
}

func (e *OutOfRangeError[T]) Error() string {
	if e.Below {
		return fmt.Sprintf(
			"%s=%v is less than the minimum %v", e.Name, e.Value, e.Bound,
		)
	}
	return fmt.Sprintf(
		"%s=%v is greater than the maximum %v", e.Name, e.Value, e.Bound,
	)
}

// VerifyRange ensures that the name setting is either nil or within
// the minb/maxb bounds, ignoring nil bounds. An out of range value is
// reported as an *OutOfRangeError and is clamped to the violated bound
// too, so callers which only log the error can keep going.
func VerifyRange[T cmp.Ordered](name string, value **T, minb, maxb *T) error {
	if minb != nil && maxb != nil && *minb > *maxb {
		return fmt.Errorf("%s: %w", name, ErrInvalidRange)
	}
	if *value == nil {
		return nil
	}
	v := **value
	switch {
	case minb != nil && v < *minb:
		**value = *minb
		return &OutOfRangeError[T]{name, v, *minb, true}
	case maxb != nil && v > *maxb:
		**value = *maxb
		return &OutOfRangeError[T]{name, v, *maxb, false}
	}
	return nil
}
