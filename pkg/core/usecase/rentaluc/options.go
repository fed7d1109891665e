// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the rentals use case.
type Option func(uc *UseCase) error

// WithRentalLimit option configures the maximum number of open rentals
// which a member may hold simultaneously. This option may be passed
// to the New() function.
func WithRentalLimit(limit int) Option {
	return func(uc *UseCase) error {
		if limit <= 0 {
			return fmt.Errorf("rental limit (%d) is not positive", limit)
		}
		if uc.rentalLimit != 0 {
			return errors.New("rental limit is already configured")
		}
		uc.rentalLimit = limit
		return nil
	}
}

// WithClock option replaces the source of rental and return times.
// Returned times are converted to UTC.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock function is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}
