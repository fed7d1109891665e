// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"log/slog"
	"time"
)

// Duration is a time.Duration which can be decoded from YAML strings
// such as "30m" or "1h30m".
type Duration time.Duration

// UnmarshalText decodes data with the time.ParseDuration format.
// The d receiver is only updated when data is valid.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Std returns d as a time.Duration, or def if d is nil.
func (d *Duration) Std(def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return time.Duration(*d)
}

// LogValue implements slog.LogValuer. A nil Duration is logged as
// "unset".
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("unset")
	}
	return slog.DurationValue(time.Duration(*d))
}
