// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"

	"github.com/momeni/libweb/pkg/core/model"
)

// Valuer returns an Attr which is resolved lazily, e.g., for the
// settings.Duration values which print "unset" when they are nil.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err logs the error message of value, or "no-error" for nil.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// ID returns an Attr for a member, copy, or rental identifier.
func ID(key string, id int64) slog.Attr {
	return slog.Int64(key, id)
}

// ISBN returns the "isbn" Attr.
func ISBN(isbn string) slog.Attr {
	return slog.String("isbn", isbn)
}

// Rental groups the identifiers of r under the "rental" key.
func Rental(r *model.Rental) slog.Attr {
	return slog.Group(
		"rental",
		ID("id", r.ID), ID("member_id", r.MemberID), ID("copy_id", r.CopyID),
	)
}
