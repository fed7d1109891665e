// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// LibraryStats contains the library-wide counters.
// BorrowedCopies and AvailableCopies are computed from the per-copy
// availability flags, so BorrowedCopies+AvailableCopies==TotalCopies.
type LibraryStats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	TotalMembers    int64 `json:"total_members"`
	BorrowedCopies  int64 `json:"borrowed_copies"`
	AvailableCopies int64 `json:"available_copies"`
}
