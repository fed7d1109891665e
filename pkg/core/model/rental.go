// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Rental records that a member borrowed a copy. It is created by a
// successful rent operation and mutated exactly once, by the matching
// return operation, which sets Returned and stamps ReturnedAt.
// Rentals are never deleted since they form the rental history.
//
// For each copy, at most one rental with Returned=false may exist.
type Rental struct {
	ID         int64      `json:"rental_id"`
	MemberID   int64      `json:"member_id"`
	CopyID     int64      `json:"copy_id"`
	RentedAt   time.Time  `json:"rented_at"`
	Returned   bool       `json:"returned"`
	ReturnedAt *time.Time `json:"returned_at"`
}

// Open reports if r is an open rental, i.e., not returned yet.
func (r Rental) Open() bool {
	return !r.Returned
}

// MemberRental is a rental of some member which is joined with the
// display fields of the rented book.
type MemberRental struct {
	Rental

	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// RentalHistoryEntry is a rental of some book which is joined with the
// display fields of the renting member.
type RentalHistoryEntry struct {
	Rental

	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
}

// OpenRental describes an open rental with both of its book and member
// display fields.
type OpenRental struct {
	Rental

	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	MemberName string `json:"member_name"`
}
