// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Copy models a single physical and independently rentable instance of
// a Book. The Available flag must be equal to the negation of "has an
// open Rental referencing this copy". It is only flipped by the rental
// lifecycle use case, in the same transaction which opens or closes
// the corresponding rental.
type Copy struct {
	ID        int64  `json:"copy_id"`
	ISBN      string `json:"isbn"`
	Available bool   `json:"available"`
}

// CopyState is the state of a copy in its rent/return state machine.
type CopyState string

// Supported copy states.
const (
	CopyAvailable CopyState = "available"
	CopyBorrowed  CopyState = "borrowed"
)

// State returns the lifecycle state of the c copy.
func (c Copy) State() CopyState {
	if c.Available {
		return CopyAvailable
	}
	return CopyBorrowed
}

// CopyDetails is a copy joined with its book display fields.
type CopyDetails struct {
	Copy

	Title  string `json:"title"`
	Author string `json:"author"`
}
