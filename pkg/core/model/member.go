// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Member models a registered library member who may rent copies.
// The validate tags are checked by the members use case before any
// create or update operation reaches the database.
type Member struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name" validate:"required"`
	Surname   string    `json:"surname" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"required"`
	Address   string    `json:"address" validate:"required"`
	City      string    `json:"city" validate:"required"`
	Postcode  string    `json:"postcode" validate:"required"`
	JoinedAt  time.Time `json:"joined_at"`
}

// FullName returns the first name and surname of m, separated by
// a single space.
func (m Member) FullName() string {
	return m.FirstName + " " + m.Surname
}
