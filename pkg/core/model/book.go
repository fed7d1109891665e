// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., as required by ORM
// libraries or JSON encoders) since adding more tags does not
// complicate definition of a struct, but can prevent unnecessary
// structs duplication.
package model

// Book models a catalogue entry which is identified by its ISBN.
// A book is never rented itself. Its physical copies are rented and
// the book availability is derived from their availability flags.
type Book struct {
	ISBN            string `json:"isbn" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	PublicationYear int    `json:"publication_year" validate:"required"`
	Description     string `json:"description"`

	// Genres is the normalized set of genre labels of this book.
	Genres []string `json:"genres"`
}

// BookCopies is a read-model which augments a Book with the number of
// its copies and how many of them are available right now.
// These counters are computed from the copies table on each query and
// are never stored.
type BookCopies struct {
	Book

	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
}

// BookDetails is the detailed view of a book, including its complete
// rental history (both open and closed rentals).
type BookDetails struct {
	Book BookCopies `json:"book"`

	RentalHistory     []RentalHistoryEntry `json:"rental_history"`
	CurrentlyBorrowed int                  `json:"currently_borrowed"`
	TotalRentals      int                  `json:"total_rentals"`
}
