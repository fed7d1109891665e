// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
)

type BooksConnQueryer interface {
	BooksQueryer
}

// BooksTxQueryer contains the books mutations. They touch several
// tables (books, genres, and their links), so they are only offered
// in a transaction.
type BooksTxQueryer interface {
	BooksQueryer

	// Create inserts b and links it with its genres, creating the
	// missing genres (matching names case-insensitively).
	// A duplicate ISBN is reported as a cerr.Conflict error.
	Create(ctx context.Context, b *model.Book) error

	// Update overwrites the b.ISBN book attributes. If b.Genres is
	// not nil, genre links are replaced too.
	Update(ctx context.Context, b *model.Book) error

	// Delete removes a book, its copies, and its genre links. Genres
	// which are left unused are removed too, unless they belong to the
	// default genres. Callers must check that no copy of this book has
	// any rental history beforehand.
	Delete(ctx context.Context, isbn string) error

	// HasRentalHistory reports if any copy of the isbn book was ever
	// rented.
	HasRentalHistory(ctx context.Context, isbn string) (bool, error)
}

// BooksQueryer lists the read-only books operations. Books are
// returned with their genres.
type BooksQueryer interface {
	List(ctx context.Context) ([]model.Book, error)

	// Get returns the isbn book or a cerr.NotFound error.
	Get(ctx context.Context, isbn string) (*model.Book, error)

	// FindByTitle returns the book (with the lowest ISBN) which has
	// exactly the given title, or nil if there is no such book.
	FindByTitle(ctx context.Context, title string) (*model.Book, error)

	// Search matches query against the title, author, and ISBN of
	// books case-insensitively. Results are ordered by title.
	Search(ctx context.Context, query string) ([]model.Book, error)

	// Genres returns all genre names ordered by name.
	Genres(ctx context.Context) ([]string, error)
}

type Books interface {
	Conn(Conn) BooksConnQueryer
	Tx(Tx) BooksTxQueryer
}
