// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
)

type CopiesConnQueryer interface {
	CopiesQueryer
}

// CopiesTxQueryer adds the locking reads which are only meaningful
// in a transaction. Locked rows stay locked until that transaction
// commits or rolls back.
type CopiesTxQueryer interface {
	CopiesQueryer

	// Lock reads and locks the copyID copy. A missing copy is
	// reported as a cerr.NotFound error.
	Lock(ctx context.Context, copyID int64) (*model.Copy, error)

	// LockFirstAvailable locks the available copy of the isbn book
	// which has the lowest copy ID among those copies which are not
	// locked by other transactions. If there is no such copy, a nil
	// copy and a nil error are returned.
	LockFirstAvailable(ctx context.Context, isbn string) (*model.Copy, error)
}

// CopiesQueryer lists operations on the copies of books.
// Errors for missing rows are reported as cerr.NotFound errors.
type CopiesQueryer interface {
	ListForBook(ctx context.Context, isbn string) ([]model.Copy, error)
	ListAvailableForBook(ctx context.Context, isbn string) ([]model.Copy, error)
	Get(ctx context.Context, copyID int64) (*model.Copy, error)
	GetDetails(ctx context.Context, copyID int64) (*model.CopyDetails, error)

	// ListRented returns all copies which are currently borrowed.
	ListRented(ctx context.Context) ([]model.CopyDetails, error)

	// Summaries returns all books with their total and available
	// copies counters, ordered by title. Genres are not filled.
	Summaries(ctx context.Context) ([]model.BookCopies, error)

	// SetAvailability only updates the availability flag. It neither
	// opens nor closes a rental.
	SetAvailability(ctx context.Context, copyID int64, available bool) error

	// Create adds a copy for the isbn book. A missing book is reported
	// as a cerr.NotFound error.
	Create(ctx context.Context, isbn string, available bool) (*model.Copy, error)

	// Delete removes a copy. If the copy has any rental history (open
	// or closed), a cerr.Conflict error is returned and nothing is
	// removed.
	Delete(ctx context.Context, copyID int64) error
}

type Copies interface {
	Conn(Conn) CopiesConnQueryer
	Tx(Tx) CopiesTxQueryer
}
