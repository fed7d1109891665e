// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/momeni/libweb/pkg/core/model"
)

type RentalsConnQueryer interface {
	RentalsQueryer
}

type RentalsTxQueryer interface {
	RentalsQueryer

	// LockOpenForMemberCopy reads and locks the open rental of the
	// copyID copy if it is rented by the memberID member. Otherwise,
	// a nil rental and a nil error are returned.
	LockOpenForMemberCopy(ctx context.Context, memberID, copyID int64) (*model.Rental, error)

	// LockOpenForMemberBook reads and locks the open rental (with
	// the lowest rental ID) of the memberID member for any copy of the
	// isbn book. If there is none, a nil rental and a nil error are
	// returned.
	LockOpenForMemberBook(ctx context.Context, memberID int64, isbn string) (*model.Rental, error)
}

// RentalsQueryer lists the rental records operations.
// Create and Close must be paired with a Copies.SetAvailability call
// in the same transaction by their callers.
type RentalsQueryer interface {
	// Create inserts an open rental. If the copy has another open
	// rental, a cerr.Unavailable error is returned.
	Create(ctx context.Context, memberID, copyID int64, at time.Time) (*model.Rental, error)

	// Close marks an open rental as returned at the given time.
	// A missing or already closed rental is reported as a cerr.NotFound
	// error.
	Close(ctx context.Context, rentalID int64, at time.Time) (*model.Rental, error)

	// FindOpenForCopy returns the open rental of the copyID copy or nil
	// if the copy is not rented.
	FindOpenForCopy(ctx context.Context, copyID int64) (*model.Rental, error)

	FindOpenForMember(ctx context.Context, memberID int64) ([]model.MemberRental, error)
	FindHistoryForBook(ctx context.Context, isbn string) ([]model.RentalHistoryEntry, error)
	CountOpenForMember(ctx context.Context, memberID int64) (int, error)
	ListOpen(ctx context.Context) ([]model.OpenRental, error)
}

type Rentals interface {
	Conn(Conn) RentalsConnQueryer
	Tx(Tx) RentalsTxQueryer
}
