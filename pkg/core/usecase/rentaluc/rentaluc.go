// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentaluc contains the rentals UseCase which moves copies
// between the available and borrowed states. A copy is borrowed by
// creating an open rental for it and is made available again by
// closing that rental. Both changes happen in one transaction with
// the copy availability flag, so they are never partially applied.
//
// Book level operations (renting by ISBN or title and returning by
// ISBN) resolve a copy and then follow the copy level rules.
package rentaluc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
)

// DefaultRentalLimit is the number of simultaneous open rentals which
// a member may hold when WithRentalLimit option is not used.
const DefaultRentalLimit = 3

// UseCase represents the rentals use case. It holds a database
// connection pool and the repositories which are needed for renting
// and returning copies.
type UseCase struct {
	pool      repo.Pool
	membersrp repo.Members
	booksrp   repo.Books
	copiesrp  repo.Copies
	rentalsrp repo.Rentals

	rentalLimit int
	now         func() time.Time
}

// New instantiates a rentals use case.
// Required parameters are passed individually, while optional
// parameters are passed as functional options.
func New(
	p repo.Pool,
	m repo.Members,
	b repo.Books,
	c repo.Copies,
	r repo.Rentals,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:      p,
		membersrp: m,
		booksrp:   b,
		copiesrp:  c,
		rentalsrp: r,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.rentalLimit == 0 {
		uc.rentalLimit = DefaultRentalLimit
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// RentalLimit returns the configured maximum number of open rentals
// per member.
func (rentals *UseCase) RentalLimit() int {
	return rentals.rentalLimit
}

// Rent use case borrows a copy for the memberID member. The copy is
// chosen by sel. If a book is selected, its lowest numbered available
// copy is taken. The created rental is returned.
//
// Errors are classified as NotFound (member, book, or copy is
// missing), Unavailable (copy is borrowed or no copy is free),
// RentalLimitExceeded, ValidationError, or StorageError.
func (rentals *UseCase) Rent(ctx context.Context, memberID int64, sel Selector) (r *model.Rental, err error) {
	if memberID <= 0 {
		return nil, cerr.BadRequest(errors.New("member_id must be positive"))
	}
	if err = sel.validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			r, err = rentals.rent(ctx, tx, memberID, sel)
			return err
		})
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	log.Info(ctx, "copy rented", log.Rental(r))
	return r, nil
}

// RentCopy rents the copyID copy for the memberID member.
func (rentals *UseCase) RentCopy(ctx context.Context, memberID, copyID int64) (*model.Rental, error) {
	return rentals.Rent(ctx, memberID, Selector{CopyID: copyID})
}

// RentBook rents the first available copy of the isbn book.
func (rentals *UseCase) RentBook(ctx context.Context, memberID int64, isbn string) (*model.Rental, error) {
	return rentals.Rent(ctx, memberID, Selector{ISBN: isbn})
}

// RentByTitle rents the first available copy of the book whose title
// matches title case-insensitively.
func (rentals *UseCase) RentByTitle(ctx context.Context, memberID int64, title string) (*model.Rental, error) {
	return rentals.Rent(ctx, memberID, Selector{Title: title})
}

func (rentals *UseCase) rent(ctx context.Context, tx repo.Tx, memberID int64, sel Selector) (*model.Rental, error) {
	if _, err := rentals.membersrp.Tx(tx).Lock(ctx, memberID); err != nil {
		return nil, err
	}
	cp, err := rentals.resolveCopy(ctx, tx, sel)
	if err != nil {
		return nil, err
	}
	rq := rentals.rentalsrp.Tx(tx)
	n, err := rq.CountOpenForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if n >= rentals.rentalLimit {
		return nil, cerr.RentalLimitExceeded(fmt.Errorf(
			"member %d already has %d open rentals (limit is %d)",
			memberID, n, rentals.rentalLimit,
		))
	}
	r, err := rq.Create(ctx, memberID, cp.ID, rentals.now().UTC())
	if err != nil {
		return nil, err
	}
	err = rentals.copiesrp.Tx(tx).SetAvailability(ctx, cp.ID, false)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// resolveCopy locks and returns the copy which sel asks for, as long
// as it is available.
func (rentals *UseCase) resolveCopy(ctx context.Context, tx repo.Tx, sel Selector) (*model.Copy, error) {
	cq := rentals.copiesrp.Tx(tx)
	if sel.CopyID != 0 {
		cp, err := cq.Lock(ctx, sel.CopyID)
		if err != nil {
			return nil, err
		}
		if !cp.Available {
			return nil, cerr.Unavailable(fmt.Errorf(
				"copy %d is not available", cp.ID,
			))
		}
		return cp, nil
	}
	bq := rentals.booksrp.Tx(tx)
	isbn := strings.TrimSpace(sel.ISBN)
	if isbn == "" {
		b, err := bq.FindByTitle(ctx, sel.Title)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, cerr.NotFound(fmt.Errorf(
				"book titled %q not found", strings.TrimSpace(sel.Title),
			))
		}
		isbn = b.ISBN
	} else if _, err := bq.Get(ctx, isbn); err != nil {
		return nil, err
	}
	cp, err := cq.LockFirstAvailable(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, cerr.Unavailable(fmt.Errorf(
			"no copy of book %q is available", isbn,
		))
	}
	return cp, nil
}

// Return use case closes an open rental of the memberID member which
// is selected by sel, and makes its copy available again. A rental
// which is closed already, or belongs to another member, is reported
// as NotFound. The closed rental is returned.
func (rentals *UseCase) Return(ctx context.Context, memberID int64, sel ReturnSelector) (r *model.Rental, err error) {
	if memberID <= 0 {
		return nil, cerr.BadRequest(errors.New("member_id must be positive"))
	}
	if err = sel.validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			r, err = rentals.returnCopy(ctx, tx, memberID, sel)
			return err
		})
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	log.Info(ctx, "copy returned", log.Rental(r))
	return r, nil
}

// ReturnCopy returns the copyID copy which is rented by memberID.
func (rentals *UseCase) ReturnCopy(ctx context.Context, memberID, copyID int64) (*model.Rental, error) {
	return rentals.Return(ctx, memberID, ReturnSelector{CopyID: copyID})
}

// ReturnBook returns a copy of the isbn book which is rented by
// memberID. If the member holds more than one copy of that book,
// the oldest rental is closed.
func (rentals *UseCase) ReturnBook(ctx context.Context, memberID int64, isbn string) (*model.Rental, error) {
	return rentals.Return(ctx, memberID, ReturnSelector{ISBN: isbn})
}

func (rentals *UseCase) returnCopy(ctx context.Context, tx repo.Tx, memberID int64, sel ReturnSelector) (*model.Rental, error) {
	rq := rentals.rentalsrp.Tx(tx)
	var (
		open *model.Rental
		err  error
	)
	if sel.CopyID != 0 {
		open, err = rq.LockOpenForMemberCopy(ctx, memberID, sel.CopyID)
	} else {
		open, err = rq.LockOpenForMemberBook(
			ctx, memberID, strings.TrimSpace(sel.ISBN),
		)
	}
	if err != nil {
		return nil, err
	}
	if open == nil {
		if sel.CopyID != 0 {
			return nil, cerr.NotFound(fmt.Errorf(
				"member %d has no open rental for copy %d",
				memberID, sel.CopyID,
			))
		}
		return nil, cerr.NotFound(fmt.Errorf(
			"member %d has no open rental for book %q",
			memberID, strings.TrimSpace(sel.ISBN),
		))
	}
	r, err := rq.Close(ctx, open.ID, rentals.now().UTC())
	if err != nil {
		return nil, err
	}
	err = rentals.copiesrp.Tx(tx).SetAvailability(ctx, r.CopyID, true)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AvailableCopies lists the ids of available copies of the isbn book
// in ascending order.
func (rentals *UseCase) AvailableCopies(ctx context.Context, isbn string) (ids []int64, err error) {
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := rentals.booksrp.Conn(c).Get(ctx, isbn); err != nil {
			return err
		}
		copies, err := rentals.copiesrp.Conn(c).ListAvailableForBook(ctx, isbn)
		if err != nil {
			return err
		}
		ids = make([]int64, 0, len(copies))
		for _, cp := range copies {
			ids = append(ids, cp.ID)
		}
		return nil
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return ids, nil
}

// OpenRentals lists the open rentals of the memberID member with the
// book display fields.
func (rentals *UseCase) OpenRentals(ctx context.Context, memberID int64) (rs []model.MemberRental, err error) {
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := rentals.membersrp.Conn(c).Get(ctx, memberID); err != nil {
			return err
		}
		rs, err = rentals.rentalsrp.Conn(c).FindOpenForMember(ctx, memberID)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return rs, nil
}

// ListOpen lists all open rentals of the library.
func (rentals *UseCase) ListOpen(ctx context.Context) (rs []model.OpenRental, err error) {
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = rentals.rentalsrp.Conn(c).ListOpen(ctx)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return rs, nil
}

// History lists all rentals of copies of the isbn book, open or
// closed, in the order of their rental times.
func (rentals *UseCase) History(ctx context.Context, isbn string) (hs []model.RentalHistoryEntry, err error) {
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := rentals.booksrp.Conn(c).Get(ctx, isbn); err != nil {
			return err
		}
		hs, err = rentals.rentalsrp.Conn(c).FindHistoryForBook(ctx, isbn)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return hs, nil
}

// CopyRental returns the open rental of the copyID copy. A missing
// copy, or a copy which is not rented right now, is reported as a
// NotFound error.
func (rentals *UseCase) CopyRental(ctx context.Context, copyID int64) (r *model.Rental, err error) {
	if copyID <= 0 {
		return nil, cerr.BadRequest(errors.New("copy id must be positive"))
	}
	err = rentals.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := rentals.copiesrp.Conn(c).Get(ctx, copyID); err != nil {
			return err
		}
		r, err = rentals.rentalsrp.Conn(c).FindOpenForCopy(ctx, copyID)
		if err == nil && r == nil {
			err = cerr.NotFound(fmt.Errorf("copy %d is not rented", copyID))
		}
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return r, nil
}
