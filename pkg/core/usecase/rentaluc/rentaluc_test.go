// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/momeni/libweb/internal/test/sqlitedb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/booksrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/copiesrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/membersrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/rentalsrp"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
	"github.com/momeni/libweb/pkg/core/usecase/memberuc"
	"github.com/momeni/libweb/pkg/core/usecase/rentaluc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var rentedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type RentalsTestSuite struct {
	suite.Suite

	Ctx     context.Context
	Pool    *gormdb.Pool
	Rentals *rentaluc.UseCase
	Books   *bookuc.UseCase
	Members *memberuc.UseCase
}

func TestRentalsTestSuite(t *testing.T) {
	suite.Run(t, &RentalsTestSuite{Ctx: context.Background()})
}

func (rts *RentalsTestSuite) SetupTest() {
	rts.Pool = sqlitedb.New(rts.Ctx, rts.T(), false)
	rts.Rentals = rts.newUseCase()
	rts.Books = bookuc.New(
		rts.Pool, booksrp.New(), copiesrp.New(), rentalsrp.New(),
	)
	rts.Members = memberuc.New(rts.Pool, membersrp.New())
}

func (rts *RentalsTestSuite) newUseCase(opts ...rentaluc.Option) *rentaluc.UseCase {
	opts = append(opts, rentaluc.WithClock(func() time.Time {
		return rentedAt
	}))
	uc, err := rentaluc.New(
		rts.Pool,
		membersrp.New(), booksrp.New(), copiesrp.New(), rentalsrp.New(),
		opts...,
	)
	rts.Require().NoError(err, "creating rentals use case")
	return uc
}

func (rts *RentalsTestSuite) addBook(isbn, title string, copies int) {
	_, err := rts.Books.Create(rts.Ctx, &model.Book{
		ISBN:            isbn,
		Title:           title,
		Author:          "Test Author",
		PublicationYear: 2001,
	}, copies)
	rts.Require().NoError(err, "creating book %q", isbn)
}

func (rts *RentalsTestSuite) addMember(name string) int64 {
	m := &model.Member{
		FirstName: name,
		Surname:   "Tester",
		Email:     name + "@example.org",
		Phone:     "555-0100",
		Address:   "1 Main Street",
		City:      "Springfield",
		Postcode:  "12345",
	}
	rts.Require().NoError(rts.Members.Create(rts.Ctx, m), "creating member")
	return m.ID
}

func (rts *RentalsTestSuite) copyAvailable(copyID int64) bool {
	cp, err := rts.Books.GetCopy(rts.Ctx, copyID)
	rts.Require().NoError(err, "reading copy %d", copyID)
	rts.Require().Equal(copyID, cp.ID, "copy details id")
	return cp.Available
}

// checkCopyRentals asserts that each borrowed copy of the isbn book
// has exactly one open rental and each available copy has none.
func (rts *RentalsTestSuite) checkCopyRentals(isbn string) {
	open := rts.openRentalsPerCopy()
	err := rts.Pool.Conn(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		copies, err := copiesrp.New().Conn(c).ListForBook(ctx, isbn)
		if err != nil {
			return err
		}
		rq := rentalsrp.New().Conn(c)
		for _, cp := range copies {
			r, err := rq.FindOpenForCopy(ctx, cp.ID)
			if err != nil {
				return err
			}
			if cp.Available {
				rts.Nil(r, "available copy %d has an open rental", cp.ID)
				rts.Zero(open[cp.ID], "available copy %d", cp.ID)
				continue
			}
			rts.Equal(int64(1), open[cp.ID], "borrowed copy %d", cp.ID)
			if rts.NotNil(r, "borrowed copy %d has no open rental", cp.ID) {
				rts.Positive(r.ID)
				rts.Equal(cp.ID, r.CopyID)
				rts.False(r.Returned)
				rts.Nil(r.ReturnedAt)
			}
		}
		return nil
	})
	rts.Require().NoError(err, "checking copy rentals of %q", isbn)
}

// openRentalsPerCopy counts open rentals of each copy which has any.
func (rts *RentalsTestSuite) openRentalsPerCopy() map[int64]int64 {
	counts := make(map[int64]int64)
	err := rts.Pool.Conn(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		rows, err := c.Query(ctx, `SELECT copy_id, COUNT(*) FROM rentals
WHERE returned = ? GROUP BY copy_id`, false)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id, n int64
			if err := rows.Scan(&id, &n); err != nil {
				return err
			}
			counts[id] = n
		}
		return rows.Err()
	})
	rts.Require().NoError(err, "counting open rentals")
	return counts
}

func (rts *RentalsTestSuite) TestRentAndReturnCopySeven() {
	rts.addBook("111", "Seven Copies", 7)
	member := rts.addMember("ada")
	rts.Require().Equal(int64(1), member)

	r, err := rts.Rentals.RentCopy(rts.Ctx, 1, 7)
	rts.Require().NoError(err, "renting copy 7")
	rts.Equal(int64(1), r.MemberID)
	rts.Equal(int64(7), r.CopyID)
	rts.False(r.Returned)
	rts.Nil(r.ReturnedAt)
	rts.True(rentedAt.Equal(r.RentedAt))
	rts.False(rts.copyAvailable(7), "copy 7 must be borrowed")
	rts.checkCopyRentals("111")

	open, err := rts.Rentals.OpenRentals(rts.Ctx, 1)
	rts.Require().NoError(err)
	if rts.Len(open, 1) {
		rts.Equal(r.ID, open[0].ID)
		rts.Equal(int64(1), open[0].MemberID)
		rts.Equal(int64(7), open[0].CopyID)
		rts.False(open[0].Returned)
		rts.True(rentedAt.Equal(open[0].RentedAt))
		rts.Equal("111", open[0].ISBN)
	}
	cur, err := rts.Rentals.CopyRental(rts.Ctx, 7)
	rts.Require().NoError(err, "open rental of copy 7")
	rts.Equal(r.ID, cur.ID)

	_, err = rts.Rentals.RentCopy(rts.Ctx, 1, 7)
	rts.Equal(cerr.KindUnavailable, cerr.KindOf(err), "renting twice: %v", err)
	rts.EqualError(err, "[409] copy 7 is not available")

	closed, err := rts.Rentals.ReturnCopy(rts.Ctx, 1, 7)
	rts.Require().NoError(err, "returning copy 7")
	rts.Equal(r.ID, closed.ID)
	rts.True(closed.Returned)
	if rts.NotNil(closed.ReturnedAt) {
		rts.True(rentedAt.Equal(*closed.ReturnedAt))
	}
	rts.True(rts.copyAvailable(7), "copy 7 must be available again")
	rts.checkCopyRentals("111")
	_, err = rts.Rentals.CopyRental(rts.Ctx, 7)
	rts.EqualError(err, "[404] copy 7 is not rented")
	_, err = rts.Rentals.CopyRental(rts.Ctx, 99)
	rts.Equal(cerr.KindNotFound, cerr.KindOf(err))

	_, err = rts.Rentals.ReturnCopy(rts.Ctx, 1, 7)
	rts.Equal(cerr.KindNotFound, cerr.KindOf(err), "returning twice: %v", err)

	hist, err := rts.Rentals.History(rts.Ctx, "111")
	rts.Require().NoError(err)
	if rts.Len(hist, 1) {
		rts.Equal(r.ID, hist[0].ID)
		rts.Equal(int64(7), hist[0].CopyID)
		rts.Equal(int64(1), hist[0].MemberID)
		rts.True(hist[0].Returned)
		if rts.NotNil(hist[0].ReturnedAt) {
			rts.True(rentedAt.Equal(*hist[0].ReturnedAt))
		}
		rts.Equal("ada Tester", hist[0].MemberName)
		rts.Equal("ada@example.org", hist[0].MemberEmail)
	}
}

func (rts *RentalsTestSuite) TestRentalLimit() {
	rts.addBook("111", "Many Copies", 5)
	member := rts.addMember("alan")
	for i := 1; i <= rentaluc.DefaultRentalLimit; i++ {
		r, err := rts.Rentals.RentBook(rts.Ctx, member, "111")
		rts.Require().NoError(err, "rent #%d", i)
		rts.Equal(int64(i), r.CopyID, "lowest available copy first")
	}
	_, err := rts.Rentals.RentBook(rts.Ctx, member, "111")
	rts.Equal(cerr.KindRentalLimitExceeded, cerr.KindOf(err), "4th rent: %v", err)
	rts.EqualError(err, "[422] member 1 already has 3 open rentals (limit is 3)")

	_, err = rts.Rentals.ReturnCopy(rts.Ctx, member, 2)
	rts.Require().NoError(err, "returning copy 2")
	r, err := rts.Rentals.RentBook(rts.Ctx, member, "111")
	rts.Require().NoError(err, "4th rent after a return")
	rts.Equal(int64(2), r.CopyID)

	open, err := rts.Rentals.OpenRentals(rts.Ctx, member)
	rts.Require().NoError(err)
	rts.Len(open, 3)
	var copyIDs []int64
	for _, o := range open {
		copyIDs = append(copyIDs, o.CopyID)
		rts.Positive(o.ID)
		rts.Equal(member, o.MemberID)
		rts.False(o.Returned)
		rts.Equal("111", o.ISBN)
		rts.Equal("Many Copies", o.Title)
	}
	rts.Equal([]int64{1, 3, 2}, copyIDs, "ordered by rental")
	rts.checkCopyRentals("111")
}

func (rts *RentalsTestSuite) TestConfiguredRentalLimit() {
	rts.addBook("111", "Two Copies", 2)
	member := rts.addMember("grace")
	uc := rts.newUseCase(rentaluc.WithRentalLimit(1))
	rts.Equal(1, uc.RentalLimit())
	_, err := uc.RentBook(rts.Ctx, member, "111")
	rts.Require().NoError(err)
	_, err = uc.RentBook(rts.Ctx, member, "111")
	rts.Equal(cerr.KindRentalLimitExceeded, cerr.KindOf(err))
}

func (rts *RentalsTestSuite) TestReturnWithoutRental() {
	rts.addBook("111", "Untouched", 2)
	ada := rts.addMember("ada")
	alan := rts.addMember("alan")
	_, err := rts.Rentals.ReturnCopy(rts.Ctx, ada, 1)
	rts.Equal(cerr.KindNotFound, cerr.KindOf(err))
	rts.EqualError(err, "[404] member 1 has no open rental for copy 1")

	_, err = rts.Rentals.RentCopy(rts.Ctx, alan, 2)
	rts.Require().NoError(err)
	_, err = rts.Rentals.ReturnCopy(rts.Ctx, ada, 2)
	rts.Equal(cerr.KindNotFound, cerr.KindOf(err), "copy of another member")
	rts.False(rts.copyAvailable(2), "failed return may not change state")
	rts.True(rts.copyAvailable(1))
	rts.Equal(map[int64]int64{2: 1}, rts.openRentalsPerCopy())
	rts.checkCopyRentals("111")
}

func (rts *RentalsTestSuite) TestRentByTitleAndReturnBook() {
	rts.addBook("111", "The Test Book", 3)
	member := rts.addMember("ada")
	r1, err := rts.Rentals.RentByTitle(rts.Ctx, member, "  the TEST book ")
	rts.Require().NoError(err)
	rts.Equal(int64(1), r1.CopyID)
	r2, err := rts.Rentals.RentByTitle(rts.Ctx, member, "The Test Book")
	rts.Require().NoError(err)
	rts.Equal(int64(2), r2.CopyID)

	ids, err := rts.Rentals.AvailableCopies(rts.Ctx, "111")
	rts.Require().NoError(err)
	rts.Equal([]int64{3}, ids)

	closed, err := rts.Rentals.ReturnBook(rts.Ctx, member, "111")
	rts.Require().NoError(err)
	rts.Equal(r1.ID, closed.ID, "the oldest rental is closed first")
	rts.True(rts.copyAvailable(1))
	rts.False(rts.copyAvailable(2))

	open, err := rts.Rentals.ListOpen(rts.Ctx)
	rts.Require().NoError(err)
	if rts.Len(open, 1) {
		rts.Equal(r2.ID, open[0].ID)
		rts.Equal(int64(2), open[0].CopyID)
		rts.Equal(member, open[0].MemberID)
		rts.False(open[0].Returned)
		rts.Equal("111", open[0].ISBN)
		rts.Equal("ada Tester", open[0].MemberName)
	}
	rts.checkCopyRentals("111")

	hist, err := rts.Rentals.History(rts.Ctx, "111")
	rts.Require().NoError(err)
	if rts.Len(hist, 2) {
		rts.Equal(r1.ID, hist[0].ID)
		rts.True(hist[0].Returned)
		rts.Equal(r2.ID, hist[1].ID)
		rts.False(hist[1].Returned)
		rts.Nil(hist[1].ReturnedAt)
	}

	_, err = rts.Rentals.RentByTitle(rts.Ctx, member, "Missing Book")
	rts.Equal(cerr.KindNotFound, cerr.KindOf(err))
	rts.EqualError(err, `[404] book titled "Missing Book" not found`)
}

func (rts *RentalsTestSuite) TestRentFailures() {
	rts.addBook("111", "Single", 1)
	member := rts.addMember("ada")
	for _, tc := range []struct {
		name     string
		memberID int64
		sel      rentaluc.Selector
		kind     cerr.Kind
	}{
		{"missing member", 99, rentaluc.Selector{CopyID: 1}, cerr.KindNotFound},
		{"missing copy", member, rentaluc.Selector{CopyID: 99}, cerr.KindNotFound},
		{"missing book", member, rentaluc.Selector{ISBN: "999"}, cerr.KindNotFound},
		{"no selector", member, rentaluc.Selector{}, cerr.KindValidation},
		{"two selectors", member, rentaluc.Selector{CopyID: 1, ISBN: "111"}, cerr.KindValidation},
		{"bad member id", 0, rentaluc.Selector{CopyID: 1}, cerr.KindValidation},
	} {
		rts.Run(tc.name, func() {
			r, err := rts.Rentals.Rent(rts.Ctx, tc.memberID, tc.sel)
			rts.Nil(r)
			rts.Equal(tc.kind, cerr.KindOf(err), "error: %v", err)
		})
	}
	rts.True(rts.copyAvailable(1), "failed rents may not change state")

	_, err := rts.Rentals.RentBook(rts.Ctx, member, "111")
	rts.Require().NoError(err)
	_, err = rts.Rentals.RentBook(rts.Ctx, member, "111")
	rts.Equal(cerr.KindUnavailable, cerr.KindOf(err))
	rts.EqualError(err, `[409] no copy of book "111" is available`)
}

func (rts *RentalsTestSuite) TestConcurrentRentOfLastCopy() {
	rts.addBook("222", "Last Copy", 1)
	const racers = 8
	members := make([]int64, racers)
	for i := range members {
		members[i] = rts.addMember(fmt.Sprintf("racer%d", i))
	}
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := range members {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rts.Rentals.RentBook(rts.Ctx, members[i], "222")
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		rts.Equal(cerr.KindUnavailable, cerr.KindOf(err), "racer %d: %v", i, err)
	}
	rts.Equal(1, succeeded, "exactly one racer must rent the copy")
	rts.Equal(map[int64]int64{1: 1}, rts.openRentalsPerCopy())
	rts.False(rts.copyAvailable(1))
	rts.checkCopyRentals("222")
}

func (rts *RentalsTestSuite) TestConcurrentRentAndReturnKeepInvariant() {
	rts.addBook("333", "Busy Book", 2)
	const workers = 6
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		member := rts.addMember(fmt.Sprintf("worker%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				r, err := rts.Rentals.RentBook(rts.Ctx, member, "333")
				if err != nil {
					assert.Equal(rts.T(), cerr.KindUnavailable, cerr.KindOf(err))
					continue
				}
				_, err = rts.Rentals.ReturnCopy(rts.Ctx, member, r.CopyID)
				assert.NoError(rts.T(), err)
			}
		}()
	}
	wg.Wait()
	rts.Empty(rts.openRentalsPerCopy())
	ids, err := rts.Rentals.AvailableCopies(rts.Ctx, "333")
	rts.Require().NoError(err)
	rts.Equal([]int64{1, 2}, ids)
	rts.checkCopyRentals("333")
}

func TestOptions(t *testing.T) {
	_, err := rentaluc.New(nil, nil, nil, nil, nil, rentaluc.WithRentalLimit(0))
	assert.ErrorContains(t, err, "rental limit (0) is not positive")
	_, err = rentaluc.New(
		nil, nil, nil, nil, nil,
		rentaluc.WithRentalLimit(2), rentaluc.WithRentalLimit(4),
	)
	assert.ErrorContains(t, err, "rental limit is already configured")
	_, err = rentaluc.New(nil, nil, nil, nil, nil, rentaluc.WithClock(nil))
	assert.ErrorContains(t, err, "clock function is nil")
	uc, err := rentaluc.New(nil, nil, nil, nil, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, rentaluc.DefaultRentalLimit, uc.RentalLimit())
	}
}
