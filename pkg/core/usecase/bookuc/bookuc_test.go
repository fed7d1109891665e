// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bookuc_test

import (
	"context"
	"testing"

	"github.com/momeni/libweb/internal/test/sqlitedb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/booksrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/copiesrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/membersrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/rentalsrp"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
	"github.com/momeni/libweb/pkg/core/usecase/rentaluc"
	"github.com/stretchr/testify/suite"
)

const (
	hobbit = "9780261103344"
	dune   = "9780441172719"
	pride  = "9780141439518"
)

type BooksTestSuite struct {
	suite.Suite

	Ctx     context.Context
	Books   *bookuc.UseCase
	Rentals *rentaluc.UseCase
}

func TestBooksTestSuite(t *testing.T) {
	suite.Run(t, &BooksTestSuite{Ctx: context.Background()})
}

func (bts *BooksTestSuite) SetupTest() {
	pool := sqlitedb.New(bts.Ctx, bts.T(), true)
	bts.Books = bookuc.New(
		pool, booksrp.New(), copiesrp.New(), rentalsrp.New(),
	)
	var err error
	bts.Rentals, err = rentaluc.New(
		pool,
		membersrp.New(), booksrp.New(), copiesrp.New(), rentalsrp.New(),
	)
	bts.Require().NoError(err)
}

func (bts *BooksTestSuite) TestList() {
	bcs, err := bts.Books.List(bts.Ctx)
	bts.Require().NoError(err)
	titles := make([]string, 0, len(bcs))
	for _, bc := range bcs {
		titles = append(titles, bc.Title)
	}
	bts.Equal([]string{
		"A Brief History of Time", "Dune", "Pride and Prejudice",
		"The Hobbit",
	}, titles)
	h := bcs[3]
	bts.Equal(hobbit, h.ISBN)
	bts.Equal([]string{"Fantasy", "Fiction"}, h.Genres)
	bts.Equal(3, h.TotalCopies)
	bts.Equal(3, h.AvailableCopies)
}

func (bts *BooksTestSuite) TestCreateNormalizesGenres() {
	bc, err := bts.Books.Create(bts.Ctx, &model.Book{
		ISBN:            " 9780547928227 ",
		Title:           "The Hobbit (Illustrated)",
		Author:          "J. R. R. Tolkien",
		PublicationYear: 2012,
		Genres:          []string{" fantasy ,  Epic   Quest", "FANTASY", ""},
	}, 0)
	bts.Require().NoError(err)
	bts.Equal("9780547928227", bc.ISBN)
	bts.Equal([]string{"Epic Quest", "Fantasy"}, bc.Genres)
	bts.Equal(1, bc.TotalCopies, "at least one copy is created")
	bts.Equal(1, bc.AvailableCopies)

	gs, err := bts.Books.Genres(bts.Ctx)
	bts.Require().NoError(err)
	bts.Contains(gs, "Epic Quest")
	bts.NotContains(gs, "fantasy", "existing genres are reused")

	b := bc.Book
	b.Genres = []string{"Fiction"}
	saved, err := bts.Books.Update(bts.Ctx, &b)
	bts.Require().NoError(err)
	bts.Equal([]string{"Fiction"}, saved.Genres)
	gs, err = bts.Books.Genres(bts.Ctx)
	bts.Require().NoError(err)
	bts.NotContains(gs, "Epic Quest", "orphan genres are removed")
	bts.Contains(gs, "Fantasy", "default genres are kept")

	b.Genres = nil
	b.Title = "The Hobbit: Illustrated"
	saved, err = bts.Books.Update(bts.Ctx, &b)
	bts.Require().NoError(err)
	bts.Equal("The Hobbit: Illustrated", saved.Title)
	bts.Equal([]string{"Fiction"}, saved.Genres, "nil genres are kept")
}

func (bts *BooksTestSuite) TestCreateFailures() {
	_, err := bts.Books.Create(bts.Ctx, &model.Book{
		ISBN:            dune,
		Title:           "Dune Again",
		Author:          "Frank Herbert",
		PublicationYear: 1965,
	}, 2)
	bts.Equal(cerr.KindConflict, cerr.KindOf(err))
	bts.EqualError(err, "[409] ISBN must be unique")

	_, err = bts.Books.Create(bts.Ctx, &model.Book{ISBN: "123"}, 1)
	bts.Equal(cerr.KindValidation, cerr.KindOf(err))

	_, err = bts.Books.Update(bts.Ctx, &model.Book{
		ISBN: "123", Title: "x", Author: "y", PublicationYear: 2000,
	})
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (bts *BooksTestSuite) TestFindAndSearch() {
	b, err := bts.Books.FindByTitle(bts.Ctx, "  dune ")
	bts.Require().NoError(err)
	bts.Equal(dune, b.ISBN)
	_, err = bts.Books.FindByTitle(bts.Ctx, "Dun")
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))

	bs, err := bts.Books.Search(bts.Ctx, "TOLKIEN")
	bts.Require().NoError(err)
	if bts.Len(bs, 1) {
		bts.Equal(hobbit, bs[0].ISBN)
	}
	bs, err = bts.Books.Search(bts.Ctx, "978014")
	bts.Require().NoError(err)
	if bts.Len(bs, 1) {
		bts.Equal(pride, bs[0].ISBN)
	}
	bs, err = bts.Books.Search(bts.Ctx, "")
	bts.Require().NoError(err)
	bts.Len(bs, 4)
}

func (bts *BooksTestSuite) TestDetailsAndDelete() {
	r, err := bts.Rentals.RentBook(bts.Ctx, 1, dune)
	bts.Require().NoError(err)
	bts.Equal(int64(4), r.CopyID)

	d, err := bts.Books.Details(bts.Ctx, dune)
	bts.Require().NoError(err)
	bts.Equal(2, d.Book.TotalCopies)
	bts.Equal(1, d.Book.AvailableCopies)
	bts.Equal(1, d.CurrentlyBorrowed)
	bts.Equal(1, d.TotalRentals)
	if bts.Len(d.RentalHistory, 1) {
		bts.Equal("Ada Lovelace", d.RentalHistory[0].MemberName)
	}

	rented, err := bts.Books.ListRented(bts.Ctx)
	bts.Require().NoError(err)
	if bts.Len(rented, 1) {
		bts.Equal(int64(4), rented[0].ID)
		bts.Equal("Dune", rented[0].Title)
		bts.Equal(model.CopyBorrowed, rented[0].State())
	}

	cp, err := bts.Books.GetCopy(bts.Ctx, 4)
	bts.Require().NoError(err)
	bts.Equal(int64(4), cp.ID)
	bts.Equal(dune, cp.ISBN)
	bts.Equal("Dune", cp.Title)
	bts.False(cp.Available)
	cp, err = bts.Books.GetCopy(bts.Ctx, 5)
	bts.Require().NoError(err)
	bts.True(cp.Available)

	_, err = bts.Rentals.ReturnCopy(bts.Ctx, 1, 4)
	bts.Require().NoError(err)
	d, err = bts.Books.Details(bts.Ctx, dune)
	bts.Require().NoError(err)
	bts.Equal(2, d.Book.AvailableCopies)
	bts.Equal(0, d.CurrentlyBorrowed, "returned rentals are closed")
	bts.Equal(1, d.TotalRentals)
	if bts.Len(d.RentalHistory, 1) {
		bts.Equal(r.ID, d.RentalHistory[0].ID)
		bts.Equal(int64(4), d.RentalHistory[0].CopyID)
		bts.True(d.RentalHistory[0].Returned)
	}

	err = bts.Books.Delete(bts.Ctx, dune)
	bts.Equal(cerr.KindConflict, cerr.KindOf(err))
	err = bts.Books.DeleteCopy(bts.Ctx, 4)
	bts.Equal(cerr.KindConflict, cerr.KindOf(err))

	bts.Require().NoError(bts.Books.Delete(bts.Ctx, pride))
	_, err = bts.Books.Get(bts.Ctx, pride)
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))
	_, err = bts.Books.GetCopy(bts.Ctx, 6)
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err), "copies are deleted too")
	gs, err := bts.Books.Genres(bts.Ctx)
	bts.Require().NoError(err)
	bts.Contains(gs, "Romance")
	err = bts.Books.Delete(bts.Ctx, pride)
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (bts *BooksTestSuite) TestCopies() {
	cp, err := bts.Books.AddCopy(bts.Ctx, dune)
	bts.Require().NoError(err)
	bts.Equal(int64(8), cp.ID)
	bts.True(cp.Available)
	_, err = bts.Books.AddCopy(bts.Ctx, "123")
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))

	_, err = bts.Rentals.RentCopy(bts.Ctx, 2, 5)
	bts.Require().NoError(err)
	cs, err := bts.Books.ListCopies(bts.Ctx, dune, true)
	bts.Require().NoError(err)
	bts.Equal([]model.Copy{
		{ID: 4, ISBN: dune, Available: true},
		{ID: 8, ISBN: dune, Available: true},
	}, cs)
	cs, err = bts.Books.ListCopies(bts.Ctx, dune, false)
	bts.Require().NoError(err)
	bts.Len(cs, 3)

	sums, err := bts.Books.Summaries(bts.Ctx)
	bts.Require().NoError(err)
	for _, s := range sums {
		if s.ISBN == dune {
			bts.Equal(3, s.TotalCopies)
			bts.Equal(2, s.AvailableCopies)
		}
	}

	bts.Require().NoError(bts.Books.DeleteCopy(bts.Ctx, 8))
	err = bts.Books.DeleteCopy(bts.Ctx, 8)
	bts.Equal(cerr.KindNotFound, cerr.KindOf(err))
	err = bts.Books.DeleteCopy(bts.Ctx, 0)
	bts.Equal(cerr.KindValidation, cerr.KindOf(err))
}
