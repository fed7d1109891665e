// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bookuc contains the catalogue UseCase. It manages books,
// their genres, and their physical copies. Availability of a book is
// derived from the availability flags of its copies.
package bookuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/usecase/validation"
)

// UseCase represents the catalogue use case.
type UseCase struct {
	pool      repo.Pool
	booksrp   repo.Books
	copiesrp  repo.Copies
	rentalsrp repo.Rentals
	validator *validation.Validator
}

// New instantiates a catalogue use case.
func New(p repo.Pool, b repo.Books, c repo.Copies, r repo.Rentals) *UseCase {
	return &UseCase{
		pool:      p,
		booksrp:   b,
		copiesrp:  c,
		rentalsrp: r,
		validator: validation.New(),
	}
}

// List returns all books, ordered by title, with their genres and
// copy counts.
func (books *UseCase) List(ctx context.Context) (bcs []model.BookCopies, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bs, err := books.booksrp.Conn(c).List(ctx)
		if err != nil {
			return err
		}
		sums, err := books.copiesrp.Conn(c).Summaries(ctx)
		if err != nil {
			return err
		}
		counts := make(map[string]model.BookCopies, len(sums))
		for _, s := range sums {
			counts[s.ISBN] = s
		}
		bcs = make([]model.BookCopies, 0, len(bs))
		for _, b := range bs {
			s := counts[b.ISBN]
			bcs = append(bcs, model.BookCopies{
				Book:            b,
				TotalCopies:     s.TotalCopies,
				AvailableCopies: s.AvailableCopies,
			})
		}
		return nil
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return bcs, nil
}

func (books *UseCase) Get(ctx context.Context, isbn string) (b *model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err = books.booksrp.Conn(c).Get(ctx, strings.TrimSpace(isbn))
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return b, nil
}

// Details returns the isbn book with its copy counts and its complete
// rental history.
func (books *UseCase) Details(ctx context.Context, isbn string) (d *model.BookDetails, err error) {
	isbn = strings.TrimSpace(isbn)
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err := books.booksrp.Conn(c).Get(ctx, isbn)
		if err != nil {
			return err
		}
		copies, err := books.copiesrp.Conn(c).ListForBook(ctx, isbn)
		if err != nil {
			return err
		}
		hist, err := books.rentalsrp.Conn(c).FindHistoryForBook(ctx, isbn)
		if err != nil {
			return err
		}
		d = &model.BookDetails{
			Book:          model.BookCopies{Book: *b},
			RentalHistory: hist,
			TotalRentals:  len(hist),
		}
		d.Book.TotalCopies = len(copies)
		for _, cp := range copies {
			if cp.Available {
				d.Book.AvailableCopies++
			}
		}
		for _, h := range hist {
			if h.Open() {
				d.CurrentlyBorrowed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return d, nil
}

// FindByTitle returns the book whose title matches the given title
// case-insensitively.
func (books *UseCase) FindByTitle(ctx context.Context, title string) (b *model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err = books.booksrp.Conn(c).FindByTitle(ctx, title)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	if b == nil {
		return nil, cerr.NotFound(fmt.Errorf(
			"book titled %q not found", strings.TrimSpace(title),
		))
	}
	return b, nil
}

// Search finds books whose title, author, or ISBN contains the query.
// An empty query matches all books.
func (books *UseCase) Search(ctx context.Context, query string) (bs []model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bs, err = books.booksrp.Conn(c).Search(ctx, query)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return bs, nil
}

// Genres lists the names of all known genres.
func (books *UseCase) Genres(ctx context.Context) (gs []string, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		gs, err = books.booksrp.Conn(c).Genres(ctx)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return gs, nil
}

// Create validates and inserts b with the given number of available
// copies. A non-positive copies asks for a single copy.
func (books *UseCase) Create(ctx context.Context, b *model.Book, copies int) (bc *model.BookCopies, err error) {
	normalize(b)
	if err = books.validator.Struct(b); err != nil {
		return nil, err
	}
	if copies <= 0 {
		copies = 1
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			bq := books.booksrp.Tx(tx)
			if err := bq.Create(ctx, b); err != nil {
				return err
			}
			cq := books.copiesrp.Tx(tx)
			for i := 0; i < copies; i++ {
				if _, err := cq.Create(ctx, b.ISBN, true); err != nil {
					return err
				}
			}
			saved, err := bq.Get(ctx, b.ISBN)
			if err != nil {
				return err
			}
			bc = &model.BookCopies{
				Book:            *saved,
				TotalCopies:     copies,
				AvailableCopies: copies,
			}
			return nil
		})
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	log.Info(
		ctx, "book created",
		log.ISBN(b.ISBN), slog.Int("copies", copies),
	)
	return bc, nil
}

// Update overwrites the b.ISBN book attributes. Its genres are
// replaced when b.Genres is not nil.
func (books *UseCase) Update(ctx context.Context, b *model.Book) (saved *model.Book, err error) {
	normalize(b)
	if err = books.validator.Struct(b); err != nil {
		return nil, err
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			bq := books.booksrp.Tx(tx)
			if err := bq.Update(ctx, b); err != nil {
				return err
			}
			saved, err = bq.Get(ctx, b.ISBN)
			return err
		})
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return saved, nil
}

// Delete removes the isbn book and its copies. A book whose copies
// were ever rented may not be deleted.
func (books *UseCase) Delete(ctx context.Context, isbn string) error {
	isbn = strings.TrimSpace(isbn)
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return books.booksrp.Tx(tx).Delete(ctx, isbn)
		})
	})
	if err != nil {
		return cerr.OrStorage(err)
	}
	log.Info(ctx, "book deleted", log.ISBN(isbn))
	return nil
}

// AddCopy adds an available copy of the isbn book.
func (books *UseCase) AddCopy(ctx context.Context, isbn string) (cp *model.Copy, err error) {
	isbn = strings.TrimSpace(isbn)
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if _, err := books.booksrp.Tx(tx).Get(ctx, isbn); err != nil {
				return err
			}
			cp, err = books.copiesrp.Tx(tx).Create(ctx, isbn, true)
			return err
		})
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	log.Info(
		ctx, "copy added",
		log.ISBN(isbn), log.ID("copy_id", cp.ID),
	)
	return cp, nil
}

// DeleteCopy removes the copyID copy unless it was ever rented.
func (books *UseCase) DeleteCopy(ctx context.Context, copyID int64) error {
	if copyID <= 0 {
		return cerr.BadRequest(errors.New("copy id must be positive"))
	}
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return books.copiesrp.Tx(tx).Delete(ctx, copyID)
		})
	})
	if err != nil {
		return cerr.OrStorage(err)
	}
	log.Info(ctx, "copy deleted", log.ID("copy_id", copyID))
	return nil
}

// ListCopies lists all copies of the isbn book. If availableOnly is
// true, borrowed copies are skipped.
func (books *UseCase) ListCopies(ctx context.Context, isbn string, availableOnly bool) (cs []model.Copy, err error) {
	isbn = strings.TrimSpace(isbn)
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := books.booksrp.Conn(c).Get(ctx, isbn); err != nil {
			return err
		}
		cq := books.copiesrp.Conn(c)
		if availableOnly {
			cs, err = cq.ListAvailableForBook(ctx, isbn)
		} else {
			cs, err = cq.ListForBook(ctx, isbn)
		}
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return cs, nil
}

func (books *UseCase) GetCopy(ctx context.Context, copyID int64) (cd *model.CopyDetails, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		cd, err = books.copiesrp.Conn(c).GetDetails(ctx, copyID)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return cd, nil
}

// ListRented lists copies which are borrowed right now.
func (books *UseCase) ListRented(ctx context.Context) (cds []model.CopyDetails, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		cds, err = books.copiesrp.Conn(c).ListRented(ctx)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return cds, nil
}

// Summaries returns the copy counts of all books, without genres.
func (books *UseCase) Summaries(ctx context.Context) (bcs []model.BookCopies, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bcs, err = books.copiesrp.Conn(c).Summaries(ctx)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return bcs, nil
}

func normalize(b *model.Book) {
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Description = strings.TrimSpace(b.Description)
	if b.Genres != nil {
		b.Genres = model.ParseGenres(b.Genres...)
		if b.Genres == nil {
			b.Genres = []string{}
		}
	}
}
