// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package copiesrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"gorm.io/gorm"
)

type gCopy struct {
	CopyID    int64  `gorm:"primaryKey;column:copy_id"`
	BookISBN  string `gorm:"column:book_isbn"`
	Available bool
}

func (*gCopy) TableName() string {
	return "copies"
}

func (gc *gCopy) Model() *model.Copy {
	return &model.Copy{
		ID:        gc.CopyID,
		ISBN:      gc.BookISBN,
		Available: gc.Available,
	}
}

// gCopyDetails is the scan target of detailsQuery. Its copy columns
// are listed flat since Scan ignores embedded unexported structs.
type gCopyDetails struct {
	CopyID    int64  `gorm:"column:copy_id"`
	BookISBN  string `gorm:"column:book_isbn"`
	Available bool
	Title     string
	Author    string
}

func (gd *gCopyDetails) Model() model.CopyDetails {
	gc := gCopy{
		CopyID:    gd.CopyID,
		BookISBN:  gd.BookISBN,
		Available: gd.Available,
	}
	return model.CopyDetails{
		Copy:   *gc.Model(),
		Title:  gd.Title,
		Author: gd.Author,
	}
}

type gBookCopies struct {
	ISBN            string `gorm:"column:isbn"`
	Title           string
	Author          string
	PublicationYear int
	Description     string
	TotalCopies     int
	AvailableCopies int
}

const detailsQuery = `SELECT c.copy_id, c.book_isbn, c.available, b.title, b.author
FROM copies c JOIN books b ON b.isbn = c.book_isbn`

func notFound(copyID int64) error {
	return cerr.NotFound(fmt.Errorf("copy %d not found", copyID))
}

// ListForBook lists copies of the isbn book ordered by their IDs,
// keeping only the available ones if availableOnly is true.
func ListForBook[Q gormdb.Queryer](ctx context.Context, q Q, isbn string, availableOnly bool) ([]model.Copy, error) {
	gdb := q.GORM(ctx).Where("book_isbn = ?", isbn)
	if availableOnly {
		gdb = gdb.Where("available = ?", true)
	}
	var gcs []gCopy
	if err := gdb.Order("copy_id").Find(&gcs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	copies := make([]model.Copy, 0, len(gcs))
	for i := range gcs {
		copies = append(copies, *gcs[i].Model())
	}
	return copies, nil
}

// Get reads the copyID copy, locking it if lock is true.
func Get[Q gormdb.Queryer](ctx context.Context, q Q, copyID int64, lock bool) (*model.Copy, error) {
	gdb := q.GORM(ctx)
	if lock {
		gdb = gormdb.ForUpdate(gdb, false)
	}
	var gc gCopy
	err := gdb.Take(&gc, "copy_id = ?", copyID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound(copyID)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gc.Model(), nil
}

// GetDetails reads the copyID copy along with its book title and author.
func GetDetails[Q gormdb.Queryer](ctx context.Context, q Q, copyID int64) (*model.CopyDetails, error) {
	var gds []gCopyDetails
	err := q.GORM(ctx).Raw(
		detailsQuery+" WHERE c.copy_id = ?", copyID,
	).Scan(&gds).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gds) == 0 {
		return nil, notFound(copyID)
	}
	d := gds[0].Model()
	return &d, nil
}

// ListRented lists the borrowed copies with their book titles.
func ListRented[Q gormdb.Queryer](ctx context.Context, q Q) ([]model.CopyDetails, error) {
	var gds []gCopyDetails
	err := q.GORM(ctx).Raw(
		detailsQuery+" WHERE c.available = ? ORDER BY c.copy_id", false,
	).Scan(&gds).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ds := make([]model.CopyDetails, 0, len(gds))
	for i := range gds {
		ds = append(ds, gds[i].Model())
	}
	return ds, nil
}

// Summaries lists all books with their total and available copy counts.
func Summaries[Q gormdb.Queryer](ctx context.Context, q Q) ([]model.BookCopies, error) {
	var gbs []gBookCopies
	err := q.GORM(ctx).Raw(`SELECT b.isbn, b.title, b.author,
	b.publication_year, b.description,
	COUNT(c.copy_id) AS total_copies,
	COALESCE(SUM(CASE WHEN c.available THEN 1 ELSE 0 END), 0) AS available_copies
FROM books b LEFT JOIN copies c ON c.book_isbn = b.isbn
GROUP BY b.isbn, b.title, b.author, b.publication_year, b.description
ORDER BY b.title, b.isbn`).Scan(&gbs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	bs := make([]model.BookCopies, 0, len(gbs))
	for _, gb := range gbs {
		bs = append(bs, model.BookCopies{
			Book: model.Book{
				ISBN:            gb.ISBN,
				Title:           gb.Title,
				Author:          gb.Author,
				PublicationYear: gb.PublicationYear,
				Description:     gb.Description,
			},
			TotalCopies:     gb.TotalCopies,
			AvailableCopies: gb.AvailableCopies,
		})
	}
	return bs, nil
}

// SetAvailability updates the availability flag of the copyID copy.
func SetAvailability[Q gormdb.Queryer](ctx context.Context, q Q, copyID int64, available bool) error {
	gdb := q.GORM(ctx).Model(&gCopy{}).Where(
		"copy_id = ?", copyID,
	).Update("available", available)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(copyID)
	}
	return nil
}

// Create adds a copy of the isbn book, reporting a missing book as
// a not found error.
func Create[Q gormdb.Queryer](ctx context.Context, q Q, isbn string, available bool) (*model.Copy, error) {
	gc := &gCopy{BookISBN: isbn, Available: available}
	err := q.GORM(ctx).Create(gc).Error
	switch {
	case gormdb.ForeignKeyViolation(err):
		return nil, cerr.NotFound(fmt.Errorf("book %q not found", isbn))
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gc.Model(), nil
}

// Delete removes the copyID copy unless it has been rented before.
func Delete[Q gormdb.Queryer](ctx context.Context, q Q, copyID int64) error {
	var rentals int64
	err := q.GORM(ctx).Table("rentals").Where(
		"copy_id = ?", copyID,
	).Count(&rentals).Error
	if err != nil {
		return fmt.Errorf("counting rentals: %w", err)
	}
	if rentals > 0 {
		return cerr.Conflict(fmt.Errorf(
			"copy %d has rental history and cannot be deleted", copyID,
		))
	}
	gdb := q.GORM(ctx).Delete(&gCopy{}, "copy_id = ?", copyID)
	switch err := gdb.Error; {
	case gormdb.ForeignKeyViolation(err):
		return cerr.Conflict(fmt.Errorf(
			"copy %d has rental history and cannot be deleted", copyID,
		))
	case err != nil:
		return fmt.Errorf("query: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(copyID)
	}
	return nil
}

// LockFirstAvailable locks the available copy of the isbn book with the
// lowest ID, skipping copies which are locked by other transactions.
// It returns nil if there is no such copy.
func LockFirstAvailable[Q gormdb.Queryer](ctx context.Context, q Q, isbn string) (*model.Copy, error) {
	var gcs []gCopy
	err := gormdb.ForUpdate(q.GORM(ctx), true).Where(
		"book_isbn = ? AND available = ?", isbn, true,
	).Order("copy_id").Limit(1).Find(&gcs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gcs) == 0 {
		return nil, nil
	}
	return gcs[0].Model(), nil
}
