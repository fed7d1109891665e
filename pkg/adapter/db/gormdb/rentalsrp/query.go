// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentalsrp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"gorm.io/gorm"
)

type gRental struct {
	RentalID   int64 `gorm:"primaryKey;column:rental_id"`
	MemberID   int64
	CopyID     int64
	RentedAt   time.Time
	Returned   bool
	ReturnedAt *time.Time
}

func (*gRental) TableName() string {
	return "rentals"
}

func (gr *gRental) Model() *model.Rental {
	r := &model.Rental{
		ID:       gr.RentalID,
		MemberID: gr.MemberID,
		CopyID:   gr.CopyID,
		RentedAt: gr.RentedAt.UTC(),
		Returned: gr.Returned,
	}
	if gr.ReturnedAt != nil {
		t := gr.ReturnedAt.UTC()
		r.ReturnedAt = &t
	}
	return r
}

// gRentalRow is the scan target of the joined rental queries.
// Columns which a query does not select are left empty.
// Rental columns are listed flat since Scan ignores embedded
// structs of unexported types.
type gRentalRow struct {
	RentalID    int64 `gorm:"column:rental_id"`
	MemberID    int64 `gorm:"column:member_id"`
	CopyID      int64 `gorm:"column:copy_id"`
	RentedAt    time.Time
	Returned    bool
	ReturnedAt  *time.Time
	ISBN        string `gorm:"column:isbn"`
	Title       string
	Author      string
	MemberName  string
	MemberEmail string
}

func (row *gRentalRow) Model() *model.Rental {
	gr := gRental{
		RentalID:   row.RentalID,
		MemberID:   row.MemberID,
		CopyID:     row.CopyID,
		RentedAt:   row.RentedAt,
		Returned:   row.Returned,
		ReturnedAt: row.ReturnedAt,
	}
	return gr.Model()
}

const rentalColumns = `r.rental_id, r.member_id, r.copy_id,
	r.rented_at, r.returned, r.returned_at`

const rentalJoins = ` FROM rentals r
JOIN copies c ON c.copy_id = r.copy_id
JOIN books b ON b.isbn = c.book_isbn
JOIN members m ON m.id = r.member_id`

// Create inserts an open rental of copyID copy for memberID member.
func Create[Q gormdb.Queryer](ctx context.Context, q Q, memberID, copyID int64, at time.Time) (*model.Rental, error) {
	gr := &gRental{MemberID: memberID, CopyID: copyID, RentedAt: at.UTC()}
	err := q.GORM(ctx).Create(gr).Error
	if hint, ok := gormdb.UniqueViolation(err); ok && strings.Contains(hint, "copy") {
		return nil, cerr.Unavailable(fmt.Errorf(
			"copy %d is already rented", copyID,
		))
	}
	switch {
	case gormdb.ForeignKeyViolation(err):
		return nil, cerr.NotFound(fmt.Errorf(
			"member %d or copy %d not found", memberID, copyID,
		))
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gr.Model(), nil
}

// Close marks the rentalID rental as returned at the given time.
// A rental which is missing or is returned already is reported as
// a not found error, so a return may not be performed twice.
func Close[Q gormdb.Queryer](ctx context.Context, q Q, rentalID int64, at time.Time) (*model.Rental, error) {
	at = at.UTC()
	gdb := q.GORM(ctx).Model(&gRental{}).Where(
		"rental_id = ? AND returned = ?", rentalID, false,
	).Updates(map[string]any{
		"returned":    true,
		"returned_at": at,
	})
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return nil, cerr.NotFound(fmt.Errorf(
			"open rental %d not found", rentalID,
		))
	}
	var gr gRental
	err := q.GORM(ctx).Take(&gr, "rental_id = ?", rentalID).Error
	if err != nil {
		return nil, fmt.Errorf("reading closed rental: %w", err)
	}
	return gr.Model(), nil
}

// FindOpenForCopy returns the open rental of the copyID copy, or nil
// if it is not rented.
func FindOpenForCopy[Q gormdb.Queryer](ctx context.Context, q Q, copyID int64) (*model.Rental, error) {
	return first(q.GORM(ctx).Where(
		"copy_id = ? AND returned = ?", copyID, false,
	))
}

// FindOpenForMember lists open rentals of memberID member with the
// rented book title and author, oldest first.
func FindOpenForMember[Q gormdb.Queryer](ctx context.Context, q Q, memberID int64) ([]model.MemberRental, error) {
	grs, err := scanRows(q.GORM(ctx).Raw(
		`SELECT `+rentalColumns+`, b.isbn, b.title, b.author`+rentalJoins+`
WHERE r.member_id = ? AND r.returned = ?
ORDER BY r.rented_at, r.rental_id`, memberID, false,
	))
	if err != nil {
		return nil, err
	}
	rs := make([]model.MemberRental, 0, len(grs))
	for i := range grs {
		rs = append(rs, model.MemberRental{
			Rental: *grs[i].Model(),
			ISBN:   grs[i].ISBN,
			Title:  grs[i].Title,
			Author: grs[i].Author,
		})
	}
	return rs, nil
}

// FindHistoryForBook lists all rentals of the isbn book copies with
// the renting member name and email, oldest first.
func FindHistoryForBook[Q gormdb.Queryer](ctx context.Context, q Q, isbn string) ([]model.RentalHistoryEntry, error) {
	grs, err := scanRows(q.GORM(ctx).Raw(
		`SELECT `+rentalColumns+`,
	m.first_name || ' ' || m.surname AS member_name,
	m.email AS member_email`+rentalJoins+`
WHERE c.book_isbn = ?
ORDER BY r.rented_at, r.rental_id`, isbn,
	))
	if err != nil {
		return nil, err
	}
	hs := make([]model.RentalHistoryEntry, 0, len(grs))
	for i := range grs {
		hs = append(hs, model.RentalHistoryEntry{
			Rental:      *grs[i].Model(),
			MemberName:  grs[i].MemberName,
			MemberEmail: grs[i].MemberEmail,
		})
	}
	return hs, nil
}

// CountOpenForMember counts open rentals of memberID member.
func CountOpenForMember[Q gormdb.Queryer](ctx context.Context, q Q, memberID int64) (int, error) {
	var n int64
	err := q.GORM(ctx).Model(&gRental{}).Where(
		"member_id = ? AND returned = ?", memberID, false,
	).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	return int(n), nil
}

// ListOpen lists all open rentals with their book and member names.
func ListOpen[Q gormdb.Queryer](ctx context.Context, q Q) ([]model.OpenRental, error) {
	grs, err := scanRows(q.GORM(ctx).Raw(
		`SELECT `+rentalColumns+`, b.isbn, b.title,
	m.first_name || ' ' || m.surname AS member_name`+rentalJoins+`
WHERE r.returned = ?
ORDER BY r.rented_at, r.rental_id`, false,
	))
	if err != nil {
		return nil, err
	}
	rs := make([]model.OpenRental, 0, len(grs))
	for i := range grs {
		rs = append(rs, model.OpenRental{
			Rental:     *grs[i].Model(),
			ISBN:       grs[i].ISBN,
			Title:      grs[i].Title,
			MemberName: grs[i].MemberName,
		})
	}
	return rs, nil
}

// LockOpenForMemberCopy locks the open rental of copyID copy if it is
// rented by memberID member, returning nil otherwise.
func LockOpenForMemberCopy[Q gormdb.Queryer](ctx context.Context, q Q, memberID, copyID int64) (*model.Rental, error) {
	return first(gormdb.ForUpdate(q.GORM(ctx), false).Where(
		"member_id = ? AND copy_id = ? AND returned = ?",
		memberID, copyID, false,
	))
}

// LockOpenForMemberBook locks the oldest open rental of memberID
// member for any copy of the isbn book.
func LockOpenForMemberBook[Q gormdb.Queryer](ctx context.Context, q Q, memberID int64, isbn string) (*model.Rental, error) {
	gdb := gormdb.ForUpdate(q.GORM(ctx), false).Select("rentals.*").Joins(
		"JOIN copies ON copies.copy_id = rentals.copy_id",
	).Where(
		"rentals.member_id = ? AND copies.book_isbn = ? AND rentals.returned = ?",
		memberID, isbn, false,
	).Order("rentals.rental_id")
	return first(gdb)
}

// first returns the first rental which matches gdb conditions, or
// nil if there is no such rental.
func first(gdb *gorm.DB) (*model.Rental, error) {
	var grs []gRental
	err := gdb.Limit(1).Find(&grs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(grs) == 0 {
		return nil, nil
	}
	return grs[0].Model(), nil
}

func scanRows(gdb *gorm.DB) ([]gRentalRow, error) {
	var grs []gRentalRow
	if err := gdb.Scan(&grs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return grs, nil
}
