// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"gorm.io/gorm"
)

type gBook struct {
	ISBN            string `gorm:"primaryKey;column:isbn"`
	Title           string
	Author          string
	PublicationYear int
	Description     string
}

func (*gBook) TableName() string {
	return "books"
}

func (gb *gBook) Model() model.Book {
	return model.Book{
		ISBN:            gb.ISBN,
		Title:           gb.Title,
		Author:          gb.Author,
		PublicationYear: gb.PublicationYear,
		Description:     gb.Description,
		Genres:          []string{},
	}
}

type gGenre struct {
	GenreID int64 `gorm:"primaryKey;column:genre_id"`
	Name    string
}

func (*gGenre) TableName() string {
	return "genres"
}

type gBookGenre struct {
	ISBN    string `gorm:"primaryKey;column:isbn"`
	GenreID int64  `gorm:"primaryKey;column:genre_id"`
}

func (*gBookGenre) TableName() string {
	return "book_genres"
}

type gGenreLink struct {
	ISBN string `gorm:"column:isbn"`
	Name string
}

func List[Q gormdb.Queryer](ctx context.Context, q Q) ([]model.Book, error) {
	return find(ctx, q, q.GORM(ctx))
}

func Get[Q gormdb.Queryer](ctx context.Context, q Q, isbn string) (*model.Book, error) {
	var gb gBook
	err := q.GORM(ctx).Take(&gb, "isbn = ?", isbn).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, cerr.NotFound(fmt.Errorf("book %q not found", isbn))
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	bs := []model.Book{gb.Model()}
	if err = attachGenres(ctx, q, bs); err != nil {
		return nil, err
	}
	return &bs[0], nil
}

// FindByTitle returns the book whose title matches the given title
// case-insensitively, or nil if there is no such book. Among books
// with the same title, the smallest ISBN is chosen.
func FindByTitle[Q gormdb.Queryer](ctx context.Context, q Q, title string) (*model.Book, error) {
	bs, err := find(ctx, q, q.GORM(ctx).Where(
		"LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title)),
	).Order("isbn").Limit(1))
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, nil
	}
	return &bs[0], nil
}

func Search[Q gormdb.Queryer](ctx context.Context, q Q, query string) ([]model.Book, error) {
	p := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	return find(ctx, q, q.GORM(ctx).Where(
		"LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ?",
		p, p, p,
	))
}

func Genres[Q gormdb.Queryer](ctx context.Context, q Q) ([]string, error) {
	names := []string{}
	err := q.GORM(ctx).Model(&gGenre{}).Order("name").Pluck(
		"name", &names,
	).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return names, nil
}

func Create[Q gormdb.Queryer](ctx context.Context, q Q, b *model.Book) error {
	gb := &gBook{
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
	}
	err := q.GORM(ctx).Create(gb).Error
	if hint, ok := gormdb.UniqueViolation(err); ok && strings.Contains(hint, "books") {
		return cerr.Conflict(errors.New("ISBN must be unique"))
	}
	if err != nil {
		return fmt.Errorf("inserting book: %w", err)
	}
	return setGenres(ctx, q, b.ISBN, b.Genres)
}

// Update overwrites the b.ISBN book attributes. The genres are
// replaced only if b.Genres is not nil.
func Update[Q gormdb.Queryer](ctx context.Context, q Q, b *model.Book) error {
	gdb := q.GORM(ctx).Model(&gBook{}).Where("isbn = ?", b.ISBN).Updates(
		map[string]any{
			"title":            b.Title,
			"author":           b.Author,
			"publication_year": b.PublicationYear,
			"description":      b.Description,
		},
	)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(fmt.Errorf("book %q not found", b.ISBN))
	}
	if b.Genres == nil {
		return nil
	}
	if err := setGenres(ctx, q, b.ISBN, b.Genres); err != nil {
		return err
	}
	return deleteOrphanGenres(ctx, q)
}

// Delete removes the isbn book with its copies and genre links.
// Books whose copies were ever rented may not be deleted.
func Delete[Q gormdb.Queryer](ctx context.Context, q Q, isbn string) error {
	rented, err := HasRentalHistory(ctx, q, isbn)
	if err != nil {
		return err
	}
	if rented {
		return cerr.Conflict(fmt.Errorf(
			"book %q has rental history and cannot be deleted", isbn,
		))
	}
	err = q.GORM(ctx).Exec(
		"DELETE FROM copies WHERE book_isbn = ?", isbn,
	).Error
	if err != nil {
		return fmt.Errorf("deleting copies: %w", err)
	}
	err = q.GORM(ctx).Delete(&gBookGenre{}, "isbn = ?", isbn).Error
	if err != nil {
		return fmt.Errorf("deleting genre links: %w", err)
	}
	gdb := q.GORM(ctx).Delete(&gBook{}, "isbn = ?", isbn)
	if err = gdb.Error; err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(fmt.Errorf("book %q not found", isbn))
	}
	return deleteOrphanGenres(ctx, q)
}

func HasRentalHistory[Q gormdb.Queryer](ctx context.Context, q Q, isbn string) (bool, error) {
	var n int64
	err := q.GORM(ctx).Table("rentals").Joins(
		"JOIN copies ON copies.copy_id = rentals.copy_id",
	).Where("copies.book_isbn = ?", isbn).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("counting rentals: %w", err)
	}
	return n > 0, nil
}

func find[Q gormdb.Queryer](ctx context.Context, q Q, gdb *gorm.DB) ([]model.Book, error) {
	var gbs []gBook
	if err := gdb.Order("title").Order("isbn").Find(&gbs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	bs := make([]model.Book, 0, len(gbs))
	for i := range gbs {
		bs = append(bs, gbs[i].Model())
	}
	if err := attachGenres(ctx, q, bs); err != nil {
		return nil, err
	}
	return bs, nil
}

func attachGenres[Q gormdb.Queryer](ctx context.Context, q Q, bs []model.Book) error {
	if len(bs) == 0 {
		return nil
	}
	idx := make(map[string]int, len(bs))
	isbns := make([]string, 0, len(bs))
	for i, b := range bs {
		idx[b.ISBN] = i
		isbns = append(isbns, b.ISBN)
	}
	var links []gGenreLink
	err := q.GORM(ctx).Raw(`SELECT bg.isbn, g.name
FROM book_genres bg JOIN genres g ON g.genre_id = bg.genre_id
WHERE bg.isbn IN ? ORDER BY g.name`, isbns).Scan(&links).Error
	if err != nil {
		return fmt.Errorf("querying genres: %w", err)
	}
	for _, l := range links {
		i := idx[l.ISBN]
		bs[i].Genres = append(bs[i].Genres, l.Name)
	}
	return nil
}

// setGenres replaces the genres of the isbn book. Labels are matched
// with existing genres case-insensitively and missing ones are created.
func setGenres[Q gormdb.Queryer](ctx context.Context, q Q, isbn string, labels []string) error {
	err := q.GORM(ctx).Delete(&gBookGenre{}, "isbn = ?", isbn).Error
	if err != nil {
		return fmt.Errorf("deleting genre links: %w", err)
	}
	for _, label := range model.ParseGenres(labels...) {
		id, err := findOrCreateGenre(ctx, q, label)
		if err != nil {
			return err
		}
		err = q.GORM(ctx).Create(&gBookGenre{ISBN: isbn, GenreID: id}).Error
		if err != nil {
			return fmt.Errorf("linking genre %q: %w", label, err)
		}
	}
	return nil
}

func findOrCreateGenre[Q gormdb.Queryer](ctx context.Context, q Q, label string) (int64, error) {
	var gs []gGenre
	err := q.GORM(ctx).Where(
		"LOWER(name) = ?", strings.ToLower(label),
	).Limit(1).Find(&gs).Error
	if err != nil {
		return 0, fmt.Errorf("finding genre %q: %w", label, err)
	}
	if len(gs) > 0 {
		return gs[0].GenreID, nil
	}
	g := &gGenre{Name: label}
	if err = q.GORM(ctx).Create(g).Error; err != nil {
		return 0, fmt.Errorf("creating genre %q: %w", label, err)
	}
	return g.GenreID, nil
}

// deleteOrphanGenres drops genres which are not linked to any book,
// keeping the default genres.
func deleteOrphanGenres[Q gormdb.Queryer](ctx context.Context, q Q) error {
	var orphans []gGenre
	err := q.GORM(ctx).Where(
		"NOT EXISTS (SELECT 1 FROM book_genres bg WHERE bg.genre_id = genres.genre_id)",
	).Find(&orphans).Error
	if err != nil {
		return fmt.Errorf("finding orphan genres: %w", err)
	}
	var ids []int64
	for _, g := range orphans {
		if !model.IsDefaultGenre(g.Name) {
			ids = append(ids, g.GenreID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	err = q.GORM(ctx).Delete(&gGenre{}, "genre_id IN ?", ids).Error
	if err != nil {
		return fmt.Errorf("deleting orphan genres: %w", err)
	}
	return nil
}
