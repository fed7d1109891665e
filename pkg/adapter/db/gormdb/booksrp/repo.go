// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrp implements the repo.Books interface using GORM.
// It manages the books table and the genres which are linked to them.
package booksrp

import (
	"context"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*gormdb.Conn
}

func (books *Repo) Conn(c repo.Conn) repo.BooksConnQueryer {
	cc := c.(*gormdb.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) List(ctx context.Context) ([]model.Book, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) Get(ctx context.Context, isbn string) (*model.Book, error) {
	return Get(ctx, cq.Conn, isbn)
}

func (cq connQueryer) FindByTitle(ctx context.Context, title string) (*model.Book, error) {
	return FindByTitle(ctx, cq.Conn, title)
}

func (cq connQueryer) Search(ctx context.Context, query string) ([]model.Book, error) {
	return Search(ctx, cq.Conn, query)
}

func (cq connQueryer) Genres(ctx context.Context) ([]string, error) {
	return Genres(ctx, cq.Conn)
}

type txQueryer struct {
	*gormdb.Tx
}

func (books *Repo) Tx(tx repo.Tx) repo.BooksTxQueryer {
	tt := tx.(*gormdb.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) List(ctx context.Context) ([]model.Book, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Get(ctx context.Context, isbn string) (*model.Book, error) {
	return Get(ctx, tq.Tx, isbn)
}

func (tq txQueryer) FindByTitle(ctx context.Context, title string) (*model.Book, error) {
	return FindByTitle(ctx, tq.Tx, title)
}

func (tq txQueryer) Search(ctx context.Context, query string) ([]model.Book, error) {
	return Search(ctx, tq.Tx, query)
}

func (tq txQueryer) Genres(ctx context.Context) ([]string, error) {
	return Genres(ctx, tq.Tx)
}

func (tq txQueryer) Create(ctx context.Context, b *model.Book) error {
	return Create(ctx, tq.Tx, b)
}

func (tq txQueryer) Update(ctx context.Context, b *model.Book) error {
	return Update(ctx, tq.Tx, b)
}

func (tq txQueryer) Delete(ctx context.Context, isbn string) error {
	return Delete(ctx, tq.Tx, isbn)
}

func (tq txQueryer) HasRentalHistory(ctx context.Context, isbn string) (bool, error) {
	return HasRentalHistory(ctx, tq.Tx, isbn)
}
