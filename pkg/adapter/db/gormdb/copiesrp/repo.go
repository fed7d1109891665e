// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package copiesrp implements the repo.Copies interface using GORM.
package copiesrp

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

func (copies *Repo) Conn(c repo.Conn) repo.CopiesConnQueryer {
	cc := c.(*gormdb.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) ListForBook(ctx context.Context, isbn string) ([]model.Copy, error) {
	return ListForBook(ctx, cq.Conn, isbn, false)
}

func (cq connQueryer) ListAvailableForBook(ctx context.Context, isbn string) ([]model.Copy, error) {
	return ListForBook(ctx, cq.Conn, isbn, true)
}

func (cq connQueryer) Get(ctx context.Context, copyID int64) (*model.Copy, error) {
	return Get(ctx, cq.Conn, copyID, false)
}

func (cq connQueryer) GetDetails(ctx context.Context, copyID int64) (*model.CopyDetails, error) {
	return GetDetails(ctx, cq.Conn, copyID)
}

func (cq connQueryer) ListRented(ctx context.Context) ([]model.CopyDetails, error) {
	return ListRented(ctx, cq.Conn)
}

func (cq connQueryer) Summaries(ctx context.Context) ([]model.BookCopies, error) {
	return Summaries(ctx, cq.Conn)
}

func (cq connQueryer) SetAvailability(ctx context.Context, copyID int64, available bool) error {
	return SetAvailability(ctx, cq.Conn, copyID, available)
}

func (cq connQueryer) Create(ctx context.Context, isbn string, available bool) (*model.Copy, error) {
	return Create(ctx, cq.Conn, isbn, available)
}

func (cq connQueryer) Delete(ctx context.Context, copyID int64) error {
	return Delete(ctx, cq.Conn, copyID)
}

type txQueryer struct {
	*gormdb.Tx
}

func (copies *Repo) Tx(tx repo.Tx) repo.CopiesTxQueryer {
	tt := tx.(*gormdb.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) ListForBook(ctx context.Context, isbn string) ([]model.Copy, error) {
	return ListForBook(ctx, tq.Tx, isbn, false)
}

func (tq txQueryer) ListAvailableForBook(ctx context.Context, isbn string) ([]model.Copy, error) {
	return ListForBook(ctx, tq.Tx, isbn, true)
}

func (tq txQueryer) Get(ctx context.Context, copyID int64) (*model.Copy, error) {
	return Get(ctx, tq.Tx, copyID, false)
}

func (tq txQueryer) GetDetails(ctx context.Context, copyID int64) (*model.CopyDetails, error) {
	return GetDetails(ctx, tq.Tx, copyID)
}

func (tq txQueryer) ListRented(ctx context.Context) ([]model.CopyDetails, error) {
	return ListRented(ctx, tq.Tx)
}

func (tq txQueryer) Summaries(ctx context.Context) ([]model.BookCopies, error) {
	return Summaries(ctx, tq.Tx)
}

func (tq txQueryer) SetAvailability(ctx context.Context, copyID int64, available bool) error {
	return SetAvailability(ctx, tq.Tx, copyID, available)
}

func (tq txQueryer) Create(ctx context.Context, isbn string, available bool) (*model.Copy, error) {
	return Create(ctx, tq.Tx, isbn, available)
}

func (tq txQueryer) Delete(ctx context.Context, copyID int64) error {
	return Delete(ctx, tq.Tx, copyID)
}

func (tq txQueryer) Lock(ctx context.Context, copyID int64) (*model.Copy, error) {
	return Get(ctx, tq.Tx, copyID, true)
}

func (tq txQueryer) LockFirstAvailable(ctx context.Context, isbn string) (*model.Copy, error) {
	return LockFirstAvailable(ctx, tq.Tx, isbn)
}
