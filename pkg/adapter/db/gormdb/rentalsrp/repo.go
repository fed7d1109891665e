// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentalsrp implements the repo.Rentals interface using GORM.
// Rentals are never deleted. Closing a rental keeps its row with the
// returned flag and the return timestamp.
package rentalsrp

import (
	"context"
	"time"

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

func (rentals *Repo) Conn(c repo.Conn) repo.RentalsConnQueryer {
	cc := c.(*gormdb.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Create(ctx context.Context, memberID, copyID int64, at time.Time) (*model.Rental, error) {
	return Create(ctx, cq.Conn, memberID, copyID, at)
}

func (cq connQueryer) Close(ctx context.Context, rentalID int64, at time.Time) (*model.Rental, error) {
	return Close(ctx, cq.Conn, rentalID, at)
}

func (cq connQueryer) FindOpenForCopy(ctx context.Context, copyID int64) (*model.Rental, error) {
	return FindOpenForCopy(ctx, cq.Conn, copyID)
}

func (cq connQueryer) FindOpenForMember(ctx context.Context, memberID int64) ([]model.MemberRental, error) {
	return FindOpenForMember(ctx, cq.Conn, memberID)
}

func (cq connQueryer) FindHistoryForBook(ctx context.Context, isbn string) ([]model.RentalHistoryEntry, error) {
	return FindHistoryForBook(ctx, cq.Conn, isbn)
}

func (cq connQueryer) CountOpenForMember(ctx context.Context, memberID int64) (int, error) {
	return CountOpenForMember(ctx, cq.Conn, memberID)
}

func (cq connQueryer) ListOpen(ctx context.Context) ([]model.OpenRental, error) {
	return ListOpen(ctx, cq.Conn)
}

type txQueryer struct {
	*gormdb.Tx
}

func (rentals *Repo) Tx(tx repo.Tx) repo.RentalsTxQueryer {
	tt := tx.(*gormdb.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(ctx context.Context, memberID, copyID int64, at time.Time) (*model.Rental, error) {
	return Create(ctx, tq.Tx, memberID, copyID, at)
}

func (tq txQueryer) Close(ctx context.Context, rentalID int64, at time.Time) (*model.Rental, error) {
	return Close(ctx, tq.Tx, rentalID, at)
}

func (tq txQueryer) FindOpenForCopy(ctx context.Context, copyID int64) (*model.Rental, error) {
	return FindOpenForCopy(ctx, tq.Tx, copyID)
}

func (tq txQueryer) FindOpenForMember(ctx context.Context, memberID int64) ([]model.MemberRental, error) {
	return FindOpenForMember(ctx, tq.Tx, memberID)
}

func (tq txQueryer) FindHistoryForBook(ctx context.Context, isbn string) ([]model.RentalHistoryEntry, error) {
	return FindHistoryForBook(ctx, tq.Tx, isbn)
}

func (tq txQueryer) CountOpenForMember(ctx context.Context, memberID int64) (int, error) {
	return CountOpenForMember(ctx, tq.Tx, memberID)
}

func (tq txQueryer) ListOpen(ctx context.Context) ([]model.OpenRental, error) {
	return ListOpen(ctx, tq.Tx)
}

func (tq txQueryer) LockOpenForMemberCopy(ctx context.Context, memberID, copyID int64) (*model.Rental, error) {
	return LockOpenForMemberCopy(ctx, tq.Tx, memberID, copyID)
}

func (tq txQueryer) LockOpenForMemberBook(ctx context.Context, memberID int64, isbn string) (*model.Rental, error) {
	return LockOpenForMemberBook(ctx, tq.Tx, memberID, isbn)
}
