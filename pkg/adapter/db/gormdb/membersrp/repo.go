// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package membersrp implements the repo.Members interface using GORM.
package membersrp

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

func (members *Repo) Conn(c repo.Conn) repo.MembersConnQueryer {
	cc := c.(*gormdb.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) List(ctx context.Context) ([]model.Member, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) Get(ctx context.Context, memberID int64) (*model.Member, error) {
	return Get(ctx, cq.Conn, memberID, false)
}

func (cq connQueryer) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	return FindByEmail(ctx, cq.Conn, email)
}

func (cq connQueryer) SearchByName(ctx context.Context, query string) ([]model.Member, error) {
	return SearchByName(ctx, cq.Conn, query)
}

func (cq connQueryer) Create(ctx context.Context, m *model.Member) error {
	return Create(ctx, cq.Conn, m)
}

func (cq connQueryer) Update(ctx context.Context, m *model.Member) error {
	return Update(ctx, cq.Conn, m)
}

func (cq connQueryer) Delete(ctx context.Context, memberID int64) error {
	return Delete(ctx, cq.Conn, memberID)
}

type txQueryer struct {
	*gormdb.Tx
}

func (members *Repo) Tx(tx repo.Tx) repo.MembersTxQueryer {
	tt := tx.(*gormdb.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) List(ctx context.Context) ([]model.Member, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Get(ctx context.Context, memberID int64) (*model.Member, error) {
	return Get(ctx, tq.Tx, memberID, false)
}

func (tq txQueryer) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	return FindByEmail(ctx, tq.Tx, email)
}

func (tq txQueryer) SearchByName(ctx context.Context, query string) ([]model.Member, error) {
	return SearchByName(ctx, tq.Tx, query)
}

func (tq txQueryer) Create(ctx context.Context, m *model.Member) error {
	return Create(ctx, tq.Tx, m)
}

func (tq txQueryer) Update(ctx context.Context, m *model.Member) error {
	return Update(ctx, tq.Tx, m)
}

func (tq txQueryer) Delete(ctx context.Context, memberID int64) error {
	return Delete(ctx, tq.Tx, memberID)
}

func (tq txQueryer) Lock(ctx context.Context, memberID int64) (*model.Member, error) {
	return Get(ctx, tq.Tx, memberID, true)
}
