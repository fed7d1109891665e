// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp implements the repo.Schema interface. It creates
// the library tables for the PostgreSQL or SQLite dialect, fills them
// with initial data, records the schema version, and manages the
// PostgreSQL roles which are used by the web server.
package schemarp

import (
	"context"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/scram"
)

// These constants represent the major, minor, and patch components of
// the database schema semantic version which is created by this
// package.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}

// Repo is the schema repository. Role names which are passed to its
// methods are suffixed by roleSuffix and passwords are hashed by the
// hasher before being sent to the database.
type Repo struct {
	roleSuffix repo.Role
	hasher     scram.Hasher
}

// New instantiates a schema repository. The hasher may be nil if no
// password is going to be changed, e.g., for a SQLite database.
func New(roleSuffix repo.Role, hasher scram.Hasher) *Repo {
	return &Repo{roleSuffix: roleSuffix, hasher: hasher}
}

type connQueryer struct {
	*gormdb.Conn
	*Repo
}

func (r *Repo) Conn(c repo.Conn) repo.SchemaConnQueryer {
	cc := c.(*gormdb.Conn)
	return connQueryer{Conn: cc, Repo: r}
}

func (cq connQueryer) SchemaVersion(ctx context.Context) (model.SemVer, error) {
	return SchemaVersion(ctx, cq.Conn)
}

func (cq connQueryer) CreateRoleIfNotExists(ctx context.Context, role repo.Role) error {
	return CreateRoleIfNotExists(ctx, cq.Conn, role+cq.roleSuffix)
}

func (cq connQueryer) GrantPrivileges(ctx context.Context, role repo.Role) error {
	return GrantPrivileges(ctx, cq.Conn, role+cq.roleSuffix)
}

type txQueryer struct {
	*gormdb.Tx
	*Repo
}

func (r *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*gormdb.Tx)
	return txQueryer{Tx: tt, Repo: r}
}

func (tq txQueryer) SchemaVersion(ctx context.Context) (model.SemVer, error) {
	return SchemaVersion(ctx, tq.Tx)
}

func (tq txQueryer) DropTables(ctx context.Context) error {
	return DropTables(ctx, tq.Tx)
}

func (tq txQueryer) InitDevSchema(ctx context.Context) error {
	return InitSchema(ctx, tq.Tx, true)
}

func (tq txQueryer) InitProdSchema(ctx context.Context) error {
	return InitSchema(ctx, tq.Tx, false)
}

func (tq txQueryer) ChangePasswords(
	ctx context.Context, roles []repo.Role, passwords []string,
) error {
	suffixed := make([]repo.Role, len(roles))
	for i, r := range roles {
		suffixed[i] = r + tq.roleSuffix
	}
	return ChangePasswords(ctx, tq.Tx, tq.hasher, suffixed, passwords)
}
