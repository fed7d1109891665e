// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
)

// Schema interface presents expectations from a repository which allows
// database schema and roles management. It creates the library tables,
// fills them with initial data, and records the schema version, so
// later executions can verify that they are compatible with it.
type Schema interface {
	// Conn takes a Conn interface instance, unwraps it as required,
	// and returns a SchemaConnQueryer interface which can manage the
	// database roles.
	Conn(Conn) SchemaConnQueryer

	// Tx takes a Tx interface instance, unwraps it as required,
	// and returns a SchemaTxQueryer interface which can create and
	// fill tables or change roles passwords.
	Tx(Tx) SchemaTxQueryer
}

// SchemaConnQueryer lists the roles management operations.
// On a database backend which has no roles (i.e., SQLite), they
// succeed without any change.
type SchemaConnQueryer interface {
	SchemaQueryer

	// CreateRoleIfNotExists creates the `role` role if it does not
	// exist right now. Although the login option is enabled for the
	// created role, but no specific password will be set for it.
	// The role name may be suffixed based on the repository settings.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges allows the `role` role to create tables in the
	// current database and use them.
	GrantPrivileges(ctx context.Context, role Role) error
}

// SchemaTxQueryer lists the schema operations which must run in one
// transaction, so a failed initialization leaves no half-created
// tables behind.
type SchemaTxQueryer interface {
	SchemaQueryer

	// DropTables drops the library tables, if they exist, so they
	// may be created again.
	DropTables(ctx context.Context) error

	// InitDevSchema creates the tables and fills them with the
	// default genres and a few sample books, copies, and members
	// which are suitable for development environments.
	InitDevSchema(ctx context.Context) error

	// InitProdSchema creates the tables and fills them with the
	// default genres alone.
	InitProdSchema(ctx context.Context) error

	// ChangePasswords updates the passwords of the given roles.
	// The roles and passwords slices must have the same length.
	// Passwords are hashed before being sent to the database.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error
}

// SchemaQueryer lists operations which are available both on
// connections and transactions.
type SchemaQueryer interface {
	// SchemaVersion returns the schema version which was recorded
	// during the database initialization.
	SchemaVersion(ctx context.Context) (model.SemVer, error)
}
