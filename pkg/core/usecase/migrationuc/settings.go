// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
)

// Pool is a repo.Pool which must be closed after use.
type Pool interface {
	repo.Pool

	Close() error
}

// Settings represents the database related parts of a configuration
// file which are required for the schema initialization.
type Settings interface {
	// ConnectionPool creates a database connection pool for the `r`
	// role. Passwords are read from a passwords file in the configured
	// password dir, one entry per line with this format:
	//
	//	host:port:dbname:role:password
	//
	// A database which has no roles (SQLite) ignores `r`.
	ConnectionPool(ctx context.Context, r repo.Role) (Pool, error)

	// ManagesRoles returns true if the database has login roles which
	// must be created and granted privileges (PostgreSQL).
	ManagesRoles() bool

	// NewSchemaRepo instantiates a fresh Schema repository.
	// Role names which are passed to it are suffixed based on the
	// settings, the same as the ConnectionPool and RenewPasswords.
	NewSchemaRepo() repo.Schema

	// RenewPasswords generates new secure passwords for the given roles
	// and after recording them in a temporary file, will use the change
	// function in order to update the passwords of those roles in the
	// database too. The change function should perform the update in
	// a transaction which may or may not be committed when
	// RenewPasswords returns. After a successful commitment, the
	// returned finalizer moves the temporary passwords file over the
	// main passwords file.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context,
			roles []repo.Role,
			passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)

	// SchemaVersion returns the semantic version of the database schema
	// which is expected by these settings.
	SchemaVersion() model.SemVer
}
