// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
// Roles are meaningful for the PostgreSQL backend. A file-based SQLite
// database has no roles and ignores them.
type Role string

// These constants specify the expected database roles. The AdminRole
// must exist beforehand (i.e., must be created manually) and it must
// be able to create other roles. Its password is read from the pass
// file as indicated in the configuration file.
const (
	// AdminRole is an administrator role which is only used by the
	// database initialization commands in order to create the
	// NormalRole and grant it the required privileges.
	AdminRole Role = "admin"

	// NormalRole is the unprivileged role which owns the library
	// tables and is used by the web server for all other use cases.
	NormalRole Role = "libweb"
)
