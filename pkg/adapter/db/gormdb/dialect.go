// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gormdb

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dialect names a supported SQL dialect.
type Dialect string

// Supported dialects. Values match the gorm.Dialector names.
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectOf returns the dialect which gdb is connected with.
func DialectOf(gdb *gorm.DB) Dialect {
	return Dialect(gdb.Dialector.Name())
}

// Goqu returns the goqu dialect name which matches d.
func (d Dialect) Goqu() string {
	if d == SQLite {
		return "sqlite3"
	}
	return string(d)
}

// ForUpdate adds a row-level write lock to a SELECT statement on the
// PostgreSQL dialect. If skipLocked is true, rows which are locked by
// other transactions are skipped instead of being waited for.
// SQLite has no row-level locks and needs none, because its writers
// are serialized by BEGIN IMMEDIATE.
func ForUpdate(gdb *gorm.DB, skipLocked bool) *gorm.DB {
	if DialectOf(gdb) != Postgres {
		return gdb
	}
	l := clause.Locking{Strength: "UPDATE"}
	if skipLocked {
		l.Options = "SKIP LOCKED"
	}
	return gdb.Clauses(l)
}
