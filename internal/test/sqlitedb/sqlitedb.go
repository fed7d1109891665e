// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlitedb creates temporary SQLite databases with the library
// schema for tests which should run without containers.
package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/schemarp"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/stretchr/testify/require"
)

// New creates a database file in a temporary directory of t and
// initializes its schema. With dev set, the development sample rows
// are inserted too. The pool is closed when t finishes.
func New(ctx context.Context, t testing.TB, dev bool) *gormdb.Pool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	pool, err := gormdb.NewSQLitePool(ctx, path, gormdb.PoolOptions{})
	require.NoError(t, err, "opening sqlite database")
	t.Cleanup(func() {
		require.NoError(t, pool.Close(), "closing sqlite database")
	})
	sch := schemarp.New("", nil)
	err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if dev {
				return sch.Tx(tx).InitDevSchema(ctx)
			}
			return sch.Tx(tx).InitProdSchema(ctx)
		})
	})
	require.NoError(t, err, "initializing schema")
	return pool
}
