// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package statsrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/model"
)

// counter describes one of the counts which form the LibraryStats.
type counter struct {
	table string
	where []exp.Expression
	dst   *int64
}

// Stats counts books, copies, and members. The borrowed and available
// copies are derived from the per-copy availability flags.
func Stats[Q gormdb.Queryer](ctx context.Context, q Q) (*model.LibraryStats, error) {
	d := goqu.Dialect(gormdb.DialectOf(q.GORM(ctx)).Goqu())
	s := &model.LibraryStats{}
	for _, c := range []counter{
		{table: "books", dst: &s.TotalBooks},
		{table: "copies", dst: &s.TotalCopies},
		{table: "members", dst: &s.TotalMembers},
		{
			table: "copies",
			where: []exp.Expression{goqu.C("available").IsFalse()},
			dst:   &s.BorrowedCopies,
		},
		{
			table: "copies",
			where: []exp.Expression{goqu.C("available").IsTrue()},
			dst:   &s.AvailableCopies,
		},
	} {
		sql, args, err := d.From(c.table).Select(
			goqu.COUNT(goqu.Star()),
		).Where(c.where...).ToSQL()
		if err != nil {
			return nil, fmt.Errorf("building %s count: %w", c.table, err)
		}
		if err = count(ctx, q, c.dst, sql, args...); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return s, nil
}

func count[Q gormdb.Queryer](ctx context.Context, q Q, dst *int64, sql string, args ...any) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return err
		}
		return errors.New("no rows")
	}
	if err = rows.Scan(dst); err != nil {
		return err
	}
	return rows.Err()
}
