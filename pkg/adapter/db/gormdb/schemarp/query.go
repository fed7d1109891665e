// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/scram"
	"gorm.io/gorm"
)

var (
	//go:embed sql/postgres.sql
	postgresDDL string

	//go:embed sql/sqlite.sql
	sqliteDDL string

	//go:embed sql/devdata.sql
	devData string
)

// passwordHashIters is the SCRAM iterations count, as recommended by
// RFC 7677.
const passwordHashIters = 15000

const schemaVersionKey = "schema_version"

type gSchemaMeta struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (*gSchemaMeta) TableName() string {
	return "schema_meta"
}

// tables lists the library tables so that each table comes before
// the tables which it references.
var tables = []string{
	"rentals", "copies", "book_genres", "members", "genres", "books",
	"schema_meta",
}

// DropTables drops the library tables if they exist, so the schema
// may be initialized again.
func DropTables[Q gormdb.Queryer](ctx context.Context, q Q) error {
	for _, t := range tables {
		if _, err := q.Exec(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return fmt.Errorf("dropping %s: %w", t, err)
		}
	}
	return nil
}

// InitSchema creates all tables, inserts the default genres, records
// the schema Version, and (if dev is true) inserts sample rows.
func InitSchema[Q gormdb.Queryer](ctx context.Context, q Q, dev bool) error {
	ddl := sqliteDDL
	if gormdb.DialectOf(q.GORM(ctx)) == gormdb.Postgres {
		ddl = postgresDDL
	}
	if _, err := q.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	for _, g := range model.DefaultGenres {
		_, err := q.Exec(ctx, "INSERT INTO genres (name) VALUES (?)", g)
		if err != nil {
			return fmt.Errorf("inserting %q genre: %w", g, err)
		}
	}
	meta := &gSchemaMeta{Key: schemaVersionKey, Value: Version.String()}
	if err := q.GORM(ctx).Create(meta).Error; err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	if !dev {
		return nil
	}
	if _, err := q.Exec(ctx, devData); err != nil {
		return fmt.Errorf("inserting development data: %w", err)
	}
	return nil
}

// SchemaVersion reads the recorded schema version.
func SchemaVersion[Q gormdb.Queryer](ctx context.Context, q Q) (model.SemVer, error) {
	var meta gSchemaMeta
	err := q.GORM(ctx).Where("key = ?", schemaVersionKey).Take(&meta).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.SemVer{}, errors.New("schema version is not recorded")
	case err != nil:
		return model.SemVer{}, fmt.Errorf("query: %w", err)
	}
	sv, err := model.ParseSemVer(meta.Value)
	if err != nil {
		return model.SemVer{}, fmt.Errorf("parsing %q: %w", meta.Value, err)
	}
	return sv, nil
}

// CreateRoleIfNotExists creates the role with the LOGIN option on
// PostgreSQL. It is a no-op for SQLite.
func CreateRoleIfNotExists[Q gormdb.Queryer](ctx context.Context, q Q, role repo.Role) error {
	if gormdb.DialectOf(q.GORM(ctx)) != gormdb.Postgres {
		return nil
	}
	var count int64
	err := q.GORM(ctx).Raw(
		"SELECT COUNT(*) FROM pg_roles WHERE rolname = ?", string(role),
	).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("checking role existence: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+identifier(role)+" LOGIN")
	if err != nil {
		return fmt.Errorf("creating role: %w", err)
	}
	return nil
}

// GrantPrivileges allows role to create and use tables in the public
// schema on PostgreSQL. It is a no-op for SQLite.
func GrantPrivileges[Q gormdb.Queryer](ctx context.Context, q Q, role repo.Role) error {
	if gormdb.DialectOf(q.GORM(ctx)) != gormdb.Postgres {
		return nil
	}
	_, err := q.Exec(ctx, "GRANT ALL ON SCHEMA public TO "+identifier(role))
	if err != nil {
		return fmt.Errorf("granting privileges: %w", err)
	}
	return nil
}

// ChangePasswords sets the SCRAM hashes of passwords for the roles.
// It is a no-op for SQLite.
func ChangePasswords[Q gormdb.Queryer](
	ctx context.Context, q Q, h scram.Hasher,
	roles []repo.Role, passwords []string,
) error {
	if gormdb.DialectOf(q.GORM(ctx)) != gormdb.Postgres {
		return nil
	}
	if len(roles) != len(passwords) {
		return fmt.Errorf(
			"got %d roles, but %d passwords", len(roles), len(passwords),
		)
	}
	if h == nil {
		return errors.New("no password hasher is configured")
	}
	for i, role := range roles {
		hashed, err := h.Hash(passwords[i], "", passwordHashIters)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		// Hashes only contain base64 letters and the $ and : signs.
		_, err = q.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s PASSWORD '%s'", identifier(role), hashed,
		))
		if err != nil {
			return fmt.Errorf("altering role %q: %w", role, err)
		}
	}
	return nil
}

func identifier(role repo.Role) string {
	return pgx.Identifier{strings.TrimSpace(string(role))}.Sanitize()
}
