// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/repo"
)

// InitDBUseCase represents a database initialization use case.
// Existing library tables are dropped and created again.
type InitDBUseCase struct {
	settings   Settings    // target settings
	schemaRepo repo.Schema // schema management repo
}

// NewInitDB instantiates an InitDBUseCase for the database which is
// described by the ss settings.
func NewInitDB(ss Settings) *InitDBUseCase {
	return &InitDBUseCase{
		settings:   ss,
		schemaRepo: ss.NewSchemaRepo(),
	}
}

// InitProd creates the tables and fills the default genres.
func (iduc *InitDBUseCase) InitProd(ctx context.Context) error {
	return iduc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		return q.InitProdSchema(ctx)
	})
}

// InitDev creates the tables and fills them with sample books, copies,
// and members in addition to the default genres.
func (iduc *InitDBUseCase) InitDev(ctx context.Context) error {
	return iduc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		return q.InitDevSchema(ctx)
	})
}

func (iduc *InitDBUseCase) initDB(
	ctx context.Context,
	dbi func(ctx context.Context, q repo.SchemaTxQueryer) error,
) error {
	if iduc.settings.ManagesRoles() {
		if err := iduc.prepareNormalRole(ctx); err != nil {
			return fmt.Errorf("preparing normal role: %w", err)
		}
	}
	p, err := iduc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := iduc.schemaRepo.Tx(tx)
			if err := q.DropTables(ctx); err != nil {
				return fmt.Errorf("dropping old tables: %w", err)
			}
			if err := dbi(ctx, q); err != nil {
				return fmt.Errorf("initializing schema: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("normal connection: %w", err)
	}
	v := iduc.settings.SchemaVersion()
	log.Info(ctx, "database is initialized", slog.String("version", v.String()))
	return nil
}

// prepareNormalRole creates the normal role using the admin role,
// grants it the required privileges, and renews its password.
func (iduc *InitDBUseCase) prepareNormalRole(ctx context.Context) error {
	p, err := iduc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	var finalizer func() error
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := iduc.schemaRepo.Conn(c)
		if err := q.CreateRoleIfNotExists(
			ctx, repo.NormalRole,
		); err != nil {
			return fmt.Errorf("creating normal role: %w", err)
		}
		if err := q.GrantPrivileges(ctx, repo.NormalRole); err != nil {
			return fmt.Errorf("granting normal role privs: %w", err)
		}
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			finalizer, err = iduc.settings.RenewPasswords(
				ctx, iduc.schemaRepo.Tx(tx).ChangePasswords,
				repo.NormalRole,
			)
			if err != nil {
				return fmt.Errorf("RenewPasswords: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}
