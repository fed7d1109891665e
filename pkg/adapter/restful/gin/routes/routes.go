// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/config/cfg1"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/booksrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/copiesrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/membersrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/rentalsrp"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/statsrp"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/booksrs"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/copiesrs"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/membersrs"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/pagesrs"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/rentalsrs"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/statsrs"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
	"github.com/momeni/libweb/pkg/core/usecase/memberuc"
	"github.com/momeni/libweb/pkg/core/usecase/statsuc"
)

// APIPrefix is the path prefix of all REST APIs.
const APIPrefix = "/api/libweb/v1"

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like bookuc and each repository package is named like booksrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like booksrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance, under the
// APIPrefix group, while HTML pages are registered at the root.
// Possible errors will be returned after possible wrapping.
func Register(
	ctx context.Context, e *gin.Engine, p repo.Pool, c *cfg1.Config,
) error {
	membersRepo := membersrp.New()
	booksRepo := booksrp.New()
	copiesRepo := copiesrp.New()
	rentalsRepo := rentalsrp.New()

	books := bookuc.New(p, booksRepo, copiesRepo, rentalsRepo)
	members := memberuc.New(p, membersRepo)
	stats := statsuc.New(p, statsrp.New())
	rentals, err := c.Usecases.Rentals.NewUseCase(
		p, membersRepo, booksRepo, copiesRepo, rentalsRepo,
	)
	if err != nil {
		return fmt.Errorf("creating rentals use case: %w", err)
	}

	r := e.Group(APIPrefix)
	booksrs.Register(r, books)
	copiesrs.Register(r, books)
	membersrs.Register(r, members, rentals)
	rentalsrs.Register(r, rentals)
	statsrs.Register(r, stats)
	pagesrs.Register(e, books, stats)
	log.Info(
		ctx, "routes are registered",
		slog.String("prefix", APIPrefix),
		slog.Int("rental_limit", rentals.RentalLimit()),
	)
	return nil
}
