// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package statsuc contains the analytics UseCase which summarizes
// the library contents.
package statsuc

import (
	"context"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
)

type UseCase struct {
	pool    repo.Pool
	statsrp repo.Stats
}

func New(p repo.Pool, s repo.Stats) *UseCase {
	return &UseCase{pool: p, statsrp: s}
}

// Stats counts books, copies, and members. Query failures are
// reported as storage errors and are never replaced by zero counts.
func (stats *UseCase) Stats(ctx context.Context) (s *model.LibraryStats, err error) {
	err = stats.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = stats.statsrp.Conn(c).Stats(ctx)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return s, nil
}
