// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
)

type StatsConnQueryer interface {
	// Stats computes all library counters in one round trip.
	Stats(ctx context.Context) (*model.LibraryStats, error)
}

type Stats interface {
	Conn(Conn) StatsConnQueryer
}
