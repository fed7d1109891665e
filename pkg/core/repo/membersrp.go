// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/libweb/pkg/core/model"
)

type MembersConnQueryer interface {
	MembersQueryer
}

type MembersTxQueryer interface {
	MembersQueryer

	// Lock reads and locks the memberID member, so concurrent rentals
	// of one member are serialized. A missing member is reported as a
	// cerr.NotFound error.
	Lock(ctx context.Context, memberID int64) (*model.Member, error)
}

type MembersQueryer interface {
	List(ctx context.Context) ([]model.Member, error)

	// Get returns the memberID member or a cerr.NotFound error.
	Get(ctx context.Context, memberID int64) (*model.Member, error)

	// FindByEmail returns the member with the given email or nil.
	FindByEmail(ctx context.Context, email string) (*model.Member, error)

	// SearchByName matches query against the first name, surname,
	// and full name of members case-insensitively.
	SearchByName(ctx context.Context, query string) ([]model.Member, error)

	// Create inserts m and fills its ID and JoinedAt fields.
	// A duplicate email is reported as a cerr.Conflict error.
	Create(ctx context.Context, m *model.Member) error

	// Update overwrites the m.ID member attributes.
	Update(ctx context.Context, m *model.Member) error

	// Delete removes a member. If the member has any rental history,
	// a cerr.Conflict error is returned.
	Delete(ctx context.Context, memberID int64) error
}

type Members interface {
	Conn(Conn) MembersConnQueryer
	Tx(Tx) MembersTxQueryer
}
