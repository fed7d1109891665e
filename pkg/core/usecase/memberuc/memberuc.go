// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memberuc contains the members UseCase which registers,
// searches, updates, and removes library members.
package memberuc

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/log"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/momeni/libweb/pkg/core/usecase/validation"
)

// UseCase represents the members use case.
type UseCase struct {
	pool      repo.Pool
	membersrp repo.Members
	validator *validation.Validator
}

// New instantiates a members use case.
func New(p repo.Pool, m repo.Members) *UseCase {
	return &UseCase{pool: p, membersrp: m, validator: validation.New()}
}

func (members *UseCase) List(ctx context.Context) (ms []model.Member, err error) {
	err = members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ms, err = members.membersrp.Conn(c).List(ctx)
		return err
	})
	return ms, cerr.OrStorage(err)
}

func (members *UseCase) Get(ctx context.Context, memberID int64) (m *model.Member, err error) {
	if memberID <= 0 {
		return nil, cerr.BadRequest(errors.New("member id must be positive"))
	}
	err = members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		m, err = members.membersrp.Conn(c).Get(ctx, memberID)
		return err
	})
	if err != nil {
		return nil, cerr.OrStorage(err)
	}
	return m, nil
}

// Search finds members by the given query. A numeric query is taken
// as a member id and yields at most one member. Otherwise, members
// whose names contain the query are returned. An empty query lists
// all members.
func (members *UseCase) Search(ctx context.Context, query string) (ms []model.Member, err error) {
	query = strings.TrimSpace(query)
	if id, perr := strconv.ParseInt(query, 10, 64); perr == nil {
		m, err := members.Get(ctx, id)
		switch {
		case cerr.KindOf(err) == cerr.KindNotFound:
			return []model.Member{}, nil
		case err != nil:
			return nil, err
		}
		return []model.Member{*m}, nil
	}
	if query == "" {
		return members.List(ctx)
	}
	err = members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ms, err = members.membersrp.Conn(c).SearchByName(ctx, query)
		return err
	})
	return ms, cerr.OrStorage(err)
}

// Create validates and registers m, filling its ID and JoinedAt.
func (members *UseCase) Create(ctx context.Context, m *model.Member) error {
	normalize(m)
	if err := members.validator.Struct(m); err != nil {
		return err
	}
	err := members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := members.membersrp.Tx(tx)
			dup, err := q.FindByEmail(ctx, m.Email)
			if err != nil {
				return err
			}
			if dup != nil {
				return duplicateEmail()
			}
			return q.Create(ctx, m)
		})
	})
	if err != nil {
		return cerr.OrStorage(err)
	}
	log.Info(ctx, "member registered", log.ID("member_id", m.ID))
	return nil
}

// Update validates m and overwrites the m.ID member with it.
func (members *UseCase) Update(ctx context.Context, m *model.Member) error {
	if m.ID <= 0 {
		return cerr.BadRequest(errors.New("member id must be positive"))
	}
	normalize(m)
	if err := members.validator.Struct(m); err != nil {
		return err
	}
	err := members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := members.membersrp.Tx(tx)
			cur, err := q.Lock(ctx, m.ID)
			if err != nil {
				return err
			}
			dup, err := q.FindByEmail(ctx, m.Email)
			if err != nil {
				return err
			}
			if dup != nil && dup.ID != m.ID {
				return duplicateEmail()
			}
			if err = q.Update(ctx, m); err != nil {
				return err
			}
			m.JoinedAt = cur.JoinedAt
			return nil
		})
	})
	return cerr.OrStorage(err)
}

// Delete removes the memberID member. Members who have ever rented
// a copy are kept, so the rental history stays complete.
func (members *UseCase) Delete(ctx context.Context, memberID int64) error {
	if memberID <= 0 {
		return cerr.BadRequest(errors.New("member id must be positive"))
	}
	err := members.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return members.membersrp.Tx(tx).Delete(ctx, memberID)
		})
	})
	if err != nil {
		return cerr.OrStorage(err)
	}
	log.Info(ctx, "member deleted", log.ID("member_id", memberID))
	return nil
}

func normalize(m *model.Member) {
	for _, f := range []*string{
		&m.FirstName, &m.Surname, &m.Email, &m.Phone,
		&m.Address, &m.City, &m.Postcode,
	} {
		*f = strings.TrimSpace(*f)
	}
}

func duplicateEmail() error {
	return cerr.Conflict(errors.New("a member with this email already exists"))
}
