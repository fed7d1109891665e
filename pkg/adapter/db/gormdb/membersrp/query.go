// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package membersrp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"gorm.io/gorm"
)

type gMember struct {
	ID        int64 `gorm:"primaryKey"`
	FirstName string
	Surname   string
	Email     string
	Phone     string
	Address   string
	City      string
	Postcode  string
	JoinedAt  time.Time
}

func (*gMember) TableName() string {
	return "members"
}

func (gm *gMember) Model() model.Member {
	return model.Member{
		ID:        gm.ID,
		FirstName: gm.FirstName,
		Surname:   gm.Surname,
		Email:     gm.Email,
		Phone:     gm.Phone,
		Address:   gm.Address,
		City:      gm.City,
		Postcode:  gm.Postcode,
		JoinedAt:  gm.JoinedAt.UTC(),
	}
}

var errDuplicateEmail = errors.New("a member with this email already exists")

func notFound(memberID int64) error {
	return cerr.NotFound(fmt.Errorf("member %d not found", memberID))
}

func List[Q gormdb.Queryer](ctx context.Context, q Q) ([]model.Member, error) {
	return find(q.GORM(ctx))
}

// Get reads the memberID member, locking it if lock is true.
func Get[Q gormdb.Queryer](ctx context.Context, q Q, memberID int64, lock bool) (*model.Member, error) {
	gdb := q.GORM(ctx)
	if lock {
		gdb = gormdb.ForUpdate(gdb, false)
	}
	var gm gMember
	err := gdb.Take(&gm, "id = ?", memberID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound(memberID)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	m := gm.Model()
	return &m, nil
}

func FindByEmail[Q gormdb.Queryer](ctx context.Context, q Q, email string) (*model.Member, error) {
	ms, err := find(q.GORM(ctx).Where(
		"LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)),
	).Limit(1))
	if err != nil || len(ms) == 0 {
		return nil, err
	}
	return &ms[0], nil
}

// SearchByName finds members whose first name, surname, or full name
// contains the query case-insensitively.
func SearchByName[Q gormdb.Queryer](ctx context.Context, q Q, query string) ([]model.Member, error) {
	p := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	return find(q.GORM(ctx).Where(
		"LOWER(first_name) LIKE ? OR LOWER(surname) LIKE ?"+
			" OR LOWER(first_name || ' ' || surname) LIKE ?",
		p, p, p,
	))
}

// Create inserts m and fills its ID. A zero m.JoinedAt is set to
// the current time.
func Create[Q gormdb.Queryer](ctx context.Context, q Q, m *model.Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	m.JoinedAt = m.JoinedAt.UTC()
	gm := &gMember{
		FirstName: m.FirstName,
		Surname:   m.Surname,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		City:      m.City,
		Postcode:  m.Postcode,
		JoinedAt:  m.JoinedAt,
	}
	err := q.GORM(ctx).Create(gm).Error
	if hint, ok := gormdb.UniqueViolation(err); ok && strings.Contains(hint, "email") {
		return cerr.Conflict(errDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	m.ID = gm.ID
	return nil
}

// Update overwrites the contact fields of the m.ID member.
// The JoinedAt field is kept unchanged.
func Update[Q gormdb.Queryer](ctx context.Context, q Q, m *model.Member) error {
	gdb := q.GORM(ctx).Model(&gMember{}).Where("id = ?", m.ID).Updates(
		map[string]any{
			"first_name": m.FirstName,
			"surname":    m.Surname,
			"email":      m.Email,
			"phone":      m.Phone,
			"address":    m.Address,
			"city":       m.City,
			"postcode":   m.Postcode,
		},
	)
	err := gdb.Error
	if hint, ok := gormdb.UniqueViolation(err); ok && strings.Contains(hint, "email") {
		return cerr.Conflict(errDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(m.ID)
	}
	return nil
}

func Delete[Q gormdb.Queryer](ctx context.Context, q Q, memberID int64) error {
	var rentals int64
	err := q.GORM(ctx).Table("rentals").Where(
		"member_id = ?", memberID,
	).Count(&rentals).Error
	if err != nil {
		return fmt.Errorf("counting rentals: %w", err)
	}
	errHistory := cerr.Conflict(fmt.Errorf(
		"member %d has rental history and cannot be deleted", memberID,
	))
	if rentals > 0 {
		return errHistory
	}
	gdb := q.GORM(ctx).Delete(&gMember{}, "id = ?", memberID)
	switch err := gdb.Error; {
	case gormdb.ForeignKeyViolation(err):
		return errHistory
	case err != nil:
		return fmt.Errorf("query: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(memberID)
	}
	return nil
}

func find(gdb *gorm.DB) ([]model.Member, error) {
	var gms []gMember
	if err := gdb.Order("id").Find(&gms).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ms := make([]model.Member, 0, len(gms))
	for i := range gms {
		ms = append(ms, gms[i].Model())
	}
	return ms, nil
}
