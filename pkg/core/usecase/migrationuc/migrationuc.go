// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migrationuc provides the database schema use cases.
// The InitDBUseCase creates the library tables and fills them with
// initial data (for development or production environments), and the
// CheckSchema function verifies that an existing database has a
// schema version which this program can use.
// This package also exposes the Settings interface which represents
// the expectations from a configuration file, so the use cases do not
// depend on its format.
package migrationuc

import (
	"context"
	"fmt"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
)

// AreVersionsCompatible returns true if a program which supports the
// v1 version can work with data of the v2 version. Major versions must
// be equal and v2 may not have a newer minor version.
func AreVersionsCompatible(v1, v2 model.SemVer) bool {
	return v1[0] == v2[0] && v1[1] >= v2[1]
}

// CheckSchema reads the schema version of the database which p is
// connected to and returns a *cerr.MismatchingSemVerError if it is not
// compatible with the expected version.
func CheckSchema(ctx context.Context, p repo.Pool, s repo.Schema, expected model.SemVer) error {
	var actual model.SemVer
	err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		actual, err = s.Conn(c).SchemaVersion(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if !AreVersionsCompatible(expected, actual) {
		return &cerr.MismatchingSemVerError{expected, actual}
	}
	return nil
}
