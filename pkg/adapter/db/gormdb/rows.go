// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gormdb

import "database/sql"

// rows adapts *sql.Rows to repo.Rows. The error of closing the result
// set is remembered and reported by Err.
type rows struct {
	*sql.Rows
	closeErr error
}

func (r *rows) Close() {
	if err := r.Rows.Close(); err != nil && r.closeErr == nil {
		r.closeErr = err
	}
}

func (r *rows) Err() error {
	if err := r.Rows.Err(); err != nil {
		return err
	}
	return r.closeErr
}
