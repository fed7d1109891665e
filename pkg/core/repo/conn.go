// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler is a function which runs a series of statements in the
// given Tx transaction. If it returns a nil error, the transaction
// will be committed. Otherwise (or if it panics), the transaction will
// be rolled back.
type TxHandler func(context.Context, Tx) error

// Conn represents a database connection which is acquired from a Pool.
// Each statement which is executed directly on a Conn runs in its own
// auto-committed transaction. Paired mutations (such as inserting a
// rental and flipping its copy availability) must use the Tx method.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn method prevents a non-Conn object (such as a Tx) to
	// mistakenly implement the Conn interface.
	IsConn()
}
