// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo specifies the repository interfaces which are needed
// by the use cases layer. Use cases acquire a Conn from a Pool, and
// possibly a Tx from that Conn, and pass them to the repositories,
// so no repository keeps an implicit database handle.
package repo

import "context"

// ConnHandler is a function which uses a Conn until it returns.
// The Conn is released afterwards and may not be kept.
type ConnHandler func(context.Context, Conn) error

// Pool is a database connections pool.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
