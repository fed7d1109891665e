// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the expected interface for hashing database
// role passwords with the Salted Challenge Response Authentication
// Mechanism (SCRAM). For the corresponding implementation, check the
// adapter layer.
//
// The database initialization use case generates a random password
// for the normal role and only sends its SCRAM hash to the PostgreSQL
// server in the ALTER ROLE statement, so the plaintext password is
// never logged by the DBMS. The client and server side conversations
// are managed by the PostgreSQL server and its driver and so are not
// needed in the use cases layer.
package scram

// Hasher computes the storedKey and serverKey values for a specific
// underlying hash function (e.g., SHA1 or SHA256) whenever its Hash
// method is called with the relevant pass, salt, and iters arguments.
type Hasher interface {
	// Hash computes a hash string following the standard scram hash
	// format, so it can be stored and used later for authentication.
	// An empty salt asks for a random salt. The iters must be at least
	// 4096. The result looks like:
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	Hash(pass, salt string, iters int) (string, error)
}
