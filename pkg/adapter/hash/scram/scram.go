// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram hashes database role passwords with the SCRAM-SHA-1
// or SCRAM-SHA-256 mechanisms, producing the verifier strings which
// PostgreSQL accepts in CREATE/ALTER ROLE ... PASSWORD, so that no
// plaintext password is sent to the server.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// DefaultMethod is the authentication method name which is used when
// none is configured.
const DefaultMethod = "scram-sha-256"

// MinIters is the minimum accepted iterations count (RFC 5802).
const MinIters = 4096

// Mechanism implements the core scram.Hasher interface for one hash
// function.
type Mechanism struct {
	gen     scram.HashGeneratorFcn
	saltLen int // bytes
	prefix  string
}

var mechanisms = map[string]*Mechanism{
	"scram-sha-1":   {gen: scram.SHA1, saltLen: 20, prefix: "SCRAM-SHA-1"},
	"scram-sha-256": {gen: scram.SHA256, saltLen: 32, prefix: "SCRAM-SHA-256"},
}

// Named returns the Mechanism of a PostgreSQL password_encryption
// method, i.e., scram-sha-1 or scram-sha-256.
func Named(method string) (*Mechanism, error) {
	m, ok := mechanisms[method]
	if !ok {
		return nil, fmt.Errorf(
			"unsupported database authentication method: %q", method,
		)
	}
	return m, nil
}

// SHA256 returns the SCRAM-SHA-256 Mechanism.
func SHA256() *Mechanism {
	return mechanisms["scram-sha-256"]
}

// Hash returns the verifier of pass with this format:
//
//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// The salt is base64 encoded. An empty salt is replaced by a random
// one. The pass is normalized with SASLprep by the xdg-go/scram
// client, so invalid passwords are reported as errors.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < MinIters:
		return "", fmt.Errorf(
			"iters (%d) is less than %d", iters, MinIters,
		)
	}
	if salt == "" {
		b := make([]byte, m.saltLen)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(b)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding base64 salt: %w", err)
	}
	// user and authzID do not affect the stored credentials.
	c, err := m.gen.NewClient("libweb", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(rawSalt),
		Iters: iters,
	})
	enc := base64.StdEncoding.EncodeToString
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s", m.prefix, iters, salt,
		enc(sc.StoredKey), enc(sc.ServerKey),
	), nil
}
