// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scram_test

import (
	"strings"
	"testing"

	"github.com/momeni/libweb/pkg/adapter/hash/scram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFormat(t *testing.T) {
	const salt = "c2FsdHNhbHRzYWx0c2FsdA=="
	for _, tc := range []struct {
		method string
		prefix string
	}{
		{"scram-sha-1", "SCRAM-SHA-1$4096:" + salt + "$"},
		{"scram-sha-256", "SCRAM-SHA-256$4096:" + salt + "$"},
	} {
		m, err := scram.Named(tc.method)
		require.NoError(t, err, "method: %s", tc.method)
		h1, err := m.Hash("secret", salt, 4096)
		require.NoError(t, err)
		h2, err := m.Hash("secret", salt, 4096)
		require.NoError(t, err)
		assert.Equal(t, h1, h2, "a fixed salt gives a fixed hash")
		assert.True(t, strings.HasPrefix(h1, tc.prefix), "hash: %s", h1)
		keys := strings.Split(strings.TrimPrefix(h1, tc.prefix), ":")
		assert.Len(t, keys, 2, "storedKey:serverKey")
	}
}

func TestRandomSalt(t *testing.T) {
	m := scram.SHA256()
	h1, err := m.Hash("secret", "", 4096)
	require.NoError(t, err)
	h2, err := m.Hash("secret", "", 4096)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashErrors(t *testing.T) {
	m := scram.SHA256()
	_, err := m.Hash("", "", 4096)
	assert.EqualError(t, err, "password must be non-empty")
	_, err = m.Hash("secret", "", 1000)
	assert.EqualError(t, err, "iters (1000) is less than 4096")
	_, err = scram.Named("md5")
	assert.EqualError(
		t, err, `unsupported database authentication method: "md5"`,
	)
}
