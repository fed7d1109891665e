// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vers_test

import (
	"testing"

	"github.com/momeni/libweb/pkg/adapter/config/vers"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndExpect(t *testing.T) {
	vc, err := vers.Load([]byte(`
database: {path: ignored.db}
versions: {database: 1.0.0, config: 1.0}
`))
	require.NoError(t, err)
	assert.Equal(t, model.SemVer{1, 0, 0}, vc.Versions.Config)
	v1 := model.SemVer{1, 0, 0}
	assert.NoError(t, vc.Expect(v1, v1))
	assert.EqualError(t, vc.Expect(model.SemVer{1, 1, 0}, v1),
		"unexpected config version: 1.0.0")
	assert.EqualError(t, vc.Expect(v1, model.SemVer{2, 0, 0}),
		"unexpected database schema version: 1.0.0")

	_, err = vers.Load([]byte("versions: {config: x.y}"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	vc := &vers.Config{Versions: vers.Versions{Config: model.SemVer{1, 2, 3}}}
	assert.NoError(t, vc.Validate(1, 2))
	assert.NoError(t, vc.Validate(1, 5))
	assert.EqualError(t, vc.Validate(1, 1), "unsupported minor version: 2")
	assert.EqualError(t, vc.Validate(2, 0), "incompatible major version: 1")
}
