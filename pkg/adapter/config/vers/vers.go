// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers reads the versions header of a libweb configuration
// file. The header names the config format and the database schema
// which the file was written for, so they are checked before the rest
// of the file is decoded.
package vers

import (
	"fmt"

	"github.com/momeni/libweb/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config is embedded inline by the cfg1.Config struct.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions holds the config format version and the schema version
// of the library tables, e.g., 1.0.0 for both of them in this release.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Load decodes the versions header of data, ignoring other keys.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Expect fails unless the header names exactly the given config and
// database versions.
func (vc *Config) Expect(config, database model.SemVer) error {
	v := vc.Versions
	switch {
	case v.Config != config:
		return fmt.Errorf("unexpected config version: %s", v.Config)
	case v.Database != database:
		return fmt.Errorf(
			"unexpected database schema version: %s", v.Database,
		)
	}
	return nil
}

// Validate fails if the config format is not readable by a binary
// which knows the major.minor format. Majors must match and the file
// may not use a newer minor version.
func (vc *Config) Validate(major, minor uint) error {
	v := vc.Versions.Config
	if v[0] != major {
		return fmt.Errorf("incompatible major version: %d", v[0])
	}
	if v[1] > minor {
		return fmt.Errorf("unsupported minor version: %d", v[1])
	}
	return nil
}
