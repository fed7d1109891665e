// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer represents a released semantic version, consisting of three
// components, namely the major, minor, and patch versions.
// It is used for the configuration file format and also the database
// schema which is recorded in the database itself, so a binary can
// refuse to work with a database which was created by an incompatible
// release.
type SemVer [3]uint

// ParseSemVer parses s as a dot-separated semantic version.
// Missing minor or patch components are taken as zero.
func ParseSemVer(s string) (sv SemVer, err error) {
	err = sv.UnmarshalText([]byte(s))
	return
}

// UnmarshalText deserializes text byte slice as a string consisting of
// at most three dot-separated numbers and fills the sv SemVer instance.
// In case of errors, sv will be left unchanged.
func (sv *SemVer) UnmarshalText(text []byte) (err error) {
	p := strings.Split(string(text), ".")
	l := len(p)
	if l == 0 || l > 3 {
		return fmt.Errorf("the %q has wrong number of components", text)
	}
	var v [3]int
	for i := 0; i < l; i++ {
		v[i], err = strconv.Atoi(p[i])
		if err != nil {
			return fmt.Errorf("the %q component is not numeric", p[i])
		}
		if v[i] < 0 {
			return fmt.Errorf("the %q component is negative", p[i])
		}
	}
	for i := range v {
		(*sv)[i] = uint(v[i])
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler interface and
// serializes `sv` semantic version as its string representation.
func (sv *SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// String returns the sv semantic version as a dot-separated string
// like major.minor.patch.
func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}
