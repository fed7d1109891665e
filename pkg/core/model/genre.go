// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultGenres is the default genre taxonomy. These genres are
// created by the database initialization and are never dropped, even
// when no book refers to them anymore.
var DefaultGenres = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Thriller",
	"Romance",
	"Horror",
	"Biography",
	"History",
	"Philosophy",
	"Science",
	"Technology",
	"Self-Help",
	"Business",
	"Health & Fitness",
}

// NormalizeGenre normalizes a genre label for display and storage.
// The label is converted to its NFKC form, surrounding spaces are
// trimmed, and inner white space runs are collapsed into one space.
func NormalizeGenre(label string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(label)), " ")
}

// GenreKey returns the case-folded form of a normalized label.
// Two labels denote the same genre if and only if their keys are equal.
func GenreKey(label string) string {
	return cases.Fold().String(NormalizeGenre(label))
}

// IsDefaultGenre reports if label denotes a genre from DefaultGenres.
func IsDefaultGenre(label string) bool {
	k := GenreKey(label)
	for _, g := range DefaultGenres {
		if GenreKey(g) == k {
			return true
		}
	}
	return false
}

// ParseGenres resolves raw genre inputs into a set of labels.
// Each raw item may contain several comma-separated labels, so both of
// the "a, b" string form and the ["a", "b"] list form are accepted.
// Labels are normalized and empty labels are skipped. Duplicates are
// detected case-insensitively and the first spelling is kept.
// The result order follows the first appearance of each label.
// A nil slice is returned when no label remains.
func ParseGenres(raw ...string) []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			label := NormalizeGenre(part)
			if label == "" {
				continue
			}
			k := GenreKey(label)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}
