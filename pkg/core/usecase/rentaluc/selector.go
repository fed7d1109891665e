// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc

import (
	"errors"
	"strings"
)

// Selector identifies what a member wants to rent. Exactly one of its
// fields must be set. A specific copy may be asked by its CopyID,
// while ISBN and Title ask for the first available copy of a book.
type Selector struct {
	CopyID int64
	ISBN   string
	Title  string
}

func (s Selector) validate() error {
	n := 0
	if s.CopyID != 0 {
		if s.CopyID < 0 {
			return errors.New("copy_id must be positive")
		}
		n++
	}
	if strings.TrimSpace(s.ISBN) != "" {
		n++
	}
	if strings.TrimSpace(s.Title) != "" {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of copy_id, isbn, or title is required")
	}
	return nil
}

// ReturnSelector identifies the rental which should be closed.
// Exactly one of its fields must be set. With an ISBN, the oldest
// open rental of the member for any copy of that book is closed.
type ReturnSelector struct {
	CopyID int64
	ISBN   string
}

func (s ReturnSelector) validate() error {
	if s.CopyID < 0 {
		return errors.New("copy_id must be positive")
	}
	hasISBN := strings.TrimSpace(s.ISBN) != ""
	if (s.CopyID != 0) == hasISBN {
		return errors.New("exactly one of copy_id or isbn is required")
	}
	return nil
}
