// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation_test

import (
	"fmt"
	"testing"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/usecase/validation"
	"github.com/stretchr/testify/assert"
)

func ExampleValidator_Struct() {
	v := validation.New()
	err := v.Struct(&model.Member{
		FirstName: "Ada",
		Surname:   "Lovelace",
		Email:     "ada-at-example.org",
		Phone:     "+44 20 7946 0000",
		Address:   "12 St James's Square",
		City:      "London",
	})
	fmt.Println(err)
	// Output:
	// [400] email must be a valid email address; postcode is required
}

func TestValidBook(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Struct(&model.Book{
		ISBN:            "9780261103344",
		Title:           "The Hobbit",
		Author:          "J. R. R. Tolkien",
		PublicationYear: 1937,
	}))
	err := v.Struct(&model.Book{ISBN: "1"})
	assert.Equal(t, cerr.KindValidation, cerr.KindOf(err))
	assert.EqualError(
		t, err,
		"[400] title is required; author is required; publication_year is required",
	)
}
