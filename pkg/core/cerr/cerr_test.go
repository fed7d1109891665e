// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedErrors(t *testing.T) {
	base := errors.New("copy 7 is borrowed")
	err := fmt.Errorf("handler: %w", cerr.Unavailable(base))
	assert.Equal(t, cerr.KindUnavailable, cerr.KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, cerr.Kind(""), cerr.KindOf(base))
	assert.Equal(t, cerr.Kind(""), cerr.KindOf(nil))
}

func TestOrStorage(t *testing.T) {
	assert.NoError(t, cerr.OrStorage(nil))

	nf := cerr.NotFound(errors.New("no such member"))
	assert.Same(t, nf, cerr.OrStorage(nf))

	err := cerr.OrStorage(errors.New("disk I/O error"))
	var ce *cerr.Error
	if assert.ErrorAs(t, err, &ce) {
		assert.Equal(t, cerr.KindStorage, ce.Kind)
		assert.Equal(t, http.StatusInternalServerError, ce.HTTPStatusCode)
	}
}

func TestStatusCodes(t *testing.T) {
	e := errors.New("reason")
	for _, tc := range []struct {
		err  *cerr.Error
		kind cerr.Kind
		code int
	}{
		{cerr.NotFound(e), cerr.KindNotFound, 404},
		{cerr.Unavailable(e), cerr.KindUnavailable, 409},
		{cerr.RentalLimitExceeded(e), cerr.KindRentalLimitExceeded, 422},
		{cerr.Conflict(e), cerr.KindConflict, 409},
		{cerr.BadRequest(e), cerr.KindValidation, 400},
		{cerr.Storage(e), cerr.KindStorage, 500},
	} {
		assert.Equal(t, tc.kind, tc.err.Kind)
		assert.Equal(t, tc.code, tc.err.HTTPStatusCode, "kind: %s", tc.kind)
	}
}

func ExampleMismatchingSemVerError() {
	err := &cerr.MismatchingSemVerError{
		model.SemVer{1, 0, 0}, model.SemVer{2, 1, 0},
	}
	fmt.Println(err)
	fmt.Println(cerr.NotFound(errors.New("book \"111\" not found")))
	// Output:
	// expected v1.0.0, but got v2.1.0
	// [404] book "111" not found
}

func TestOrStorageUnwrapsTxErrors(t *testing.T) {
	limit := cerr.RentalLimitExceeded(errors.New("member 1 has 3 open rentals"))
	err := cerr.OrStorage(fmt.Errorf("handler: %w", limit))
	assert.Same(t, limit, err)
}
