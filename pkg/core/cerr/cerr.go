// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core errors taxonomy. Use cases report
// their failures as *Error instances, having a Kind which may be
// checked by callers and an HTTP status code which is used by the
// restful adapters in order to report them consistently.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable name for a class of failures.
type Kind string

// Supported failure kinds.
const (
	KindNotFound            Kind = "not_found"
	KindUnavailable         Kind = "unavailable"
	KindRentalLimitExceeded Kind = "rental_limit_exceeded"
	KindConflict            Kind = "conflict"
	KindValidation          Kind = "validation_error"
	KindStorage             Kind = "storage_error"
)

// Error is a classified error. The Err describes the specific reason
// which is reported to end-users.
type Error struct {
	Kind           Kind
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

// NotFound indicates that a book, copy, member, or rental is absent.
func NotFound(err error) *Error {
	return &Error{KindNotFound, err, http.StatusNotFound}
}

// Unavailable indicates that no free copy could be rented.
func Unavailable(err error) *Error {
	return &Error{KindUnavailable, err, http.StatusConflict}
}

// RentalLimitExceeded indicates that a member holds too many open
// rentals already.
func RentalLimitExceeded(err error) *Error {
	return &Error{
		KindRentalLimitExceeded, err, http.StatusUnprocessableEntity,
	}
}

// Conflict indicates a duplicate unique key or an invalid state
// transition.
func Conflict(err error) *Error {
	return &Error{KindConflict, err, http.StatusConflict}
}

// BadRequest indicates a malformed input, e.g., a missing member field.
func BadRequest(err error) *Error {
	return &Error{KindValidation, err, http.StatusBadRequest}
}

// Storage indicates that the underlying persistence layer failed.
func Storage(err error) *Error {
	return &Error{KindStorage, err, http.StatusInternalServerError}
}

// KindOf returns the Kind of the first *Error in the err chain, or an
// empty Kind if err is not classified at all.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// OrStorage returns the first *Error in the err chain, so wrapping
// layers such as the transaction handler are dropped. An unclassified
// err is wrapped as a storage error and nil is returned as is.
func OrStorage(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return Storage(err)
}
