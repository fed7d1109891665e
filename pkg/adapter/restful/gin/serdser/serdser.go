// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared by all resources.
package serdser

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/libweb/pkg/core/cerr"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports a struct field by its uri, form, or json name,
// so validation errors mention the names which clients send.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"uri", "form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Bind deserializes the request body (and query string) into req
// using the b binding and validates it. On failure, a 400 response is
// sent and false is returned.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return handle(c, c.ShouldBindWith(req, b))
}

// BindBody binds req based on the request method and content type,
// i.e., a JSON body or a url-encoded form.
func BindBody(c *gin.Context, req any) bool {
	return Bind(c, req, binding.Default(c.Request.Method, c.ContentType()))
}

// BindURI binds the path params into req and validates it.
func BindURI(c *gin.Context, req any) bool {
	return handle(c, c.ShouldBindUri(req))
}

func handle(c *gin.Context, err error) bool {
	var ive *validator.InvalidValidationError
	var ves validator.ValidationErrors
	switch {
	case err == nil:
		return true
	case errors.As(err, &ive):
		c.JSON(http.StatusInternalServerError, gin.H{
			"kind":   cerr.KindStorage,
			"detail": ive.Error(),
		})
	case errors.As(err, &ves):
		var nameToErrs map[string][]string
		for _, ferr := range ves {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   cerr.KindValidation,
			"detail": "invalid request fields",
			"fields": nameToErrs,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   cerr.KindValidation,
			"detail": err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the name field errors.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// SerErr sends err as a JSON body like {"kind": ..., "detail": ...}.
// The status code is taken from a cerr.Error in the err chain, while
// unclassified errors are reported as storage errors.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if !errors.As(err, &ce) {
		ce = cerr.Storage(err)
	}
	c.JSON(ce.HTTPStatusCode, gin.H{
		"kind":   ce.Kind,
		"detail": ce.Err.Error(),
	})
}

// Success sends a {"success": true} body with the 200 status code.
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
