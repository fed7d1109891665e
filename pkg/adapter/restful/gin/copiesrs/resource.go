// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package copiesrs realizes the copies resource. Copies are managed by
// the books use case since each copy belongs to a book.
package copiesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
)

type resource struct {
	books *bookuc.UseCase
}

type isbnURI struct {
	ISBN string `uri:"isbn" binding:"required"`
}

type copyURI struct {
	CopyID int64 `uri:"cid" binding:"required,gt=0"`
}

// Register adds the copies REST APIs, namely:
//  1. GET books/:isbn/copies and GET books/:isbn/copies/available,
//  2. POST books/:isbn/copies, adding one available copy,
//  3. GET copies (per-book copy counts) and GET copies/rented,
//  4. GET copies/:cid and DELETE copies/:cid.
func Register(r *gin.RouterGroup, books *bookuc.UseCase) {
	rs := &resource{books: books}
	r.GET("books/:isbn/copies", rs.listCopies(false))
	r.GET("books/:isbn/copies/available", rs.listCopies(true))
	r.POST("books/:isbn/copies", rs.AddCopy)
	r.GET("copies", rs.Summaries)
	r.GET("copies/rented", rs.ListRented)
	r.GET("copies/:cid", rs.GetCopy)
	r.DELETE("copies/:cid", rs.DeleteCopy)
}

func (rs *resource) listCopies(availableOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &isbnURI{}
		if !serdser.BindURI(c, req) {
			return
		}
		cs, err := rs.books.ListCopies(c, req.ISBN, availableOnly)
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cs)
	}
}

func (rs *resource) AddCopy(c *gin.Context) {
	req := &isbnURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	cp, err := rs.books.AddCopy(c, req.ISBN)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (rs *resource) Summaries(c *gin.Context) {
	bcs, err := rs.books.Summaries(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bcs)
}

func (rs *resource) ListRented(c *gin.Context) {
	cds, err := rs.books.ListRented(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cds)
}

func (rs *resource) GetCopy(c *gin.Context) {
	req := &copyURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	cd, err := rs.books.GetCopy(c, req.CopyID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cd)
}

func (rs *resource) DeleteCopy(c *gin.Context) {
	req := &copyURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	if err := rs.books.DeleteCopy(c, req.CopyID); err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.Success(c)
}
