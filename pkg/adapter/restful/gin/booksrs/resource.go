// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrs realizes the books resource, allowing the catalogue
// REST APIs to be accepted and delegated to the books use cases.
package booksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
)

type resource struct {
	books *bookuc.UseCase
}

// Register instantiates a resource adapting the books use case
// instance with the relevant REST APIs including:
//  1. GET books, listing books with their genres and copy counts,
//  2. GET books/search?q=... for a title, author, or ISBN search,
//  3. GET books/by-title/:title and GET books/:isbn (with its rental
//     history) for fetching one book,
//  4. POST books, PUT books/:isbn, and DELETE books/:isbn,
//  5. GET genres, listing the known genre labels.
func Register(r *gin.RouterGroup, books *bookuc.UseCase) {
	rs := &resource{books: books}
	r.GET("books", rs.List)
	r.GET("books/search", rs.Search)
	r.GET("books/by-title/:title", rs.FindByTitle)
	r.GET("books/:isbn", rs.Details)
	r.POST("books", rs.Create)
	r.PUT("books/:isbn", rs.Update)
	r.DELETE("books/:isbn", rs.Delete)
	r.GET("genres", rs.Genres)
}

func (rs *resource) List(c *gin.Context) {
	bcs, err := rs.books.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bcs)
}

func (rs *resource) Search(c *gin.Context) {
	bs, err := rs.books.Search(c, c.Query("q"))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}

func (rs *resource) FindByTitle(c *gin.Context) {
	b, err := rs.books.FindByTitle(c, c.Param("title"))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) Details(c *gin.Context) {
	req := &isbnURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	d, err := rs.books.Details(c, req.ISBN)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (rs *resource) Create(c *gin.Context) {
	req := &bookReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	bc, err := rs.books.Create(c, req.toModel(req.ISBN), req.Copies)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, bc)
}

func (rs *resource) Update(c *gin.Context) {
	uri := &isbnURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	req := &bookReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	b, err := rs.books.Update(c, req.toModel(uri.ISBN))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) Delete(c *gin.Context) {
	req := &isbnURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	if err := rs.books.Delete(c, req.ISBN); err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.Success(c)
}

func (rs *resource) Genres(c *gin.Context) {
	gs, err := rs.books.Genres(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}
