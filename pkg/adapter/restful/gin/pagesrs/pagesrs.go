// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pagesrs serves the HTML pages of the library, namely the
// dashboard which shows the library counters and the books catalogue.
// Templates are embedded in the binary.
package pagesrs

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/core/cerr"
	"github.com/momeni/libweb/pkg/core/usecase/bookuc"
	"github.com/momeni/libweb/pkg/core/usecase/statsuc"
)

//go:embed templates/*.html
var templatesFS embed.FS

type resource struct {
	books *bookuc.UseCase
	stats *statsuc.UseCase
}

// Register loads the embedded templates into the e engine and adds
// the GET / and GET /books pages. Errors are rendered with the
// error.html template.
func Register(e *gin.Engine, books *bookuc.UseCase, stats *statsuc.UseCase) {
	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	e.SetHTMLTemplate(tmpl)
	rs := &resource{books: books, stats: stats}
	e.GET("/", rs.Dashboard)
	e.GET("/books", rs.Books)
}

func (rs *resource) Dashboard(c *gin.Context) {
	s, err := rs.stats.Stats(c)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Stats": s})
}

func (rs *resource) Books(c *gin.Context) {
	q := c.Query("q")
	var (
		data = gin.H{"Query": q}
		err  error
	)
	if q == "" {
		data["Books"], err = rs.books.List(c)
	} else {
		data["Results"], err = rs.books.Search(c, q)
	}
	if err != nil {
		renderErr(c, err)
		return
	}
	c.HTML(http.StatusOK, "books.html", data)
}

func renderErr(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusInternalServerError
	var ce *cerr.Error
	if errors.As(err, &ce) {
		status = ce.HTTPStatusCode
	}
	c.HTML(status, "error.html", gin.H{
		"Error": err.Error(),
	})
}
