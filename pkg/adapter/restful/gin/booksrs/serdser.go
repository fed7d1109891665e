// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrs

import (
	"github.com/goccy/go-json"
	"github.com/momeni/libweb/pkg/core/model"
)

type isbnURI struct {
	ISBN string `uri:"isbn" binding:"required"`
}

// bookReq is accepted both as a url-encoded form and as JSON.
// The isbn is ignored by updates since it is taken from the path.
type bookReq struct {
	ISBN            string `form:"isbn" json:"isbn"`
	Title           string `form:"title" json:"title" binding:"required"`
	Author          string `form:"author" json:"author" binding:"required"`
	PublicationYear int    `form:"publication_year" json:"publication_year" binding:"required"`
	Description     string `form:"description" json:"description"`
	Genres          genres `form:"genres" json:"genres"`
	Copies          int    `form:"copies" json:"copies" binding:"gte=0"`
}

// genres may be given as a comma-separated string or as a list of
// labels (or repeated form fields). A missing value is kept nil, so
// updates can leave the current genres untouched.
type genres []string

func (g *genres) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = genres{s}
		return nil
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*g = labels
	if *g == nil {
		*g = genres{}
	}
	return nil
}

func (req *bookReq) toModel(isbn string) *model.Book {
	b := &model.Book{
		ISBN:            isbn,
		Title:           req.Title,
		Author:          req.Author,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
	}
	if req.Genres != nil {
		b.Genres = []string(req.Genres)
	}
	return b
}
