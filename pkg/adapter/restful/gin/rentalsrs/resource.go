// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentalsrs realizes the rentals resource, allowing members to
// rent and return copies through the rentals use case.
package rentalsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libweb/pkg/core/usecase/rentaluc"
)

type resource struct {
	rentals *rentaluc.UseCase
}

// Register adds the rentals REST APIs including:
//  1. GET rentals, listing all open rentals,
//  2. POST rentals with member_id and one of copy_id, isbn, or title,
//     renting a copy and responding with 201 and the rental,
//  3. POST rentals/return with member_id and one of copy_id or isbn,
//     closing an open rental,
//  4. GET books/:isbn/available-copies and GET books/:isbn/history,
//  5. GET copies/:cid/rental, showing the open rental of a copy.
func Register(r *gin.RouterGroup, rentals *rentaluc.UseCase) {
	rs := &resource{rentals: rentals}
	r.GET("rentals", rs.ListOpen)
	r.POST("rentals", rs.Rent)
	r.POST("rentals/return", rs.Return)
	r.GET("books/:isbn/available-copies", rs.AvailableCopies)
	r.GET("books/:isbn/history", rs.History)
	r.GET("copies/:cid/rental", rs.CopyRental)
}

func (rs *resource) ListOpen(c *gin.Context) {
	open, err := rs.rentals.ListOpen(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, open)
}

func (rs *resource) Rent(c *gin.Context) {
	req := &rentReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	r, err := rs.rentals.Rent(c, req.MemberID, req.selector())
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (rs *resource) Return(c *gin.Context) {
	req := &returnReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	r, err := rs.rentals.Return(c, req.MemberID, req.selector())
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rental": r})
}

func (rs *resource) AvailableCopies(c *gin.Context) {
	req := &isbnURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	ids, err := rs.rentals.AvailableCopies(c, req.ISBN)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isbn": req.ISBN, "copy_ids": ids})
}

func (rs *resource) History(c *gin.Context) {
	req := &isbnURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	hs, err := rs.rentals.History(c, req.ISBN)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

func (rs *resource) CopyRental(c *gin.Context) {
	req := &copyURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	r, err := rs.rentals.CopyRental(c, req.CopyID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
