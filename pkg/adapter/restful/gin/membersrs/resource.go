// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package membersrs realizes the members resource.
package membersrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/usecase/memberuc"
	"github.com/momeni/libweb/pkg/core/usecase/rentaluc"
)

type resource struct {
	members *memberuc.UseCase
	rentals *rentaluc.UseCase
}

type idURI struct {
	MemberID int64 `uri:"id" binding:"required"`
}

// memberReq fields are validated by the members use case, so the
// same messages are reported for all clients.
type memberReq struct {
	FirstName string `form:"first_name" json:"first_name"`
	Surname   string `form:"surname" json:"surname"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	Address   string `form:"address" json:"address"`
	City      string `form:"city" json:"city"`
	Postcode  string `form:"postcode" json:"postcode"`
}

func (req *memberReq) toModel(id int64) *model.Member {
	return &model.Member{
		ID:        id,
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Postcode:  req.Postcode,
	}
}

// Register adds the members REST APIs, namely GET members,
// GET members/search?q=..., GET members/:id, POST members,
// PUT members/:id, DELETE members/:id, and GET members/:id/rentals
// which lists the open rentals of a member.
func Register(
	r *gin.RouterGroup,
	members *memberuc.UseCase,
	rentals *rentaluc.UseCase,
) {
	rs := &resource{members: members, rentals: rentals}
	r.GET("members", rs.List)
	r.GET("members/search", rs.Search)
	r.GET("members/:id", rs.Get)
	r.POST("members", rs.Create)
	r.PUT("members/:id", rs.Update)
	r.DELETE("members/:id", rs.Delete)
	r.GET("members/:id/rentals", rs.OpenRentals)
}

func (rs *resource) List(c *gin.Context) {
	ms, err := rs.members.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

func (rs *resource) Search(c *gin.Context) {
	ms, err := rs.members.Search(c, c.Query("q"))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

func (rs *resource) Get(c *gin.Context) {
	uri := &idURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	m, err := rs.members.Get(c, uri.MemberID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (rs *resource) Create(c *gin.Context) {
	req := &memberReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	m := req.toModel(0)
	if err := rs.members.Create(c, m); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (rs *resource) Update(c *gin.Context) {
	uri := &idURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	req := &memberReq{}
	if !serdser.BindBody(c, req) {
		return
	}
	m := req.toModel(uri.MemberID)
	if err := rs.members.Update(c, m); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (rs *resource) Delete(c *gin.Context) {
	uri := &idURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	if err := rs.members.Delete(c, uri.MemberID); err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.Success(c)
}

func (rs *resource) OpenRentals(c *gin.Context) {
	uri := &idURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	rentals, err := rs.rentals.OpenRentals(c, uri.MemberID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rentals)
}
