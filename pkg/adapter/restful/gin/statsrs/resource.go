// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package statsrs realizes the analytics resource which reports the
// library-wide counters.
package statsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/usecase/statsuc"
)

type resource struct {
	stats *statsuc.UseCase
}

// Register adds GET analytics/stats, returning all counters, and one
// GET endpoint per counter which responds with {"count": n}.
func Register(r *gin.RouterGroup, stats *statsuc.UseCase) {
	rs := &resource{stats: stats}
	r.GET("analytics/stats", rs.Stats)
	r.GET("analytics/books/total", rs.count(func(s *model.LibraryStats) int64 {
		return s.TotalBooks
	}))
	r.GET("analytics/members/total", rs.count(func(s *model.LibraryStats) int64 {
		return s.TotalMembers
	}))
	r.GET("analytics/books/borrowed", rs.count(func(s *model.LibraryStats) int64 {
		return s.BorrowedCopies
	}))
	r.GET("analytics/books/available", rs.count(func(s *model.LibraryStats) int64 {
		return s.AvailableCopies
	}))
}

func (rs *resource) Stats(c *gin.Context) {
	s, err := rs.stats.Stats(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (rs *resource) count(pick func(*model.LibraryStats) int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := rs.stats.Stats(c)
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": pick(s)})
	}
}
