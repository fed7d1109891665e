// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine and the middlewares which are
// shared by all resources, so the configuration layer can instantiate
// an engine without depending on the gin-gonic package directly.
package gin

import (
	"log/slog"

	ginslog "github.com/FabienMht/ginslog/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/momeni/libweb/pkg/core/log"
)

type (
	HandlerFunc = gin.HandlerFunc
	Engine      = gin.Engine
	Context     = gin.Context
)

// RequestIDHeader is the header which carries the request id, both in
// requests (if a proxy assigned one) and in responses.
const RequestIDHeader = "X-Request-ID"

// New instantiates an engine and registers the given middlewares.
// The request context is consulted as a fallback by the gin.Context
// Value method, so attributes which are attached by the RequestID
// middleware reach the use cases logs.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(middlewares...)
	return e
}

// Logger logs one record per request using the l logger.
func Logger(l *slog.Logger) HandlerFunc {
	return ginslog.New(l)
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}

// RequestID assigns a random id to each request, unless one is given
// by the X-Request-ID header, and attaches it to the request context
// for logging.
func RequestID() HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		ctx := log.WithAttrs(
			c.Request.Context(), slog.String("request_id", id),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
