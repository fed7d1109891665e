// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/libweb/internal/test/dbcontainer"
	"github.com/momeni/libweb/internal/test/sqlitedb"
	"github.com/momeni/libweb/pkg/adapter/config/cfg1"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb"
	"github.com/momeni/libweb/pkg/adapter/db/gormdb/schemarp"
	"github.com/momeni/libweb/pkg/adapter/restful/gin"
	"github.com/momeni/libweb/pkg/adapter/restful/gin/routes"
	"github.com/momeni/libweb/pkg/core/model"
	"github.com/momeni/libweb/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const prefix = routes.APIPrefix + "/"

type errBody struct {
	Kind   string
	Detail string
	Fields map[string][]string
}

type GinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *gormdb.Pool
	Gin  *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, &GinTestSuite{Ctx: context.Background()})
}

func (gts *GinTestSuite) SetupTest() {
	gts.Pool = sqlitedb.New(gts.Ctx, gts.T(), true)
	gts.Gin = newEngine(gts.Ctx, gts.T(), gts.Pool)
}

func newEngine(ctx context.Context, t *testing.T, p repo.Pool) *gin.Engine {
	e := gin.New(gin.RequestID(), gin.Recovery())
	require.NotNil(t, e, "cannot instantiate Gin engine")
	err := routes.Register(ctx, e, p, &cfg1.Config{})
	require.NoError(t, err, "failed to register Gin routes")
	return e
}

func jsonBody(t *testing.T, v any) io.Reader {
	b, err := json.Marshal(v)
	require.NoError(t, err, "cannot marshal request body")
	return bytes.NewReader(b)
}

func urlEncoded(m map[string]string) io.Reader {
	u := url.Values{}
	for k, v := range m {
		u.Set(k, v)
	}
	return strings.NewReader(u.Encode())
}

// serve sends a request to e and decodes its JSON response into res
// if res is not nil.
func serve(
	t *testing.T, e *gin.Engine, method, path string, body io.Reader,
	res any,
) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, prefix+path, body)
	require.NoError(t, err, "cannot create %s request", method)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if res != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), res), "body is not json: %s", w.Body.String())
	}
	return w
}

func (gts *GinTestSuite) rent(body map[string]any, res any) int {
	return serve(gts.T(), gts.Gin, http.MethodPost, "rentals", jsonBody(gts.T(), body), res).Code
}

func (gts *GinTestSuite) giveBack(body map[string]any, res any) int {
	return serve(gts.T(), gts.Gin, http.MethodPost, "rentals/return", jsonBody(gts.T(), body), res).Code
}

func (gts *GinTestSuite) stats() model.LibraryStats {
	var s model.LibraryStats
	w := serve(gts.T(), gts.Gin, http.MethodGet, "analytics/stats", nil, &s)
	gts.Equal(http.StatusOK, w.Code)
	return s
}

func (gts *GinTestSuite) TestRentAndReturnLifecycle() {
	var r model.Rental
	gts.Require().Equal(http.StatusCreated, gts.rent(map[string]any{
		"member_id": 1, "copy_id": 7,
	}, &r))
	gts.Equal(int64(1), r.MemberID)
	gts.Equal(int64(7), r.CopyID)
	gts.False(r.Returned)
	gts.Nil(r.ReturnedAt)
	gts.Equal(model.LibraryStats{
		TotalBooks: 4, TotalCopies: 7, TotalMembers: 2,
		BorrowedCopies: 1, AvailableCopies: 6,
	}, gts.stats())

	var eb errBody
	gts.Equal(http.StatusConflict, gts.rent(map[string]any{
		"member_id": 2, "copy_id": 7,
	}, &eb))
	gts.Equal("unavailable", eb.Kind)
	gts.Equal("copy 7 is not available", eb.Detail)

	var cp model.CopyDetails
	w := serve(gts.T(), gts.Gin, http.MethodGet, "copies/7", nil, &cp)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(int64(7), cp.ID)
	gts.Equal("9780553380163", cp.ISBN)
	gts.False(cp.Available)
	gts.Equal("A Brief History of Time", cp.Title)

	var cur model.Rental
	w = serve(gts.T(), gts.Gin, http.MethodGet, "copies/7/rental", nil, &cur)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(r.ID, cur.ID)
	gts.Equal(int64(7), cur.CopyID)
	gts.False(cur.Returned)

	var open []model.OpenRental
	w = serve(gts.T(), gts.Gin, http.MethodGet, "rentals", nil, &open)
	gts.Equal(http.StatusOK, w.Code)
	if gts.Len(open, 1) {
		gts.Equal(r.ID, open[0].ID)
		gts.Equal(int64(7), open[0].CopyID)
		gts.Equal("Ada Lovelace", open[0].MemberName)
	}

	var ret struct {
		Success bool
		Rental  model.Rental
	}
	gts.Require().Equal(http.StatusOK, gts.giveBack(map[string]any{
		"member_id": 1, "copy_id": 7,
	}, &ret))
	gts.True(ret.Success)
	gts.Equal(r.ID, ret.Rental.ID)
	gts.True(ret.Rental.Returned)
	gts.NotNil(ret.Rental.ReturnedAt)

	eb = errBody{}
	gts.Equal(http.StatusNotFound, gts.giveBack(map[string]any{
		"member_id": 1, "copy_id": 7,
	}, &eb))
	gts.Equal("not_found", eb.Kind)
	gts.Equal(int64(0), gts.stats().BorrowedCopies)

	eb = errBody{}
	w = serve(gts.T(), gts.Gin, http.MethodGet, "copies/7/rental", nil, &eb)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.Equal("copy 7 is not rented", eb.Detail)
	cp = model.CopyDetails{}
	serve(gts.T(), gts.Gin, http.MethodGet, "copies/7", nil, &cp)
	gts.True(cp.Available)

	var hs []model.RentalHistoryEntry
	w = serve(gts.T(), gts.Gin, http.MethodGet, "books/9780553380163/history", nil, &hs)
	gts.Equal(http.StatusOK, w.Code)
	if gts.Len(hs, 1) {
		gts.Equal(r.ID, hs[0].ID)
		gts.Equal(int64(7), hs[0].CopyID)
		gts.Equal("Ada Lovelace", hs[0].MemberName)
		gts.True(hs[0].Returned)
	}
}

func (gts *GinTestSuite) TestRentByBookAndTitle() {
	var r1, r2 model.Rental
	gts.Equal(http.StatusCreated, gts.rent(map[string]any{
		"member_id": 2, "isbn": "9780441172719",
	}, &r1))
	gts.Equal(int64(4), r1.CopyID)
	gts.Equal(http.StatusCreated, gts.rent(map[string]any{
		"member_id": 2, "title": "dune",
	}, &r2))
	gts.Equal(int64(5), r2.CopyID)

	var eb errBody
	gts.Equal(http.StatusConflict, gts.rent(map[string]any{
		"member_id": 1, "title": "Dune",
	}, &eb))
	gts.Equal(`no copy of book "9780441172719" is available`, eb.Detail)

	var avail struct {
		ISBN    string
		CopyIDs []int64 `json:"copy_ids"`
	}
	w := serve(gts.T(), gts.Gin, http.MethodGet, "books/9780441172719/available-copies", nil, &avail)
	gts.Equal(http.StatusOK, w.Code)
	gts.Empty(avail.CopyIDs)

	var open []model.MemberRental
	w = serve(gts.T(), gts.Gin, http.MethodGet, "members/2/rentals", nil, &open)
	gts.Equal(http.StatusOK, w.Code)
	if gts.Len(open, 2) {
		gts.Equal(r1.ID, open[0].ID)
		gts.Equal(int64(4), open[0].CopyID)
		gts.Equal(r2.ID, open[1].ID)
		gts.Equal(int64(5), open[1].CopyID)
		gts.False(open[1].Returned)
	}

	var ret struct{ Rental model.Rental }
	gts.Equal(http.StatusOK, gts.giveBack(map[string]any{
		"member_id": 2, "isbn": "9780441172719",
	}, &ret))
	gts.Equal(r1.ID, ret.Rental.ID, "oldest rental is closed first")
}

func (gts *GinTestSuite) TestRentalLimit() {
	for cid := 1; cid <= 3; cid++ {
		gts.Require().Equal(http.StatusCreated, gts.rent(map[string]any{
			"member_id": 1, "copy_id": cid,
		}, nil))
	}
	var eb errBody
	gts.Equal(http.StatusUnprocessableEntity, gts.rent(map[string]any{
		"member_id": 1, "copy_id": 4,
	}, &eb))
	gts.Equal("rental_limit_exceeded", eb.Kind)
	gts.Equal("member 1 already has 3 open rentals (limit is 3)", eb.Detail)

	var open []model.OpenRental
	w := serve(gts.T(), gts.Gin, http.MethodGet, "rentals", nil, &open)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(open, 3)
}

func (gts *GinTestSuite) TestRentFailures() {
	for _, tc := range []struct {
		name   string
		body   map[string]any
		code   int
		kind   string
		detail string
	}{
		{
			"missing member", map[string]any{"member_id": 99, "copy_id": 1},
			http.StatusNotFound, "not_found", "member 99 not found",
		},
		{
			"missing copy", map[string]any{"member_id": 1, "copy_id": 99},
			http.StatusNotFound, "not_found", "copy 99 not found",
		},
		{
			"missing title", map[string]any{"member_id": 1, "title": "Nope"},
			http.StatusNotFound, "not_found", `book titled "Nope" not found`,
		},
		{
			"no selector", map[string]any{"member_id": 1},
			http.StatusBadRequest, "validation_error",
			"exactly one of copy_id, isbn, or title is required",
		},
		{
			"two selectors",
			map[string]any{"member_id": 1, "copy_id": 1, "isbn": "9780261103344"},
			http.StatusBadRequest, "validation_error",
			"exactly one of copy_id, isbn, or title is required",
		},
		{
			"no member", map[string]any{"copy_id": 1},
			http.StatusBadRequest, "validation_error",
			"invalid request fields",
		},
	} {
		gts.Run(tc.name, func() {
			var eb errBody
			gts.Equal(tc.code, gts.rent(tc.body, &eb))
			gts.Equal(tc.kind, eb.Kind)
			gts.Equal(tc.detail, eb.Detail)
		})
	}
	gts.Equal(int64(0), gts.stats().BorrowedCopies)
}

func (gts *GinTestSuite) TestMissingMemberIDField() {
	var eb errBody
	gts.Equal(http.StatusBadRequest, gts.rent(map[string]any{"copy_id": 1}, &eb))
	if gts.Len(eb.Fields["member_id"], 1) {
		gts.Contains(eb.Fields["member_id"][0], "failed on the 'required' tag")
	}
}

func (gts *GinTestSuite) TestFormEncodedRent() {
	req, err := http.NewRequest(
		http.MethodPost, prefix+"rentals",
		urlEncoded(map[string]string{"member_id": "2", "copy_id": "6"}),
	)
	gts.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	gts.Equal(http.StatusCreated, w.Code)
	var r model.Rental
	gts.NoError(json.Unmarshal(w.Body.Bytes(), &r))
	gts.Equal(int64(6), r.CopyID)
}

func (gts *GinTestSuite) TestBooksAndMembers() {
	var bs []model.BookCopies
	w := serve(gts.T(), gts.Gin, http.MethodGet, "books", nil, &bs)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(bs, 4)

	var bc model.BookCopies
	w = serve(gts.T(), gts.Gin, http.MethodPost, "books", jsonBody(gts.T(), map[string]any{
		"isbn": "111", "title": "New Book", "author": "Someone",
		"publication_year": 2020, "genres": "fantasy, Sci-Fi", "copies": 2,
	}), &bc)
	gts.Equal(http.StatusCreated, w.Code)
	gts.Equal(2, bc.TotalCopies)
	gts.Equal(2, bc.AvailableCopies)

	var eb errBody
	w = serve(gts.T(), gts.Gin, http.MethodGet, "books/999", nil, &eb)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.Equal(`book "999" not found`, eb.Detail)

	var m model.Member
	w = serve(gts.T(), gts.Gin, http.MethodPost, "members", jsonBody(gts.T(), map[string]any{
		"first_name": "Grace", "surname": "Hopper",
		"email": "grace@example.org", "phone": "555-0101",
		"address": "1 Navy Way", "city": "Arlington", "postcode": "22201",
	}), &m)
	gts.Equal(http.StatusCreated, w.Code)
	gts.Equal(int64(3), m.ID)

	var ms []model.Member
	w = serve(gts.T(), gts.Gin, http.MethodGet, "members/search?q=hop", nil, &ms)
	gts.Equal(http.StatusOK, w.Code)
	if gts.Len(ms, 1) {
		gts.Equal("Grace Hopper", ms[0].FullName())
	}

	eb = errBody{}
	w = serve(gts.T(), gts.Gin, http.MethodPost, "members", jsonBody(gts.T(), map[string]any{
		"first_name": "Ada", "surname": "Again",
		"email": "ADA@example.org", "phone": "1",
		"address": "x", "city": "y", "postcode": "z",
	}), &eb)
	gts.Equal(http.StatusConflict, w.Code)
	gts.Equal("conflict", eb.Kind)
}

func (gts *GinTestSuite) TestRequestID() {
	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, prefix+"analytics/books/total", nil)
	gts.Require().NoError(err)
	req.Header.Set(gin.RequestIDHeader, id)
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(id, w.Header().Get(gin.RequestIDHeader))
	gts.JSONEq(`{"count":4}`, w.Body.String())

	w = serve(gts.T(), gts.Gin, http.MethodGet, "analytics/members/total", nil, nil)
	_, err = uuid.Parse(w.Header().Get(gin.RequestIDHeader))
	gts.NoError(err, "a fresh request id is expected")
}

func (gts *GinTestSuite) TestPages() {
	for _, path := range []string{"/", "/books", "/books?q=dune"} {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		gts.Require().NoError(err)
		w := httptest.NewRecorder()
		gts.Gin.ServeHTTP(w, req)
		gts.Equal(http.StatusOK, w.Code, path)
		gts.Contains(w.Header().Get("Content-Type"), "text/html", path)
	}
	req, err := http.NewRequest(http.MethodGet, "/books?q=dune", nil)
	gts.Require().NoError(err)
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	gts.Contains(w.Body.String(), "Frank Herbert")
	gts.NotContains(w.Body.String(), "The Hobbit")
}

func TestRateLimit(t *testing.T) {
	e := gin.New(gin.RateLimit(1, 2))
	e.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		e.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

// IntegrationGinTestSuite runs the rent and return lifecycle against a
// PostgreSQL container.
type IntegrationGinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *gormdb.Pool
	Gin  *gin.Engine
}

func TestIntegrationGinTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationGinTestSuite{
		Ctx:  ctx,
		Pool: pool,
	})
}

func (igts *IntegrationGinTestSuite) SetupSuite() {
	sch := schemarp.New("", nil)
	err := igts.Pool.Conn(
		igts.Ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				return sch.Tx(tx).InitDevSchema(ctx)
			})
		},
	)
	igts.Require().NoError(err, "failed to create schema contents")
	igts.Gin = newEngine(igts.Ctx, igts.T(), igts.Pool)
}

func (igts *IntegrationGinTestSuite) TestRentAndReturn() {
	t := igts.T()
	var r model.Rental
	w := serve(t, igts.Gin, http.MethodPost, "rentals", jsonBody(t, map[string]any{
		"member_id": 2, "isbn": "9780261103344",
	}), &r)
	igts.Require().Equal(http.StatusCreated, w.Code)
	igts.Equal(int64(1), r.CopyID)

	var eb errBody
	w = serve(t, igts.Gin, http.MethodPost, "rentals", jsonBody(t, map[string]any{
		"member_id": 1, "copy_id": 1,
	}), &eb)
	igts.Equal(http.StatusConflict, w.Code)
	igts.Equal("copy 1 is not available", eb.Detail)

	w = serve(t, igts.Gin, http.MethodPost, "rentals/return", jsonBody(t, map[string]any{
		"member_id": 2, "copy_id": 1,
	}), nil)
	igts.Equal(http.StatusOK, w.Code)

	var s model.LibraryStats
	w = serve(t, igts.Gin, http.MethodGet, "analytics/stats", nil, &s)
	igts.Equal(http.StatusOK, w.Code)
	igts.Equal(int64(0), s.BorrowedCopies)
	igts.Equal(s.TotalCopies, s.AvailableCopies)
}
