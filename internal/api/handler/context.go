package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/api/middleware"
	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// actorFrom returns the caller resolved by the Authenticate middleware.
// Anonymous callers get the zero actor; the services decide what they may do.
func actorFrom(c echo.Context) domain.Actor {
	return middleware.ActorFrom(c)
}

// pathID parses a positive integer path parameter. Anything else cannot name
// an existing resource, so it is a 404.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// pageQuery reads the page and limit query parameters. Missing values are
// left at zero for the services to default.
func pageQuery(c echo.Context) (page, limit int, err error) {
	verr := &domain.ValidationError{}
	page = queryInt(c, "page", verr)
	limit = queryInt(c, "limit", verr)
	return page, limit, verr.OrNil()
}

func queryInt(c echo.Context, name string, verr *domain.ValidationError) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(name, "must be a positive integer")
		return 0
	}
	return n
}

func pageFilter(c echo.Context) (ports.PageFilter, error) {
	page, limit, err := pageQuery(c)
	return ports.PageFilter{Page: page, Limit: limit}, err
}

// pageResponse is the paginated list envelope.
type pageResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

func toPageResponse[T any](p ports.Page[T]) pageResponse[T] {
	results := p.Items
	if results == nil {
		results = []T{}
	}
	return pageResponse[T]{
		Count:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(),
		Results:    results,
	}
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
