package echoapi

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=name,-grade`. A leading "-" orders descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pathParam returns the decoded path param. Echo routes on the raw path, leaving params
// escaped, only when the request path has a RawPath.
func pathParam(ctx echo.Context, name string) (string, error) {
	val := ctx.Param(name)
	if ctx.Request().URL.RawPath == "" {
		return val, nil
	}
	return url.PathUnescape(val)
}

// classTitleParam builds the class title out of the :grade and :section path params.
func classTitleParam(ctx echo.Context) (core.ClassTitle, error) {
	grade, err := pathParam(ctx, "grade")
	if err != nil {
		return core.ClassTitle{}, core.NewValidationError(errors.Wrap(err, "grade"))
	}
	section, err := pathParam(ctx, "section")
	if err != nil {
		return core.ClassTitle{}, core.NewValidationError(errors.Wrap(err, "section"))
	}
	title := core.NewClassTitle(grade, section)
	if !title.Valid() {
		return core.ClassTitle{}, core.NewValidationError(core.ErrInvalidClassTitle)
	}
	return title, nil
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}

	BulkResponse struct {
		Saved  int    `json:"saved"`
		Failed int    `json:"failed"`
		Error  string `json:"error,omitempty"`
	}
)
