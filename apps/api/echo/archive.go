package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
)

type archiveApi struct {
	mgr *archive.Manager
}

type ArchiveRequest struct {
	WeekID string `json:"week_id"`
}

func registerArchiveAPI(sg *echo.Group, deps ServerDeps) {
	api := archiveApi{mgr: deps.ArchiveMgr}

	sg.GET("/archives", api.query)
	sg.POST("/archives", api.create)
	sg.GET("/archives/:archive", api.retrieve)
}

func (api *archiveApi) create(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data ArchiveRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ArchiveRequest")
	}
	if data.WeekID = strings.TrimSpace(data.WeekID); data.WeekID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "week_id", Error: "this field is required"})
	}

	set, err := api.mgr.ArchiveWeekPlans(ctx.Request().Context(), sch.ID, data.WeekID)
	if err != nil {
		return errors.Wrap(err, "archiving week plans")
	}
	return ctx.JSON(http.StatusCreated, set)
}

func (api *archiveApi) query(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	sets, err := api.mgr.GetArchivedPlans(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "querying archived plans")
	}
	return ctx.JSON(http.StatusOK, sets)
}

func (api *archiveApi) retrieve(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	set, err := api.mgr.GetPlanSet(ctx.Request().Context(), sch.ID, ctx.Param("archive"))
	if err != nil {
		return errors.Wrap(err, "getting archived plans")
	}
	return ctx.JSON(http.StatusOK, set)
}
