package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	mgr      *archive.Manager
	validate *validator.Validate
}

func registerAttendanceAPI(sg *echo.Group, deps ServerDeps) {
	api := attendanceApi{svc: deps.AttendanceSvc, mgr: deps.ArchiveMgr, validate: deps.Validate}

	sg.GET("/attendance", api.query)
	sg.POST("/attendance", api.create)
	sg.POST("/attendance/:report/archive", api.archive)
	sg.POST("/attendance/:report/restore", api.restore)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data attendance.NewReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Submit(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting attendance report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

// query accepts `?archived=true|false`. All reports are listed without it.
func (api *attendanceApi) query(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var filter attendance.QueryFilter
	if val := ctx.QueryParam("archived"); val != "" {
		archived, pErr := strconv.ParseBool(val)
		if pErr != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "archived", Error: "must be true or false"})
		}
		filter.Archived = &archived
	}

	reports, err := api.svc.Query(ctx.Request().Context(), sch.ID, filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance reports")
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *attendanceApi) archive(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	r, err := api.mgr.ArchiveAttendance(ctx.Request().Context(), sch.ID, ctx.Param("report"))
	if err != nil {
		return errors.Wrap(err, "archiving attendance report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) restore(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	r, err := api.mgr.RestoreAttendance(ctx.Request().Context(), sch.ID, ctx.Param("report"))
	if err != nil {
		return errors.Wrap(err, "restoring attendance report")
	}
	return ctx.JSON(http.StatusOK, r)
}
