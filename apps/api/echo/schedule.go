package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/school"
)

type scheduleApi struct {
	svc       *schedule.Service
	schoolSvc *school.Service
}

type ScheduleResponse struct {
	Class    core.ClassTitle         `json:"class"`
	Cells    schedule.Schedule       `json:"cells"`
	Rendered []schedule.RenderedCell `json:"rendered"`
}

func registerScheduleAPI(sg *echo.Group, deps ServerDeps) {
	api := scheduleApi{svc: deps.ScheduleSvc, schoolSvc: deps.SchoolSvc}

	sg.GET("/schedules/clashes", api.clashes)
	sg.GET("/schedules/:grade/:section", api.retrieve)
	sg.PUT("/schedules/:grade/:section", api.save)
}

func (api *scheduleApi) respond(ctx echo.Context, code int, sch school.School, class core.ClassTitle) error {
	cells, err := api.svc.Get(ctx.Request().Context(), sch.ID, class)
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	subjects, teachers, err := api.schoolSvc.Lookups(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "getting lookups")
	}
	return ctx.JSON(code, ScheduleResponse{
		Class:    class,
		Cells:    cells,
		Rendered: schedule.Render(cells, subjects, teachers),
	})
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	class, err := classTitleParam(ctx)
	if err != nil {
		return err
	}
	return api.respond(ctx, http.StatusOK, sch, class)
}

func (api *scheduleApi) save(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	class, err := classTitleParam(ctx)
	if err != nil {
		return err
	}

	var data schedule.SaveSchedule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveSchedule")
	}
	cells, err := data.Validate()
	if err != nil {
		return err
	}

	if err = api.svc.Save(ctx.Request().Context(), sch.ID, class, cells); err != nil {
		return errors.Wrap(err, "saving schedule")
	}
	return api.respond(ctx, http.StatusOK, sch, class)
}

func (api *scheduleApi) clashes(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	clashes, err := api.svc.TeacherClashes(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "finding teacher clashes")
	}
	return ctx.JSON(http.StatusOK, clashes)
}
