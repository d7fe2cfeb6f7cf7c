package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/week"
)

type weekApi struct {
	svc      *week.Service
	planSvc  *plan.Service
	validate *validator.Validate
}

func registerWeekAPI(sg *echo.Group, deps ServerDeps) {
	api := weekApi{svc: deps.WeekSvc, planSvc: deps.PlanSvc, validate: deps.Validate}

	wg := sg.Group("/weeks")
	wg.GET("", api.query)
	wg.POST("", api.create)
	wg.GET("/active", api.retrieveActive)
	wg.POST("/:week/activate", api.activate)
	wg.DELETE("/:week", api.destroy)

	wg.GET("/:week/plans", api.queryPlans)
	wg.DELETE("/:week/plans", api.clearPlans)
	wg.PUT("/:week/plans/:key", api.savePlan)
}

// Weeks

func (api *weekApi) create(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data week.NewWeek
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWeek")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	w, err := api.svc.Create(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating week")
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *weekApi) query(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	weeks, err := api.svc.Query(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "querying weeks")
	}
	return ctx.JSON(http.StatusOK, weeks)
}

func (api *weekApi) retrieveActive(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	w, err := api.svc.GetActive(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "getting active week")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *weekApi) activate(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	w, err := api.svc.SetActive(ctx.Request().Context(), sch.ID, ctx.Param("week"))
	if err != nil {
		return errors.Wrap(err, "activating week")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *weekApi) destroy(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), sch.ID, ctx.Param("week")); err != nil {
		return errors.Wrap(err, "deleting week")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Plans

func (api *weekApi) queryPlans(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	plans, err := api.planSvc.Query(ctx.Request().Context(), sch.ID, ctx.Param("week"))
	if err != nil {
		return errors.Wrap(err, "querying plans")
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *weekApi) savePlan(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	rawKey, err := pathParam(ctx, "key")
	if err != nil {
		return core.NewValidationError(plan.ErrKeyValidation, core.FieldError{Field: "key", Error: err.Error()})
	}
	key, err := plan.ParseKey(rawKey)
	if err != nil {
		return err
	}

	var data plan.Entry
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to plan.Entry")
	}

	e, err := api.planSvc.Save(ctx.Request().Context(), sch.ID, ctx.Param("week"), key, data)
	if err != nil {
		return errors.Wrap(err, "saving plan")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *weekApi) clearPlans(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.planSvc.ClearWeek(ctx.Request().Context(), sch.ID, ctx.Param("week")); err != nil {
		return errors.Wrap(err, "clearing plans")
	}
	return ctx.NoContent(http.StatusNoContent)
}
