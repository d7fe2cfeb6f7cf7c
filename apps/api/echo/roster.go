package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/school"
)

type rosterApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerRosterAPI(sg *echo.Group, deps ServerDeps) {
	api := rosterApi{svc: deps.SchoolSvc, validate: deps.Validate}

	sg.GET("/teachers", api.queryTeachers)
	sg.POST("/teachers", api.createTeacher)
	sg.DELETE("/teachers/:id", api.destroyTeacher)

	sg.GET("/subjects", api.querySubjects)
	sg.POST("/subjects", api.createSubject)
	sg.DELETE("/subjects/:id", api.destroySubject)

	sg.GET("/students", api.queryStudents)
	sg.POST("/students", api.createStudent)
	sg.POST("/students/bulk", api.saveBulkStudents)
	sg.DELETE("/students/:id", api.destroyStudent)

	sg.GET("/classes", api.queryClasses)
	sg.POST("/classes", api.createClass)
	sg.POST("/classes/sync", api.syncClasses)
	sg.DELETE("/classes/:id", api.destroyClass)
}

// Teachers

func (api *rosterApi) createTeacher(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data school.NewTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err = data.Validate(ctx.Request().Context(), api.validate, api.svc, sch.ID); err != nil {
		return err
	}

	t, err := api.svc.CreateTeacher(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *rosterApi) queryTeachers(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *rosterApi) destroyTeacher(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTeacher(ctx.Request().Context(), sch.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *rosterApi) createSubject(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data school.NewSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateSubject(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *rosterApi) querySubjects(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *rosterApi) destroySubject(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSubject(ctx.Request().Context(), sch.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *rosterApi) createStudent(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data school.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateStudent(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *rosterApi) saveBulkStudents(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data school.BulkStudents
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkStudents")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	saved, err := api.svc.SaveBulkStudents(ctx.Request().Context(), api.validate, sch.ID, data.Students)
	if err != nil {
		var bulkErr *core.BulkError
		if !errors.As(err, &bulkErr) {
			return errors.Wrap(err, "saving students")
		}
		return ctx.JSON(http.StatusOK, BulkResponse{Saved: bulkErr.Saved, Failed: bulkErr.Failed, Error: bulkErr.Err.Error()})
	}
	return ctx.JSON(http.StatusOK, BulkResponse{Saved: saved})
}

func (api *rosterApi) queryStudents(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx)

	students, err := api.svc.QueryStudents(ctx.Request().Context(), sch.ID, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) destroyStudent(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), sch.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *rosterApi) createClass(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}

	var data school.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.CreateClass(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *rosterApi) queryClasses(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *rosterApi) syncClasses(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.SyncClasses(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "syncing classes")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) destroyClass(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), sch.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}
