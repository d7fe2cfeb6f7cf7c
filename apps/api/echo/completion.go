package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/completion"
)

type completionApi struct {
	resolver  *completion.Resolver
	reminders *completion.Reminders
}

func registerCompletionAPI(sg *echo.Group, deps ServerDeps) {
	api := completionApi{resolver: deps.Resolver, reminders: deps.Reminders}

	sg.GET("/completion", api.retrieve)
	sg.POST("/completion/reminders", api.sendReminders)
}

func (api *completionApi) retrieve(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	res, err := api.resolver.Resolve(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "resolving completion")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *completionApi) sendReminders(ctx echo.Context) error {
	sch, err := getContextSchool(ctx)
	if err != nil {
		return err
	}
	sent, err := api.reminders.Send(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "sending reminders")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: sent})
}
