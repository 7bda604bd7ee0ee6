package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalu/clubhub/core/season"
)

type seasonApi struct {
	svc season.ServiceInterface
}

func registerSeasonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc season.ServiceInterface) {
	api := seasonApi{svc: svc}

	sg := g.Group("/seasons", jwt)
	sg.GET("/active", api.active)
	sg.POST("/start", api.start, adminMiddleware())
	sg.POST("/finish", api.finish, adminMiddleware())
}

// Handlers

func (api *seasonApi) active(ctx echo.Context) error {
	s, err := api.svc.Active(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *seasonApi) start(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	s, err := api.svc.Start(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *seasonApi) finish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	s, err := api.svc.Finish(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}
