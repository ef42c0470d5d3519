package info

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Siphon/internal/api/util"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/labstack/echo/v4"
)

type (
	InfoRequest struct {
		URL string `json:"url" query:"url" validate:"required,url"`
	}

	Service interface {
		FetchInfo(ctx context.Context, locator string) (*media.Info, error)
	}

	Controller struct {
		service  Service
		validate *validator.Validate
	}
)

func New(validate *validator.Validate, service Service) *Controller {
	return &Controller{service: service, validate: validate}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/", controller.get)
	eg.GET("/", controller.get)
}

// get returns the title and classified formats of the requested URL.
func (controller *Controller) get(ec echo.Context) error {
	var request InfoRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}

	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}

	info, err := controller.service.FetchInfo(ec.Request().Context(), request.URL)
	if err != nil {
		return util.NewHTTPError(err)
	}

	return ec.JSON(http.StatusOK, info)
}
