package util

import (
	"context"
	"errors"
	"net/http"

	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/labstack/echo/v4"
)

// NewHTTPError maps an error from the media service to the HTTP status
// best describing it. The error is attached as the internal error so the
// logger middleware records the cause.
func NewHTTPError(err error) *echo.HTTPError {
	var (
		fetchErr      *ytdlp.MetadataFetchError
		resolutionErr *pipeline.FormatResolutionError
		spawnErr      *pipeline.SpawnError
		status        int
	)

	switch {
	case errors.Is(err, ytdlp.ErrInvalidLocator):
		status = http.StatusBadRequest
	case errors.As(err, &resolutionErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &spawnErr):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}
