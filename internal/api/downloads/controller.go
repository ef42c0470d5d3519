package downloads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hbomb79/Siphon/internal/api/util"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/hbomb79/Siphon/pkg/sync"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("DownloadsController")

type (
	// DownloadRequest is accepted either as a JSON body or as query
	// parameters, so that a plain link can trigger a download.
	DownloadRequest struct {
		URL    string `json:"url" query:"url" validate:"required,url"`
		Format string `json:"format" query:"format" validate:"required"`
		Type   string `json:"type" query:"type" validate:"omitempty,oneof=direct progressive merged"`
		Audio  string `json:"audio" query:"audio"`
	}

	DownloadDto struct {
		ID        uuid.UUID            `json:"id"`
		URL       string               `json:"url"`
		Topology  string               `json:"topology"`
		State     string               `json:"state"`
		BytesRead int64                `json:"bytes_read"`
		StartedAt time.Time            `json:"started_at"`
		Stages    []pipeline.StageInfo `json:"stages"`
	}

	Service interface {
		OpenPipeline(ctx context.Context, request media.Request) (*pipeline.Pipeline, error)
	}

	activeDownload struct {
		url      string
		pipeline *pipeline.Pipeline
	}

	Controller struct {
		service  Service
		validate *validator.Validate
		timeout  time.Duration
		active   *sync.TypedSyncMap[uuid.UUID, *activeDownload]
	}
)

// New constructs the downloads controller. A positive timeout bounds
// the lifetime of each download's pipeline.
func New(validate *validator.Validate, service Service, timeout time.Duration) *Controller {
	return &Controller{
		service:  service,
		validate: validate,
		timeout:  timeout,
		active:   &sync.TypedSyncMap[uuid.UUID, *activeDownload]{},
	}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/download/", controller.download)
	eg.POST("/download/", controller.download)
	eg.GET("/downloads/", controller.list)
}

// download opens a pipeline for the requested format and streams its
// output as the response body. The pipeline is torn down when the
// client goes away.
func (controller *Controller) download(ec echo.Context) error {
	var request DownloadRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}

	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}

	kind, err := pipeline.ParseKind(request.Type)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := ec.Request().Context()
	if controller.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, controller.timeout)
		defer cancel()
	}

	p, err := controller.service.OpenPipeline(ctx, media.Request{
		Locator:       request.URL,
		Kind:          kind,
		FormatID:      request.Format,
		AudioFormatID: request.Audio,
	})
	if err != nil {
		return util.NewHTTPError(err)
	}
	defer p.Close()

	controller.active.Store(p.ID(), &activeDownload{url: request.URL, pipeline: p})
	defer controller.active.Delete(p.ID())

	topology := p.Topology()
	res := ec.Response()
	res.Header().Set(echo.HeaderContentType, topology.ContentType())
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "video."+topology.Extension()))
	res.WriteHeader(http.StatusOK)
	res.Flush()

	written, err := io.Copy(flushWriter{res}, p)
	if err != nil {
		if errors.Is(err, pipeline.ErrPipelineClosed) {
			log.Emit(logger.STOP, "Download %s stopped after %d bytes: %v\n", p.ID(), written, err)
		} else {
			log.Emit(logger.ERROR, "Download %s failed after %d bytes: %v\n", p.ID(), written, err)
		}

		// The status line has already been sent. Aborting the connection is
		// the only way left to tell the client the body is incomplete.
		panic(http.ErrAbortHandler)
	}

	log.Emit(logger.SUCCESS, "Download %s complete (%d bytes)\n", p.ID(), written)
	return nil
}

// list returns every download currently streaming.
func (controller *Controller) list(ec echo.Context) error {
	return ec.JSON(http.StatusOK, util.ApplyConversion(controller.active.Values(), newDownloadDto))
}

// CloseAll tears down every download currently streaming.
func (controller *Controller) CloseAll() {
	controller.active.Range(func(id uuid.UUID, download *activeDownload) bool {
		log.Emit(logger.STOP, "Closing download %s\n", id)
		download.pipeline.Close()
		return true
	})
}

// flushWriter pushes every chunk to the client as soon as the pipeline
// produces it.
type flushWriter struct {
	res *echo.Response
}

func (w flushWriter) Write(b []byte) (int, error) {
	n, err := w.res.Write(b)
	if err == nil {
		w.res.Flush()
	}

	return n, err
}

func newDownloadDto(download *activeDownload) DownloadDto {
	p := download.pipeline
	return DownloadDto{
		ID:        p.ID(),
		URL:       download.url,
		Topology:  p.Topology().String(),
		State:     p.State().String(),
		BytesRead: p.BytesRead(),
		StartedAt: p.CreatedAt(),
		Stages:    p.Stages(),
	}
}
