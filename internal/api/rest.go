package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Siphon/internal/api/downloads"
	"github.com/hbomb79/Siphon/internal/api/info"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
)

var log = logger.Get("API")

const shutdownTimeout = 10 * time.Second

type (
	RestConfig struct {
		HostAddr string `yaml:"host_addr" env:"API_HOST_ADDR" env-default:"0.0.0.0:4000"`

		// DownloadTimeout bounds the lifetime of a single download. Zero
		// leaves downloads unbounded.
		DownloadTimeout time.Duration `yaml:"download_timeout" env:"API_DOWNLOAD_TIMEOUT" env-default:"0s"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// Service represents the union of all the controller service requirements
	Service interface {
		downloads.Service
		info.Service
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole
	// responsibility is to expose the info and download routes, and to close any
	// downloads still streaming when it is stopped.
	RestGateway struct {
		config             *RestConfig
		ec                 *echo.Echo
		infoController     controller
		downloadController *downloads.Controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the controllers.
func NewRestGateway(config *RestConfig, service Service) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.Logger.SetLevel(glog.WARN)

	validate := validator.New()
	gateway := &RestGateway{
		config:             config,
		ec:                 ec,
		infoController:     info.New(validate, service),
		downloadController: downloads.New(validate, service, config.DownloadTimeout),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())

	ec.GET("/health/", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	infoGroup := ec.Group("/api/v1/info")
	gateway.infoController.SetRoutes(infoGroup)

	v1 := ec.Group("/api/v1")
	gateway.downloadController.SetRoutes(v1)

	return gateway
}

// ServeHTTP allows the gateway to be mounted directly, for example by
// an httptest server.
func (gateway *RestGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gateway.ec.ServeHTTP(w, r)
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.INFO, "Listening on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && err != http.ErrServerClosed {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		gateway.downloadController.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ec.Shutdown(shutdownCtx); err != nil {
			log.Emit(logger.WARNING, "Graceful shutdown failed (%v), closing\n", err)
			ec.Close()
		}
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}
