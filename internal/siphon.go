package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/executable"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Core")

type RunnableService interface {
	Run(context.Context) error
}

// Siphon represents the top-level object for the server, and is responsible
// for resolving the external tools and wiring the media service to the
// REST gateway.
type siphonImpl struct {
	config       SiphonConfig
	mediaService *media.Service
	restGateway  RunnableService
}

func New(config SiphonConfig) (*siphonImpl, error) {
	log.Emit(logger.DEBUG, "Bootstrapping Siphon services using config: %#v\n", config)
	bins, err := executable.Resolve(config.Executables)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve external tools: %w", err)
	}

	mediaService := media.New(ytdlp.New(bins.Ytdlp, config.Metadata), pipeline.NewBuilder(bins, config.Pipeline))
	return &siphonImpl{
		config:       config,
		mediaService: mediaService,
		restGateway:  api.NewRestGateway(&config.RestConfig, mediaService),
	}, nil
}

// Media returns the media service, for callers (such as the CLI) which
// want to use Siphon without running the REST gateway.
func (siphon *siphonImpl) Media() *media.Service { return siphon.mediaService }

// Run will start the REST gateway, and will not return until the provided
// context is cancelled, or a service crashes. Downloads still streaming
// are torn down before Run returns.
func (siphon *siphonImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel(fmt.Errorf("service %s crashed: %w", label, err))
	}

	wg := &sync.WaitGroup{}
	siphon.spawnAsyncService(ctx, wg, siphon.restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Siphon services spawned!\n")

	wg.Wait()
	log.Emit(logger.STOP, "Siphon services stopped\n")

	if cause := context.Cause(ctx); cause != nil && cause != ctx.Err() {
		return cause
	}

	return nil
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the Siphon service waitgroup is updated correctly
func (siphon *siphonImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		defer wg.Done()
		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
