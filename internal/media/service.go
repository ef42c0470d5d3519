package media

import (
	"context"
	"fmt"

	"github.com/hbomb79/Siphon/internal/format"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Media")

type (
	MetadataFetcher interface {
		FetchMetadata(ctx context.Context, locator string) (*ytdlp.Metadata, error)
	}

	PipelineBuilder interface {
		Build(ctx context.Context, topology pipeline.Topology, locator string) (*pipeline.Pipeline, error)
	}

	// Info is the description of a locator offered to callers choosing
	// what to download.
	Info struct {
		Locator         string         `json:"url"`
		Title           string         `json:"title"`
		Thumbnail       string         `json:"thumbnail,omitempty"`
		DurationSeconds float64        `json:"duration"`
		Formats         format.Catalog `json:"formats"`
	}

	// Request describes a single download. AudioFormatID is only
	// consulted for MERGED requests, and is selected automatically
	// when omitted.
	Request struct {
		Locator       string
		Kind          pipeline.Kind
		FormatID      string
		AudioFormatID string
	}

	// Service is the boundary through which callers list the encodings
	// available for a locator and open download pipelines for them.
	Service struct {
		fetcher MetadataFetcher
		builder PipelineBuilder
	}
)

func New(fetcher MetadataFetcher, builder PipelineBuilder) *Service {
	return &Service{fetcher: fetcher, builder: builder}
}

// FetchInfo fetches the metadata for the locator and classifies the
// encodings it offers.
func (service *Service) FetchInfo(ctx context.Context, locator string) (*Info, error) {
	metadata, err := service.fetcher.FetchMetadata(ctx, locator)
	if err != nil {
		return nil, err
	}

	return &Info{
		Locator:         locator,
		Title:           metadata.Title,
		Thumbnail:       metadata.Thumbnail,
		DurationSeconds: metadata.DurationSeconds,
		Formats:         format.BuildCatalog(metadata.Formats),
	}, nil
}

func (service *Service) ListFormats(ctx context.Context, locator string) (format.Catalog, error) {
	info, err := service.FetchInfo(ctx, locator)
	if err != nil {
		return format.Catalog{}, err
	}

	return info.Formats, nil
}

// ResolveTopology turns a request in to the topology needed to satisfy
// it. DIRECT requests pass the format expression through untouched and
// never fetch metadata. PROGRESSIVE requests must name a progressive
// encoding, and MERGED requests a video-only encoding; a MERGED request
// without an audio format is paired with the best available audio-only
// encoding.
func (service *Service) ResolveTopology(ctx context.Context, request Request) (pipeline.Topology, error) {
	if request.FormatID == "" {
		return pipeline.Topology{}, fmt.Errorf("%s request requires a format identifier", request.Kind)
	}

	switch request.Kind {
	case pipeline.DIRECT:
		return pipeline.Direct(request.FormatID), nil
	case pipeline.MERGED:
		if request.AudioFormatID != "" {
			return pipeline.Merged(request.FormatID, request.AudioFormatID), nil
		}
	case pipeline.PROGRESSIVE:
	default:
		return pipeline.Topology{}, fmt.Errorf("unknown topology kind %s", request.Kind)
	}

	catalog, err := service.ListFormats(ctx, request.Locator)
	if err != nil {
		return pipeline.Topology{}, err
	}

	if request.Kind == pipeline.PROGRESSIVE {
		encoding, ok := catalog.FindProgressive(request.FormatID)
		if !ok {
			return pipeline.Topology{}, &pipeline.FormatResolutionError{VideoFormatID: request.FormatID, Reason: "format is not a combined audio and video encoding"}
		}

		topology := pipeline.Progressive(encoding.ID)
		topology.Container = encoding.Container
		return topology, nil
	}

	if _, ok := catalog.FindVideoOnly(request.FormatID); !ok {
		return pipeline.Topology{}, &pipeline.FormatResolutionError{VideoFormatID: request.FormatID, Reason: "format is not a video-only encoding"}
	}

	audioID, ok := format.SelectBestAudio(catalog.AudioOnly)
	if !ok {
		return pipeline.Topology{}, &pipeline.FormatResolutionError{
			VideoFormatID: request.FormatID,
			Reason:        "no audio-only encoding is available",
			Err:           pipeline.ErrNoCompatibleAudio,
		}
	}

	log.Emit(logger.DEBUG, "Paired video format %s with audio format %s for %s\n", request.FormatID, audioID, request.Locator)
	return pipeline.Merged(request.FormatID, audioID), nil
}

// OpenPipeline resolves the request and spawns the pipeline serving it.
// The pipeline is bound to the context provided.
func (service *Service) OpenPipeline(ctx context.Context, request Request) (*pipeline.Pipeline, error) {
	if err := ytdlp.ValidateLocator(request.Locator); err != nil {
		return nil, err
	}

	topology, err := service.ResolveTopology(ctx, request)
	if err != nil {
		return nil, err
	}

	p, err := service.builder.Build(ctx, topology, request.Locator)
	if err != nil {
		log.Emit(logger.ERROR, "Failed to open %s pipeline for %s: %v\n", topology, request.Locator, err)
		return nil, err
	}

	return p, nil
}
