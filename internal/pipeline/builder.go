package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hbomb79/Siphon/internal/executable"
	"github.com/hbomb79/Siphon/internal/ffmpeg"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/hbomb79/Siphon/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const muxContainer = "mp4"

// The mux stage reads its two sources from the first two inherited
// descriptors, which a child sees as fd 3 and fd 4.
const (
	videoInput = "pipe:3"
	audioInput = "pipe:4"
)

// Builder spawns the process graph for a topology and hands back a
// supervised Pipeline exposing its output.
type Builder struct {
	bins   executable.Executables
	config Config
}

func NewBuilder(bins executable.Executables, config Config) *Builder {
	return &Builder{bins: bins, config: config.withDefaults()}
}

// Build validates the topology, spawns every stage it requires and wires
// their standard streams together. The context provided governs the
// lifetime of the returned pipeline: cancelling it tears the pipeline down.
func (builder *Builder) Build(ctx context.Context, topology Topology, locator string) (*Pipeline, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Emit(logger.DEBUG, "Building %s pipeline for %s\n", topology, locator)
	switch topology.Kind {
	case DIRECT, PROGRESSIVE:
		return builder.buildSingle(ctx, topology, locator)
	case MERGED:
		return builder.buildMerged(ctx, topology, locator)
	}

	return nil, fmt.Errorf("unknown topology kind %s", topology.Kind)
}

func (builder *Builder) buildSingle(ctx context.Context, topology Topology, locator string) (*Pipeline, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Stage: ExtractStage, Executable: builder.bins.Ytdlp, Err: err}
	}

	extract := builder.newStage(ExtractStage, builder.bins.Ytdlp, ytdlp.ExtractArgs(topology.FormatID, locator))
	extract.cmd.Stdout = outW
	if err := extract.start(); err != nil {
		closeFiles(outR, outW)
		return nil, err
	}
	outW.Close()

	return newPipeline(ctx, topology, builder.config, []*stage{extract}, extract, outR), nil
}

// buildMerged spawns the two source extraction stages concurrently, and
// only once both are running spawns the mux stage reading from them.
func (builder *Builder) buildMerged(ctx context.Context, topology Topology, locator string) (*Pipeline, error) {
	if !inheritedPipesSupported {
		return nil, &SpawnError{Stage: MuxStage, Executable: builder.bins.Ffmpeg, Err: errors.New("inherited pipe descriptors are not supported on this platform")}
	}

	files := make([]*os.File, 0, 6)
	pipe := func() (*os.File, *os.File, error) {
		r, w, err := os.Pipe()
		if err == nil {
			files = append(files, r, w)
		}
		return r, w, err
	}

	videoR, videoW, err := pipe()
	if err != nil {
		return nil, &SpawnError{Stage: VideoExtractStage, Executable: builder.bins.Ytdlp, Err: err}
	}
	audioR, audioW, err := pipe()
	if err != nil {
		closeFiles(files...)
		return nil, &SpawnError{Stage: AudioExtractStage, Executable: builder.bins.Ytdlp, Err: err}
	}
	outR, outW, err := pipe()
	if err != nil {
		closeFiles(files...)
		return nil, &SpawnError{Stage: MuxStage, Executable: builder.bins.Ffmpeg, Err: err}
	}

	video := builder.newStage(VideoExtractStage, builder.bins.Ytdlp, ytdlp.ExtractArgs(topology.VideoFormatID, locator))
	video.cmd.Stdout = videoW
	audio := builder.newStage(AudioExtractStage, builder.bins.Ytdlp, ytdlp.ExtractArgs(topology.AudioFormatID, locator))
	audio.cmd.Stdout = audioW

	muxArgs := ffmpeg.MuxArgs(videoInput, audioInput, ffmpeg.MuxOptions{AudioCodec: builder.config.MuxAudioCodec, Container: muxContainer})
	mux := builder.newStage(MuxStage, builder.bins.Ffmpeg, muxArgs)
	mux.cmd.ExtraFiles = []*os.File{videoR, audioR}
	mux.cmd.Stdout = outW

	sources := []*stage{video, audio}
	group := errgroup.Group{}
	for _, s := range sources {
		group.Go(s.start)
	}
	if err := group.Wait(); err != nil {
		builder.abandon(sources...)
		closeFiles(files...)
		return nil, err
	}

	if err := mux.start(); err != nil {
		closeFiles(files...)
		builder.abandon(sources...)
		return nil, err
	}

	// Every descriptor is now held by the children that need it. Keeping
	// our copies open would stop end-of-stream reaching the readers.
	closeFiles(videoR, videoW, audioR, audioW, outW)

	return newPipeline(ctx, topology, builder.config, []*stage{video, audio, mux}, mux, outR), nil
}

func (builder *Builder) newStage(label StageLabel, executable string, args []string) *stage {
	return newStage(label, executable, args, builder.config.DiagnosticTailLines)
}

// abandon terminates any of the stages provided which were started.
func (builder *Builder) abandon(stages ...*stage) {
	for _, s := range stages {
		if s.cmd.Process != nil {
			s.terminate(builder.config.TerminationGrace)
		}
	}
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		f.Close()
	}
}
