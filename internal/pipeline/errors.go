package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineClosed is returned from reads of a pipeline which was
	// closed or cancelled before its output was fully consumed.
	ErrPipelineClosed = errors.New("pipeline closed")

	// ErrNoCompatibleAudio indicates no audio-only encoding could be found
	// to accompany a video-only selection.
	ErrNoCompatibleAudio = errors.New("no compatible audio format")
)

// FormatResolutionError is returned when a MERGED topology cannot be
// resolved to a concrete pair of format identifiers.
type FormatResolutionError struct {
	VideoFormatID string
	Reason        string
	Err           error
}

func (e *FormatResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve formats for video %q: %s", e.VideoFormatID, e.Reason)
}

func (e *FormatResolutionError) Unwrap() error { return e.Err }

// SpawnError is returned when a pipeline stage could not be launched.
type SpawnError struct {
	Stage      StageLabel
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s stage (%s): %v", e.Stage, e.Executable, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// PipelineFailure is surfaced to the consumer of a pipeline when one of
// its stages exits unsuccessfully before the output is fully consumed.
type PipelineFailure struct {
	Stage       StageLabel
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *PipelineFailure) Error() string {
	return fmt.Sprintf("pipeline stage %s failed with exit code %d: %v", e.Stage, e.ExitCode, e.Err)
}

func (e *PipelineFailure) Unwrap() error { return e.Err }
