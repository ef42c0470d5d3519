package ffmpeg

import (
	"github.com/floostack/transcoder/ffmpeg"
)

// fragmentedMovFlags allow an MP4 to be written to a non-seekable output
// by emitting the moov atom up front and fragmenting on keyframes.
const fragmentedMovFlags = "frag_keyframe+empty_moov"

type MuxOptions struct {
	// AudioCodec is the codec the audio source is encoded to ("copy" passes
	// it through untouched).
	AudioCodec string

	// Container is the ffmpeg output format, e.g. "mp4" or "matroska".
	Container string
}

// MuxArgs builds the arguments for an ffmpeg process which copies the
// video stream of videoInput, encodes the audio stream of audioInput with
// the configured codec, and writes the muxed result to standard output.
func MuxArgs(videoInput string, audioInput string, opts MuxOptions) []string {
	videoCodec := "copy"
	audioCodec := opts.AudioCodec
	container := opts.Container

	transcodeOpts := ffmpeg.Options{
		VideoCodec:   &videoCodec,
		AudioCodec:   &audioCodec,
		OutputFormat: &container,
	}
	if container == "mp4" {
		movFlags := fragmentedMovFlags
		transcodeOpts.MovFlags = &movFlags
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", videoInput,
		"-i", audioInput,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}
	args = append(args, transcodeOpts.GetStrArguments()...)

	return append(args, "pipe:1")
}
