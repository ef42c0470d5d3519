package pipeline

import (
	"fmt"
	"strings"
)

type Kind int

const (
	DIRECT Kind = iota
	PROGRESSIVE
	MERGED
)

func (k Kind) String() string {
	switch k {
	case DIRECT:
		return "direct"
	case PROGRESSIVE:
		return "progressive"
	case MERGED:
		return "merged"
	}

	return fmt.Sprintf("unknown[%d]", int(k))
}

// ParseKind converts the name of a topology kind in to a Kind. An
// empty name is treated as DIRECT.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return DIRECT, nil
	case "progressive":
		return PROGRESSIVE, nil
	case "merged":
		return MERGED, nil
	}

	return DIRECT, fmt.Errorf("unrecognised topology kind %q", name)
}

// Topology describes the shape of the process graph needed to satisfy
// a single download. It is chosen before any process is spawned.
type Topology struct {
	Kind Kind

	// FormatID is the format selector passed to the single extraction
	// process of a DIRECT or PROGRESSIVE topology.
	FormatID string

	// VideoFormatID and AudioFormatID name the two sources of a MERGED topology.
	VideoFormatID string
	AudioFormatID string

	// Container is the container extension of the selected encoding,
	// if known. Only used to describe the output to clients.
	Container string
}

func Direct(formatID string) Topology { return Topology{Kind: DIRECT, FormatID: formatID} }

func Progressive(formatID string) Topology {
	return Topology{Kind: PROGRESSIVE, FormatID: formatID}
}

func Merged(videoFormatID string, audioFormatID string) Topology {
	return Topology{Kind: MERGED, VideoFormatID: videoFormatID, AudioFormatID: audioFormatID, Container: muxContainer}
}

// Validate ensures the topology names every format it needs. A MERGED
// topology lacking an audio format yields a FormatResolutionError.
func (t Topology) Validate() error {
	switch t.Kind {
	case DIRECT, PROGRESSIVE:
		if t.FormatID == "" {
			return fmt.Errorf("%s topology requires a format identifier", t.Kind)
		}
	case MERGED:
		if t.VideoFormatID == "" {
			return &FormatResolutionError{VideoFormatID: t.VideoFormatID, Reason: "no video format identifier provided"}
		}
		if t.AudioFormatID == "" {
			return &FormatResolutionError{VideoFormatID: t.VideoFormatID, Reason: "audio format has not been resolved", Err: ErrNoCompatibleAudio}
		}
	default:
		return fmt.Errorf("unknown topology kind %s", t.Kind)
	}

	return nil
}

var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"webm": "video/webm",
	"3gp":  "video/3gpp",
	"flv":  "video/x-flv",
	"m4a":  "audio/mp4",
	"mp3":  "audio/mpeg",
	"weba": "audio/webm",
	"opus": "audio/ogg",
	"ogg":  "audio/ogg",
}

// ContentType returns the MIME type of the output stream this topology
// produces, falling back to application/octet-stream.
func (t Topology) ContentType() string {
	if ct, ok := contentTypes[t.Extension()]; ok {
		return ct
	}

	return "application/octet-stream"
}

// Extension returns the file extension suited to this topology's output.
func (t Topology) Extension() string {
	if t.Kind == MERGED {
		return muxContainer
	}
	if t.Container != "" {
		return strings.ToLower(t.Container)
	}

	return "bin"
}

func (t Topology) String() string {
	if t.Kind == MERGED {
		return fmt.Sprintf("Merged(%s+%s)", t.VideoFormatID, t.AudioFormatID)
	}

	if t.Kind == PROGRESSIVE {
		return fmt.Sprintf("Progressive(%s)", t.FormatID)
	}

	return fmt.Sprintf("Direct(%s)", t.FormatID)
}
