package format

import "fmt"

// RawEncoding is a single entry of the format list reported by the
// extraction tool for a media locator. Numeric fields are pointers as
// the tool reports missing values as null, which must remain distinct
// from zero.
type RawEncoding struct {
	FormatID       string   `mapstructure:"format_id" json:"format_id"`
	Ext            string   `mapstructure:"ext" json:"ext"`
	VCodec         string   `mapstructure:"vcodec" json:"vcodec"`
	ACodec         string   `mapstructure:"acodec" json:"acodec"`
	FormatNote     string   `mapstructure:"format_note" json:"format_note"`
	Resolution     string   `mapstructure:"resolution" json:"resolution"`
	Width          *int     `mapstructure:"width" json:"width"`
	Height         *int     `mapstructure:"height" json:"height"`
	FPS            *float64 `mapstructure:"fps" json:"fps"`
	ABR            *float64 `mapstructure:"abr" json:"abr"`
	TBR            *float64 `mapstructure:"tbr" json:"tbr"`
	ASR            *float64 `mapstructure:"asr" json:"asr"`
	Filesize       *int64   `mapstructure:"filesize" json:"filesize"`
	FilesizeApprox *int64   `mapstructure:"filesize_approx" json:"filesize_approx"`
}

// noCodec is the marker the extraction tool uses when a stream kind
// is absent from an encoding.
const noCodec = "none"

// Encoding is the normalised, immutable description of one selectable
// encoding. Codec strings are retained verbatim; presence is derived
// from them via HasVideo/HasAudio.
type Encoding struct {
	ID         string   `json:"id"`
	Container  string   `json:"ext"`
	VideoCodec string   `json:"vcodec,omitempty"`
	AudioCodec string   `json:"acodec,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	FrameRate  *float64 `json:"fps,omitempty"`
	Bitrate    *float64 `json:"bitrate,omitempty"`
	SampleRate *float64 `json:"asr,omitempty"`
	ApproxSize *int64   `json:"filesize,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// HasVideo reports whether the encoding carries a video stream. Only
// the explicit "none" marker counts as absent, an unreported codec is
// assumed present.
func (e Encoding) HasVideo() bool { return e.VideoCodec != noCodec }

// HasAudio reports whether the encoding carries an audio stream, using
// the same rule as HasVideo.
func (e Encoding) HasAudio() bool { return e.AudioCodec != noCodec }

// HasUsableAudio is stricter than HasAudio: the audio codec must be
// reported, and must not be the "none" marker.
func (e Encoding) HasUsableAudio() bool { return e.AudioCodec != "" && e.AudioCodec != noCodec }

func (e Encoding) String() string {
	return fmt.Sprintf("Encoding{ID=%s Ext=%s V=%s A=%s Res=%s}", e.ID, e.Container, e.VideoCodec, e.AudioCodec, e.Resolution)
}
