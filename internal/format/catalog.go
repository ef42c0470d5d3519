package format

import (
	"fmt"
	"strings"
)

const storyboardMarker = "storyboard"

// Catalog splits the encodings offered for a single locator in to three
// disjoint, ordered categories. A Catalog is built once per metadata
// fetch and never mutated afterwards.
type Catalog struct {
	Progressive []Encoding `json:"progressive"`
	VideoOnly   []Encoding `json:"videoOnly"`
	AudioOnly   []Encoding `json:"audioOnly"`
}

// BuildCatalog classifies the raw encodings provided. Entries without a
// container or identifier, and storyboard entries, are skipped, as are
// entries which carry neither video nor audio. Input order is preserved
// within each category.
func BuildCatalog(raw []RawEncoding) Catalog {
	catalog := Catalog{
		Progressive: make([]Encoding, 0),
		VideoOnly:   make([]Encoding, 0),
		AudioOnly:   make([]Encoding, 0),
	}

	for _, r := range raw {
		if r.Ext == "" || r.FormatID == "" {
			continue
		}
		if strings.Contains(r.FormatNote, storyboardMarker) {
			continue
		}

		enc := normalise(r)
		switch {
		case enc.HasVideo() && enc.HasAudio():
			catalog.Progressive = append(catalog.Progressive, enc)
		case enc.HasVideo():
			catalog.VideoOnly = append(catalog.VideoOnly, enc)
		case enc.HasAudio():
			catalog.AudioOnly = append(catalog.AudioOnly, enc)
		}
	}

	return catalog
}

// Find searches every category for the encoding with the ID provided.
func (c Catalog) Find(id string) (Encoding, bool) {
	for _, group := range [][]Encoding{c.Progressive, c.VideoOnly, c.AudioOnly} {
		if enc, ok := findIn(group, id); ok {
			return enc, true
		}
	}

	return Encoding{}, false
}

// FindProgressive returns the progressive encoding with the ID provided, if any.
func (c Catalog) FindProgressive(id string) (Encoding, bool) { return findIn(c.Progressive, id) }

// FindVideoOnly returns the video-only encoding with the ID provided, if any.
func (c Catalog) FindVideoOnly(id string) (Encoding, bool) { return findIn(c.VideoOnly, id) }

// Len returns the total number of encodings across all categories.
func (c Catalog) Len() int { return len(c.Progressive) + len(c.VideoOnly) + len(c.AudioOnly) }

func findIn(encodings []Encoding, id string) (Encoding, bool) {
	for _, e := range encodings {
		if e.ID == id {
			return e, true
		}
	}

	return Encoding{}, false
}

func normalise(r RawEncoding) Encoding {
	enc := Encoding{
		ID:         r.FormatID,
		Container:  r.Ext,
		VideoCodec: r.VCodec,
		AudioCodec: r.ACodec,
		FrameRate:  r.FPS,
		SampleRate: r.ASR,
		Note:       r.FormatNote,
		ApproxSize: r.Filesize,
	}
	if enc.ApproxSize == nil {
		enc.ApproxSize = r.FilesizeApprox
	}

	if enc.HasVideo() {
		enc.Resolution = resolutionOf(r)
		enc.Bitrate = r.TBR
	} else {
		enc.Bitrate = r.ABR
	}

	return enc
}

// resolutionOf prefers the explicit resolution string, falling back to
// "{width}x{height}" when both dimensions are known.
func resolutionOf(r RawEncoding) string {
	if r.Resolution != "" {
		return r.Resolution
	}
	if r.Width != nil && r.Height != nil {
		return fmt.Sprintf("%dx%d", *r.Width, *r.Height)
	}

	return ""
}
