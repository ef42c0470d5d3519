package format

// PreferredAudioIDs are the audio-only format identifiers known to mux
// cleanly in to an MP4 container, most preferred first.
var PreferredAudioIDs = []string{"140", "251", "250", "249", "139"}

// SelectBestAudio picks the audio encoding that should accompany a video-only
// selection. The first preferred ID present with a usable audio codec wins;
// otherwise the usable encoding with the highest bitrate is chosen, with ties
// going to the earliest entry. False is returned when no usable audio exists.
func SelectBestAudio(audioOnly []Encoding) (string, bool) {
	usable := make([]Encoding, 0, len(audioOnly))
	for _, e := range audioOnly {
		if e.HasUsableAudio() {
			usable = append(usable, e)
		}
	}

	for _, preferred := range PreferredAudioIDs {
		if _, ok := findIn(usable, preferred); ok {
			return preferred, true
		}
	}

	if len(usable) == 0 {
		return "", false
	}

	best := usable[0]
	for _, e := range usable[1:] {
		if bitrateOf(e) > bitrateOf(best) {
			best = e
		}
	}

	return best.ID, true
}

func bitrateOf(e Encoding) float64 {
	if e.Bitrate == nil {
		return 0
	}

	return *e.Bitrate
}
