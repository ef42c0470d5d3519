package ytdlp

// ExtractArgs returns the arguments which instruct the extraction tool to
// stream the single encoding selected by formatID to standard output.
// The locator follows a "--" so it can never be read as an option.
func ExtractArgs(formatID string, locator string) []string {
	return []string{
		"-f", formatID,
		"--no-playlist",
		"-o", "-",
		"--", locator,
	}
}

// metadataArgs returns the arguments which dump the metadata of the
// locator as a single JSON document.
func metadataArgs(locator string) []string {
	return []string{
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		"--", locator,
	}
}
