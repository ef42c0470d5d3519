package ytdlp

import "fmt"

// MetadataFetchError is returned when metadata for a locator could not
// be retrieved, either because the locator is malformed, the extraction
// tool failed, or its output could not be understood.
type MetadataFetchError struct {
	Locator     string
	Diagnostics string
	Err         error
}

func (e *MetadataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch metadata for %q: %v", e.Locator, e.Err)
}

func (e *MetadataFetchError) Unwrap() error { return e.Err }
