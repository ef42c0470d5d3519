package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/hbomb79/Siphon/internal/format"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/singleflight"
)

var log = logger.Get("yt-dlp")

const (
	defaultFetchTimeout = time.Minute
	maxDiagnosticBytes  = 8 * 1024
)

var ErrInvalidLocator = errors.New("locator must be an absolute http(s) URL")

type Config struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"METADATA_FETCH_TIMEOUT" env-default:"60s"`
}

// Metadata is the subset of the extraction tool's JSON description of a
// locator that Siphon makes use of.
type Metadata struct {
	Title           string               `mapstructure:"title"`
	Thumbnail       string               `mapstructure:"thumbnail"`
	DurationSeconds float64              `mapstructure:"duration"`
	Formats         []format.RawEncoding `mapstructure:"formats"`
}

// Client fetches metadata by invoking the extraction tool. Concurrent
// fetches for the same locator share a single invocation.
type Client struct {
	binPath string
	config  Config
	flight  singleflight.Group
}

func New(binPath string, config Config) *Client {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaultFetchTimeout
	}

	return &Client{binPath: binPath, config: config}
}

// FetchMetadata returns the metadata for the locator provided. All errors
// returned are of type *MetadataFetchError.
func (client *Client) FetchMetadata(ctx context.Context, locator string) (*Metadata, error) {
	if err := ValidateLocator(locator); err != nil {
		return nil, &MetadataFetchError{Locator: locator, Err: err}
	}

	// The shared invocation must not die with whichever caller started it
	ch := client.flight.DoChan(locator, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), client.config.FetchTimeout)
		defer cancel()

		return client.fetch(fetchCtx, locator)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Emit(logger.DEBUG, "Shared in-flight metadata fetch for %s\n", locator)
		}
		return res.Val.(*Metadata), nil
	case <-ctx.Done():
		return nil, &MetadataFetchError{Locator: locator, Err: ctx.Err()}
	}
}

func (client *Client) fetch(ctx context.Context, locator string) (*Metadata, error) {
	var stdout bytes.Buffer
	stderr := &limitedBuffer{limit: maxDiagnosticBytes}
	cmd := exec.CommandContext(ctx, client.binPath, metadataArgs(locator)...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	log.Emit(logger.DEBUG, "Fetching metadata for %s\n", locator)
	started := time.Now()
	if err := cmd.Run(); err != nil {
		diagnostics := stderr.String()
		log.Emit(logger.WARNING, "Metadata fetch for %s failed: %v\n%s\n", locator, err, diagnostics)
		return nil, &MetadataFetchError{Locator: locator, Diagnostics: diagnostics, Err: err}
	}

	metadata, err := decodeMetadata(stdout.Bytes())
	if err != nil {
		return nil, &MetadataFetchError{Locator: locator, Diagnostics: stderr.String(), Err: err}
	}

	log.Emit(logger.SUCCESS, "Fetched metadata for %s (%d formats) in %s\n", locator, len(metadata.Formats), time.Since(started))
	return metadata, nil
}

// decodeMetadata parses the first JSON document in the tool's output.
// Format identifiers may be reported as numbers, hence the weakly typed
// decode.
func decodeMetadata(raw []byte) (*Metadata, error) {
	var document map[string]any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}

	var metadata Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &metadata,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(document); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &metadata, nil
}

// ValidateLocator rejects anything other than an absolute http(s) URL.
func ValidateLocator(locator string) error {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidLocator
	}

	return nil
}

// limitedBuffer keeps only the final limit bytes written to it.
type limitedBuffer struct {
	buf   []byte
	limit int
}

// Write never grows the retained buffer beyond limit; the surviving tail
// is copied to a fresh slice rather than resliced so discarded output is
// released.
func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= b.limit {
		p = p[len(p)-b.limit:]
		b.buf = b.buf[:0]
	}

	if over := len(b.buf) + len(p) - b.limit; over > 0 {
		kept := make([]byte, len(b.buf)-over, b.limit)
		copy(kept, b.buf[over:])
		b.buf = kept
	}
	b.buf = append(b.buf, p...)

	return n, nil
}

func (b *limitedBuffer) String() string { return string(b.buf) }
