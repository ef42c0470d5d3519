package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetadata = `{"title":"Sample","thumbnail":"https://img/x.jpg","duration":212.5,"formats":[` +
	`{"format_id":"sb0","ext":"mhtml","vcodec":"none","acodec":"none","format_note":"storyboard"},` +
	`{"format_id":140,"ext":"m4a","vcodec":"none","acodec":"mp4a.40.2","abr":129.478,"asr":44100,"filesize":3437190},` +
	`{"format_id":"137","ext":"mp4","vcodec":"avc1.640028","acodec":"none","width":1920,"height":1080,"fps":30,"filesize":null,"filesize_approx":52428800},` +
	`{"format_id":"22","ext":"mp4","vcodec":"avc1.64001F","acodec":"mp4a.40.2","resolution":"1280x720"}]}`

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func Test_FetchMetadata_DecodesFormats(t *testing.T) {
	stub := writeStub(t, "cat <<'JSON'\n"+sampleMetadata+"\nJSON")
	client := ytdlp.New(stub, ytdlp.Config{})

	metadata, err := client.FetchMetadata(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)

	assert.Equal(t, "Sample", metadata.Title)
	assert.Equal(t, "https://img/x.jpg", metadata.Thumbnail)
	assert.Equal(t, 212.5, metadata.DurationSeconds)
	require.Len(t, metadata.Formats, 4)

	audio := metadata.Formats[1]
	assert.Equal(t, "140", audio.FormatID, "numeric format IDs should decode as strings")
	assert.Equal(t, 129.478, *audio.ABR)
	assert.Equal(t, int64(3437190), *audio.Filesize)

	video := metadata.Formats[2]
	assert.Equal(t, 1920, *video.Width)
	assert.Nil(t, video.Filesize)
	assert.Equal(t, int64(52428800), *video.FilesizeApprox)
	assert.Nil(t, video.ABR)

	assert.Equal(t, "1280x720", metadata.Formats[3].Resolution)
}

func Test_FetchMetadata_ToolFailure(t *testing.T) {
	stub := writeStub(t, "echo 'ERROR: Unsupported URL' >&2\nexit 1")
	client := ytdlp.New(stub, ytdlp.Config{})

	_, err := client.FetchMetadata(context.Background(), "https://example.com/nothing")
	var fetchErr *ytdlp.MetadataFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, fetchErr.Diagnostics, "Unsupported URL")
	assert.Equal(t, "https://example.com/nothing", fetchErr.Locator)
}

func Test_FetchMetadata_UnparsableOutput(t *testing.T) {
	stub := writeStub(t, "echo 'this is not json'")
	client := ytdlp.New(stub, ytdlp.Config{})

	_, err := client.FetchMetadata(context.Background(), "https://example.com/video")
	var fetchErr *ytdlp.MetadataFetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func Test_FetchMetadata_RejectsMalformedLocator(t *testing.T) {
	client := ytdlp.New(filepath.Join(t.TempDir(), "does-not-exist"), ytdlp.Config{})

	for _, locator := range []string{"", "not a url", "ftp://example.com/file", "-f", "/local/path"} {
		t.Run(locator, func(t *testing.T) {
			_, err := client.FetchMetadata(context.Background(), locator)
			var fetchErr *ytdlp.MetadataFetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.ErrorIs(t, err, ytdlp.ErrInvalidLocator)
		})
	}
}

func Test_ExtractArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-f", "137", "--no-playlist", "-o", "-", "--", "https://youtu.be/abc"},
		ytdlp.ExtractArgs("137", "https://youtu.be/abc"),
	)
}
