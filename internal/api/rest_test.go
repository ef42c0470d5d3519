//go:build !windows

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/api/downloads"
	"github.com/hbomb79/Siphon/internal/executable"
	"github.com/hbomb79/Siphon/internal/format"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/hbomb79/Siphon/internal/media/mocks"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/internal/ytdlp"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const locator = "https://example.com/watch?v=abc"

func init() {
	logger.SetMinLoggingLevel(logger.WARNING.Level())
}

func ptr[T any](v T) *T { return &v }

// newServer starts the gateway in front of a real pipeline builder whose
// yt-dlp is the shell script body provided.
func newServer(t *testing.T, ytdlpBody string) (*httptest.Server, *mocks.MockMetadataFetcher) {
	t.Helper()
	dir := t.TempDir()
	stub := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\n"+ytdlpBody+"\n"), 0o755))

	builder := pipeline.NewBuilder(executable.Executables{Ytdlp: stub, Ffmpeg: filepath.Join(dir, "missing-ffmpeg")}, pipeline.Config{TerminationGrace: time.Second})
	fetcher := mocks.NewMockMetadataFetcher(t)
	gateway := api.NewRestGateway(&api.RestConfig{}, media.New(fetcher, builder))

	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)
	return server, fetcher
}

func downloadURL(server *httptest.Server, params map[string]string) string {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	return server.URL + "/api/v1/download?" + query.Encode()
}

func Test_Health(t *testing.T) {
	server, _ := newServer(t, "exit 0")

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func Test_Info(t *testing.T) {
	server, fetcher := newServer(t, "exit 0")
	fetcher.EXPECT().FetchMetadata(mock.Anything, locator).Return(&ytdlp.Metadata{
		Title: "A video",
		Formats: []format.RawEncoding{
			{FormatID: "18", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a"},
			{FormatID: "137", Ext: "mp4", VCodec: "avc1", ACodec: "none"},
			{FormatID: "140", Ext: "m4a", VCodec: "none", ACodec: "mp4a", ABR: ptr(128.0)},
		},
	}, nil).Once()

	resp, err := http.Post(server.URL+"/api/v1/info", "application/json", strings.NewReader(fmt.Sprintf(`{"url": %q}`, locator)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info media.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "A video", info.Title)
	require.Len(t, info.Formats.Progressive, 1)
	require.Len(t, info.Formats.VideoOnly, 1)
	require.Len(t, info.Formats.AudioOnly, 1)
	assert.Equal(t, "140", info.Formats.AudioOnly[0].ID)
}

func Test_Info_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		server, _ := newServer(t, "exit 0")
		resp, err := http.Post(server.URL+"/api/v1/info", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("extraction failure", func(t *testing.T) {
		server, fetcher := newServer(t, "exit 0")
		fetcher.EXPECT().FetchMetadata(mock.Anything, locator).Return(nil, &ytdlp.MetadataFetchError{Locator: locator, Err: errors.New("exit status 1")}).Once()

		resp, err := http.Post(server.URL+"/api/v1/info", "application/json", strings.NewReader(fmt.Sprintf(`{"url": %q}`, locator)))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func Test_Download_StreamsBody(t *testing.T) {
	server, _ := newServer(t, `printf "payload for $2"`)

	resp, err := http.Get(downloadURL(server, map[string]string{"url": locator, "format": "best"}))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="video.bin"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload for best", string(body))
}

func Test_Download_RequestErrors(t *testing.T) {
	tests := []struct {
		summary string
		params  map[string]string
		status  int
	}{
		{"missing format", map[string]string{"url": locator}, http.StatusBadRequest},
		{"missing url", map[string]string{"format": "18"}, http.StatusBadRequest},
		{"unknown type", map[string]string{"url": locator, "format": "18", "type": "sideways"}, http.StatusBadRequest},
		{"non http locator", map[string]string{"url": "ftp://example.com/v", "format": "18"}, http.StatusBadRequest},
		{"mux unavailable", map[string]string{"url": locator, "format": "137", "type": "merged", "audio": "140"}, http.StatusServiceUnavailable},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			server, _ := newServer(t, "exec sleep 30")
			resp, err := http.Get(downloadURL(server, test.params))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, test.status, resp.StatusCode)
		})
	}
}

func Test_Download_MergedWithoutAudio(t *testing.T) {
	server, fetcher := newServer(t, "exit 0")
	fetcher.EXPECT().FetchMetadata(mock.Anything, locator).Return(&ytdlp.Metadata{
		Formats: []format.RawEncoding{{FormatID: "137", Ext: "mp4", VCodec: "avc1", ACodec: "none"}},
	}, nil).Once()

	resp, err := http.Post(server.URL+"/api/v1/download", "application/json",
		strings.NewReader(fmt.Sprintf(`{"url": %q, "format": "137", "type": "merged"}`, locator)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func Test_Download_MidStreamFailureAbortsResponse(t *testing.T) {
	server, _ := newServer(t, `printf partial; echo "connection reset" >&2; exit 1`)

	resp, err := http.Get(downloadURL(server, map[string]string{"url": locator, "format": "22"}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = io.ReadAll(resp.Body)
	assert.Error(t, err, "a failed download must not look like a complete one")
}

func Test_Download_ListedWhileActive(t *testing.T) {
	server, _ := newServer(t, "printf x; exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL(server, map[string]string{"url": locator, "format": "22"}), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	first := make([]byte, 1)
	_, err = io.ReadFull(resp.Body, first)
	require.NoError(t, err)

	listDownloads := func() []downloads.DownloadDto {
		listResp, err := http.Get(server.URL + "/api/v1/downloads")
		require.NoError(t, err)
		defer listResp.Body.Close()

		var dtos []downloads.DownloadDto
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&dtos))
		return dtos
	}

	active := listDownloads()
	require.Len(t, active, 1)
	assert.Equal(t, locator, active[0].URL)
	assert.Equal(t, pipeline.RUNNING.String(), active[0].State)
	assert.Equal(t, "Direct(22)", active[0].Topology)
	require.Len(t, active[0].Stages, 1)
	assert.Equal(t, pipeline.ExtractStage, active[0].Stages[0].Label)

	// Client going away tears the download down
	cancel()
	assert.Eventually(t, func() bool { return len(listDownloads()) == 0 }, 5*time.Second, 50*time.Millisecond)
}
