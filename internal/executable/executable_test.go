package executable_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hbomb79/Siphon/internal/executable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchExecutable(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func Test_Resolve_PrefersBinDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}

	dir := t.TempDir()
	ytdlp := touchExecutable(t, dir, "yt-dlp")
	ffmpeg := touchExecutable(t, dir, "ffmpeg")

	bins, err := executable.Resolve(executable.Config{BinDir: dir, YtdlpPath: "yt-dlp", FfmpegPath: "ffmpeg"})
	require.NoError(t, err)
	assert.Equal(t, ytdlp, bins.Ytdlp)
	assert.Equal(t, ffmpeg, bins.Ffmpeg)
}

func Test_Resolve_AbsolutePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}

	dir := t.TempDir()
	ytdlp := touchExecutable(t, dir, "custom-ytdlp")
	ffmpeg := touchExecutable(t, dir, "custom-ffmpeg")

	bins, err := executable.Resolve(executable.Config{YtdlpPath: ytdlp, FfmpegPath: ffmpeg})
	require.NoError(t, err)
	assert.Equal(t, executable.Executables{Ytdlp: ytdlp, Ffmpeg: ffmpeg}, bins)
}

func Test_Resolve_MissingExecutable(t *testing.T) {
	dir := t.TempDir()

	_, err := executable.Resolve(executable.Config{YtdlpPath: filepath.Join(dir, "missing"), FfmpegPath: filepath.Join(dir, "missing-too")})
	assert.Error(t, err)
}
