package executable

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/mitchellh/go-homedir"
)

var log = logger.Get("Executables")

type Config struct {
	// BinDir, when set, is searched for bare executable names before
	// falling back to the PATH.
	BinDir     string `yaml:"bin_dir" env:"SIPHON_BIN_DIR"`
	YtdlpPath  string `yaml:"ytdlp_path" env:"YTDLP_PATH" env-default:"yt-dlp"`
	FfmpegPath string `yaml:"ffmpeg_path" env:"FFMPEG_PATH" env-default:"ffmpeg"`
}

// Executables holds the resolved invocation paths of the external tools.
type Executables struct {
	Ytdlp  string
	Ffmpeg string
}

// Resolve turns the configured executable names in to absolute paths,
// once, at startup. Paths may begin with "~". Bare names are looked up in
// BinDir (if configured) and then the PATH; on Windows the ".exe" suffix
// is implied.
func Resolve(config Config) (Executables, error) {
	ytdlp, err := resolveOne(config.BinDir, config.YtdlpPath, "yt-dlp")
	if err != nil {
		return Executables{}, err
	}

	ffmpeg, err := resolveOne(config.BinDir, config.FfmpegPath, "ffmpeg")
	if err != nil {
		return Executables{}, err
	}

	log.Emit(logger.INFO, "Using yt-dlp=%s ffmpeg=%s\n", ytdlp, ffmpeg)
	return Executables{Ytdlp: ytdlp, Ffmpeg: ffmpeg}, nil
}

func resolveOne(binDir string, configured string, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}

	expanded, err := homedir.Expand(name)
	if err != nil {
		return "", fmt.Errorf("failed to expand executable path %q: %w", name, err)
	}

	if binDir != "" && !strings.ContainsRune(expanded, filepath.Separator) {
		dir, err := homedir.Expand(binDir)
		if err != nil {
			return "", fmt.Errorf("failed to expand bin dir %q: %w", binDir, err)
		}

		if path, err := exec.LookPath(filepath.Join(dir, withPlatformSuffix(expanded))); err == nil {
			return filepath.Abs(path)
		}
		log.Emit(logger.DEBUG, "%s not found in %s, falling back to PATH\n", expanded, dir)
	}

	path, err := exec.LookPath(expanded)
	if err != nil {
		return "", fmt.Errorf("executable %q could not be found: %w", expanded, err)
	}

	return filepath.Abs(path)
}

func withPlatformSuffix(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}

	return name
}
