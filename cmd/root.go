package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hbomb79/Siphon/internal"
	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "siphon",
		Short:         "Stream media from the web through yt-dlp and ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file (environment variables are used when omitted)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewFormatsCommand())
	rootCmd.AddCommand(NewDownloadCommand())
}

// loadConfig reads the configuration named by the --config flag and
// applies its log level.
func loadConfig() (*internal.SiphonConfig, error) {
	config, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := config.ApplyLogLevel(); err != nil {
		return nil, err
	}

	return config, nil
}
