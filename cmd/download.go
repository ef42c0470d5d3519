package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hbomb79/Siphon/internal"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/hbomb79/Siphon/internal/pipeline"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/spf13/cobra"
)

type DownloadOptions struct {
	Format string
	Type   string
	Audio  string
	Output string
}

func NewDownloadCommand() *cobra.Command {
	opts := &DownloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a single format of a URL",
		Long: `Download a single format of a URL. Video-only formats must be downloaded with
--type merged, which pairs them with an audio format and muxes the two in to an MP4.`,
		Example: `  siphon download -f 18 https://www.youtube.com/watch?v=dQw4w9WgXcQ
  siphon download -f 137 --type merged -o video.mp4 https://www.youtube.com/watch?v=dQw4w9WgXcQ
  siphon download -f 251 -o - https://www.youtube.com/watch?v=dQw4w9WgXcQ | mpv -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Format, "format", "f", "", "Format identifier to download")
	flags.StringVarP(&opts.Type, "type", "t", "direct", "Download type (direct, progressive or merged)")
	flags.StringVarP(&opts.Audio, "audio", "a", "", "Audio format to pair with a merged download (chosen automatically when omitted)")
	flags.StringVarP(&opts.Output, "output", "o", "", "File to write to, or - for stdout (defaults to video.<ext>)")
	cmd.MarkFlagRequired("format")

	cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"direct", "progressive", "merged"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runDownload(cmd *cobra.Command, locator string, opts *DownloadOptions) error {
	kind, err := pipeline.ParseKind(opts.Type)
	if err != nil {
		return err
	}

	if opts.Output == "-" {
		// Keep stdout clean for the media stream
		logger.SetOutput(os.Stderr)
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}

	siphon, err := internal.New(*config)
	if err != nil {
		return err
	}

	p, err := siphon.Media().OpenPipeline(cmd.Context(), media.Request{
		Locator:       locator,
		Kind:          kind,
		FormatID:      opts.Format,
		AudioFormatID: opts.Audio,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	if opts.Output == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), p)
		return err
	}

	path := opts.Output
	if path == "" {
		path = "video." + p.Topology().Extension()
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(out, p)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("download failed after %d bytes: %w", written, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d bytes to %s\n", written, path)
	return nil
}
