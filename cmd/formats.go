package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hbomb79/Siphon/internal"
	"github.com/hbomb79/Siphon/internal/format"
	"github.com/hbomb79/Siphon/internal/media"
	"github.com/spf13/cobra"
)

type FormatsOptions struct {
	OutputFormat string
}

func NewFormatsCommand() *cobra.Command {
	opts := &FormatsOptions{}

	cmd := &cobra.Command{
		Use:   "formats <url>",
		Short: "List the formats available for a URL",
		Example: `  siphon formats https://www.youtube.com/watch?v=dQw4w9WgXcQ
  siphon formats --output json https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			siphon, err := internal.New(*config)
			if err != nil {
				return err
			}

			info, err := siphon.Media().FetchInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printInfo(cmd.OutOrStdout(), info, opts.OutputFormat)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.OutputFormat, "output", "o", "text", "Output format (json or text)")

	cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "text"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func printInfo(w io.Writer, info *media.Info, outputFormat string) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "text":
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}

	fmt.Fprintf(w, "%s (%.0fs)\n", info.Title, info.DurationSeconds)
	sections := []struct {
		title     string
		encodings []format.Encoding
	}{
		{"Progressive (audio+video)", info.Formats.Progressive},
		{"Video only (download with --type merged)", info.Formats.VideoOnly},
		{"Audio only", info.Formats.AudioOnly},
	}

	for _, section := range sections {
		fmt.Fprintf(w, "\n%s\n", section.title)
		if len(section.encodings) == 0 {
			fmt.Fprintln(w, "  (none)")
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tEXT\tRESOLUTION\tVCODEC\tACODEC\tBITRATE\tNOTE")
		for _, e := range section.encodings {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Container, e.Resolution, e.VideoCodec, e.AudioCodec, formatBitrate(e.Bitrate), e.Note)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func formatBitrate(bitrate *float64) string {
	if bitrate == nil {
		return "-"
	}

	return fmt.Sprintf("%.0fk", *bitrate)
}
